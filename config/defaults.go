package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/tickerchat",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Security: SecurityConfig{Method: "plaintext"},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# tickerchat System Configuration
# Location: ~/.config/tickerchat/settings.toml
# This file uses TOML format: https://toml.io

# Directory where transcripts, batch results, and user config are stored
data_directory = "~/.local/share/tickerchat"
`
}

func GenerateUserConfigTemplate() string {
	return `# tickerchat User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[workflow]
# Base URL of the workflow API
api_url = ""

# Workflow to invoke
workflow_id = ""

[security]
# Credential storage: "plaintext" or "ssh_key"
method = "plaintext"

# SSH private key used to encrypt credentials (ssh_key method only)
# ssh_key_path = "~/.ssh/id_ed25519"
`
}
