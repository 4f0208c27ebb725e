package config

import (
	"fmt"
	"os"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type WorkflowConfig struct {
	APIURL     string `toml:"api_url"`
	WorkflowID string `toml:"workflow_id"`
}

type SecurityConfig struct {
	Method     string `toml:"method"` // "plaintext" or "ssh_key"
	SSHKeyPath string `toml:"ssh_key_path,omitempty"`
}

type UserConfig struct {
	Workflow WorkflowConfig `toml:"workflow"`
	Security SecurityConfig `toml:"security"`
}

type Config struct {
	DataDirectory string
	APIURL        string
	WorkflowID    string
	Security      SecurityConfig
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("TICKERCHAT_API_URL"); url != "" {
		c.APIURL = url
	}
	if id := os.Getenv("TICKERCHAT_WORKFLOW_ID"); id != "" {
		c.WorkflowID = id
	}
	if dataDir := os.Getenv("TICKERCHAT_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

// APIKeyFromEnv returns the bearer token override, if one is set. Keys
// normally live in the credential store; the env var wins when present.
func APIKeyFromEnv() string {
	return os.Getenv("TICKERCHAT_API_KEY")
}

func CheckDebug() bool {
	debug := os.Getenv("TICKERCHAT_DEBUG")
	return debug == "true" || debug == "1"
}

func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory: "~/.local/share/tickerchat",
		Security:      SecurityConfig{Method: "plaintext"},
	}

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	cfg.DataDirectory = systemCfg.DataDirectory

	dataDir := cfg.DataDir()
	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.APIURL = userCfg.Workflow.APIURL
	cfg.WorkflowID = userCfg.Workflow.WorkflowID
	cfg.Security = userCfg.Security
	if cfg.Security.Method == "" {
		cfg.Security.Method = "plaintext"
	}

	cfg.applyEnvOverrides()

	dataDir = cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	return cfg, nil
}
