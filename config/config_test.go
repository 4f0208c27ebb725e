package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tilde prefix", "~/.local/share/tickerchat", "/home/tester/.local/share/tickerchat"},
		{"absolute path untouched", "/var/data", "/var/data"},
		{"empty stays empty", "", ""},
		{"env var expanded", "$HOME/data", "/home/tester/data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.in); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("TICKERCHAT_API_URL", "https://api.example.com")
	t.Setenv("TICKERCHAT_WORKFLOW_ID", "wf-override")
	t.Setenv("TICKERCHAT_DATA_DIR", "/tmp/tickerchat-test")

	cfg := &Config{
		APIURL:        "https://file.example.com",
		WorkflowID:    "wf-file",
		DataDirectory: "~/.local/share/tickerchat",
	}
	cfg.applyEnvOverrides()

	if cfg.APIURL != "https://api.example.com" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.WorkflowID != "wf-override" {
		t.Errorf("WorkflowID = %q", cfg.WorkflowID)
	}
	if cfg.DataDirectory != "/tmp/tickerchat-test" {
		t.Errorf("DataDirectory = %q", cfg.DataDirectory)
	}
}

func TestApplyEnvOverridesKeepsFileValues(t *testing.T) {
	t.Setenv("TICKERCHAT_API_URL", "")
	t.Setenv("TICKERCHAT_WORKFLOW_ID", "")
	t.Setenv("TICKERCHAT_DATA_DIR", "")

	cfg := &Config{APIURL: "https://file.example.com", WorkflowID: "wf-file"}
	cfg.applyEnvOverrides()

	if cfg.APIURL != "https://file.example.com" || cfg.WorkflowID != "wf-file" {
		t.Errorf("empty env vars overrode file values: %+v", cfg)
	}
}

func TestCheckDebug(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"false", false},
		{"", false},
		{"yes", false},
	}
	for _, tt := range tests {
		t.Setenv("TICKERCHAT_DEBUG", tt.value)
		if got := CheckDebug(); got != tt.want {
			t.Errorf("CheckDebug() with %q = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestPlainTextCredentialsRoundTrip(t *testing.T) {
	dataDir := t.TempDir()

	store := NewCredentialStore(SecurityPlainText, "")
	store.Set(WorkflowKeyName, "sk-test-12345")
	store.Set("backup", "another-secret")
	if err := store.Save(dataDir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := NewCredentialStore(SecurityPlainText, "")
	if err := reloaded.Load(dataDir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := reloaded.Get(WorkflowKeyName); got != "sk-test-12345" {
		t.Errorf("workflow key = %q", got)
	}
	if got := reloaded.Get("backup"); got != "another-secret" {
		t.Errorf("backup key = %q", got)
	}

	reloaded.Delete("backup")
	if err := reloaded.Save(dataDir); err != nil {
		t.Fatalf("Save after delete: %v", err)
	}
	final := NewCredentialStore(SecurityPlainText, "")
	if err := final.Load(dataDir); err != nil {
		t.Fatalf("Load after delete: %v", err)
	}
	if got := final.Get("backup"); got != "" {
		t.Errorf("deleted credential survived: %q", got)
	}
}

func TestCredentialsLoadMissingFile(t *testing.T) {
	store := NewCredentialStore(SecurityPlainText, "")
	if err := store.Load(t.TempDir()); err != nil {
		t.Fatalf("Load on empty data dir: %v", err)
	}
	if got := store.Get(WorkflowKeyName); got != "" {
		t.Errorf("credential from nowhere: %q", got)
	}
}

func TestAESGCMRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	plaintext := []byte(`{"workflow": "sk-secret"}`)

	ciphertext, err := encryptAESGCM(plaintext, key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(ciphertext, []byte("sk-secret")) {
		t.Error("ciphertext leaks plaintext")
	}

	decrypted, err := decryptAESGCM(ciphertext, key)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("round trip mismatch: %q", decrypted)
	}

	wrongKey := bytes.Repeat([]byte{0x43}, 32)
	if _, err := decryptAESGCM(ciphertext, wrongKey); err == nil {
		t.Error("decryption with the wrong key succeeded")
	}

	if _, err := decryptAESGCM([]byte("short"), key); err == nil {
		t.Error("truncated ciphertext decrypted")
	}
}

func TestGenerateUserConfigTemplateParses(t *testing.T) {
	dataDir := t.TempDir()
	if err := CreateDefaultUserConfig(dataDir); err != nil {
		t.Fatalf("CreateDefaultUserConfig: %v", err)
	}

	cfg, err := LoadUserConfig(dataDir)
	if err != nil {
		t.Fatalf("LoadUserConfig: %v", err)
	}
	if cfg.Security.Method != "plaintext" {
		t.Errorf("default security method = %q", cfg.Security.Method)
	}

	if !FileExists(filepath.Join(dataDir, "config.toml")) {
		t.Error("config.toml not created")
	}
}

func TestGenerateSystemConfigTemplateMentionsDataDir(t *testing.T) {
	if !strings.Contains(GenerateSystemConfigTemplate(), "data_directory") {
		t.Error("system template missing data_directory")
	}
}
