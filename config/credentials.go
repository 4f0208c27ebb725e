package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// SecurityMethod defines the credential storage method
type SecurityMethod string

const (
	SecurityPlainText SecurityMethod = "plaintext"
	SecuritySSHKey    SecurityMethod = "ssh_key"
)

// WorkflowKeyName is the credential slot holding the workflow API bearer token.
const WorkflowKeyName = "workflow"

// CredentialStore manages encrypted or plain-text API credentials
type CredentialStore struct {
	method      SecurityMethod
	credentials map[string]string // name → secret
	sshKeyPath  string            // path to SSH key (ssh_key method only)
	passphrase  string            // optional passphrase for encrypted keys
	encManager  *EncryptionManager
}

// NewCredentialStore creates a new credential store
func NewCredentialStore(method SecurityMethod, sshKeyPath string) *CredentialStore {
	return &CredentialStore{
		method:      method,
		credentials: make(map[string]string),
		sshKeyPath:  sshKeyPath,
	}
}

// SetPassphrase sets the passphrase for decrypting the SSH key
func (c *CredentialStore) SetPassphrase(passphrase string) {
	c.passphrase = passphrase
	if c.encManager != nil {
		c.encManager.SetPassphrase(passphrase)
	}
}

// Load loads credentials from disk based on the configured security method
func (c *CredentialStore) Load(dataDir string) error {
	switch c.method {
	case SecurityPlainText:
		creds, err := loadPlainText(dataDir)
		if err != nil {
			return err
		}
		c.credentials = creds
		return nil

	case SecuritySSHKey:
		creds, err := c.loadSSHEncrypted(dataDir)
		if err != nil {
			return err
		}
		c.credentials = creds
		return nil

	default:
		return fmt.Errorf("unknown security method: %s", c.method)
	}
}

// Save saves credentials to disk based on the configured security method
func (c *CredentialStore) Save(dataDir string) error {
	switch c.method {
	case SecurityPlainText:
		return savePlainText(dataDir, c.credentials)

	case SecuritySSHKey:
		return c.saveSSHEncrypted(dataDir)

	default:
		return fmt.Errorf("unknown security method: %s", c.method)
	}
}

// Get retrieves a credential by name
func (c *CredentialStore) Get(name string) string {
	return c.credentials[name]
}

// Set stores a credential by name
func (c *CredentialStore) Set(name, secret string) {
	c.credentials[name] = secret
}

// Delete removes a credential by name
func (c *CredentialStore) Delete(name string) {
	delete(c.credentials, name)
}

// GetMethod returns the current security method
func (c *CredentialStore) GetMethod() SecurityMethod {
	return c.method
}

func credentialsPath(dataDir string) string {
	return filepath.Join(dataDir, "credentials.toml")
}

func encryptedCredentialsPath(dataDir string) string {
	return filepath.Join(dataDir, "credentials.enc")
}

// loadPlainText loads credentials from a plain text TOML file
func loadPlainText(dataDir string) (map[string]string, error) {
	path := credentialsPath(dataDir)

	if !FileExists(path) {
		return make(map[string]string), nil
	}

	type credentialsFile struct {
		Credentials map[string]string `toml:"credentials"`
	}

	var cf credentialsFile
	if _, err := toml.DecodeFile(path, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if cf.Credentials == nil {
		cf.Credentials = make(map[string]string)
	}

	return cf.Credentials, nil
}

// savePlainText saves credentials to a plain text TOML file with 0600 permissions
func savePlainText(dataDir string, creds map[string]string) error {
	path := credentialsPath(dataDir)

	type credentialsFile struct {
		Credentials map[string]string `toml:"credentials"`
	}

	cf := credentialsFile{Credentials: creds}

	// 0600 - owner read/write only
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create credentials file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cf); err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	return nil
}

func (c *CredentialStore) ensureEncryption() error {
	if c.encManager != nil && c.passphrase == "" {
		return nil
	}
	c.encManager = NewEncryptionManager(EncryptionSSHKey, c.sshKeyPath)
	c.encManager.SetPassphrase(c.passphrase)
	if err := c.encManager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize encryption: %w", err)
	}
	return nil
}

// loadSSHEncrypted loads and decrypts credentials using SSH key encryption
func (c *CredentialStore) loadSSHEncrypted(dataDir string) (map[string]string, error) {
	path := encryptedCredentialsPath(dataDir)

	if !FileExists(path) {
		return make(map[string]string), nil
	}

	if err := c.ensureEncryption(); err != nil {
		return nil, err
	}

	encryptedData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read encrypted credentials: %w", err)
	}

	decryptedData, err := c.encManager.Decrypt(encryptedData)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	var creds map[string]string
	if err := json.Unmarshal(decryptedData, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse decrypted credentials: %w", err)
	}

	return creds, nil
}

// saveSSHEncrypted encrypts and saves credentials using SSH key encryption
func (c *CredentialStore) saveSSHEncrypted(dataDir string) error {
	path := encryptedCredentialsPath(dataDir)

	if err := c.ensureEncryption(); err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(c.credentials, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize credentials: %w", err)
	}

	encryptedData, err := c.encManager.Encrypt(jsonData)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	if err := os.WriteFile(path, encryptedData, 0600); err != nil {
		return fmt.Errorf("failed to write encrypted credentials: %w", err)
	}

	return nil
}
