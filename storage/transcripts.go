package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tickerchat/model"
)

// TranscriptStep mirrors one aggregated step of an agent turn.
type TranscriptStep struct {
	Key     string `json:"key"`
	Content string `json:"content"`
	Link    string `json:"link,omitempty"`
}

// TranscriptTurn is one committed conversation turn.
type TranscriptTurn struct {
	Role      string           `json:"role"`
	Text      string           `json:"text,omitempty"`
	Steps     []TranscriptStep `json:"steps,omitempty"`
	Succeeded bool             `json:"succeeded"`
	Timestamp time.Time        `json:"timestamp"`
}

// Transcript is a saved conversation for one session.
type Transcript struct {
	SessionID string           `json:"session_id"`
	Name      string           `json:"name"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Turns     []TranscriptTurn `json:"turns"`
}

// TranscriptMetadata is a lightweight version of Transcript for listing.
type TranscriptMetadata struct {
	SessionID string    `json:"session_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	TurnCount int       `json:"turn_count"`
}

// TranscriptStorage persists transcripts as one JSON file per session.
type TranscriptStorage struct {
	transcriptsDir string
}

func NewTranscriptStorage(dataDir string) (*TranscriptStorage, error) {
	transcriptsDir := filepath.Join(dataDir, "transcripts")

	// 0700 - user-only access
	if err := os.MkdirAll(transcriptsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create transcripts directory: %w", err)
	}

	return &TranscriptStorage{transcriptsDir: transcriptsDir}, nil
}

// NewTranscript converts committed turns into a transcript ready to save.
func NewTranscript(sessionID string, turns []model.Turn) *Transcript {
	t := &Transcript{
		SessionID: sessionID,
		Turns:     make([]TranscriptTurn, 0, len(turns)),
	}
	for _, turn := range turns {
		tt := TranscriptTurn{
			Role:      string(turn.Role),
			Text:      turn.Text,
			Succeeded: turn.Succeeded,
			Timestamp: turn.Timestamp,
		}
		for _, s := range turn.Steps {
			tt.Steps = append(tt.Steps, TranscriptStep{Key: s.Key, Content: s.Content, Link: s.Link})
		}
		t.Turns = append(t.Turns, tt)
		if t.Name == "" && turn.Role == model.RoleHuman {
			t.Name = GenerateTranscriptName(turn.Text)
		}
	}
	if t.Name == "" {
		t.Name = GenerateTranscriptName("")
	}
	return t
}

// Save writes a transcript to disk, stamping timestamps.
func (ts *TranscriptStorage) Save(t *Transcript) error {
	if t.SessionID == "" {
		return fmt.Errorf("transcript has no session id")
	}

	t.UpdatedAt = time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = t.UpdatedAt
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	path := filepath.Join(ts.transcriptsDir, t.SessionID+".json")
	// 0600 - transcripts contain conversation history
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write transcript file: %w", err)
	}

	return nil
}

// Load reads the transcript for a session.
func (ts *TranscriptStorage) Load(sessionID string) (*Transcript, error) {
	path := filepath.Join(ts.transcriptsDir, sessionID+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}

	return &t, nil
}

// List returns metadata for all transcripts, newest first.
func (ts *TranscriptStorage) List() ([]TranscriptMetadata, error) {
	entries, err := os.ReadDir(ts.transcriptsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcripts directory: %w", err)
	}

	var metas []TranscriptMetadata
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(ts.transcriptsDir, entry.Name()))
		if err != nil {
			continue // skip corrupted files
		}

		var t Transcript
		if err := json.Unmarshal(data, &t); err != nil {
			continue // skip corrupted files
		}

		metas = append(metas, TranscriptMetadata{
			SessionID: t.SessionID,
			Name:      t.Name,
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
			TurnCount: len(t.Turns),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})

	return metas, nil
}

// Delete removes a transcript from disk.
func (ts *TranscriptStorage) Delete(sessionID string) error {
	path := filepath.Join(ts.transcriptsDir, sessionID+".json")
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete transcript file: %w", err)
	}
	return nil
}

// SaveCurrentSessionID remembers the last active session for resume.
func (ts *TranscriptStorage) SaveCurrentSessionID(id string) error {
	path := filepath.Join(filepath.Dir(ts.transcriptsDir), "current_session.id")
	return os.WriteFile(path, []byte(id), 0600)
}

// LoadCurrentSessionID returns the last active session ID, if any.
func (ts *TranscriptStorage) LoadCurrentSessionID() (string, error) {
	path := filepath.Join(filepath.Dir(ts.transcriptsDir), "current_session.id")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// GenerateTranscriptName derives a display name from the first prompt.
func GenerateTranscriptName(firstPrompt string) string {
	name := strings.ReplaceAll(firstPrompt, "\n", " ")
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Sprintf("Conversation %s", time.Now().Format("Jan 2, 3:04 PM"))
	}
	if len(name) > 30 {
		name = name[:30] + "..."
	}
	return name
}
