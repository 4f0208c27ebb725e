// Package storage persists conversation transcripts, batch topics, and batch
// results under the user's data directory.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"tickerchat/batch"
)

// Topic is a standing prompt the batch runner submits on each run.
type Topic struct {
	ID        int64
	Text      string
	Active    bool
	CreatedAt time.Time
}

// BatchResult is a persisted batch invocation outcome.
type BatchResult struct {
	ID        int64
	Topic     string
	SessionID string
	Response  string // raw JSON, empty on failure
	Duration  time.Duration
	Err       string
	RanAt     time.Time
}

// OK reports whether the stored invocation succeeded.
func (r BatchResult) OK() bool {
	return r.Err == ""
}

// ResultStore keeps topics and batch results in a SQLite database.
type ResultStore struct {
	db *sql.DB
}

func NewResultStore(dataDir string) (*ResultStore, error) {
	dbPath := filepath.Join(dataDir, "results.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &ResultStore{db: db}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (rs *ResultStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS topics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL UNIQUE,
		active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		topic TEXT NOT NULL,
		session_id TEXT NOT NULL,
		response TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		ran_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_results_topic ON results(topic);
	CREATE INDEX IF NOT EXISTS idx_results_ran_at ON results(ran_at);
	`

	_, err := rs.db.Exec(schema)
	return err
}

// AddTopic registers a new batch topic. Adding an existing topic reactivates
// it instead of duplicating it.
func (rs *ResultStore) AddTopic(text string) (Topic, error) {
	if text == "" {
		return Topic{}, fmt.Errorf("topic text is required")
	}

	query := `
	INSERT INTO topics (text, active, created_at) VALUES (?, 1, ?)
	ON CONFLICT(text) DO UPDATE SET active = 1
	`
	if _, err := rs.db.Exec(query, text, time.Now()); err != nil {
		return Topic{}, fmt.Errorf("failed to add topic: %w", err)
	}

	var t Topic
	var active int
	err := rs.db.QueryRow(`SELECT id, text, active, created_at FROM topics WHERE text = ?`, text).
		Scan(&t.ID, &t.Text, &active, &t.CreatedAt)
	if err != nil {
		return Topic{}, fmt.Errorf("failed to load topic: %w", err)
	}
	t.Active = active != 0
	return t, nil
}

// DeactivateTopic hides a topic from batch runs without losing its history.
func (rs *ResultStore) DeactivateTopic(id int64) error {
	result, err := rs.db.Exec(`UPDATE topics SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate topic: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("topic %d not found", id)
	}
	return nil
}

// ListTopics returns topics in creation order. With activeOnly set, retired
// topics are skipped.
func (rs *ResultStore) ListTopics(activeOnly bool) ([]Topic, error) {
	query := `SELECT id, text, active, created_at FROM topics ORDER BY id`
	if activeOnly {
		query = `SELECT id, text, active, created_at FROM topics WHERE active = 1 ORDER BY id`
	}

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []Topic
	for rows.Next() {
		var t Topic
		var active int
		if err := rows.Scan(&t.ID, &t.Text, &active, &t.CreatedAt); err != nil {
			continue
		}
		t.Active = active != 0
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// RecordResult persists one batch outcome. Implements batch.Recorder.
func (rs *ResultStore) RecordResult(ctx context.Context, res batch.Result) error {
	query := `
	INSERT INTO results (topic, session_id, response, duration_ms, error, ran_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := rs.db.ExecContext(ctx, query,
		res.Topic,
		res.SessionID,
		string(res.Response),
		res.Duration.Milliseconds(),
		res.Err,
		res.RanAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}
	return nil
}

// ListResults returns stored results newest first, optionally filtered to one
// topic. A limit of 0 means no limit.
func (rs *ResultStore) ListResults(topic string, limit int) ([]BatchResult, error) {
	query := `
	SELECT id, topic, session_id, response, duration_ms, error, ran_at
	FROM results
	`
	args := []any{}
	if topic != "" {
		query += ` WHERE topic = ?`
		args = append(args, topic)
	}
	query += ` ORDER BY ran_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := rs.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []BatchResult
	for rows.Next() {
		var r BatchResult
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.Topic, &r.SessionID, &r.Response, &durationMS, &r.Err, &r.RanAt); err != nil {
			continue
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, r)
	}
	return results, rows.Err()
}

func (rs *ResultStore) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
