// Package storage provides SQLite persistence for profiles.
//
// Information Hiding:
// - SQLite connection management hidden behind the Store type
// - Schema and migration details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling
//
// Each profile owns a conversation history and a set of remembered facts.
// Facts are capped per profile: when the cap is exceeded the oldest facts
// are dropped first.

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/voxahq/voxa/model"
)

// FactCap is the maximum number of remembered facts per profile.
const FactCap = 50

// Store persists profiles, conversation history, and facts in SQLite.
type Store struct {
	db      *sql.DB
	factCap int
}

// Open opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &Store{db: db, factCap: FactCap}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// OpenInMemory creates an in-memory database (useful for testing).
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	store := &Store{db: db, factCap: FactCap}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// WithFactCap overrides the per-profile fact cap.
func (s *Store) WithFactCap(cap int) *Store {
	s.factCap = cap
	return s
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS profiles (
			name TEXT PRIMARY KEY,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			profile TEXT NOT NULL,
			message_index INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			FOREIGN KEY (profile) REFERENCES profiles(name) ON DELETE CASCADE,
			UNIQUE(profile, message_index)
		);

		CREATE INDEX IF NOT EXISTS idx_messages_profile
		ON messages(profile, message_index);

		CREATE TABLE IF NOT EXISTS facts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			profile TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (profile) REFERENCES profiles(name) ON DELETE CASCADE,
			UNIQUE(profile, content)
		);

		CREATE INDEX IF NOT EXISTS idx_facts_profile
		ON facts(profile, id);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// EnsureProfile creates the profile if it does not exist.
func (s *Store) EnsureProfile(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO profiles (name) VALUES (?)",
		name,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure profile: %w", err)
	}
	return nil
}

// Profiles returns all profile names in creation order.
func (s *Store) Profiles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM profiles ORDER BY created_at, name")
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteProfile removes a profile along with its history and facts.
func (s *Store) DeleteProfile(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		"DELETE FROM messages WHERE profile = ?",
		"DELETE FROM facts WHERE profile = ?",
		"DELETE FROM profiles WHERE name = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, name); err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveHistory saves the conversation history for a profile, replacing any
// previous history.
func (s *Store) SaveHistory(ctx context.Context, profile string, history []model.Message) error {
	if err := s.EnsureProfile(ctx, profile); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// defer tx.Rollback() is safe even after Commit() - it becomes a no-op
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, "DELETE FROM messages WHERE profile = ?", profile)
	if err != nil {
		return fmt.Errorf("failed to clear old messages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO messages (profile, message_index, role, content) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for i, msg := range history {
		_, err = stmt.ExecContext(ctx, profile, i, msg.Role.String(), msg.Content)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE profiles SET updated_at = datetime('now') WHERE name = ?",
		profile)
	if err != nil {
		return fmt.Errorf("failed to update profile timestamp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LoadHistory loads the conversation history for a profile. A profile with
// no saved history yields an empty slice.
func (s *Store) LoadHistory(ctx context.Context, profile string) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT role, content FROM messages WHERE profile = ? ORDER BY message_index",
		profile)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var history []model.Message
	for rows.Next() {
		var roleStr, content string
		if err := rows.Scan(&roleStr, &content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		role, err := model.ParseRole(roleStr)
		if err != nil {
			return nil, fmt.Errorf("profile '%s' has corrupt history: %w", profile, err)
		}
		history = append(history, model.Message{Role: role, Content: content})
	}
	return history, rows.Err()
}

// AddFact remembers a fact for a profile. Duplicate facts are ignored;
// when the cap is exceeded, the oldest facts are dropped.
func (s *Store) AddFact(ctx context.Context, profile, content string) error {
	if content == "" {
		return fmt.Errorf("fact cannot be empty")
	}
	if err := s.EnsureProfile(ctx, profile); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO facts (profile, content) VALUES (?, ?)",
		profile, content)
	if err != nil {
		return fmt.Errorf("failed to insert fact: %w", err)
	}

	// Drop the oldest facts past the cap.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM facts WHERE profile = ? AND id NOT IN (
			SELECT id FROM facts WHERE profile = ? ORDER BY id DESC LIMIT ?
		)`, profile, profile, s.factCap)
	if err != nil {
		return fmt.Errorf("failed to enforce fact cap: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Facts returns a profile's remembered facts, oldest first.
func (s *Store) Facts(ctx context.Context, profile string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT content FROM facts WHERE profile = ? ORDER BY id", profile)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	var facts []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		facts = append(facts, content)
	}
	return facts, rows.Err()
}
