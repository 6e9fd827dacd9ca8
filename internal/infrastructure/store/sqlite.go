package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/medilingo/backend/internal/domain"
)

// SettingsStore persists the single user-settings record in SQLite. The
// record is written wholesale on every change; there is one row, overwritten
// unconditionally.
type SettingsStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the settings database at path.
func Open(path string) (*SettingsStore, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			payload TEXT NOT NULL,
			updatedAt REAL NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create settings table: %w", err)
	}

	return &SettingsStore{db: db}, nil
}

// Close closes the database connection.
func (s *SettingsStore) Close() error {
	return s.db.Close()
}

// Read returns the stored settings record. A missing row or an unparseable
// payload yields the built-in defaults rather than an error; only a real
// database failure is reported.
func (s *SettingsStore) Read(ctx context.Context) (domain.UserSettings, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM settings WHERE id = 1`)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return domain.DefaultSettings(), nil
		}
		return domain.DefaultSettings(), fmt.Errorf("read settings: %w", err)
	}

	var settings domain.UserSettings
	if err := json.Unmarshal([]byte(payload), &settings); err != nil {
		log.Printf("[STORE] Stored settings unparseable, falling back to defaults: %v", err)
		return domain.DefaultSettings(), nil
	}

	return settings, nil
}

// Write overwrites the stored settings record unconditionally.
func (s *SettingsStore) Write(ctx context.Context, settings domain.UserSettings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (id, payload, updatedAt) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updatedAt = excluded.updatedAt
	`, string(payload), float64(time.Now().UnixMilli())/1000.0)
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}
