package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iamvkosarev/ai-mail-assistant/internal/model"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`

// SettingsStorage keeps settings in a local SQLite file.
type SettingsStorage struct {
	db *sql.DB
}

// Open opens or creates the database at dbPath. ":memory:" gives a throwaway database.
func Open(ctx context.Context, dbPath string) (*SettingsStorage, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("empty database path")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)
	_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout=5000;")
	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create settings table: %w", err)
	}
	return &SettingsStorage{db: db}, nil
}

func (s *SettingsStorage) Close() error {
	return s.db.Close()
}

func (s *SettingsStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SettingsStorage) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(value),
	)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

func (s *SettingsStorage) GetAll(ctx context.Context) (map[string][]byte, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string][]byte)
	for rows.Next() {
		var key, value string
		if err = rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		values[key] = []byte(value)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return values, nil
}

func (s *SettingsStorage) ReplaceAll(ctx context.Context, values map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM settings`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	for key, value := range values {
		if _, err = tx.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)`, key, string(value)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}
