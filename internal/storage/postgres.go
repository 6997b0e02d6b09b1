package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore — durable store поверх PostgreSQL.
// Русский комментарий: Тот же kv-контракт, что и у sqlite-бэкенда. Полезен,
// когда бот деплоится рядом с существующим Postgres и файловая база неудобна.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres подключается к базе и создаёт таблицу moderation_kv.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS moderation_kv (
			key   TEXT PRIMARY KEY,
			value BYTEA NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create moderation_kv table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM moderation_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Put(key string, value []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO moderation_kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Flush — no-op: у Postgres commit уже durable.
func (s *PostgresStore) Flush() error {
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
