package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresBackend stores documents as rows of the documents table
type PostgresBackend struct {
	db *sql.DB
}

// NewPostgresBackend wraps an open database; the schema is created by migrations
func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (b *PostgresBackend) Read(ctx context.Context, name string) ([]byte, error) {
	query := `SELECT body::text FROM documents WHERE name = $1`

	var body string
	err := b.db.QueryRowContext(ctx, query, name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to read document %s: %w", name, err)
	}

	return []byte(body), nil
}

func (b *PostgresBackend) Write(ctx context.Context, name string, data []byte) error {
	query := `
		INSERT INTO documents (name, body, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (name) DO UPDATE
		SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`

	if _, err := b.db.ExecContext(ctx, query, name, string(data)); err != nil {
		return fmt.Errorf("failed to write document %s: %w", name, err)
	}
	return nil
}

func (b *PostgresBackend) Close() error {
	return b.db.Close()
}
