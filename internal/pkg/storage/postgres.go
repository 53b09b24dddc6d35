package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/stattrust/matchup-compiler/internal/pkg/config"
)

// Ensure PostgresDocumentStorage implements DocumentStorage
var _ DocumentStorage = (*PostgresDocumentStorage)(nil)

// PostgresDocumentStorage persists compiled documents in Postgres, one JSONB
// row per conversion.
type PostgresDocumentStorage struct {
	db *sql.DB
}

// NewPostgresDocumentStorage opens the connection, verifies it and creates
// the schema if needed.
func NewPostgresDocumentStorage(cfg *config.PostgresConfig) (*PostgresDocumentStorage, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresDocumentStorage{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL document storage initialized successfully")
	return s, nil
}

func (s *PostgresDocumentStorage) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS compiled_documents (
		id VARCHAR(64) PRIMARY KEY,
		home VARCHAR(16) NOT NULL,
		away VARCHAR(16) NOT NULL,
		season_year INT NOT NULL DEFAULT 0,
		document JSONB NOT NULL,
		warnings INT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_compiled_documents_matchup
		ON compiled_documents (home, away, season_year, created_at DESC);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *PostgresDocumentStorage) SaveDocument(ctx context.Context, doc StoredDocument) error {
	query := `
	INSERT INTO compiled_documents (id, home, away, season_year, document, warnings, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
		document = EXCLUDED.document,
		warnings = EXCLUDED.warnings
	`
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, query,
		doc.ID, doc.Home, doc.Away, doc.SeasonYear, []byte(doc.Document), doc.Warnings, createdAt)
	if err != nil {
		return fmt.Errorf("failed to save compiled document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *PostgresDocumentStorage) GetDocument(ctx context.Context, id string) (*StoredDocument, error) {
	query := `
	SELECT id, home, away, season_year, document, warnings, created_at
	FROM compiled_documents WHERE id = $1
	`
	var doc StoredDocument
	var raw []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.Home, &doc.Away, &doc.SeasonYear, &raw, &doc.Warnings, &doc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load compiled document %s: %w", id, err)
	}
	doc.Document = raw
	return &doc, nil
}

func (s *PostgresDocumentStorage) ListDocuments(ctx context.Context, limit int) ([]StoredDocument, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
	SELECT id, home, away, season_year, warnings, created_at
	FROM compiled_documents
	ORDER BY created_at DESC
	LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list compiled documents: %w", err)
	}
	defer rows.Close()

	var docs []StoredDocument
	for rows.Next() {
		var doc StoredDocument
		if err := rows.Scan(&doc.ID, &doc.Home, &doc.Away, &doc.SeasonYear, &doc.Warnings, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan compiled document row: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresDocumentStorage) Close() error {
	return s.db.Close()
}
