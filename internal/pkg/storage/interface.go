package storage

import (
	"context"
	"encoding/json"
	"time"
)

// StoredDocument is one persisted conversion: the compiled matchup document
// plus enough metadata to list and retrieve it.
type StoredDocument struct {
	ID         string          `json:"id"`
	Home       string          `json:"home"`
	Away       string          `json:"away"`
	SeasonYear int             `json:"season_year,omitempty"`
	Document   json.RawMessage `json:"document,omitempty"`
	Warnings   int             `json:"warnings"`
	CreatedAt  time.Time       `json:"created_at"`
}

// DocumentStorage persists compiled documents for later retrieval by the
// serving layer.
type DocumentStorage interface {
	SaveDocument(ctx context.Context, doc StoredDocument) error
	GetDocument(ctx context.Context, id string) (*StoredDocument, error)
	ListDocuments(ctx context.Context, limit int) ([]StoredDocument, error)
	Close() error
}
