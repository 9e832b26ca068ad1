package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/smokerelay/smokerelay/internal/model"
)

var _ model.ConfigStore = (*Store)(nil)

// querier is the subset of the pgx pool the store uses; tests substitute it.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store keeps the whole config document as a single JSONB row, preserving
// the whole-document replace semantics of the HTTP backend.
type Store struct {
	db querier
}

// NewStore creates a postgres-backed config store.
func NewStore(db *Connection) *Store {
	return &Store{
		db: db,
	}
}

// Get returns the stored document. A missing row means a fresh deployment
// and yields an empty document, not an error.
func (s *Store) Get(ctx context.Context) (model.Document, error) {
	var doc model.Document
	query := `SELECT doc FROM config_document WHERE id = 1`

	err := s.db.QueryRow(ctx, query).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.EmptyDocument(), nil
		}
		return model.Document{}, fmt.Errorf("%w: failed to get document: %w", model.ErrConfigUnavailable, err)
	}

	return doc, nil
}

// Put replaces the stored document.
func (s *Store) Put(ctx context.Context, doc model.Document) error {
	query := `INSERT INTO config_document (id, doc, updated_at)
			  VALUES (1, $1, $2)
			  ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`

	if _, err := s.db.Exec(ctx, query, doc, doc.UpdatedAt); err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}

	return nil
}
