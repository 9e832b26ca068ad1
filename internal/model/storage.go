package model

import "context"

// ConfigStore persists the whole config document. Put replaces the document
// in one write; concurrent writers race with last-write-wins semantics, an
// accepted limitation for single-tenant low-frequency load.
type ConfigStore interface {
	Get(ctx context.Context) (Document, error)
	Put(ctx context.Context, doc Document) error
}

// TokenManager issues and validates bearer tokens for the alert and admin
// endpoints.
type TokenManager interface {
	Generate(subject string) (string, error)
	Parse(tokenString string) (string, error)
}
