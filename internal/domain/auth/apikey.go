// Package auth models the opaque caller identity supplied by the
// authentication layer. Token issuance and refresh live outside this service;
// the ledger only validates presented API keys and tags requests with the
// resulting identity.
package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrUnknownKey is returned when no active key matches the presented hash.
var ErrUnknownKey = errors.New("unknown api key")

// Caller is the identity attached to an authenticated request.
type Caller struct {
	ID      string
	KeyHash string
	Name    string
}

// Repository provides lookup of API keys by their HMAC-SHA256 hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*Caller, error)
}
