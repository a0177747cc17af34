package memstore

import (
	"context"
	"fmt"

	"github.com/xenking/sales-ledger/internal/domain/auth"
)

// APIKeys is a fixed in-memory API key repository, keyed by hash. Used in
// memory mode where keys are provisioned from configuration at startup.
type APIKeys struct {
	byHash map[string]auth.Caller
}

// NewAPIKeys builds a repository from pre-hashed keys. Callers are named
// key-1, key-2, ... in input order.
func NewAPIKeys(hashes ...string) *APIKeys {
	byHash := make(map[string]auth.Caller, len(hashes))
	for i, h := range hashes {
		name := fmt.Sprintf("key-%d", i+1)
		byHash[h] = auth.Caller{ID: name, KeyHash: h, Name: name}
	}
	return &APIKeys{byHash: byHash}
}

// FindByHash implements auth.Repository.
func (k *APIKeys) FindByHash(_ context.Context, hash string) (*auth.Caller, error) {
	c, ok := k.byHash[hash]
	if !ok {
		return nil, auth.ErrUnknownKey
	}
	return &c, nil
}
