package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/sales-ledger/internal/domain/auth"
)

var _ auth.Repository = (*APIKeyRepository)(nil)

// APIKeyRepository provides API key lookups backed by PostgreSQL.
type APIKeyRepository struct {
	pool *pgxpool.Pool
}

// NewAPIKeyRepository returns an APIKeyRepository that uses the given pool.
func NewAPIKeyRepository(pool *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{pool: pool}
}

// FindByHash looks up an active API key by its HMAC-SHA256 hash.
func (r *APIKeyRepository) FindByHash(ctx context.Context, hash string) (*auth.Caller, error) {
	query, args, err := psql.Select("id", "key_hash", "name").
		From("api_keys").
		Where(sq.Eq{"key_hash": hash, "active": true}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build find api key")
	}

	var caller auth.Caller
	err = r.pool.QueryRow(ctx, query, args...).Scan(&caller.ID, &caller.KeyHash, &caller.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUnknownKey
		}
		return nil, errors.Wrap(err, "find api key by hash")
	}
	return &caller, nil
}
