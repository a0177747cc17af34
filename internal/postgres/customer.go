package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/sales-ledger/internal/domain/customer"
)

var _ customer.Registry = (*CustomerRegistry)(nil)

// CustomerRegistry implements customer.Registry backed by PostgreSQL.
type CustomerRegistry struct {
	pool *pgxpool.Pool
}

// NewCustomerRegistry returns a CustomerRegistry that uses the given pool.
func NewCustomerRegistry(pool *pgxpool.Pool) *CustomerRegistry {
	return &CustomerRegistry{pool: pool}
}

func selectCustomers() sq.SelectBuilder {
	return psql.Select("id", "name", "email", "phone").From("customers")
}

// List returns all customers ordered by id.
func (r *CustomerRegistry) List(ctx context.Context) ([]customer.Customer, error) {
	query, args, err := selectCustomers().OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build list customers")
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list customers")
	}
	return pgx.CollectRows(rows, scanCustomer)
}

// GetByID returns a single customer, or customer.ErrNotFound.
func (r *CustomerRegistry) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	query, args, err := selectCustomers().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build get customer")
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "get customer %d", id)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get customer %d", id)
	}
	return &c, nil
}

// GetByIDs returns the customers that exist among ids.
func (r *CustomerRegistry) GetByIDs(ctx context.Context, ids []int64) ([]customer.Customer, error) {
	query, args, err := selectCustomers().Where(sq.Eq{"id": ids}).OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build get customers")
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "get customers by ids")
	}
	return pgx.CollectRows(rows, scanCustomer)
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone)
	return c, err
}
