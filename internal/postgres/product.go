package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/sales-ledger/internal/domain/product"
)

var _ product.Catalog = (*ProductCatalog)(nil)

// ProductCatalog implements product.Catalog backed by PostgreSQL.
type ProductCatalog struct {
	pool *pgxpool.Pool
}

// NewProductCatalog returns a ProductCatalog that uses the given pool.
func NewProductCatalog(pool *pgxpool.Pool) *ProductCatalog {
	return &ProductCatalog{pool: pool}
}

func selectProducts() sq.SelectBuilder {
	return psql.Select("id", "name", "price", "stock").From("products")
}

// List returns all products ordered by id.
func (c *ProductCatalog) List(ctx context.Context) ([]product.Product, error) {
	query, args, err := selectProducts().OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build list products")
	}
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product, or product.ErrNotFound.
func (c *ProductCatalog) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	query, args, err := selectProducts().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build get product")
	}
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %d", id)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %d", id)
	}
	return &p, nil
}

// GetByIDs returns the products that exist among ids.
func (c *ProductCatalog) GetByIDs(ctx context.Context, ids []int64) ([]product.Product, error) {
	query, args, err := selectProducts().Where(sq.Eq{"id": ids}).OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build get products")
	}
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "get products by ids")
	}
	return pgx.CollectRows(rows, scanProduct)
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	return p, err
}
