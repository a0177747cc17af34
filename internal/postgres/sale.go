package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/sales-ledger/internal/domain/sale"
)

var _ sale.Store = (*SaleStore)(nil)

// psql builds statements with PostgreSQL $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// SaleStore implements sale.Store backed by PostgreSQL. Id assignment comes
// from the sales BIGSERIAL sequence (monotonic, never reused), timestamps
// from the database clock, and every creation commits the sale row and its
// items in one transaction so readers never observe a half-written sale.
type SaleStore struct {
	pool *pgxpool.Pool
}

// NewSaleStore returns a SaleStore that uses the given pool.
func NewSaleStore(pool *pgxpool.Pool) *SaleStore {
	return &SaleStore{pool: pool}
}

// Create persists the draft as one transaction. The surrounding context is
// detached from cancellation: once a creation has started it runs to a
// terminal success or failure, never leaving a partially-applied sale.
func (s *SaleStore) Create(ctx context.Context, draft sale.Draft) (*sale.Sale, error) {
	ctx = context.WithoutCancel(ctx)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query, args, err := psql.Insert("sales").
		Columns("customer_id", "total_amount").
		Values(draft.CustomerID, draft.Total).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build insert sale")
	}

	created := &sale.Sale{
		CustomerID: draft.CustomerID,
		Items:      draft.Items,
		Total:      draft.Total,
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&created.ID, &created.CreatedAt); err != nil {
		return nil, errors.Wrap(err, "insert sale")
	}

	itemsInsert := psql.Insert("sale_items").
		Columns("sale_id", "product_id", "quantity", "unit_price")
	for _, item := range draft.Items {
		itemsInsert = itemsInsert.Values(created.ID, item.ProductID, item.Quantity, item.UnitPrice)
	}
	query, args, err = itemsInsert.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build insert items")
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, errors.Wrapf(err, "insert items for sale %d", created.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	created.CreatedAt = created.CreatedAt.UTC()
	return created, nil
}

// Delete removes a sale; its items go with it via ON DELETE CASCADE.
// Returns sale.ErrNotFound when no row matched.
func (s *SaleStore) Delete(ctx context.Context, id int64) error {
	ctx = context.WithoutCancel(ctx)

	query, args, err := psql.Delete("sales").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return errors.Wrap(err, "build delete sale")
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(err, "delete sale %d", id)
	}
	if tag.RowsAffected() == 0 {
		return sale.ErrNotFound
	}
	return nil
}

// Get returns the sale with the given id, or sale.ErrNotFound.
func (s *SaleStore) Get(ctx context.Context, id int64) (*sale.Sale, error) {
	sales, err := s.load(ctx, sq.Eq{"id": id})
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return nil, sale.ErrNotFound
	}
	return &sales[0], nil
}

// List returns all sales with their items, ordered by id ascending. The two
// reads run inside one repeatable-read transaction so the snapshot is
// consistent even while writers commit.
func (s *SaleStore) List(ctx context.Context) ([]sale.Sale, error) {
	return s.load(ctx, nil)
}

// load fetches sales matching pred (nil for all) plus their items.
func (s *SaleStore) load(ctx context.Context, pred any) ([]sale.Sale, error) {
	builder := psql.Select("id", "customer_id", "total_amount", "created_at").
		From("sales").
		OrderBy("id ASC")
	if pred != nil {
		builder = builder.Where(pred)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build select sales")
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, errors.Wrap(err, "begin read")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select sales")
	}
	sales, err := pgx.CollectRows(rows, scanSale)
	if err != nil {
		return nil, errors.Wrap(err, "scan sales")
	}
	if len(sales) == 0 {
		return sales, nil
	}

	index := make(map[int64]int, len(sales))
	ids := make([]int64, len(sales))
	for i := range sales {
		index[sales[i].ID] = i
		ids[i] = sales[i].ID
	}

	query, args, err = psql.Select("sale_id", "product_id", "quantity", "unit_price").
		From("sale_items").
		Where(sq.Eq{"sale_id": ids}).
		OrderBy("sale_id ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build select items")
	}
	rows, err = tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select items")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			saleID int64
			item   sale.Item
		)
		if err := rows.Scan(&saleID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, errors.Wrap(err, "scan item")
		}
		if i, ok := index[saleID]; ok {
			sales[i].Items = append(sales[i].Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate items")
	}
	return sales, nil
}

func scanSale(row pgx.CollectableRow) (sale.Sale, error) {
	var (
		s          sale.Sale
		customerID *int64
		total      decimal.Decimal
		createdAt  time.Time
	)
	if err := row.Scan(&s.ID, &customerID, &total, &createdAt); err != nil {
		return sale.Sale{}, err
	}
	s.CustomerID = customerID
	s.Total = total
	s.CreatedAt = createdAt.UTC()
	return s, nil
}
