// Command seed-db applies the schema and loads the product catalog, customer
// registry, and a default API key into PostgreSQL. Files default to the
// embedded fixtures shipped with the binary.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/xenking/sales-ledger/db"
	"github.com/xenking/sales-ledger/internal/handler"
	"github.com/xenking/sales-ledger/internal/postgres"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type productJSON struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type customerJSON struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func main() {
	var (
		databaseURL   string
		productsFile  string
		customersFile string
		apiKey        string
		pepper        string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "", "path to products JSON file (default: embedded fixtures)")
	flag.StringVar(&customersFile, "customers-file", "", "path to customers JSON file (default: embedded fixtures)")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or LEDGER_SEED_API_KEY env)")
	flag.StringVar(&pepper, "auth-pepper", "", "HMAC pepper for API key hashing (or LEDGER_AUTH_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("LEDGER_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or LEDGER_SEED_API_KEY")
		os.Exit(1)
	}
	if pepper == "" {
		pepper = os.Getenv("LEDGER_AUTH_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, customersFile, apiKey, pepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, customersFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedCustomers(ctx, pool, customersFile); err != nil {
		return errors.Wrap(err, "seed customers")
	}

	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

// readFixture loads path when given, otherwise falls back to the embedded
// fixture.
func readFixture(path string, embedded []byte) ([]byte, error) {
	if path == "" {
		return embedded, nil
	}
	return os.ReadFile(path)
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	data, err := readFixture(productsFile, db.SeedProducts)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		query, args, err := psql.Insert("products").
			Columns("id", "name", "price", "stock").
			Values(p.ID, p.Name, p.Price, p.Stock).
			Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price, stock = EXCLUDED.stock").
			ToSql()
		if err != nil {
			return errors.Wrap(err, "build product upsert")
		}
		if _, err := pool.Exec(ctx, query, args...); err != nil {
			return errors.Wrapf(err, "upsert product %d", p.ID)
		}

		slog.Info("upserted product", slog.Int64("id", p.ID), slog.String("name", p.Name))
	}

	// Keep generated ids ahead of explicitly seeded ones.
	if _, err := pool.Exec(ctx,
		"SELECT setval('products_id_seq', (SELECT COALESCE(MAX(id), 1) FROM products))"); err != nil {
		return errors.Wrap(err, "advance products sequence")
	}

	return nil
}

func seedCustomers(ctx context.Context, pool *pgxpool.Pool, customersFile string) error {
	data, err := readFixture(customersFile, db.SeedCustomers)
	if err != nil {
		return errors.Wrap(err, "read customers file")
	}

	var customers []customerJSON
	if err := json.Unmarshal(data, &customers); err != nil {
		return errors.Wrap(err, "parse customers JSON")
	}

	slog.Info("upserting customers", slog.Int("count", len(customers)))

	for _, c := range customers {
		query, args, err := psql.Insert("customers").
			Columns("id", "name", "email", "phone").
			Values(c.ID, c.Name, c.Email, c.Phone).
			Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone").
			ToSql()
		if err != nil {
			return errors.Wrap(err, "build customer upsert")
		}
		if _, err := pool.Exec(ctx, query, args...); err != nil {
			return errors.Wrapf(err, "upsert customer %d", c.ID)
		}

		slog.Info("upserted customer", slog.Int64("id", c.ID), slog.String("name", c.Name))
	}

	if _, err := pool.Exec(ctx,
		"SELECT setval('customers_id_seq', (SELECT COALESCE(MAX(id), 1) FROM customers))"); err != nil {
		return errors.Wrap(err, "advance customers sequence")
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding default API key")

	keyHash := handler.HashAPIKey(apiKey, []byte(pepper))

	query, args, err := psql.Insert("api_keys").
		Columns("id", "key_hash", "name", "active").
		Values("default", keyHash, "Default key", true).
		Suffix("ON CONFLICT (id) DO UPDATE SET key_hash = EXCLUDED.key_hash, active = TRUE").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build api key upsert")
	}
	if _, err := pool.Exec(ctx, query, args...); err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("id", "default"))

	return nil
}
