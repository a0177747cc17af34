// Package app wires configuration, storage, domain services, HTTP transport,
// and background jobs into a running ledger server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/xenking/sales-ledger/db"
	"github.com/xenking/sales-ledger/internal/domain/auth"
	"github.com/xenking/sales-ledger/internal/domain/customer"
	"github.com/xenking/sales-ledger/internal/domain/product"
	"github.com/xenking/sales-ledger/internal/domain/sale"
	"github.com/xenking/sales-ledger/internal/handler"
	"github.com/xenking/sales-ledger/internal/ledger"
	"github.com/xenking/sales-ledger/internal/memstore"
	"github.com/xenking/sales-ledger/internal/postgres"
	"github.com/xenking/sales-ledger/internal/scheduler"
	"github.com/xenking/sales-ledger/pkg/health"
	"github.com/xenking/sales-ledger/pkg/httpmiddleware"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Metrics, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage))

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Storage backends: postgres for deployments, memory for local runs and
	// demos. Both satisfy the same domain contracts.
	var (
		store     sale.Store
		catalog   product.Catalog
		customers customer.Registry
		apikeys   auth.Repository
	)
	switch cfg.Storage {
	case StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})

		store = postgres.NewSaleStore(pool)
		catalog = postgres.NewProductCatalog(pool)
		customers = postgres.NewCustomerRegistry(pool)
		apikeys = postgres.NewAPIKeyRepository(pool)

	case StorageMemory:
		products, seedCustomers, err := loadSeedFixtures()
		if err != nil {
			return errors.Wrap(err, "load seed fixtures")
		}
		store = memstore.NewSaleStore()
		catalog = memstore.NewCatalog(products...)
		customers = memstore.NewRegistry(seedCustomers...)

		hashes := make([]string, 0, len(cfg.Auth.Keys))
		for _, key := range cfg.Auth.Keys {
			hashes = append(hashes, handler.HashAPIKey(key, []byte(cfg.Auth.Pepper)))
		}
		apikeys = memstore.NewAPIKeys(hashes...)

	default:
		return errors.Errorf("unknown storage backend %q", cfg.Storage)
	}

	svc := ledger.NewService(store, catalog, customers, lg.Named("ledger"))

	// Scheduled report snapshots.
	if cfg.Reports.Enabled {
		snapshots := scheduler.NewSnapshotService(svc, cfg.Reports.Schedule, cfg.Reports.Dir, lg.Named("reports"))
		if err := snapshots.Start(ctx); err != nil {
			return errors.Wrap(err, "start report scheduler")
		}
	}

	// HTTP handlers.
	metrics, err := handler.NewMetrics(m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create metrics")
	}
	h := handler.NewHandler(svc, catalog, customers, metrics)

	apiMiddlewares := []httpmiddleware.Middleware{}
	if !cfg.Auth.Disabled {
		apiMiddlewares = append(apiMiddlewares, handler.APIKeyAuth(apikeys, []byte(cfg.Auth.Pepper)))
	}
	api := otelhttp.NewHandler(
		httpmiddleware.Wrap(h.Router(), apiMiddlewares...),
		"sales-ledger-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", api)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", handler.APIKeyHeader},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	healthSvc.SetReady(true)

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// loadSeedFixtures parses the embedded catalog and registry fixtures used by
// memory mode.
func loadSeedFixtures() ([]product.Product, []customer.Customer, error) {
	var products []struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Price string `json:"price"`
		Stock int    `json:"stock"`
	}
	if err := json.Unmarshal(db.SeedProducts, &products); err != nil {
		return nil, nil, errors.Wrap(err, "parse product fixtures")
	}
	out := make([]product.Product, 0, len(products))
	for _, p := range products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "product %d", p.ID)
		}
		out = append(out, product.Product{ID: p.ID, Name: p.Name, Price: price, Stock: p.Stock})
	}

	var fixtures []customer.Customer
	if err := json.Unmarshal(db.SeedCustomers, &fixtures); err != nil {
		return nil, nil, errors.Wrap(err, "parse customer fixtures")
	}
	return out, fixtures, nil
}
