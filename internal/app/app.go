// Package app wires the storefront together: persistent store, catalog,
// cart manager, HTTP surface, and lifecycle.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/dwarforca/storefront/internal/catalog"
	"github.com/dwarforca/storefront/internal/domain/cart"
	"github.com/dwarforca/storefront/internal/domain/product"
	"github.com/dwarforca/storefront/internal/domain/user"
	"github.com/dwarforca/storefront/internal/handler"
	"github.com/dwarforca/storefront/internal/storage/kv"
	"github.com/dwarforca/storefront/internal/storage/postgres"
	"github.com/dwarforca/storefront/pkg/health"
	"github.com/dwarforca/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Persistent store: PostgreSQL when configured, a local data file
	// otherwise.
	var (
		store           kv.Store
		catalogProvider catalog.Provider
	)
	if cfg.DatabaseURL != "" {
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

		store = postgres.NewKVStore(pool)
		catalogProvider = postgres.NewCatalogProvider(pool)
	} else {
		fileStore, recovered, err := kv.OpenFile(cfg.DataFile)
		if err != nil {
			return errors.Wrap(err, "open data file")
		}
		if recovered {
			lg.Warn("data file was unreadable, starting from an empty store",
				zap.String("path", cfg.DataFile))
		}
		store = fileStore
	}

	// An explicitly configured inventory source wins over the database.
	switch {
	case cfg.InventoryURL != "":
		catalogProvider = &catalog.HTTPProvider{URL: cfg.InventoryURL}
	case cfg.InventoryFile != "":
		catalogProvider = &catalog.FileProvider{Path: cfg.InventoryFile}
	}

	// Catalog retrieval finishes (or falls back) before the cart manager
	// exists, so mutations never race a loading catalog.
	snapshot := product.NewSnapshot(catalog.Fallback())
	if catalogProvider != nil {
		snapshot = catalog.Load(ctx, catalogProvider, lg)
	} else {
		lg.Info("no catalog source configured, serving fallback catalog")
	}

	var faqProvider catalog.FAQProvider
	switch {
	case cfg.FAQURL != "":
		faqProvider = &catalog.HTTPFAQProvider{URL: cfg.FAQURL}
	case cfg.FAQFile != "":
		faqProvider = &catalog.FileFAQProvider{Path: cfg.FAQFile}
	}
	faqs := catalog.LoadFAQs(ctx, faqProvider, lg)

	cartManager := cart.New(store, snapshot,
		cart.WithLogger(lg.Named("cart")),
		cart.WithNotifier(cart.LogNotifier{Logger: lg.Named("notify")}),
	)
	cartManager.Load(ctx)

	users := user.NewService(store)

	h := handler.NewHandler(cartManager, snapshot, users, faqs)
	mux := h.Routes()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)

	healthSvc.SetReady(true)

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
				AllowHeaders:     []string{"Content-Type"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront-api", m),
			httpmiddleware.LogRequests(),
		),
	}

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
