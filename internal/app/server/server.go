package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"employeedir/internal/domain/audit"
	"employeedir/internal/domain/employee"
	"employeedir/internal/lib/logger/sl"
	"employeedir/internal/platform/cache"
	"employeedir/internal/platform/config"
	"employeedir/internal/platform/db"
	"employeedir/internal/platform/idempotency"
	"employeedir/internal/platform/metrics"
	"employeedir/internal/transport/http/api"
	audithandler "employeedir/internal/transport/http/handlers/audit"
	employeehandler "employeedir/internal/transport/http/handlers/employee"
	healthhandler "employeedir/internal/transport/http/handlers/health"
	"employeedir/internal/transport/http/middleware"
	"employeedir/web"
)

const rateLimitWindow = time.Minute

type App struct {
	Config   config.Config
	Log      *slog.Logger
	DB       *db.Pool
	Redis    *redis.Client
	Registry *prometheus.Registry
	Service  *employee.Service
	Router   http.Handler
}

// New connects the configured backends and assembles the router. Callers
// must Close the returned App.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	app := &App{Config: cfg, Log: log, Registry: prometheus.NewRegistry()}
	app.Registry.MustRegister(collectors.NewGoCollector())
	app.Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(app.Registry)

	var (
		store    employee.StoreAPI
		tx       employee.TransactionManager
		auditLog audit.Log
	)
	switch cfg.Storage {
	case config.StorageMemory:
		store = employee.NewMemStore()
		auditLog = audit.NewMemoryLog(log)
		log.Warn("using in-memory storage; data is lost on restart")
	default:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		app.DB = pool
		if cfg.RunMigrations {
			if err := db.Migrate(pool, cfg.MigrationsDir); err != nil {
				app.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		store = employee.NewStore(pool, collector)
		tx = db.NewTxManager(pool)
		auditLog = audit.New(pool)
	}

	var keys idempotency.Store = idempotency.NewMemoryStore()
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		app.Redis = client
		keys = idempotency.NewRedisStore(client, "")
	}

	app.Service = employee.NewService(store, tx, auditLog,
		employee.WithLogger(log),
		employee.WithMetrics(collector),
	)
	if cfg.RunSeed {
		inserted, err := app.Service.Seed(ctx)
		if err != nil {
			app.Close()
			return nil, err
		}
		log.Info("seed complete", slog.Int("inserted", inserted))
	}

	health := &healthhandler.Handler{}
	if app.DB != nil {
		health.Database = app.DB
	}
	if app.Redis != nil {
		health.Cache = healthhandler.PingFunc(func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		})
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recoverer(log))
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))

	router.Get("/healthz", health.HandleLive)
	router.Get("/readyz", health.HandleReady)
	if cfg.MetricsEnabled {
		router.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{Registry: app.Registry}))
	}

	router.Route("/api", func(r chi.Router) {
		if cfg.JWTSecret != "" {
			r.Use(middleware.Actor(cfg.JWTSecret))
		}
		r.Use(middleware.MutationRateLimit(cfg.RateLimitPerMinute, rateLimitWindow))
		r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
		r.Use(middleware.Idempotency(keys, cfg.IdempotencyTTL))

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			api.Fail(w, http.StatusNotFound, "not_found", "route not found", middleware.GetRequestID(r.Context()))
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			api.Fail(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", middleware.GetRequestID(r.Context()))
		})

		employeehandler.NewHandler(app.Service, log).RegisterRoutes(r)
		audithandler.NewHandler(auditLog).RegisterRoutes(r)
	})

	router.Handle("/*", spaHandler{files: frontendFS(cfg.FrontendDir), indexPath: "index.html"})

	app.Router = router
	return app, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn("redis close failed", sl.Err(err))
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("employee directory listening", slog.String("addr", a.Config.Addr), slog.String("storage", a.Config.Storage))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	a.Log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// frontendFS prefers an on-disk build when dir exists and falls back to the
// assets compiled into the binary.
func frontendFS(dir string) fs.FS {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir)
		}
	}
	return web.Assets()
}
