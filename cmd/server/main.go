package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/config"
	"github.com/iliyamo/hostel-management/internal/database"
	"github.com/iliyamo/hostel-management/internal/handler"
	"github.com/iliyamo/hostel-management/internal/logger"
	"github.com/iliyamo/hostel-management/internal/middleware"
	"github.com/iliyamo/hostel-management/internal/queue"
	"github.com/iliyamo/hostel-management/internal/repository"
	"github.com/iliyamo/hostel-management/internal/router"
	"github.com/iliyamo/hostel-management/internal/service"
	"github.com/iliyamo/hostel-management/internal/store"
	"github.com/iliyamo/hostel-management/internal/store/memory"
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat, "hostel-api")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, db, err := openStore(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	opts := []service.Option{service.WithLogger(zl)}
	if ev := config.LoadEventsConfig(); ev.Enabled {
		pub := queue.NewPublisher(ev.URL, ev.Queue, ev.Buffer, zl.Named("events"))
		defer func() { _ = pub.Close() }()
		opts = append(opts, service.WithPublisher(pub))
		zl.Info("event publishing enabled", zap.String("queue", ev.Queue))
	}
	svc := service.New(st, opts...)

	var extras router.Extras
	if rdb := config.NewRedisClient(ctx); rdb != nil {
		defer rdb.Close()
		extras.RateLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, zl)
		extras.Cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb, zl)
	} else {
		zl.Warn("redis unavailable; rate limiting and caching disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORS())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			zl.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID))
			return nil
		},
	}))

	var pinger handler.Pinger
	if db != nil {
		pinger = db
	}
	router.Register(e, handler.NewHandler(svc, zl), pinger, cfg.JWTSecret, extras)

	go func() {
		addr := ":" + cfg.Port
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}

// openStore returns the configured record store.  The *sql.DB is nil for
// the memory driver.
func openStore(ctx context.Context, cfg config.Config, zl *zap.Logger) (store.Store, *sql.DB, error) {
	if cfg.StoreDriver == config.StoreMemory {
		m := memory.New()
		m.SeedDemo()
		zl.Warn("using in-memory store with demo data; nothing is persisted")
		return m, nil, nil
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		zl.Info("schema migrated")
	}
	return repository.NewStore(db), db, nil
}
