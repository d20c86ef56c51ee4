// Command consumer drains the hostel event queue into an append-only
// audit log.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/config"
	"github.com/iliyamo/hostel-management/internal/logger"
	"github.com/iliyamo/hostel-management/internal/queue"
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	ev := config.LoadEventsConfig()
	zl, err := logger.New(envOr("LOG_LEVEL", "info"), envOr("LOG_FORMAT", "json"), "hostel-events-consumer")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zl.Info("consuming events", zap.String("queue", ev.Queue), zap.String("log_dir", ev.LogDir))
	err = queue.StartEventConsumer(ctx, queue.ConsumerConfig{URL: ev.URL, Queue: ev.Queue, LogDir: ev.LogDir}, zl)
	if err != nil && ctx.Err() == nil {
		zl.Fatal("consumer stopped", zap.Error(err))
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
