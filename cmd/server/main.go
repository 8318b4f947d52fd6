package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodshare/internal/api"
	"foodshare/internal/auth"
	"foodshare/internal/config"
	"foodshare/internal/db"
	"foodshare/internal/logger"
	"foodshare/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	lg, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	lg.Info("starting food sharing server",
		zap.String("env", cfg.Env),
		zap.String("driver", cfg.DB.Driver),
		zap.String("db_host", cfg.DB.Host),
		zap.String("db_name", cfg.DB.Name),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := db.InitDB(ctx, cfg.DB, lg)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	server := api.NewServer(
		store,
		auth.NewTokenService(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL),
		metrics.NewCollector(reg),
		lg,
		api.Options{
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			CookieSecure:   cfg.Auth.CookieSecure,
			Gatherer:       reg,
		},
	)

	exitCode := 0
	if err := server.Start(ctx, cfg.Addr(), cfg.HTTP.ShutdownTimeout); err != nil {
		lg.Error("server stopped with error", zap.Error(err))
		exitCode = 1
	}

	lg.Info("closing document store connection")
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := store.Close(closeCtx); err != nil {
		lg.Error("failed to close document store", zap.Error(err))
	}
	cancel()

	if exitCode != 0 {
		_ = lg.Sync()
		os.Exit(exitCode)
	}
}
