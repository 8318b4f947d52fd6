package db

import (
	"context"
	"fmt"

	"foodshare/internal/config"

	"go.uber.org/zap"
)

// Open constructs the store for cfg.Driver without checking connectivity.
func Open(ctx context.Context, cfg config.DBConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		m, err := NewMongo(ctx, cfg.URI(), cfg.Name)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.DriverPostgres:
		p, err := NewPostgres(cfg.URI())
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.DriverMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("db.Open: unknown driver %q", cfg.Driver)
}

// InitDB opens the configured store and pings it. Failures are logged and
// never stop startup: a store that cannot be built is replaced by one that
// fails every call, and a store that does not answer the ping is returned
// as is so later requests can still reach it.
func InitDB(ctx context.Context, cfg config.DBConfig, logger *zap.Logger) Store {
	log := logger.With(zap.String("driver", cfg.Driver), zap.String("database", cfg.Name))

	connectCtx, cancel := ctx, context.CancelFunc(func() {})
	if cfg.ConnectTimeout > 0 {
		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
	}
	defer cancel()

	store, err := Open(connectCtx, cfg)
	if err != nil {
		log.Error("failed to open document store", zap.Error(err))
		return Unavailable(err)
	}

	if err := store.Ping(connectCtx); err != nil {
		log.Error("document store is not reachable", zap.Error(err))
		return store
	}

	log.Info("connected to document store")
	return store
}
