package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/docgraph/internal/config"
	"github.com/persistorai/docgraph/internal/db"
	"github.com/persistorai/docgraph/internal/dbpool"
	"github.com/persistorai/docgraph/internal/domain"
	"github.com/persistorai/docgraph/internal/memstore"
	"github.com/persistorai/docgraph/internal/store"
)

// openStore builds the configured document store. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (domain.DocumentStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on exit")
		return memstore.New(log), func() {}, nil

	case config.DriverPostgres:
		pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), cfg.DBMaxConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := db.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		return store.New(store.Base{Pool: pool, Log: log}), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
