// internal/infrastructure/storage/open.go
package storage

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-client/internal/config"
	"github.com/your-org/storefront-client/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-client/internal/infrastructure/database/redis"
)

// Open connects the backend selected by STORAGE_PROVIDER. The returned close
// function releases the underlying connection.
func Open(cfg *config.Config, log *logrus.Logger) (Store, func() error, error) {
	switch cfg.Storage.Provider {
	case "memory":
		log.Warn("Using in-memory storage, client state will not survive a restart")
		return NewMemoryStore(), func() error { return nil }, nil

	case "redis":
		client, err := redis.NewConnection(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(client.GetClient(), cfg.Storage.Namespace), client.Close, nil

	case "postgres":
		db, err := postgres.NewConnection(cfg, log)
		if err != nil {
			return nil, nil, err
		}

		migration := postgres.NewMigration(db.GetDB(), log)
		if err := migration.RunAutoMigrations(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("database migration failed: %w", err)
		}
		if err := migration.CreateIndexes(); err != nil {
			log.WithError(err).Warn("Index creation failed")
		}

		return NewPostgresStore(db.GetDB(), cfg.Storage.Namespace), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
	}
}
