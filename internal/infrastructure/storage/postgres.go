// internal/infrastructure/storage/postgres.go
package storage

import (
	"context"
	"errors"
	"fmt"

	pgdb "github.com/your-org/storefront-client/internal/infrastructure/database/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresStore keeps client state in the client_state table
type PostgresStore struct {
	db        *gorm.DB
	namespace string
}

// NewPostgresStore creates a Postgres-backed store
func NewPostgresStore(db *gorm.DB, namespace string) *PostgresStore {
	return &PostgresStore{
		db:        db,
		namespace: namespace,
	}
}

// Get retrieves a value by key
func (p *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var row pgdb.ClientState
	err := p.db.WithContext(ctx).
		Where("namespace = ? AND state_key = ?", p.namespace, key).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return row.Value, nil
}

// Set upserts a value
func (p *PostgresStore) Set(ctx context.Context, key, value string) error {
	row := pgdb.ClientState{
		Namespace: p.namespace,
		Key:       key,
		Value:     value,
	}

	err := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "state_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Remove deletes keys
func (p *PostgresStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	err := p.db.WithContext(ctx).
		Where("namespace = ? AND state_key IN ?", p.namespace, keys).
		Delete(&pgdb.ClientState{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

// Ping checks the database connection
func (p *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
