// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ClientState is one persisted key of the storefront client, scoped by namespace
type ClientState struct {
	Namespace string    `gorm:"primaryKey;size:100" json:"namespace"`
	Key       string    `gorm:"column:state_key;primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (ClientState) TableName() string {
	return "client_state"
}

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log *logrus.Logger) *Migration {
	return &Migration{
		db:  db,
		log: log,
	}
}

// RunAutoMigrations creates or updates the client state table
func (m *Migration) RunAutoMigrations() error {
	m.log.Debug("Running database auto-migrations")

	models := []interface{}{
		&ClientState{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Debug("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_client_state_updated_at ON client_state(updated_at DESC)",
	}

	failCount := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.log.WithError(err).Warn("Failed to create index")
			failCount++
		}
	}

	if failCount > 0 {
		return fmt.Errorf("%d of %d indexes failed", failCount, len(indexes))
	}
	return nil
}
