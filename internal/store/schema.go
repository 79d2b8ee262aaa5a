package store

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SchemaVersion is a monotonically increasing database schema generation.
// Generation 0 is an empty database; each Migration moves the database
// from exactly one generation to the next, so the chain below must stay in
// order and never skip a generation.
type SchemaVersion int

const currentSchemaVersion SchemaVersion = 1

// schemaMeta is the single-row bookkeeping table recording which
// SchemaVersion a database is currently at.
type schemaMeta struct {
	ID      uint `gorm:"primaryKey"`
	Version SchemaVersion
}

func (schemaMeta) TableName() string { return "schema_meta" }

// MigrationFunc applies one forward step of the schema chain. Migrations
// never run in reverse: there is no down-migration support, matching the
// forward-only guarantee in the data model.
type MigrationFunc func(tx *gorm.DB) error

// Migration is one step of the schema chain, moving the database from
// From to From+1.
type Migration struct {
	From SchemaVersion
	Name string
	Run  MigrationFunc
}

// migrations is the forward-only chain from an empty database up to
// currentSchemaVersion. Appending a new entry bumps currentSchemaVersion
// and is the only supported way to change the schema.
var migrations = []Migration{
	{
		From: 0,
		Name: "create base tables",
		Run: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&Torrent{},
				&SelectedTorrent{},
				&DuplicateTorrent{},
				&ErroredTorrent{},
				&Event{},
				&List{},
				&ListItem{},
				&ProcessConfig{},
			)
		},
	},
}

// SchemaManager drives the database from whatever generation it is
// currently at up to currentSchemaVersion, logging each step applied.
type SchemaManager struct {
	log *zap.Logger
}

func NewSchemaManager(log *zap.Logger) *SchemaManager {
	return &SchemaManager{log: log}
}

// Migrate brings db up to currentSchemaVersion inside one write
// transaction per migration step, recording the new version as it goes.
// It is idempotent: calling it again on an already-current database is a
// no-op.
func (m *SchemaManager) Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&schemaMeta{}); err != nil {
		return fmt.Errorf("migrate schema_meta: %w", err)
	}

	var meta schemaMeta
	if err := db.FirstOrCreate(&meta, schemaMeta{ID: 1, Version: 0}).Error; err != nil {
		return fmt.Errorf("load schema_meta: %w", err)
	}

	for _, mig := range migrations {
		if mig.From < meta.Version {
			continue
		}
		if mig.From > meta.Version {
			return fmt.Errorf("schema migration gap: have version %d, next migration starts at %d", meta.Version, mig.From)
		}
		m.log.Info("applying schema migration", zap.Int("from", int(mig.From)), zap.String("name", mig.Name))
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := mig.Run(tx); err != nil {
				return err
			}
			meta.Version = mig.From + 1
			return tx.Save(&meta).Error
		})
		if err != nil {
			return fmt.Errorf("migration %q (from %d): %w", mig.Name, mig.From, err)
		}
	}
	return nil
}
