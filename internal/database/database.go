package database

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"karaoke/internal/domain"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	log.Println("Using SQLite for local development:", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate creates the schema for every entity the service persists.
// Production deployments should use proper migrations; AutoMigrate keeps
// local development and tests simple.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Table{},
		&domain.Guest{},
		&domain.BannedNick{},
		&domain.Song{},
		&domain.Product{},
		&domain.Tab{},
		&domain.ConsumptionLine{},
		&domain.Payment{},
	); err != nil {
		return err
	}

	// Partial unique index backing the table-scoped duplicate-track rule.
	// Two concurrent admits for the same (table, track) race past the
	// application check; the second insert fails here instead.
	return db.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_no_duplicate_track
ON songs (table_id, track_id)
WHERE status IN ('pending', 'pending_lazy', 'approved', 'playing')
`).Error
}
