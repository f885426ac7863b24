package sqlstore

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to a SQLite database. debug turns on GORM's SQL logging,
// written to stderr so stdout stays free for rendered results.
func Open(dsn string, debug bool) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn cannot be empty")
	}
	gormLogger := logger.Default.LogMode(logger.Silent)
	if debug {
		gormLogger = logger.New(log.New(os.Stderr, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Info,
		})
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// AutoMigrate creates the snapshot tables. Production schemas are owned by
// the procurement backend; this is for local and test databases.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&TenderModel{},
		&TenderItemModel{},
		&DeliveryModel{},
		&DeliveryItemModel{},
		&SerialNumberModel{},
	)
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
