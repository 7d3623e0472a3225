package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/readtrail/readtrail/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	database := &Database{DB: db}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

// Migrate runs auto-migration for all entities and installs the indexes
// that GORM tags cannot express. Exposed so tests can migrate their own
// throwaway databases the same way the server does.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.ReadingJourney{},
		&entities.ReadingSession{},
		&entities.ReadingThought{},
		&entities.ActivityEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// At most one active journey per (book, user). Concurrent creators
	// race to this index; losers get a uniqueness error and must re-fetch
	// the winner.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_reading_journeys_single_active
		ON reading_journeys (book_id, user_id)
		WHERE status = 'active' AND deleted_at IS NULL`).Error
	if err != nil {
		return fmt.Errorf("failed to create active journey index: %w", err)
	}

	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := d.DB.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := d.DB.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
