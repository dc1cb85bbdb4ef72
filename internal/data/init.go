// Package data is the optional match-history store. Finished sessions are
// archived to a local sqlite database for later inspection; nothing in the
// game ever reads them back at runtime, so a restarted server always starts
// fresh.
package data

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store wraps the history database handle.
type Store struct {
	db *gorm.DB
}

// Open initializes the sqlite database at path, creating it and migrating
// the schema as needed.
func Open(path string) (*Store, error) {
	// Only log errors; the store sits on the game's hot path when a session
	// finishes.
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening history database: %w", err)
	}

	if err := db.AutoMigrate(&Match{}, &MatchPlayer{}, &MatchRound{}); err != nil {
		return nil, fmt.Errorf("error auto migrating db: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	database, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("error while getting current connection: %w", err)
	}
	if err := database.Close(); err != nil {
		return fmt.Errorf("error while closing database connection: %w", err)
	}
	return nil
}
