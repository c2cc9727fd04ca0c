// Package state keeps a local registry of lifecycle actions applied to
// the stack, stored in SQLite under the tool's data directory.
package state

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Stack tracks the last known desired state of the topology.
type Stack struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;not null;size:64"`
	WebImage  string `gorm:"size:255"`
	Status    string `gorm:"size:32"` // running, stopped, destroyed
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Event records one lifecycle action for auditing.
type Event struct {
	ID        uint   `gorm:"primaryKey"`
	Action    string `gorm:"not null;size:32"` // setup, start, stop, restart, reset
	Detail    string `gorm:"size:512"`
	CreatedAt time.Time
}

// Store wraps the registry database.
type Store struct {
	db *gorm.DB
}

// Open initializes the SQLite registry and runs auto-migration.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}

	// WAL mode for concurrent reads while a lifecycle verb is writing.
	sqlDB, _ := db.DB()
	sqlDB.Exec("PRAGMA journal_mode=WAL")

	if err := db.AutoMigrate(&Stack{}, &Event{}); err != nil {
		return nil, fmt.Errorf("migrate state db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RecordEvent appends a lifecycle event.
func (s *Store) RecordEvent(action, detail string) error {
	return s.db.Create(&Event{Action: action, Detail: detail}).Error
}

// SetStackStatus upserts the stack record with its current status.
func (s *Store) SetStackStatus(name, webImage, status string) error {
	var stack Stack
	err := s.db.Where("name = ?", name).First(&stack).Error
	if err == gorm.ErrRecordNotFound {
		return s.db.Create(&Stack{Name: name, WebImage: webImage, Status: status}).Error
	}
	if err != nil {
		return err
	}
	stack.WebImage = webImage
	stack.Status = status
	return s.db.Save(&stack).Error
}

// CurrentStack returns the stack record, or nil when nothing was deployed.
func (s *Store) CurrentStack(name string) (*Stack, error) {
	var stack Stack
	err := s.db.Where("name = ?", name).First(&stack).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stack, nil
}

// RecentEvents returns the most recent n events, newest first.
func (s *Store) RecentEvents(n int) ([]Event, error) {
	var events []Event
	err := s.db.Order("id DESC").Limit(n).Find(&events).Error
	return events, err
}
