// Package eventlog records session events for offline analysis: who asked
// for what, which routes were chosen, where the robot went. It is a pure
// observer — control decisions never read it, and a broken log never
// blocks a move.
package eventlog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hrilab/go-duo/internal/log"
)

// Event is one appended log row, with a snapshot of the selector and
// location at the time it happened.
type Event struct {
	ID       string    `gorm:"primaryKey" json:"id"`
	At       time.Time `gorm:"index" json:"at"`
	Actor    string    `json:"actor"`
	Action   string    `json:"action"`
	Value    string    `json:"value"`
	Selector string    `json:"selector"`
	Location string    `json:"location"`
}

// Log is the append-only event store. A nil *Log is valid and drops
// everything, so callers never need to branch on whether logging is
// enabled.
type Log struct {
	db *gorm.DB
}

// Open opens (or creates) the sqlite event database at path.
func Open(path string) (*Log, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	if err := db.AutoMigrate(&Event{}); err != nil {
		return nil, fmt.Errorf("migrate event log: %w", err)
	}
	return &Log{db: db}, nil
}

// Append records an event asynchronously. Safe on a nil receiver.
func (l *Log) Append(actor, action, value, selector, location string) {
	if l == nil {
		return
	}
	event := Event{
		ID:       uuid.NewString(),
		At:       time.Now(),
		Actor:    actor,
		Action:   action,
		Value:    value,
		Selector: selector,
		Location: location,
	}
	go func() {
		if err := l.db.Create(&event).Error; err != nil {
			log.Warn("event log append failed", "action", action, "error", err)
		}
	}()
}

// Recent returns the newest events, newest first.
func (l *Log) Recent(limit int) ([]Event, error) {
	if l == nil {
		return nil, nil
	}
	var events []Event
	err := l.db.Order("at desc").Limit(limit).Find(&events).Error
	return events, err
}

// Close closes the underlying database.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	db, err := l.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
