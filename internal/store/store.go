package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ginxFromYt/ARDUINO-API/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	// DB exposes the underlying connection for boundary glue that has no
	// core semantics of its own (subscriptions, notification worker).
	DB() *gorm.DB

	// Command queue / dispatch protocol.
	SubmitCommand(ctx context.Context, userID, lockID int64, kind string) (model.Command, error)
	NextPendingCommand(ctx context.Context, lockID int64) (model.Command, error)
	AcknowledgeCommand(ctx context.Context, commandID int64) error
	UpdateLockStatus(ctx context.Context, lockID int64, update StatusUpdate) (model.DoorLock, error)
	GetLock(ctx context.Context, lockID int64) (model.DoorLock, error)
	ValidateRfid(ctx context.Context, lockID int64, uid string) (bool, error)
	UserByToken(ctx context.Context, token string) (model.User, error)

	// Telemetry.
	InsertReading(ctx context.Context, reading *model.WaterQuality) error
	LatestReading(ctx context.Context, deviceID string) (model.WaterQuality, error)
	RecentReadings(ctx context.Context, deviceID string, since time.Time) ([]model.WaterQuality, error)
	CountReadings(ctx context.Context, deviceID string) (int64, error)
	AlertSummary(ctx context.Context, deviceID string, since time.Time) (map[string]int64, error)
	ListDeviceSummaries(ctx context.Context) ([]DeviceSummary, error)
	PruneReadingsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}
