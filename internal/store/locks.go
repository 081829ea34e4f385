package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ginxFromYt/ARDUINO-API/internal/model"
)

// SubmitCommand appends a command to a lock's queue and updates the lock's
// last_command pointer in one transaction. The lock must belong to userID.
// Status-query commands are transient: they update last_command but are
// never queued, so the returned Command has a zero ID.
func (s *gormStore) SubmitCommand(ctx context.Context, userID, lockID int64, kind string) (model.Command, error) {
	switch kind {
	case model.CommandLock, model.CommandUnlock, model.CommandStatus:
	default:
		return model.Command{}, ErrInvalidCommand
	}

	var created model.Command
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lock model.DoorLock
		if err := tx.First(&lock, lockID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load lock %d: %w", lockID, err)
		}
		if lock.UserID != userID {
			return ErrNotOwned
		}

		if kind == model.CommandStatus {
			created = model.Command{DoorLockID: lockID, Command: kind}
		} else {
			created = model.Command{DoorLockID: lockID, Command: kind, Executed: false}
			if err := tx.Create(&created).Error; err != nil {
				return fmt.Errorf("failed to create command for lock %d: %w", lockID, err)
			}
		}

		if err := tx.Model(&lock).Update("last_command", kind).Error; err != nil {
			return fmt.Errorf("failed to update last_command for lock %d: %w", lockID, err)
		}
		return nil
	})
	if err != nil {
		return model.Command{}, err
	}
	return created, nil
}

// NextPendingCommand returns the oldest unexecuted command for a lock.
// Repeated polls without an intervening acknowledgement return the same
// command; two racing pollers may both receive it, which the protocol
// accepts (delivery is at-least-once until acknowledged).
func (s *gormStore) NextPendingCommand(ctx context.Context, lockID int64) (model.Command, error) {
	var lock model.DoorLock
	if err := s.db.WithContext(ctx).First(&lock, lockID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Command{}, ErrNotFound
		}
		return model.Command{}, fmt.Errorf("failed to load lock %d: %w", lockID, err)
	}

	var cmd model.Command
	err := s.db.WithContext(ctx).
		Where("door_lock_id = ? AND executed = ?", lockID, false).
		Order("created_at ASC, id ASC").
		First(&cmd).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Command{}, ErrNoPending
	}
	if err != nil {
		return model.Command{}, fmt.Errorf("failed to query pending command for lock %d: %w", lockID, err)
	}
	return cmd, nil
}

// AcknowledgeCommand marks a command as executed. Acknowledging an
// already-executed command is a no-op, not an error.
func (s *gormStore) AcknowledgeCommand(ctx context.Context, commandID int64) error {
	res := s.db.WithContext(ctx).
		Model(&model.Command{}).
		Where("id = ?", commandID).
		Update("executed", true)
	if res.Error != nil {
		return fmt.Errorf("failed to acknowledge command %d: %w", commandID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLockStatus applies a device's self-report: an optional observed
// status and an optional command acknowledgement, atomically. The device's
// report is the only thing that ever mutates a lock's status; issuing a
// command never flips it optimistically.
func (s *gormStore) UpdateLockStatus(ctx context.Context, lockID int64, update StatusUpdate) (model.DoorLock, error) {
	if update.Status != nil {
		switch *update.Status {
		case model.StatusLocked, model.StatusUnlocked:
		default:
			return model.DoorLock{}, ErrInvalidStatus
		}
	}

	var lock model.DoorLock
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lock, lockID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load lock %d: %w", lockID, err)
		}

		if update.Status != nil {
			if err := tx.Model(&lock).Update("status", *update.Status).Error; err != nil {
				return fmt.Errorf("failed to update status for lock %d: %w", lockID, err)
			}
			lock.Status = *update.Status
		}

		if update.CommandID != nil {
			res := tx.Model(&model.Command{}).
				Where("id = ?", *update.CommandID).
				Update("executed", true)
			if res.Error != nil {
				return fmt.Errorf("failed to acknowledge command %d: %w", *update.CommandID, res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
		}
		return nil
	})
	if err != nil {
		return model.DoorLock{}, err
	}
	return lock, nil
}

// GetLock returns the current lock row.
func (s *gormStore) GetLock(ctx context.Context, lockID int64) (model.DoorLock, error) {
	var lock model.DoorLock
	if err := s.db.WithContext(ctx).First(&lock, lockID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.DoorLock{}, ErrNotFound
		}
		return model.DoorLock{}, fmt.Errorf("failed to load lock %d: %w", lockID, err)
	}
	return lock, nil
}

// ValidateRfid reports whether the presented card UID belongs to the
// lock's owner. Read-only; it never triggers a command.
func (s *gormStore) ValidateRfid(ctx context.Context, lockID int64, uid string) (bool, error) {
	lock, err := s.GetLock(ctx, lockID)
	if err != nil {
		return false, err
	}

	var count int64
	err = s.db.WithContext(ctx).
		Model(&model.RfidCard{}).
		Where("user_id = ? AND uid = ?", lock.UserID, uid).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up rfid card for lock %d: %w", lockID, err)
	}
	return count > 0, nil
}

// UserByToken resolves an actor API token to its user.
func (s *gormStore) UserByToken(ctx context.Context, token string) (model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("api_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to look up user by token: %w", err)
	}
	return user, nil
}
