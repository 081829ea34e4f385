package store

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ginxFromYt/ARDUINO-API/internal/db"
	"github.com/ginxFromYt/ARDUINO-API/internal/model"
)

// newTestDB opens a per-test in-memory SQLite database with the full
// schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func seedLockOwner(t *testing.T, gdb *gorm.DB, userID int64) model.DoorLock {
	t.Helper()

	user := model.User{ID: userID, Name: fmt.Sprintf("user-%d", userID), Role: model.RoleDoor, APIToken: fmt.Sprintf("token-%d", userID)}
	require.NoError(t, gdb.Create(&user).Error)

	lock := model.DoorLock{UserID: userID, Status: model.StatusLocked}
	require.NoError(t, gdb.Create(&lock).Error)
	return lock
}

func TestSubmitCommand(t *testing.T) {
	gdb := newTestDB(t)
	s := NewGormStore(gdb)
	ctx := context.Background()
	lock := seedLockOwner(t, gdb, 1)

	t.Run("creates pending command and updates last_command", func(t *testing.T) {
		cmd, err := s.SubmitCommand(ctx, 1, lock.ID, model.CommandUnlock)
		require.NoError(t, err)
		assert.NotZero(t, cmd.ID)
		assert.Equal(t, lock.ID, cmd.DoorLockID)
		assert.Equal(t, model.CommandUnlock, cmd.Command)
		assert.False(t, cmd.Executed)

		var stored model.DoorLock
		require.NoError(t, gdb.First(&stored, lock.ID).Error)
		require.NotNil(t, stored.LastCommand)
		assert.Equal(t, model.CommandUnlock, *stored.LastCommand)
		// Submission never flips status; only the device's report does.
		assert.Equal(t, model.StatusLocked, stored.Status)
	})

	t.Run("status command is transient", func(t *testing.T) {
		var before int64
		require.NoError(t, gdb.Model(&model.Command{}).Count(&before).Error)

		cmd, err := s.SubmitCommand(ctx, 1, lock.ID, model.CommandStatus)
		require.NoError(t, err)
		assert.Zero(t, cmd.ID, "status commands must not be persisted")

		var after int64
		require.NoError(t, gdb.Model(&model.Command{}).Count(&after).Error)
		assert.Equal(t, before, after)

		var stored model.DoorLock
		require.NoError(t, gdb.First(&stored, lock.ID).Error)
		require.NotNil(t, stored.LastCommand)
		assert.Equal(t, model.CommandStatus, *stored.LastCommand)
	})

	t.Run("unknown lock", func(t *testing.T) {
		_, err := s.SubmitCommand(ctx, 1, 9999, model.CommandLock)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("lock owned by someone else", func(t *testing.T) {
		_, err := s.SubmitCommand(ctx, 42, lock.ID, model.CommandLock)
		assert.ErrorIs(t, err, ErrNotOwned)
	})

	t.Run("unknown command kind", func(t *testing.T) {
		_, err := s.SubmitCommand(ctx, 1, lock.ID, "explode")
		assert.ErrorIs(t, err, ErrInvalidCommand)
	})
}

func TestNextPendingCommand(t *testing.T) {
	gdb := newTestDB(t)
	s := NewGormStore(gdb)
	ctx := context.Background()
	lock := seedLockOwner(t, gdb, 1)

	t.Run("empty queue", func(t *testing.T) {
		_, err := s.NextPendingCommand(ctx, lock.ID)
		assert.ErrorIs(t, err, ErrNoPending)
	})

	t.Run("unknown lock", func(t *testing.T) {
		_, err := s.NextPendingCommand(ctx, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	first, err := s.SubmitCommand(ctx, 1, lock.ID, model.CommandLock)
	require.NoError(t, err)
	second, err := s.SubmitCommand(ctx, 1, lock.ID, model.CommandUnlock)
	require.NoError(t, err)

	t.Run("returns oldest unexecuted command", func(t *testing.T) {
		pending, err := s.NextPendingCommand(ctx, lock.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, pending.ID, "FIFO order: the first submitted command is delivered first")
		assert.Equal(t, model.CommandLock, pending.Command)
	})

	t.Run("repeated polls return the same command", func(t *testing.T) {
		a, err := s.NextPendingCommand(ctx, lock.ID)
		require.NoError(t, err)
		b, err := s.NextPendingCommand(ctx, lock.ID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, b.ID)
	})

	t.Run("acknowledged command is skipped", func(t *testing.T) {
		require.NoError(t, s.AcknowledgeCommand(ctx, first.ID))

		pending, err := s.NextPendingCommand(ctx, lock.ID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, pending.ID)
	})
}

func TestAcknowledgeCommand(t *testing.T) {
	gdb := newTestDB(t)
	s := NewGormStore(gdb)
	ctx := context.Background()
	lock := seedLockOwner(t, gdb, 1)

	cmd, err := s.SubmitCommand(ctx, 1, lock.ID, model.CommandLock)
	require.NoError(t, err)

	t.Run("marks executed", func(t *testing.T) {
		require.NoError(t, s.AcknowledgeCommand(ctx, cmd.ID))

		var stored model.Command
		require.NoError(t, gdb.First(&stored, cmd.ID).Error)
		assert.True(t, stored.Executed)
	})

	t.Run("idempotent", func(t *testing.T) {
		require.NoError(t, s.AcknowledgeCommand(ctx, cmd.ID))

		var stored model.Command
		require.NoError(t, gdb.First(&stored, cmd.ID).Error)
		assert.True(t, stored.Executed)
	})

	t.Run("unknown command", func(t *testing.T) {
		assert.ErrorIs(t, s.AcknowledgeCommand(ctx, 9999), ErrNotFound)
	})
}

func TestUpdateLockStatus(t *testing.T) {
	gdb := newTestDB(t)
	s := NewGormStore(gdb)
	ctx := context.Background()
	lock := seedLockOwner(t, gdb, 1)

	unlocked := model.StatusUnlocked

	t.Run("status report flips the lock", func(t *testing.T) {
		updated, err := s.UpdateLockStatus(ctx, lock.ID, StatusUpdate{Status: &unlocked})
		require.NoError(t, err)
		assert.Equal(t, model.StatusUnlocked, updated.Status)
	})

	t.Run("report with acknowledgement", func(t *testing.T) {
		cmd, err := s.SubmitCommand(ctx, 1, lock.ID, model.CommandLock)
		require.NoError(t, err)

		locked := model.StatusLocked
		updated, err := s.UpdateLockStatus(ctx, lock.ID, StatusUpdate{Status: &locked, CommandID: &cmd.ID})
		require.NoError(t, err)
		assert.Equal(t, model.StatusLocked, updated.Status)

		var stored model.Command
		require.NoError(t, gdb.First(&stored, cmd.ID).Error)
		assert.True(t, stored.Executed)
	})

	t.Run("report without status leaves lock unchanged", func(t *testing.T) {
		before, err := s.GetLock(ctx, lock.ID)
		require.NoError(t, err)

		cmd, err := s.SubmitCommand(ctx, 1, lock.ID, model.CommandUnlock)
		require.NoError(t, err)

		updated, err := s.UpdateLockStatus(ctx, lock.ID, StatusUpdate{CommandID: &cmd.ID})
		require.NoError(t, err)
		assert.Equal(t, before.Status, updated.Status)
	})

	t.Run("unknown lock", func(t *testing.T) {
		_, err := s.UpdateLockStatus(ctx, 9999, StatusUpdate{Status: &unlocked})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown command id", func(t *testing.T) {
		bogus := int64(9999)
		_, err := s.UpdateLockStatus(ctx, lock.ID, StatusUpdate{CommandID: &bogus})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid status value", func(t *testing.T) {
		bad := "ajar"
		_, err := s.UpdateLockStatus(ctx, lock.ID, StatusUpdate{Status: &bad})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestValidateRfid(t *testing.T) {
	gdb := newTestDB(t)
	s := NewGormStore(gdb)
	ctx := context.Background()

	lock := seedLockOwner(t, gdb, 1)
	otherLock := seedLockOwner(t, gdb, 2)

	card := model.RfidCard{UserID: 1, UID: "04:A3:22:B9", Name: "front door fob"}
	require.NoError(t, gdb.Create(&card).Error)
	otherCard := model.RfidCard{UserID: 2, UID: "04:FF:00:01", Name: "neighbor fob"}
	require.NoError(t, gdb.Create(&otherCard).Error)

	t.Run("owner's card is authorized", func(t *testing.T) {
		ok, err := s.ValidateRfid(ctx, lock.ID, "04:A3:22:B9")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unknown uid is rejected", func(t *testing.T) {
		ok, err := s.ValidateRfid(ctx, lock.ID, "DE:AD:BE:EF")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("another user's card is rejected", func(t *testing.T) {
		ok, err := s.ValidateRfid(ctx, lock.ID, "04:FF:00:01")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = s.ValidateRfid(ctx, otherLock.ID, "04:FF:00:01")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unknown lock", func(t *testing.T) {
		_, err := s.ValidateRfid(ctx, 9999, "04:A3:22:B9")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserByToken(t *testing.T) {
	gdb := newTestDB(t)
	s := NewGormStore(gdb)
	ctx := context.Background()
	seedLockOwner(t, gdb, 7)

	user, err := s.UserByToken(ctx, "token-7")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)

	_, err = s.UserByToken(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
