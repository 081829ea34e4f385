package model

import "time"

// Lock statuses. The status is only ever set from a device's own report,
// never inferred from an issued command.
const (
	StatusLocked   = "locked"
	StatusUnlocked = "unlocked"
)

// DoorLock represents one controllable lock actuator.
type DoorLock struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"uniqueIndex;not null" json:"user_id"`
	Status      string    `gorm:"size:16;not null;default:locked" json:"status"`
	LastCommand *string   `gorm:"size:16" json:"last_command"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Associations
	User     User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Commands []Command `gorm:"foreignKey:DoorLockID" json:"-"`
}
