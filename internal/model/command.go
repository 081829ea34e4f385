package model

import "time"

// Command kinds a device understands. Status queries are transient and
// never persisted as rows.
const (
	CommandLock   = "lock"
	CommandUnlock = "unlock"
	CommandStatus = "status"
)

// Command is one queued instruction directed at a DoorLock. Rows are
// immutable once created except for Executed, which flips false->true
// exactly once; executed rows are kept as an audit log.
type Command struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	DoorLockID int64     `gorm:"index;not null" json:"door_lock_id"`
	Command    string    `gorm:"size:16;not null" json:"command"`
	Executed   bool      `gorm:"not null;default:false" json:"executed"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Associations
	DoorLock DoorLock `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
