package model

import "time"

// User roles. Role routing itself lives at the boundary; the core only
// uses the user id for ownership checks.
const (
	RoleDoor  = "door"
	RoleWater = "water"
	RoleAdmin = "admin"
)

// User represents an account that owns locks and RFID cards.
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Role      string    `gorm:"size:32;not null;default:door" json:"role"`
	APIToken  string    `gorm:"uniqueIndex;size:128;not null" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	DoorLocks []DoorLock `gorm:"foreignKey:UserID" json:"-"`
	RfidCards []RfidCard `gorm:"foreignKey:UserID" json:"-"`
}
