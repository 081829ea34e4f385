package model

import "time"

// RfidCard is an access credential presented to a lock's reader. The UID
// is globally unique across all users.
type RfidCard struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    int64  `gorm:"index;not null"`
	UID       string `gorm:"column:uid;uniqueIndex;size:64;not null"`
	Name      string `gorm:"size:128"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	User User `gorm:"constraint:OnDelete:CASCADE"`
}
