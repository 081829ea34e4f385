package model

import "time"

// PushSubscription holds the information for a browser push subscription
// used to deliver water-quality alert notifications.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// SubscriptionDevice maps a push subscription to a monitoring device it
// wants alerts for. Device ids are free-form strings, so this is a plain
// join table rather than a foreign-keyed association.
type SubscriptionDevice struct {
	Endpoint string `gorm:"primaryKey;size:512"`
	DeviceID string `gorm:"primaryKey;size:50"`
}
