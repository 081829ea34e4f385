package store

import (
	"time"

	"github.com/ginxFromYt/ARDUINO-API/internal/model"
)

// StatusUpdate is a device's self-report: an optional observed lock status
// and an optional command acknowledgement. Both fields are optional because
// a device may confirm state without having executed a command, or
// acknowledge a command whose physical outcome it already reported.
type StatusUpdate struct {
	Status    *string
	CommandID *int64
}

// DeviceSummary aggregates one monitoring device's reading history for the
// dashboard device listing.
type DeviceSummary struct {
	DeviceID      string
	LastSeen      time.Time
	TotalReadings int64
	AlertCount    int64
	Location      string
	Latest        *model.WaterQuality
}
