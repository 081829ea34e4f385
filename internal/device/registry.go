// Package device derives device liveness from report freshness. There is
// no persistent connection to a device, so "online" only means it was
// heard from recently.
package device

import "time"

// OnlineWindow is how recently a device must have reported to count as
// online. Shared by the lock and telemetry subsystems.
const OnlineWindow = 10 * time.Minute

// IsOnline reports whether a device that was last heard from at lastSeen
// counts as online at the given evaluation time.
func IsOnline(lastSeen, now time.Time) bool {
	return lastSeen.After(now.Add(-OnlineWindow))
}

// Status labels for the device-status query.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusNoData  = "no_data"
)

// StatusAt maps a last-seen timestamp to a status label.
func StatusAt(lastSeen, now time.Time) string {
	if IsOnline(lastSeen, now) {
		return StatusOnline
	}
	return StatusOffline
}
