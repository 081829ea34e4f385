package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ginxFromYt/ARDUINO-API/internal/model"
)

func seedReading(t *testing.T, gdb *gorm.DB, deviceID, level string, age time.Duration) model.WaterQuality {
	t.Helper()

	reading := model.WaterQuality{
		DeviceID:   deviceID,
		Turbidity:  3.0,
		TDS:        100,
		PH:         7.0,
		AlertLevel: level,
		Location:   "test bench",
		CreatedAt:  time.Now().Add(-age),
	}
	require.NoError(t, gdb.Create(&reading).Error)
	return reading
}

func TestLatestReading(t *testing.T) {
	gdb := newTestDB(t)
	s := NewGormStore(gdb)
	ctx := context.Background()

	seedReading(t, gdb, "A1", "normal", 2*time.Hour)
	newest := seedReading(t, gdb, "A1", "warning", 5*time.Minute)
	seedReading(t, gdb, "B2", "critical", time.Minute)

	latest, err := s.LatestReading(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, newest.ID, latest.ID)
	assert.Equal(t, "warning", latest.AlertLevel)

	_, err = s.LatestReading(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecentReadings(t *testing.T) {
	gdb := newTestDB(t)
	s := NewGormStore(gdb)
	ctx := context.Background()

	seedReading(t, gdb, "A1", "normal", 30*time.Hour)
	mid := seedReading(t, gdb, "A1", "normal", 3*time.Hour)
	recent := seedReading(t, gdb, "A1", "warning", 10*time.Minute)

	readings, err := s.RecentReadings(ctx, "A1", time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, readings, 2)
	// Newest first.
	assert.Equal(t, recent.ID, readings[0].ID)
	assert.Equal(t, mid.ID, readings[1].ID)
}

func TestAlertSummary(t *testing.T) {
	gdb := newTestDB(t)
	s := NewGormStore(gdb)
	ctx := context.Background()

	seedReading(t, gdb, "A1", "normal", time.Hour)
	seedReading(t, gdb, "A1", "warning", time.Hour)
	seedReading(t, gdb, "A1", "warning", 2*time.Hour)
	seedReading(t, gdb, "A1", "critical", 3*time.Hour)
	seedReading(t, gdb, "A1", "critical", 48*time.Hour) // outside window
	seedReading(t, gdb, "B2", "critical", time.Minute)  // different device

	summary, err := s.AlertSummary(ctx, "A1", time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"normal":   1,
		"warning":  2,
		"critical": 1,
	}, summary)
}

func TestListDeviceSummaries(t *testing.T) {
	gdb := newTestDB(t)
	s := NewGormStore(gdb)
	ctx := context.Background()

	seedReading(t, gdb, "A1", "normal", 3*time.Hour)
	seedReading(t, gdb, "A1", "critical", 2*time.Hour)
	latestA1 := seedReading(t, gdb, "A1", "warning", time.Hour)
	latestB2 := seedReading(t, gdb, "B2", "normal", time.Minute)

	summaries, err := s.ListDeviceSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Ordered by last-seen, newest first.
	assert.Equal(t, "B2", summaries[0].DeviceID)
	require.NotNil(t, summaries[0].Latest)
	assert.Equal(t, latestB2.ID, summaries[0].Latest.ID)
	assert.Equal(t, int64(1), summaries[0].TotalReadings)
	assert.Equal(t, int64(0), summaries[0].AlertCount)

	assert.Equal(t, "A1", summaries[1].DeviceID)
	require.NotNil(t, summaries[1].Latest)
	assert.Equal(t, latestA1.ID, summaries[1].Latest.ID)
	assert.Equal(t, int64(3), summaries[1].TotalReadings)
	assert.Equal(t, int64(2), summaries[1].AlertCount)
}

func TestPruneReadingsBefore(t *testing.T) {
	gdb := newTestDB(t)
	s := NewGormStore(gdb)
	ctx := context.Background()

	seedReading(t, gdb, "A1", "normal", 100*24*time.Hour)
	seedReading(t, gdb, "A1", "normal", 95*24*time.Hour)
	kept := seedReading(t, gdb, "A1", "normal", time.Hour)

	removed, err := s.PruneReadingsBefore(ctx, time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	var remaining []model.WaterQuality
	require.NoError(t, gdb.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)
}
