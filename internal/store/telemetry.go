package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ginxFromYt/ARDUINO-API/internal/model"
)

// InsertReading appends one classified telemetry sample. Readings are
// append-only; nothing ever updates a stored row.
func (s *gormStore) InsertReading(ctx context.Context, reading *model.WaterQuality) error {
	if err := s.db.WithContext(ctx).Create(reading).Error; err != nil {
		return fmt.Errorf("failed to insert reading for device %s: %w", reading.DeviceID, err)
	}
	return nil
}

// LatestReading returns the most recent sample for a device.
func (s *gormStore) LatestReading(ctx context.Context, deviceID string) (model.WaterQuality, error) {
	var reading model.WaterQuality
	err := s.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC, id DESC").
		First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.WaterQuality{}, ErrNotFound
	}
	if err != nil {
		return model.WaterQuality{}, fmt.Errorf("failed to query latest reading for device %s: %w", deviceID, err)
	}
	return reading, nil
}

// RecentReadings returns all samples for a device at or after the given
// time, newest first.
func (s *gormStore) RecentReadings(ctx context.Context, deviceID string, since time.Time) ([]model.WaterQuality, error) {
	var readings []model.WaterQuality
	err := s.db.WithContext(ctx).
		Where("device_id = ? AND created_at >= ?", deviceID, since).
		Order("created_at DESC").
		Find(&readings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query recent readings for device %s: %w", deviceID, err)
	}
	return readings, nil
}

// CountReadings returns the total number of samples stored for a device.
func (s *gormStore) CountReadings(ctx context.Context, deviceID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.WaterQuality{}).
		Where("device_id = ?", deviceID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count readings for device %s: %w", deviceID, err)
	}
	return count, nil
}

// AlertSummary returns per-level reading counts for a device over a
// trailing window.
func (s *gormStore) AlertSummary(ctx context.Context, deviceID string, since time.Time) (map[string]int64, error) {
	type levelCount struct {
		AlertLevel string
		Count      int64
	}
	var rows []levelCount
	err := s.db.WithContext(ctx).
		Model(&model.WaterQuality{}).
		Select("alert_level, COUNT(*) as count").
		Where("device_id = ? AND created_at >= ?", deviceID, since).
		Group("alert_level").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate alerts for device %s: %w", deviceID, err)
	}

	summary := make(map[string]int64, len(rows))
	for _, row := range rows {
		summary[row.AlertLevel] = row.Count
	}
	return summary, nil
}

// ListDeviceSummaries groups the reading history by device id and reports,
// per device: last-seen time, reading counts, alert counts and the most
// recent sample. Ordered by last-seen, newest first.
func (s *gormStore) ListDeviceSummaries(ctx context.Context) ([]DeviceSummary, error) {
	type aggRow struct {
		DeviceID      string
		LastSeen      time.Time
		TotalReadings int64
		AlertCount    int64
		Location      string
	}
	var aggs []aggRow
	err := s.db.WithContext(ctx).
		Model(&model.WaterQuality{}).
		Select("device_id as device_id, " +
			"MAX(created_at) as last_seen, " +
			"COUNT(*) as total_readings, " +
			"SUM(CASE WHEN alert_level IN ('warning', 'critical') THEN 1 ELSE 0 END) as alert_count, " +
			"MAX(location) as location").
		Group("device_id").
		Order("last_seen DESC").
		Scan(&aggs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate device summaries: %w", err)
	}

	summaries := make([]DeviceSummary, 0, len(aggs))
	for _, a := range aggs {
		summary := DeviceSummary{
			DeviceID:      a.DeviceID,
			LastSeen:      a.LastSeen,
			TotalReadings: a.TotalReadings,
			AlertCount:    a.AlertCount,
			Location:      a.Location,
		}
		latest, err := s.LatestReading(ctx, a.DeviceID)
		if err == nil {
			summary.Latest = &latest
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// PruneReadingsBefore deletes readings older than the cutoff and returns
// how many rows were removed. Used only by the retention sweeper.
func (s *gormStore) PruneReadingsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.WaterQuality{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune readings before %s: %w", cutoff, res.Error)
	}
	return res.RowsAffected, nil
}
