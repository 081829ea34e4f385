package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ginxFromYt/ARDUINO-API/internal/device"
	"github.com/ginxFromYt/ARDUINO-API/internal/model"
	"github.com/ginxFromYt/ARDUINO-API/internal/waterquality"
)

// IngestReading handles POST /api/water-quality: a monitoring device
// submits one sensor sample.
func (h *Handler) IngestReading(c *gin.Context) {
	var input waterquality.ReadingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.ingestor.Ingest(c.Request.Context(), input)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Water quality data stored successfully",
		"data":    result,
	})
}

func requireDeviceID(c *gin.Context) (string, bool) {
	deviceID := c.Query("device_id")
	if deviceID == "" || len(deviceID) > 50 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "Validation failed",
			"errors":  gin.H{"device_id": "required, max 50 characters"},
		})
		return "", false
	}
	return deviceID, true
}

func parseHours(c *gin.Context) (int, bool) {
	hours := 24
	if raw := c.Query("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 168 {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"message": "Validation failed",
				"errors":  gin.H{"hours": "must be an integer between 1 and 168"},
			})
			return 0, false
		}
		hours = parsed
	}
	return hours, true
}

// readingPayload flattens a stored reading for dashboard consumers,
// recomputing the human-readable description from the stored values.
func readingPayload(r model.WaterQuality) gin.H {
	return gin.H{
		"id":                 r.ID,
		"device_id":          r.DeviceID,
		"turbidity":          r.Turbidity,
		"tds":                r.TDS,
		"ph":                 r.PH,
		"alert_level":        r.AlertLevel,
		"status_description": waterquality.Describe(r.Turbidity, r.TDS, r.PH),
		"location":           r.Location,
		"timestamp":          r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// GetLatest handles GET /api/water-quality/latest?device_id=.
func (h *Handler) GetLatest(c *gin.Context) {
	deviceID, ok := requireDeviceID(c)
	if !ok {
		return
	}

	latest, err := h.store.LatestReading(c.Request.Context(), deviceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "No data found for this device",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": readingPayload(latest)})
}

// GetRecent handles GET /api/water-quality/recent?device_id=&hours=.
func (h *Handler) GetRecent(c *gin.Context) {
	deviceID, ok := requireDeviceID(c)
	if !ok {
		return
	}
	hours, ok := parseHours(c)
	if !ok {
		return
	}

	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	readings, err := h.store.RecentReadings(c.Request.Context(), deviceID, since)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	payload := make([]gin.H, 0, len(readings))
	for _, r := range readings {
		payload = append(payload, readingPayload(r))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"data":         payload,
		"total":        len(payload),
		"period_hours": hours,
	})
}

// GetDeviceStatus handles GET /api/water-quality/device-status?device_id=:
// a health check deriving online/offline from reading freshness.
func (h *Handler) GetDeviceStatus(c *gin.Context) {
	deviceID, ok := requireDeviceID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	latest, err := h.store.LatestReading(ctx, deviceID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"device_status": device.StatusNoData,
			"message":       "No data received from device yet",
		})
		return
	}

	summary, err := h.store.AlertSummary(ctx, deviceID, time.Now().Add(-24*time.Hour))
	if err != nil {
		abortStoreError(c, err)
		return
	}
	total, err := h.store.CountReadings(ctx, deviceID)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"device_status":       device.StatusAt(latest.CreatedAt, time.Now()),
		"last_seen":           latest.CreatedAt.UTC().Format(time.RFC3339),
		"current_alert_level": latest.AlertLevel,
		"alert_summary_24h":   summary,
		"total_readings":      total,
	})
}

// GetDevices handles GET /api/water-quality/devices: the dashboard device
// listing grouped by device id.
func (h *Handler) GetDevices(c *gin.Context) {
	summaries, err := h.store.ListDeviceSummaries(c.Request.Context())
	if err != nil {
		abortStoreError(c, err)
		return
	}

	now := time.Now()
	payload := make([]gin.H, 0, len(summaries))
	for _, s := range summaries {
		entry := gin.H{
			"device_id":      s.DeviceID,
			"last_seen":      s.LastSeen.UTC().Format(time.RFC3339),
			"total_readings": s.TotalReadings,
			"alert_count":    s.AlertCount,
			"location":       s.Location,
			"is_online":      device.IsOnline(s.LastSeen, now),
		}
		if s.Latest != nil {
			entry["latest_reading"] = readingPayload(*s.Latest)
		}
		payload = append(payload, entry)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": payload})
}
