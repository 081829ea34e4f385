package model

import "time"

// WaterQuality is one sensor sample from a monitoring device. Rows are
// append-only: the core never updates or deletes individual readings.
// AlertLevel is always derived by the classifier, never set independently.
type WaterQuality struct {
	ID         int64   `gorm:"primaryKey" json:"id"`
	DeviceID   string  `gorm:"size:50;index;index:idx_water_quality_device_created,priority:1;not null" json:"device_id"`
	Turbidity  float64 `gorm:"not null" json:"turbidity"` // Turbidity voltage reading
	TDS        float64 `gorm:"column:tds;not null" json:"tds"`
	PH         float64 `gorm:"column:ph;not null" json:"ph"`
	AlertLevel string  `gorm:"size:16;index;not null;default:normal" json:"alert_level"`
	Location   string  `gorm:"size:255" json:"location"`

	// Raw sensor voltages for debugging
	RawTurbidityVoltage *float64 `json:"raw_turbidity_voltage,omitempty"`
	RawTDSVoltage       *float64 `gorm:"column:raw_tds_voltage" json:"raw_tds_voltage,omitempty"`
	RawPHVoltage        *float64 `gorm:"column:raw_ph_voltage" json:"raw_ph_voltage,omitempty"`

	// Additional metadata reported by the device
	SensorStates string `gorm:"type:text" json:"sensor_states,omitempty"` // Serialized JSON state map
	AlertMessage string `gorm:"size:1000" json:"alert_message,omitempty"`

	CreatedAt time.Time `gorm:"index;index:idx_water_quality_device_created,priority:2" json:"created_at"`
}

// TableName keeps the singular table name used by the original schema.
func (WaterQuality) TableName() string {
	return "water_quality"
}
