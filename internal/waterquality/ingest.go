package waterquality

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/ginxFromYt/ARDUINO-API/internal/model"
	"github.com/ginxFromYt/ARDUINO-API/internal/store"
)

// ValidationError reports malformed boundary input with a field->reason
// map. Input that fails validation never reaches the classifier or the
// store.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("validation failed:")
	for _, k := range keys {
		fmt.Fprintf(&b, " %s: %s;", k, e.Fields[k])
	}
	return strings.TrimSuffix(b.String(), ";")
}

// ReadingInput is one telemetry sample as submitted by a device. The three
// sensor fields are pointers so a missing field is distinguishable from a
// zero reading.
type ReadingInput struct {
	DeviceID            string         `json:"device_id"`
	Turbidity           *float64       `json:"turbidity"`
	TDS                 *float64       `json:"tds"`
	PH                  *float64       `json:"ph"`
	Location            string         `json:"location"`
	RawTurbidityVoltage *float64       `json:"raw_turbidity_voltage"`
	RawTDSVoltage       *float64       `json:"raw_tds_voltage"`
	RawPHVoltage        *float64       `json:"raw_ph_voltage"`
	SensorStates        map[string]any `json:"sensor_states"`
	AlertMessage        string         `json:"alert_message"`
}

// Validate checks the input contract: device id required (max 50 chars),
// turbidity voltage 0-5, TDS 0-9999, pH 0-14, plus length and range limits
// on the optional fields. Returns nil when the input is well-formed.
func (in *ReadingInput) Validate() *ValidationError {
	fields := make(map[string]string)

	if in.DeviceID == "" {
		fields["device_id"] = "required"
	} else if len(in.DeviceID) > 50 {
		fields["device_id"] = "must not exceed 50 characters"
	}

	checkRange := func(name string, v *float64, min, max float64) {
		if v == nil {
			fields[name] = "required"
		} else if *v < min || *v > max {
			fields[name] = fmt.Sprintf("must be between %g and %g", min, max)
		}
	}
	checkRange("turbidity", in.Turbidity, 0, 5)
	checkRange("tds", in.TDS, 0, 9999)
	checkRange("ph", in.PH, 0, 14)

	checkOptionalRange := func(name string, v *float64, min, max float64) {
		if v != nil && (*v < min || *v > max) {
			fields[name] = fmt.Sprintf("must be between %g and %g", min, max)
		}
	}
	checkOptionalRange("raw_turbidity_voltage", in.RawTurbidityVoltage, 0, 5)
	checkOptionalRange("raw_tds_voltage", in.RawTDSVoltage, 0, 5)
	checkOptionalRange("raw_ph_voltage", in.RawPHVoltage, 0, 5)

	if len(in.Location) > 255 {
		fields["location"] = "must not exceed 255 characters"
	}
	if len(in.AlertMessage) > 1000 {
		fields["alert_message"] = "must not exceed 1000 characters"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// IngestResult echoes the key fields of a stored reading back to the device.
type IngestResult struct {
	ID                int64      `json:"id"`
	DeviceID          string     `json:"device_id"`
	AlertLevel        AlertLevel `json:"alert_level"`
	StatusDescription string     `json:"status_description"`
	Timestamp         time.Time  `json:"timestamp"`
}

// AlertNotifier receives the id of a device whose latest reading violated
// a threshold.
type AlertNotifier interface {
	Dispatch(deviceID string)
}

// Ingestor validates, classifies and persists telemetry samples.
type Ingestor struct {
	store    store.Store
	notifier AlertNotifier
}

// NewIngestor creates an ingestor. The notifier may be nil when alert
// notifications are not configured.
func NewIngestor(s store.Store, notifier AlertNotifier) *Ingestor {
	return &Ingestor{store: s, notifier: notifier}
}

// Ingest processes one sample: validate, classify, persist, and return the
// stored record's identity. On validation failure nothing is persisted.
func (ing *Ingestor) Ingest(ctx context.Context, in ReadingInput) (IngestResult, error) {
	if verr := in.Validate(); verr != nil {
		return IngestResult{}, verr
	}

	level := Classify(*in.Turbidity, *in.TDS, *in.PH)

	reading := model.WaterQuality{
		DeviceID:            in.DeviceID,
		Turbidity:           *in.Turbidity,
		TDS:                 *in.TDS,
		PH:                  *in.PH,
		AlertLevel:          string(level),
		Location:            in.Location,
		RawTurbidityVoltage: in.RawTurbidityVoltage,
		RawTDSVoltage:       in.RawTDSVoltage,
		RawPHVoltage:        in.RawPHVoltage,
		AlertMessage:        in.AlertMessage,
	}
	if reading.RawTurbidityVoltage == nil {
		// The turbidity field already is a voltage; keep it as the raw
		// value when the device did not report one separately.
		v := *in.Turbidity
		reading.RawTurbidityVoltage = &v
	}
	if len(in.SensorStates) > 0 {
		states, err := json.Marshal(in.SensorStates)
		if err != nil {
			return IngestResult{}, fmt.Errorf("failed to serialize sensor states: %w", err)
		}
		reading.SensorStates = string(states)
	}

	if err := ing.store.InsertReading(ctx, &reading); err != nil {
		return IngestResult{}, err
	}

	log.Printf("water quality data received: device=%s alert_level=%s turbidity=%.3f tds=%.2f ph=%.2f",
		in.DeviceID, level, *in.Turbidity, *in.TDS, *in.PH)

	if level != LevelNormal && ing.notifier != nil {
		ing.notifier.Dispatch(in.DeviceID)
	}

	return IngestResult{
		ID:                reading.ID,
		DeviceID:          reading.DeviceID,
		AlertLevel:        level,
		StatusDescription: Describe(*in.Turbidity, *in.TDS, *in.PH),
		Timestamp:         reading.CreatedAt,
	}, nil
}
