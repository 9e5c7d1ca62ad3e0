package models

import (
	"math"
	"time"
)

type DisasterType string

const (
	DisasterTypeEarthquake DisasterType = "earthquake"
	DisasterTypeFlood      DisasterType = "flood"
	DisasterTypeStorm      DisasterType = "storm"
	DisasterTypeWildfire   DisasterType = "wildfire"
)

func (t DisasterType) String() string {
	return string(t)
}

// ParseDisasterType maps a user-supplied token to a known disaster type.
// Unknown tokens return false.
func ParseDisasterType(s string) (DisasterType, bool) {
	switch DisasterType(s) {
	case DisasterTypeEarthquake, DisasterTypeFlood, DisasterTypeStorm, DisasterTypeWildfire:
		return DisasterType(s), true
	default:
		return "", false
	}
}

// AlertType is the severity tier of an event: warning > watch > advisory.
type AlertType string

const (
	AlertWarning  AlertType = "warning"
	AlertWatch    AlertType = "watch"
	AlertAdvisory AlertType = "advisory"
)

func (a AlertType) String() string {
	return string(a)
}

// Rank orders alert types by severity. Higher is more severe.
func (a AlertType) Rank() int {
	switch a {
	case AlertWarning:
		return 3
	case AlertWatch:
		return 2
	case AlertAdvisory:
		return 1
	default:
		return 0
	}
}

// Max returns the more severe of the two alert types.
func (a AlertType) Max(b AlertType) AlertType {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

func ParseAlertType(s string) (AlertType, bool) {
	switch AlertType(s) {
	case AlertWarning, AlertWatch, AlertAdvisory:
		return AlertType(s), true
	default:
		return "", false
	}
}

// EventData carries source-specific auxiliary attributes. It is additive
// only: core filtering never reads it. Unknown numeric attributes from a
// feed go into Extra.
type EventData struct {
	Magnitude   *float64           `json:"magnitude,omitempty"`
	Depth       *float64           `json:"depth,omitempty"`
	WindSpeed   *float64           `json:"wind_speed,omitempty"` // m/s
	Rainfall3h  *float64           `json:"rainfall_3h,omitempty"`
	Temperature *float64           `json:"temperature,omitempty"`
	Pressure    *float64           `json:"pressure,omitempty"`
	Humidity    *float64           `json:"humidity,omitempty"`
	Tsunami     *bool              `json:"tsunami,omitempty"`
	DetailURL   string             `json:"detail_url,omitempty"`
	Extra       map[string]float64 `json:"extra,omitempty"`
}

// DisasterEvent is the unified record every source adapter produces.
// Records are immutable once constructed; the aggregator only filters
// collections of them.
type DisasterEvent struct {
	ID             string       `json:"id"`
	Type           DisasterType `json:"disaster_type"`
	Alert          AlertType    `json:"alert_type"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Location       string       `json:"location"`
	Latitude       float64      `json:"latitude"`
	Longitude      float64      `json:"longitude"`
	HasCoordinates bool         `json:"has_coordinates"`
	Source         string       `json:"source"`
	Timestamp      time.Time    `json:"timestamp"`
	ValidUntil     *time.Time   `json:"valid_until,omitempty"`
	Data           EventData    `json:"data"`
}

// ValidCoordinates reports whether the event carries a finite lat/lon
// pair. Events without valid coordinates are excluded from geographic
// filtering but still appear in unfiltered results.
func (e *DisasterEvent) ValidCoordinates() bool {
	if !e.HasCoordinates {
		return false
	}
	return finite(e.Latitude) && finite(e.Longitude)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
