// Package severity maps raw upstream signals (magnitudes, wind speeds,
// rainfall, severity keywords, condition codes) to the ordered alert
// tiers and the closed disaster-type set.
package severity

import (
	"strings"

	"github.com/harsh822v/DisasterSentinel-project/internal/models"
)

// SeismicThresholds are inclusive lower magnitude bounds per tier.
type SeismicThresholds struct {
	Warning float64
	Watch   float64
}

// ConditionThresholds are inclusive lower bounds on wind speed (m/s) and
// three-hour rainfall (mm) per tier.
type ConditionThresholds struct {
	WindWatch   float64
	WindWarning float64
	RainWatch   float64
	RainWarning float64
}

// Classifier owns the classification thresholds. Construct with
// NewClassifier; there is no mutable package-level state.
type Classifier struct {
	Seismic    SeismicThresholds
	Conditions ConditionThresholds
}

func NewClassifier() Classifier {
	return Classifier{
		Seismic: SeismicThresholds{
			Warning: 5.0,
			Watch:   4.0,
		},
		Conditions: ConditionThresholds{
			WindWatch:   10.8,
			WindWarning: 17.2,
			RainWatch:   25.0,
			RainWarning: 50.0,
		},
	}
}

// ClassifySeismic maps an earthquake magnitude to an alert tier.
func (c Classifier) ClassifySeismic(magnitude float64) models.AlertType {
	switch {
	case magnitude >= c.Seismic.Warning:
		return models.AlertWarning
	case magnitude >= c.Seismic.Watch:
		return models.AlertWatch
	default:
		return models.AlertAdvisory
	}
}

// ClassifyConditions escalates from advisory based on wind speed and
// three-hour rainfall. Escalation is monotonic: the result is the most
// severe tier implied by either signal, wind evaluated first.
func (c Classifier) ClassifyConditions(windSpeedMS, rainfall3hMM float64) models.AlertType {
	alert := models.AlertAdvisory

	switch {
	case windSpeedMS >= c.Conditions.WindWarning:
		alert = alert.Max(models.AlertWarning)
	case windSpeedMS >= c.Conditions.WindWatch:
		alert = alert.Max(models.AlertWatch)
	}

	switch {
	case rainfall3hMM >= c.Conditions.RainWarning:
		alert = alert.Max(models.AlertWarning)
	case rainfall3hMM >= c.Conditions.RainWatch:
		alert = alert.Max(models.AlertWatch)
	}

	return alert
}

// ClassifyAlertSeverity maps a government-feed severity enumeration to an
// alert tier. Unknown or absent severities fall back to advisory.
func ClassifyAlertSeverity(severity string) models.AlertType {
	switch strings.ToLower(severity) {
	case "extreme", "severe":
		return models.AlertWarning
	case "moderate":
		return models.AlertWatch
	default:
		return models.AlertAdvisory
	}
}

// ClassifyAlertName derives an alert tier from a free-text alert event
// name ("Flash Flood Warning", "Wind Advisory", ...).
func ClassifyAlertName(name string) models.AlertType {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "warning"):
		return models.AlertWarning
	case strings.Contains(lower, "watch"):
		return models.AlertWatch
	case strings.Contains(lower, "advisory"):
		return models.AlertAdvisory
	default:
		return models.AlertAdvisory
	}
}

// typeRule is one (keyword, type) entry. Rules are evaluated in
// declaration order; the first case-insensitive substring match wins.
type typeRule struct {
	keyword string
	result  models.DisasterType
}

var nameTypeRules = []typeRule{
	{"flood", models.DisasterTypeFlood},
	{"fire", models.DisasterTypeWildfire},
}

// InferTypeFromName resolves a disaster type for non-seismic sources from
// an event's free-text name. Anything that is neither flood- nor
// fire-related resolves to storm.
func InferTypeFromName(name string) models.DisasterType {
	lower := strings.ToLower(name)
	for _, rule := range nameTypeRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.result
		}
	}
	return models.DisasterTypeStorm
}

// hazardLexicon enumerates the recognized government-alert hazard
// categories. Declaration order is the tie-break when an event name
// matches more than one keyword.
var hazardLexicon = []typeRule{
	{"tornado", models.DisasterTypeStorm},
	{"flood", models.DisasterTypeFlood},
	{"hurricane", models.DisasterTypeStorm},
	{"tropical storm", models.DisasterTypeStorm},
	{"winter storm", models.DisasterTypeStorm},
	{"blizzard", models.DisasterTypeStorm},
	{"tsunami", models.DisasterTypeFlood},
	{"fire", models.DisasterTypeWildfire},
	{"red flag", models.DisasterTypeWildfire},
}

// MatchHazard resolves an alert event name against the hazard lexicon.
// Unrecognized event types return false and are dropped by the caller,
// never emitted as catch-alls.
func MatchHazard(eventName string) (models.DisasterType, bool) {
	lower := strings.ToLower(eventName)
	for _, rule := range hazardLexicon {
		if strings.Contains(lower, rule.keyword) {
			return rule.result, true
		}
	}
	return "", false
}

// floodCodes are the extreme-rain condition codes treated as floods.
var floodCodes = map[int]bool{
	502: true, 503: true, 504: true, 511: true, 522: true, 531: true,
}

// heavySnowCodes are the snow condition codes severe enough to emit an event.
var heavySnowCodes = map[int]bool{602: true, 622: true}

const tornadoCode = 781

// ClassifyConditionCode maps a numeric weather condition code to a
// disaster type.
func ClassifyConditionCode(code int) models.DisasterType {
	switch {
	case code >= 200 && code <= 299:
		return models.DisasterTypeStorm
	case floodCodes[code]:
		return models.DisasterTypeFlood
	case heavySnowCodes[code]:
		return models.DisasterTypeStorm
	case code == tornadoCode:
		return models.DisasterTypeStorm
	default:
		return models.DisasterTypeStorm
	}
}

// IsSevereCode reports whether a condition code belongs to the fixed
// severe set: thunderstorms 200-232, the extreme-rain codes, heavy snow,
// or a tornado. Only severe codes produce an event at all.
func IsSevereCode(code int) bool {
	if code >= 200 && code <= 232 {
		return true
	}
	return floodCodes[code] || heavySnowCodes[code] || code == tornadoCode
}
