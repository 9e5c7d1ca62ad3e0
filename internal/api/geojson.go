package api

import (
	"github.com/harsh822v/DisasterSentinel-project/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// toGeoJSON renders events as a point FeatureCollection for the map
// view. Events without valid coordinates cannot be placed and are left
// to the list view.
func toGeoJSON(events []models.DisasterEvent) FeatureCollection {
	features := make([]Feature, 0, len(events))

	for _, e := range events {
		if !e.ValidCoordinates() {
			continue
		}

		props := map[string]any{
			"id":          e.ID,
			"type":        e.Type.String(),
			"alert_type":  e.Alert.String(),
			"title":       e.Title,
			"description": e.Description,
			"location":    e.Location,
			"source":      e.Source,
			"timestamp":   e.Timestamp,
		}
		if e.ValidUntil != nil {
			props["valid_until"] = *e.ValidUntil
		}
		if e.Data.Magnitude != nil {
			props["magnitude"] = *e.Data.Magnitude
		}
		if e.Data.WindSpeed != nil {
			props["wind_speed"] = *e.Data.WindSpeed
		}

		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{e.Longitude, e.Latitude},
			},
			Properties: props,
		})
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
