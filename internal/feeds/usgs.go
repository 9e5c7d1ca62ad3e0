package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/harsh822v/DisasterSentinel-project/internal/geo"
	"github.com/harsh822v/DisasterSentinel-project/internal/models"
	"github.com/harsh822v/DisasterSentinel-project/internal/severity"
	"github.com/harsh822v/DisasterSentinel-project/internal/timerange"
)

type usgsResponse struct {
	Features []usgsFeature `json:"features"`
}

type usgsFeature struct {
	ID         string         `json:"id"`
	Properties usgsProperties `json:"properties"`
	Geometry   usgsGeometry   `json:"geometry"`
}

type usgsProperties struct {
	Mag     float64 `json:"mag"`
	Place   string  `json:"place"`
	Time    int64   `json:"time"` // epoch millis
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Tsunami int     `json:"tsunami"` // 0 or 1
}

type usgsGeometry struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}

// USGSClient fetches the USGS earthquake summary feed and maps each
// feature to a DisasterEvent.
type USGSClient struct {
	baseURL    string
	httpClient *http.Client
	classifier severity.Classifier
}

func NewUSGSClient(baseURL string, timeout time.Duration) *USGSClient {
	return &USGSClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		classifier: severity.NewClassifier(),
	}
}

// feedPath translates a canonical time-range value to the summary feed's
// path segment.
func feedPath(canonicalRange string) string {
	switch canonicalRange {
	case timerange.Hour:
		return "all_hour"
	case timerange.Week:
		return "all_week"
	case timerange.Month:
		return "all_month"
	default:
		return "all_day"
	}
}

// Fetch retrieves the feed for the given canonical time range. Failures
// surface as *FetchError.
func (c *USGSClient) Fetch(ctx context.Context, canonicalRange string) ([]models.DisasterEvent, error) {
	url := fmt.Sprintf("%s/%s.geojson", c.baseURL, feedPath(canonicalRange))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Source: SourceUSGS, Err: fmt.Errorf("creating request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Source: SourceUSGS, Err: fmt.Errorf("doing request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: SourceUSGS, Err: fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)}
	}

	var data usgsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, &FetchError{Source: SourceUSGS, Err: fmt.Errorf("decoding resp.Body: %w", err)}
	}

	events := make([]models.DisasterEvent, 0, len(data.Features))
	for _, f := range data.Features {
		events = append(events, c.mapFeature(f))
	}

	return events, nil
}

func (c *USGSClient) mapFeature(f usgsFeature) models.DisasterEvent {
	mag := f.Properties.Mag
	tsunami := f.Properties.Tsunami == 1

	e := models.DisasterEvent{
		ID:          SourceUSGS + "_" + f.ID,
		Type:        models.DisasterTypeEarthquake,
		Alert:       c.classifier.ClassifySeismic(mag),
		Title:       fmt.Sprintf("Magnitude %.1f Earthquake", mag),
		Description: f.Properties.Title,
		Location:    f.Properties.Place,
		Source:      SourceUSGS,
		Timestamp:   time.UnixMilli(f.Properties.Time),
		Data: models.EventData{
			Magnitude: &mag,
			Tsunami:   &tsunami,
			DetailURL: f.Properties.URL,
		},
	}

	// Point geometry is [lon, lat, depth]; depth is auxiliary.
	if coords := f.Geometry.Coordinates; len(coords) >= 2 {
		e.Longitude = coords[0]
		e.Latitude = coords[1]
		e.HasCoordinates = true
		if len(coords) >= 3 {
			depth := coords[2]
			e.Data.Depth = &depth
		}
	}

	return e
}

// FilterByLocation returns the subset of events within radiusKm of the
// given center. Events lacking valid coordinates are excluded.
func (c *USGSClient) FilterByLocation(events []models.DisasterEvent, lat, lon, radiusKm float64) []models.DisasterEvent {
	return geo.FilterByRadius(events, lat, lon, radiusKm)
}
