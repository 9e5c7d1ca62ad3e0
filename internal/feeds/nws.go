package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/harsh822v/DisasterSentinel-project/internal/geo"
	"github.com/harsh822v/DisasterSentinel-project/internal/models"
	"github.com/harsh822v/DisasterSentinel-project/internal/severity"
)

type nwsResponse struct {
	Features []nwsFeature `json:"features"`
}

type nwsFeature struct {
	ID         string        `json:"id"`
	Properties nwsProperties `json:"properties"`
	Geometry   *nwsGeometry  `json:"geometry"`
}

type nwsProperties struct {
	ID          string `json:"id"`
	Event       string `json:"event"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Urgency     string `json:"urgency"`
	Certainty   string `json:"certainty"`
	Effective   string `json:"effective"`
	Expires     string `json:"expires"`
	AreaDesc    string `json:"areaDesc"`
}

type nwsGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// NWSClient fetches active government weather alerts and maps recognized
// hazard categories to DisasterEvents. Event types outside the hazard
// lexicon are dropped entirely.
type NWSClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewNWSClient(baseURL, userAgent string, timeout time.Duration) *NWSClient {
	return &NWSClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch retrieves active alerts, optionally restricted to an area code.
func (c *NWSClient) Fetch(ctx context.Context, area string) ([]models.DisasterEvent, error) {
	endpoint := c.baseURL + "/alerts/active"
	if area != "" {
		endpoint += "?area=" + url.QueryEscape(area)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Source: SourceNWS, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/geo+json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Source: SourceNWS, Err: fmt.Errorf("doing request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: SourceNWS, Err: fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)}
	}

	var data nwsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, &FetchError{Source: SourceNWS, Err: fmt.Errorf("decoding resp.Body: %w", err)}
	}

	events := make([]models.DisasterEvent, 0, len(data.Features))
	for _, f := range data.Features {
		disasterType, ok := severity.MatchHazard(f.Properties.Event)
		if !ok {
			continue
		}
		events = append(events, mapNWSFeature(f, disasterType))
	}

	return events, nil
}

func mapNWSFeature(f nwsFeature, disasterType models.DisasterType) models.DisasterEvent {
	id := f.Properties.ID
	if id == "" {
		id = f.ID
	}

	e := models.DisasterEvent{
		ID:          SourceNWS + "_" + id,
		Type:        disasterType,
		Alert:       severity.ClassifyAlertSeverity(f.Properties.Severity),
		Title:       f.Properties.Event,
		Description: f.Properties.Headline,
		Location:    f.Properties.AreaDesc,
		Source:      SourceNWS,
	}
	if e.Description == "" {
		e.Description = f.Properties.Description
	}

	if t, err := time.Parse(time.RFC3339, f.Properties.Effective); err == nil {
		e.Timestamp = t
	} else {
		slog.Warn("NWS effective timestamp parsing failed", "id", id, "error", err.Error())
	}
	if f.Properties.Expires != "" {
		if t, err := time.Parse(time.RFC3339, f.Properties.Expires); err == nil {
			e.ValidUntil = &t
		}
	}

	if lat, lon, ok := resolveGeometry(f.Geometry); ok {
		e.Latitude = lat
		e.Longitude = lon
		e.HasCoordinates = true
	}

	return e
}

// resolveGeometry extracts a representative coordinate from an alert
// geometry. Points are taken directly. Polygons use the mean of the
// first linear ring; MultiPolygons the mean of the first ring of the
// first polygon only. That is a coarse approximation for concave or
// multi-region shapes, kept for parity with the alert map's behavior.
func resolveGeometry(g *nwsGeometry) (lat, lon float64, ok bool) {
	if g == nil {
		return 0, 0, false
	}

	switch g.Type {
	case "Point":
		var point []float64
		if err := json.Unmarshal(g.Coordinates, &point); err != nil || len(point) < 2 {
			return 0, 0, false
		}
		return point[1], point[0], true
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil || len(rings) == 0 {
			return 0, 0, false
		}
		return geo.RingCentroid(rings[0])
	case "MultiPolygon":
		var polygons [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &polygons); err != nil || len(polygons) == 0 || len(polygons[0]) == 0 {
			return 0, 0, false
		}
		return geo.RingCentroid(polygons[0][0])
	default:
		return 0, 0, false
	}
}
