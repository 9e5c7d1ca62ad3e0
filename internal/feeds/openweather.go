package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/harsh822v/DisasterSentinel-project/internal/models"
	"github.com/harsh822v/DisasterSentinel-project/internal/severity"
)

// forecastEscalationHours is how many hourly forecast entries are scanned
// for anticipatory rainfall escalation.
const forecastEscalationHours = 12

type owmWeather struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
}

type owmRain struct {
	OneHour   float64 `json:"1h"`
	ThreeHour float64 `json:"3h"`
}

type owmCurrentResponse struct {
	Weather []owmWeather `json:"weather"`
	Main    struct {
		Temp     float64 `json:"temp"`
		Pressure float64 `json:"pressure"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain owmRain `json:"rain"`
	Dt   int64   `json:"dt"`
	Name string  `json:"name"`
}

type owmOneCallResponse struct {
	Current struct {
		Dt        int64        `json:"dt"`
		Temp      float64      `json:"temp"`
		Pressure  float64      `json:"pressure"`
		Humidity  float64      `json:"humidity"`
		WindSpeed float64      `json:"wind_speed"`
		Rain      owmRain      `json:"rain"`
		Weather   []owmWeather `json:"weather"`
	} `json:"current"`
	Hourly []struct {
		Dt   int64   `json:"dt"`
		Rain owmRain `json:"rain"`
	} `json:"hourly"`
	Alerts []owmAlert `json:"alerts"`
}

type owmAlert struct {
	SenderName  string `json:"sender_name"`
	Event       string `json:"event"`
	Start       int64  `json:"start"`
	End         int64  `json:"end"`
	Description string `json:"description"`
}

// OpenWeatherClient derives DisasterEvents from a commercial weather
// feed's current conditions, hourly forecast, and native alerts. A
// missing API key is a configuration gap, not a failure: both fetch
// operations return no events without raising.
type OpenWeatherClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	classifier severity.Classifier
	clock      clockwork.Clock
	logger     *slog.Logger
}

func NewOpenWeatherClient(apiKey, baseURL string, timeout time.Duration, clock clockwork.Clock, logger *slog.Logger) *OpenWeatherClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		classifier: severity.NewClassifier(),
		clock:      clock,
		logger:     logger,
	}
}

// Enabled reports whether an API key is configured.
func (c *OpenWeatherClient) Enabled() bool {
	return c.apiKey != ""
}

// FetchCurrent inspects current conditions at the location and emits at
// most one event, when a severe condition code is present.
func (c *OpenWeatherClient) FetchCurrent(ctx context.Context, lat, lon float64) ([]models.DisasterEvent, error) {
	if !c.Enabled() {
		c.logger.Warn("openweather API key not configured, skipping current conditions")
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/data/2.5/weather?%s", c.baseURL, c.query(lat, lon).Encode())

	var data owmCurrentResponse
	if err := c.get(ctx, endpoint, &data); err != nil {
		return nil, err
	}

	severeCode, ok := firstSevereCode(data.Weather)
	if !ok {
		return nil, nil
	}

	rain3h := normalizeRain3h(data.Rain)
	e := c.conditionEvent(lat, lon, data.Dt, severeCode, conditionDescription(data.Weather), data.Name, data.Wind.Speed, rain3h)
	e.Data.Temperature = &data.Main.Temp
	e.Data.Pressure = &data.Main.Pressure
	e.Data.Humidity = &data.Main.Humidity

	return []models.DisasterEvent{e}, nil
}

// FetchForecastWithAlerts combines the current-conditions rule with the
// feed's native alerts and an anticipatory scan of the next hours of
// forecasted rainfall. Condition-derived and alert-derived events may be
// emitted together; they are never merged.
func (c *OpenWeatherClient) FetchForecastWithAlerts(ctx context.Context, lat, lon float64) ([]models.DisasterEvent, error) {
	if !c.Enabled() {
		c.logger.Warn("openweather API key not configured, skipping forecast")
		return nil, nil
	}

	params := c.query(lat, lon)
	params.Set("exclude", "minutely,daily")
	endpoint := fmt.Sprintf("%s/data/3.0/onecall?%s", c.baseURL, params.Encode())

	var data owmOneCallResponse
	if err := c.get(ctx, endpoint, &data); err != nil {
		return nil, err
	}

	var events []models.DisasterEvent

	if severeCode, ok := firstSevereCode(data.Current.Weather); ok {
		rain3h := data.Current.Rain.OneHour * 3
		e := c.conditionEvent(lat, lon, data.Current.Dt, severeCode, conditionDescription(data.Current.Weather), "", data.Current.WindSpeed, rain3h)
		e.Data.Temperature = &data.Current.Temp
		e.Data.Pressure = &data.Current.Pressure
		e.Data.Humidity = &data.Current.Humidity

		if c.forecastRainEscalates(data) {
			e.Alert = e.Alert.Max(models.AlertWatch)
		}

		events = append(events, e)
	}

	for _, a := range data.Alerts {
		events = append(events, c.alertEvent(lat, lon, a))
	}

	return events, nil
}

// forecastRainEscalates reports whether any of the next hourly entries
// forecasts enough rainfall to warrant raising the conditions event to at
// least watch. The hourly amounts are per-hour, so the three-hour watch
// threshold is divided by three.
func (c *OpenWeatherClient) forecastRainEscalates(data owmOneCallResponse) bool {
	hourly := data.Hourly
	if len(hourly) > forecastEscalationHours {
		hourly = hourly[:forecastEscalationHours]
	}
	threshold := c.classifier.Conditions.RainWatch / 3
	for _, h := range hourly {
		if h.Rain.OneHour >= threshold {
			return true
		}
	}
	return false
}

func (c *OpenWeatherClient) conditionEvent(lat, lon float64, dt int64, severeCode int, description, location string, windSpeed, rain3h float64) models.DisasterEvent {
	ts := time.Unix(dt, 0).UTC()
	if dt == 0 {
		ts = c.clock.Now().UTC()
	}

	return models.DisasterEvent{
		ID:             fmt.Sprintf("%s_%.4f_%.4f_%d", SourceOpenWeather, lat, lon, ts.Unix()),
		Type:           severity.ClassifyConditionCode(severeCode),
		Alert:          c.classifier.ClassifyConditions(windSpeed, rain3h),
		Title:          fmt.Sprintf("Severe Weather: %s", description),
		Description:    description,
		Location:       location,
		Latitude:       lat,
		Longitude:      lon,
		HasCoordinates: true,
		Source:         SourceOpenWeather,
		Timestamp:      ts,
		Data: models.EventData{
			WindSpeed:  &windSpeed,
			Rainfall3h: &rain3h,
			Extra:      map[string]float64{"condition_code": float64(severeCode)},
		},
	}
}

func (c *OpenWeatherClient) alertEvent(lat, lon float64, a owmAlert) models.DisasterEvent {
	start := time.Unix(a.Start, 0).UTC()
	e := models.DisasterEvent{
		ID:             fmt.Sprintf("%s_alert_%.4f_%.4f_%d", SourceOpenWeather, lat, lon, a.Start),
		Type:           severity.InferTypeFromName(a.Event),
		Alert:          severity.ClassifyAlertName(a.Event),
		Title:          a.Event,
		Description:    a.Description,
		Location:       a.SenderName,
		Latitude:       lat,
		Longitude:      lon,
		HasCoordinates: true,
		Source:         SourceOpenWeather,
		Timestamp:      start,
	}
	if a.End > 0 {
		end := time.Unix(a.End, 0).UTC()
		e.ValidUntil = &end
	}
	return e
}

func (c *OpenWeatherClient) query(lat, lon float64) url.Values {
	return url.Values{
		"lat":   {fmt.Sprintf("%f", lat)},
		"lon":   {fmt.Sprintf("%f", lon)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}
}

func (c *OpenWeatherClient) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &FetchError{Source: SourceOpenWeather, Err: fmt.Errorf("creating request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{Source: SourceOpenWeather, Err: fmt.Errorf("doing request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{Source: SourceOpenWeather, Err: fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Source: SourceOpenWeather, Err: fmt.Errorf("decoding resp.Body: %w", err)}
	}
	return nil
}

// firstSevereCode returns the first condition code in the severe set.
func firstSevereCode(conditions []owmWeather) (int, bool) {
	for _, w := range conditions {
		if severity.IsSevereCode(w.ID) {
			return w.ID, true
		}
	}
	return 0, false
}

func conditionDescription(conditions []owmWeather) string {
	for _, w := range conditions {
		if severity.IsSevereCode(w.ID) {
			return w.Description
		}
	}
	if len(conditions) > 0 {
		return conditions[0].Description
	}
	return ""
}

// normalizeRain3h prefers the feed's three-hour accumulation and scales
// the one-hour figure when that is all the feed reports.
func normalizeRain3h(r owmRain) float64 {
	if r.ThreeHour > 0 {
		return r.ThreeHour
	}
	return r.OneHour * 3
}
