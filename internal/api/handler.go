package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harsh822v/DisasterSentinel-project/internal/aggregator"
	"github.com/harsh822v/DisasterSentinel-project/internal/models"
	"github.com/harsh822v/DisasterSentinel-project/internal/stream"
)

// Aggregator is the single aggregation entry point the route layer
// exposes to the surrounding system.
type Aggregator interface {
	GetAll(ctx context.Context, f aggregator.Filter) (aggregator.Result, error)
}

type Handler struct {
	agg         Aggregator
	broadcaster *stream.Broadcaster
}

func NewHandler(agg Aggregator, broadcaster *stream.Broadcaster) *Handler {
	return &Handler{
		agg:         agg,
		broadcaster: broadcaster,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/disasters", h.getDisasters)
	r.GET("/api/disasters/geojson", h.getDisastersGeoJSON)
	r.GET("/api/disasters/stats", h.getStats)
	r.GET("/api/disasters/live", h.live)
	r.GET("/health", h.health)
}

func (h *Handler) getDisasters(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.agg.GetAll(c.Request.Context(), filter)
	if err != nil {
		// Upstream error bodies are never leaked to clients.
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch disaster data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":         result.Events,
		"failed_sources": result.FailedSources,
	})
}

func (h *Handler) getDisastersGeoJSON(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.agg.GetAll(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch disaster data"})
		return
	}

	fc := toGeoJSON(result.Events)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) getStats(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.agg.GetAll(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch disaster data"})
		return
	}

	c.JSON(http.StatusOK, aggregator.ComputeStats(result.Events))
}

// live streams newly observed warning events over SSE.
func (h *Handler) live(c *gin.Context) {
	if h.broadcaster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live stream disabled"})
		return
	}

	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	c.Stream(func(w io.Writer) bool {
		select {
		case e, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("disaster", e)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseFilter validates query parameters before any adapter is invoked.
func parseFilter(c *gin.Context) (aggregator.Filter, error) {
	var f aggregator.Filter

	for _, token := range splitList(c.Query("types")) {
		t, ok := models.ParseDisasterType(token)
		if !ok {
			return f, fmt.Errorf("unknown disaster type: %q", token)
		}
		f.Types = append(f.Types, t)
	}

	for _, token := range splitList(c.Query("alert_types")) {
		a, ok := models.ParseAlertType(token)
		if !ok {
			return f, fmt.Errorf("unknown alert type: %q", token)
		}
		f.AlertTypes = append(f.AlertTypes, a)
	}

	f.TimeRange = c.Query("time_range")
	f.Area = c.Query("area")

	lat, latSet, err := parseFloatParam(c, "lat")
	if err != nil {
		return f, err
	}
	lon, lonSet, err := parseFloatParam(c, "lon")
	if err != nil {
		return f, err
	}
	radius, radiusSet, err := parseFloatParam(c, "radius")
	if err != nil {
		return f, err
	}

	if latSet != lonSet {
		return f, fmt.Errorf("lat and lon must be supplied together")
	}
	if radiusSet && !latSet {
		return f, fmt.Errorf("radius requires lat and lon")
	}
	if latSet {
		if lat < -90 || lat > 90 {
			return f, fmt.Errorf("lat out of range: %v", lat)
		}
		if lon < -180 || lon > 180 {
			return f, fmt.Errorf("lon out of range: %v", lon)
		}
		f.Lat = &lat
		f.Lon = &lon
	}
	if radiusSet {
		if radius <= 0 {
			return f, fmt.Errorf("radius must be positive: %v", radius)
		}
		f.RadiusKm = &radius
	}

	return f, nil
}

func parseFloatParam(c *gin.Context, name string) (float64, bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, true, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var tokens []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(strings.ToLower(t))
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
