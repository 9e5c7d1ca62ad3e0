// Package timerange resolves user-facing time-range tokens to the
// canonical window values the feed adapters expect.
package timerange

import "strings"

const (
	Hour    = "hour"
	Day     = "1day"
	Week    = "7days"
	Month   = "30days"
	Default = Day
)

// Resolve maps a user token to its canonical window value. Unrecognized
// or empty tokens resolve to the one-day window. Only the seismic feed
// varies its endpoint by window; the other adapters ignore the result.
func Resolve(token string) string {
	switch strings.ToLower(token) {
	case "1h", "hour":
		return Hour
	case "24h", "1d", "1day":
		return Day
	case "7d", "7days", "week":
		return Week
	case "30d", "30days", "month":
		return Month
	default:
		return Default
	}
}
