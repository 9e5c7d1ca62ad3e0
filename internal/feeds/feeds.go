// Package feeds holds the source adapters that translate each upstream
// feed's native schema into the unified DisasterEvent shape.
package feeds

import "fmt"

// Source names, used for provenance and failure reporting.
const (
	SourceUSGS        = "usgs"
	SourceNWS         = "nws"
	SourceOpenWeather = "openweather"
)

// FetchError is a typed upstream failure: network error, non-2xx
// response, or malformed payload. The aggregator decides whether it
// aborts the whole call or degrades to partial results.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
