// Package geo resolves an approximate device location for attendance
// submissions. Lookups are bounded by a fixed timeout and always resolve:
// any failure yields a null location with a reason code instead of an error.
package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Source tags how a location (or its absence) was obtained.
type Source string

const (
	// SourceGeolocation means the provider returned real coordinates.
	SourceGeolocation Source = "geolocation"
	// SourceFallback means lookup failed and the location is null.
	SourceFallback Source = "fallback"
)

// Reason codes for a fallback location.
const (
	ReasonUnsupported      = "unsupported"
	ReasonTimeout          = "timeout"
	ReasonPermissionDenied = "permission_denied"
	ReasonError            = "error"
)

// Location is the result of a lookup. Coordinates are nil when Source is
// SourceFallback, with Reason saying why.
type Location struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
	Source    Source   `json:"source"`
	Reason    string   `json:"reason,omitempty"`
}

// DefaultTimeout bounds a lookup before it resolves as a fallback.
const DefaultTimeout = 7 * time.Second

// Resolver queries a location provider endpoint.
type Resolver struct {
	providerURL string
	timeout     time.Duration
	http        *http.Client
}

// NewResolver creates a resolver. An empty provider URL means lookups resolve
// immediately with reason "unsupported".
func NewResolver(providerURL string, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		providerURL: providerURL,
		timeout:     timeout,
		http:        &http.Client{Timeout: timeout},
	}
}

// Resolve looks up the current location. It never returns an error and never
// blocks longer than the configured timeout.
func (r *Resolver) Resolve(ctx context.Context) Location {
	if r.providerURL == "" {
		return Location{Source: SourceFallback, Reason: ReasonUnsupported}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.providerURL, nil)
	if err != nil {
		return Location{Source: SourceFallback, Reason: ReasonError}
	}
	resp, err := r.http.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Location{Source: SourceFallback, Reason: ReasonTimeout}
		}
		return Location{Source: SourceFallback, Reason: ReasonError}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return Location{Source: SourceFallback, Reason: ReasonPermissionDenied}
	case resp.StatusCode >= 300:
		return Location{Source: SourceFallback, Reason: ReasonError}
	}

	var out struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Accuracy  *float64 `json:"accuracy"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Location{Source: SourceFallback, Reason: ReasonError}
	}
	if out.Latitude == nil || out.Longitude == nil {
		return Location{Source: SourceFallback, Reason: ReasonError}
	}
	return Location{
		Latitude:  out.Latitude,
		Longitude: out.Longitude,
		Accuracy:  out.Accuracy,
		Source:    SourceGeolocation,
	}
}
