package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUnsupportedWhenNoProvider(t *testing.T) {
	r := NewResolver("", 0)
	loc := r.Resolve(context.Background())
	assert.Equal(t, SourceFallback, loc.Source)
	assert.Equal(t, ReasonUnsupported, loc.Reason)
	assert.Nil(t, loc.Latitude)
	assert.Nil(t, loc.Longitude)
}

func TestResolveSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"latitude": 12.97, "longitude": 77.59, "accuracy": 30.5}`)
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, time.Second)
	loc := r.Resolve(context.Background())
	assert.Equal(t, SourceGeolocation, loc.Source)
	assert.Empty(t, loc.Reason)
	require.NotNil(t, loc.Latitude)
	assert.InDelta(t, 12.97, *loc.Latitude, 0.001)
	require.NotNil(t, loc.Accuracy)
	assert.InDelta(t, 30.5, *loc.Accuracy, 0.001)
}

func TestResolveTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, 100*time.Millisecond)
	start := time.Now()
	loc := r.Resolve(context.Background())
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, SourceFallback, loc.Source)
	assert.Equal(t, ReasonTimeout, loc.Reason)
}

func TestResolvePermissionDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	loc := NewResolver(srv.URL, time.Second).Resolve(context.Background())
	assert.Equal(t, SourceFallback, loc.Source)
	assert.Equal(t, ReasonPermissionDenied, loc.Reason)
}

func TestResolveBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer srv.Close()

	loc := NewResolver(srv.URL, time.Second).Resolve(context.Background())
	assert.Equal(t, SourceFallback, loc.Source)
	assert.Equal(t, ReasonError, loc.Reason)
}

func TestResolveMissingCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"latitude": null, "longitude": null}`)
	}))
	defer srv.Close()

	loc := NewResolver(srv.URL, time.Second).Resolve(context.Background())
	assert.Equal(t, SourceFallback, loc.Source)
	assert.Equal(t, ReasonError, loc.Reason)
}
