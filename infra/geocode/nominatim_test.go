package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pollenops/pollenguard/core/geo"
	"github.com/pollenops/pollenguard/infra/logger"
)

func TestForward(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent header")
		}
		if got := r.URL.Query().Get("format"); got != "jsonv2" {
			t.Errorf("unexpected format param: %q", got)
		}
		_, _ = w.Write([]byte(`[{"lat":"33.66","lon":"-84.53","display_name":"Manheim Atlanta, GA","address":{"country":"United States"}}]`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, logger.NopLogger{})
	place, err := c.Forward(context.Background(), "Manheim Atlanta")
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if place.Coords.Lat != 33.66 || place.Coords.Lon != -84.53 {
		t.Fatalf("unexpected coords: %+v", place.Coords)
	}
	if place.DisplayName != "Manheim Atlanta, GA" || place.Country != "United States" {
		t.Fatalf("unexpected place: %+v", place)
	}

	// Second identical query is served from the cache.
	if _, err := c.Forward(context.Background(), "Manheim Atlanta"); err != nil {
		t.Fatalf("cached forward: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 upstream hit, got %d", hits.Load())
	}
}

func TestForwardNotFound(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, logger.NopLogger{})
	if _, err := c.Forward(context.Background(), "nowhere"); !errors.Is(err, geo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// Negative results are cached too.
	if _, err := c.Forward(context.Background(), "nowhere"); !errors.Is(err, geo.ErrNotFound) {
		t.Fatalf("expected cached ErrNotFound, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 upstream hit, got %d", hits.Load())
	}
}

func TestForwardEmptyQuery(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:0"}, logger.NopLogger{})
	if _, err := c.Forward(context.Background(), ""); !errors.Is(err, geo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"lat":"33.66","lon":"-84.53","display_name":"Carson Loop, Atlanta"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, logger.NopLogger{})
	if got := c.Reverse(context.Background(), 33.66, -84.53); got != "Carson Loop, Atlanta" {
		t.Fatalf("unexpected name: %q", got)
	}
}

func TestReverseDegradesToCoords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, logger.NopLogger{})
	if got := c.Reverse(context.Background(), 33.66, -84.53); got != geo.FormatCoords(33.66, -84.53) {
		t.Fatalf("expected formatted coords, got %q", got)
	}
}
