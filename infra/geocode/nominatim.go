// Package geocode implements the geo.Resolver contract against the
// OpenStreetMap Nominatim API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/pollenops/pollenguard/core/geo"
	"github.com/pollenops/pollenguard/core/logger"
	"github.com/pollenops/pollenguard/core/model"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Config defines the upstream endpoint, per-call timeout and cache window.
type Config struct {
	BaseURL            string `json:"base_url"`
	TimeoutSeconds     int    `json:"timeout_seconds"`
	UserAgent          string `json:"user_agent"`
	CacheWindowSeconds int    `json:"cache_window_seconds"`
}

// SetDefaults applies sane defaults. Nominatim requires an identifying
// User-Agent.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
	if c.UserAgent == "" {
		c.UserAgent = "pollenguard/1.0"
	}
	if c.CacheWindowSeconds == 0 {
		c.CacheWindowSeconds = 600
	}
}

type cacheEntry struct {
	place   geo.Place
	err     error
	expires time.Time
}

// Client resolves place queries via Nominatim. Identical queries within the
// cache window return the cached result, making repeated lookups idempotent
// and keeping request volume within the public API's usage policy.
type Client struct {
	cfg  Config
	http *http.Client
	log  logger.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewClient creates a Client for the configured endpoint.
func NewClient(cfg Config, log logger.Logger) *Client {
	cfg.SetDefaults()
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:   log,
		cache: make(map[string]cacheEntry),
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		Country string `json:"country"`
	} `json:"address"`
}

// Forward geocodes a free-text query. An empty result set maps to
// geo.ErrNotFound; transport and decode failures are wrapped.
func (c *Client) Forward(ctx context.Context, query string) (geo.Place, error) {
	if query == "" {
		return geo.Place{}, geo.ErrNotFound
	}
	if e, ok := c.cached("fwd:" + query); ok {
		return e.place, e.err
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("limit", "1")

	var results []searchResult
	if err := c.get(ctx, "/search?"+q.Encode(), &results); err != nil {
		return geo.Place{}, fmt.Errorf("forward geocode %q: %w", query, err)
	}
	if len(results) == 0 {
		c.store("fwd:"+query, geo.Place{}, geo.ErrNotFound)
		return geo.Place{}, geo.ErrNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return geo.Place{}, fmt.Errorf("forward geocode %q: parse lat: %w", query, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return geo.Place{}, fmt.Errorf("forward geocode %q: parse lon: %w", query, err)
	}
	place := geo.Place{
		Coords:      model.Coordinates{Lat: lat, Lon: lon},
		DisplayName: results[0].DisplayName,
		Country:     results[0].Address.Country,
	}
	c.store("fwd:"+query, place, nil)
	return place, nil
}

// Reverse names a coordinate pair. Any failure degrades to a formatted
// "lat, lon" string; callers never see an error.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) string {
	key := fmt.Sprintf("rev:%.4f:%.4f", lat, lon)
	if e, ok := c.cached(key); ok && e.err == nil {
		return e.place.DisplayName
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "jsonv2")

	var result searchResult
	if err := c.get(ctx, "/reverse?"+q.Encode(), &result); err != nil {
		c.log.Warnf("reverse geocode (%.4f, %.4f): %v", lat, lon, err)
		return geo.FormatCoords(lat, lon)
	}
	if result.DisplayName == "" {
		return geo.FormatCoords(lat, lon)
	}
	c.store(key, geo.Place{DisplayName: result.DisplayName}, nil)
	return result.DisplayName
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) cached(key string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.cache[key]
	if !ok || time.Now().After(e.expires) {
		return cacheEntry{}, false
	}
	return e, true
}

func (c *Client) store(key string, place geo.Place, err error) {
	c.mu.Lock()
	c.cache[key] = cacheEntry{
		place:   place,
		err:     err,
		expires: time.Now().Add(time.Duration(c.cfg.CacheWindowSeconds) * time.Second),
	}
	c.mu.Unlock()
}
