// Package airquality implements the air.Provider contract against the
// Open-Meteo air-quality API.
package airquality

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pollenops/pollenguard/core/air"
	"github.com/pollenops/pollenguard/core/model"
)

const defaultBaseURL = "https://air-quality-api.open-meteo.com/v1/air-quality"

// Config defines the upstream endpoint and the per-call timeout.
type Config struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	Timezone       string `json:"timezone"`
}

// SetDefaults applies the public endpoint and the original 10 s timeout.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
	if c.Timezone == "" {
		c.Timezone = "America/New_York"
	}
}

// Client fetches current PM10 and US AQI readings.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a Client for the configured endpoint.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

type currentBlock struct {
	USAQI *int     `json:"us_aqi"`
	PM10  *float64 `json:"pm10"`
}

type apiResponse struct {
	Current currentBlock `json:"current"`
}

// Fetch returns the current reading for the coordinates. Network, status
// and decode failures are wrapped in an *air.ProviderError.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (model.Reading, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", "us_aqi,pm10")
	q.Set("timezone", c.cfg.Timezone)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return model.Reading{}, &air.ProviderError{Op: "build request", Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return model.Reading{}, &air.ProviderError{Op: "fetch", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.Reading{}, &air.ProviderError{
			Op:  "fetch",
			Err: fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body),
		}
	}

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return model.Reading{}, &air.ProviderError{Op: "decode", Err: err}
	}

	reading := model.Reading{
		Coords:    model.Coordinates{Lat: lat, Lon: lon},
		FetchedAt: time.Now().UTC(),
	}
	// The API omits fields it has no data for; missing values read as zero,
	// matching the original behavior.
	if decoded.Current.PM10 != nil {
		reading.PollenPM10 = *decoded.Current.PM10
	}
	if decoded.Current.USAQI != nil {
		reading.AQI = *decoded.Current.USAQI
	}
	if err := reading.Validate(); err != nil {
		return model.Reading{}, &air.ProviderError{Op: "validate", Err: err}
	}
	return reading, nil
}
