// Package explain implements the explain.Explainer contract against the
// Gemini generateContent REST API.
package explain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	coreexplain "github.com/pollenops/pollenguard/core/explain"
	"github.com/pollenops/pollenguard/core/logger"
	"github.com/pollenops/pollenguard/core/model"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Config defines the Gemini endpoint and credentials.
type Config struct {
	BaseURL        string `json:"base_url"`
	Model          string `json:"model"`
	APIKey         string `json:"api_key"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies the public endpoint and model used by the original
// deployment.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Model == "" {
		c.Model = "gemini-flash-latest"
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 15
	}
}

// GeminiClient narrates wash decisions. A quota rejection latches: once the
// upstream reports quota exhaustion no further calls are attempted until
// the process restarts.
type GeminiClient struct {
	cfg          Config
	http         *http.Client
	log          logger.Logger
	quotaTripped atomic.Bool
}

// NewGeminiClient creates a client. An empty API key is allowed; Explain
// then returns ErrMissingCredential without calling out.
func NewGeminiClient(cfg Config, log logger.Logger) *GeminiClient {
	cfg.SetDefaults()
	return &GeminiClient{
		cfg:  cfg,
		http: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:  log,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Explain produces a short narration of the decision for a non-technical
// manager. It is best-effort: callers must treat every error as
// informational and keep the decision unchanged.
func (g *GeminiClient) Explain(ctx context.Context, reading model.Reading, decision model.Decision) (string, error) {
	if g.cfg.APIKey == "" {
		return "", coreexplain.ErrMissingCredential
	}
	if g.quotaTripped.Load() {
		return "", coreexplain.ErrQuotaExceeded
	}

	prompt := fmt.Sprintf(`You are a fleet operations analyst.
Explain this decision clearly for a non-technical manager.

Pollen (PM10): %.1f
Air Quality Index: %d
Decision: %s

Respond in 2-3 sentences.`, reading.PollenPM10, reading.AQI, decision.Label)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", coreexplain.ErrUnavailable, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.cfg.BaseURL, g.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", coreexplain.ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", coreexplain.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", coreexplain.ErrUnavailable, err)
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", coreexplain.ErrUnavailable, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests ||
		(decoded.Error != nil && decoded.Error.Status == "RESOURCE_EXHAUSTED") {
		g.quotaTripped.Store(true)
		g.log.Warnf("explain quota exhausted, disabling until restart")
		return "", coreexplain.ErrQuotaExceeded
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", coreexplain.ErrUnavailable, resp.StatusCode)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", coreexplain.ErrUnavailable)
	}
	return strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text), nil
}
