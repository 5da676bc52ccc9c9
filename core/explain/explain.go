// Package explain defines the best-effort natural-language explanation
// contract. Failures here never influence the wash decision.
package explain

import (
	"context"
	"errors"

	"github.com/pollenops/pollenguard/core/model"
)

// The closed error set callers may branch on.
var (
	// ErrMissingCredential means no API key is configured; explanation
	// is permanently unavailable for this process.
	ErrMissingCredential = errors.New("explain: missing credential")
	// ErrQuotaExceeded means the upstream rejected the call for quota
	// reasons; further attempts are suppressed until restart.
	ErrQuotaExceeded = errors.New("explain: quota exceeded")
	// ErrUnavailable covers transient failures; retryable on the next
	// user action.
	ErrUnavailable = errors.New("explain: unavailable")
)

// Explainer narrates a decision for a non-technical reader.
type Explainer interface {
	Explain(ctx context.Context, reading model.Reading, decision model.Decision) (string, error)
}

// Nop always reports the explainer as unavailable.
type Nop struct{}

func (Nop) Explain(context.Context, model.Reading, model.Decision) (string, error) {
	return "", ErrMissingCredential
}
