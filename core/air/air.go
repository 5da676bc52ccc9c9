// Package air defines the environmental reading contract. Implementations
// live under infra/airquality.
package air

import (
	"context"
	"fmt"

	"github.com/pollenops/pollenguard/core/model"
)

// ProviderError wraps a network or parse failure from the air-quality
// upstream. The evaluator decides per call site whether it is fatal.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("air provider: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Provider fetches the current reading for a coordinate pair.
type Provider interface {
	Fetch(ctx context.Context, lat, lon float64) (model.Reading, error)
}
