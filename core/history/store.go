// Package history persists fleet evaluation reports for later review.
// Two backends are provided: an append-only JSONL file and SQLite.
package history

import (
	"context"
	"time"

	"github.com/pollenops/pollenguard/core/fleet"
	"github.com/pollenops/pollenguard/core/model"
)

// Record captures one stored evaluation.
type Record struct {
	Timestamp time.Time    `json:"timestamp"`
	Location  string       `json:"location"`
	Report    fleet.Report `json:"report"`
}

// Query defines filters for retrieving records. Zero values match
// everything.
type Query struct {
	Start time.Time
	End   time.Time
	Tier  model.Tier
	// TierSet must be true for Tier to be applied, since TierLow is the
	// zero value.
	TierSet bool
}

func (q Query) matches(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.TierSet && r.Report.Decision.Tier != q.Tier {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
