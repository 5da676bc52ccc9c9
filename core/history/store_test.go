package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pollenops/pollenguard/core/fleet"
	"github.com/pollenops/pollenguard/core/model"
)

func rec(ts time.Time, tier model.Tier) Record {
	return Record{
		Timestamp: ts,
		Location:  "Manheim Atlanta",
		Report: fleet.Report{
			Decision: model.Decision{Tier: tier, Label: tier.String()},
		},
	}
}

func runStoreTests(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	records := []Record{
		rec(base, model.TierLow),
		rec(base.Add(time.Hour), model.TierHigh),
		rec(base.Add(2*time.Hour), model.TierMixed),
	}
	for _, r := range records {
		if err := s.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := s.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}

	since, err := s.Query(ctx, Query{Start: base.Add(30 * time.Minute)})
	if err != nil {
		t.Fatalf("query since: %v", err)
	}
	if len(since) != 2 {
		t.Fatalf("expected 2 records after start filter, got %d", len(since))
	}

	high, err := s.Query(ctx, Query{Tier: model.TierHigh, TierSet: true})
	if err != nil {
		t.Fatalf("query tier: %v", err)
	}
	if len(high) != 1 || high[0].Report.Decision.Tier != model.TierHigh {
		t.Fatalf("expected one HIGH record, got %+v", high)
	}

	low, err := s.Query(ctx, Query{Tier: model.TierLow, TierSet: true})
	if err != nil {
		t.Fatalf("query low: %v", err)
	}
	if len(low) != 1 {
		t.Fatalf("TierSet must distinguish LOW from unfiltered, got %d", len(low))
	}
}

func TestJSONLStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.log")
	s, err := NewJSONLStore(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = s.Close() }()
	runStoreTests(t, s)
}

func TestJSONLStoreSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.log")
	s, err := NewJSONLStore(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	if err := s.Append(ctx, rec(time.Now().UTC(), model.TierLow)); err != nil {
		t.Fatalf("append: %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("{not json\n"); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	got, err := s.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("malformed line should be skipped, got %d records", len(got))
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = s.Close() }()
	runStoreTests(t, s)
}

func TestSQLiteStoreOrdersByTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		if err := s.Append(ctx, rec(base.Add(offset), model.TierLow)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	got, err := s.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatal("records not in timestamp order")
		}
	}
}
