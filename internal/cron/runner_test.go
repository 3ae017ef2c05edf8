package cronrunner

import (
	"context"
	"testing"
	"time"
)

func TestRunnerSchedulesInUTC(t *testing.T) {
	r := New(nil, nil)
	if got := r.cron.Location(); got != time.UTC {
		t.Fatalf("scheduler location=%v want UTC", got)
	}

	if _, err := r.Add("daily_snapshot", "0 0 0 * * *", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("add: %v", err)
	}
	entries := r.cron.Entries()
	if len(entries) != 1 {
		t.Fatalf("entries=%d want 1", len(entries))
	}

	// The daily spec must resolve to midnight UTC, not local midnight.
	from := time.Date(2026, 5, 10, 7, 30, 0, 0, time.UTC)
	next := entries[0].Schedule.Next(from)
	want := time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next=%v want %v", next, want)
	}
}

func TestRunnerRejectsMalformedSpec(t *testing.T) {
	r := New(nil, nil)
	if _, err := r.Add("bad", "not a spec", func(context.Context) error { return nil }); err == nil {
		t.Fatalf("expected an error for a malformed spec")
	}
}
