package engine

import (
	"testing"
	"time"

	"github.com/ahvonen/notesmith/internal/ledger"
)

func TestBuildFilterNamedRanges(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		timeRange string
		wantFrom time.Time
	}{
		{"today", "today", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"week", "week", now.AddDate(0, 0, -7)},
		{"month", "month", now.AddDate(0, -1, 0)},
		{"year", "year", now.AddDate(-1, 0, 0)},
		{"case insensitive", "WEEK", now.AddDate(0, 0, -7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := buildFilter(SearchRequest{TimeRange: tt.timeRange}, now)
			if err != nil {
				t.Fatalf("buildFilter: %v", err)
			}
			if !f.from.Equal(tt.wantFrom) {
				t.Errorf("from = %v, want %v", f.from, tt.wantFrom)
			}
		})
	}
}

func TestBuildFilterRejectsUnknownRange(t *testing.T) {
	_, err := buildFilter(SearchRequest{TimeRange: "decade"}, time.Now())
	if _, ok := err.(*QueryError); !ok {
		t.Errorf("error = %v, want *QueryError", err)
	}
}

func TestBuildFilterExplicitDatesWin(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	f, err := buildFilter(SearchRequest{
		TimeRange: "week",
		StartDate: "2025-01-01",
		EndDate:   "2025-03-31",
	}, now)
	if err != nil {
		t.Fatalf("buildFilter: %v", err)
	}
	if f.from != time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("from = %v", f.from)
	}
	// End date inclusive: anything before April 1st passes.
	if f.to != time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("to = %v", f.to)
	}
}

func TestBuildFilterRejectsBadDates(t *testing.T) {
	for _, req := range []SearchRequest{
		{StartDate: "June 1st"},
		{EndDate: "2025-13-45"},
	} {
		if _, err := buildFilter(req, time.Now()); err == nil {
			t.Errorf("expected error for %+v", req)
		}
	}
}

func TestFilterMatches(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	rec := ledger.Record{
		UpdatedAt: now.AddDate(0, 0, -3),
		Tags:      []string{"Work", "planning"},
	}

	tests := []struct {
		name string
		req  SearchRequest
		want bool
	}{
		{"no filter", SearchRequest{}, true},
		{"within week", SearchRequest{TimeRange: "week"}, true},
		{"outside today", SearchRequest{TimeRange: "today"}, false},
		{"tag match", SearchRequest{Tags: []string{"work"}}, true},
		{"tag any-of", SearchRequest{Tags: []string{"missing", "planning"}}, true},
		{"tag miss", SearchRequest{Tags: []string{"personal"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := buildFilter(tt.req, now)
			if err != nil {
				t.Fatalf("buildFilter: %v", err)
			}
			if got := f.matches(rec); got != tt.want {
				t.Errorf("matches = %v, want %v", got, tt.want)
			}
		})
	}
}
