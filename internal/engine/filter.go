package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/ahvonen/notesmith/internal/ledger"
)

// searchFilter narrows results to a time window and/or tag set. A document
// failing any active condition is removed entirely, not down-ranked.
type searchFilter struct {
	from time.Time
	to   time.Time
	tags map[string]bool
}

// buildFilter translates request filters into a searchFilter. Explicit
// ISO dates win over a named range. Malformed ranges and dates yield a
// QueryError.
func buildFilter(req SearchRequest, now time.Time) (searchFilter, error) {
	var f searchFilter

	switch strings.ToLower(req.TimeRange) {
	case "":
	case "today":
		f.from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case "week":
		f.from = now.AddDate(0, 0, -7)
	case "month":
		f.from = now.AddDate(0, -1, 0)
	case "year":
		f.from = now.AddDate(-1, 0, 0)
	default:
		return f, &QueryError{Reason: fmt.Sprintf("unknown time range %q", req.TimeRange)}
	}

	if req.StartDate != "" {
		t, err := time.ParseInLocation("2006-01-02", req.StartDate, now.Location())
		if err != nil {
			return f, &QueryError{Reason: fmt.Sprintf("bad start date %q", req.StartDate)}
		}
		f.from = t
	}
	if req.EndDate != "" {
		t, err := time.ParseInLocation("2006-01-02", req.EndDate, now.Location())
		if err != nil {
			return f, &QueryError{Reason: fmt.Sprintf("bad end date %q", req.EndDate)}
		}
		// End date is inclusive.
		f.to = t.AddDate(0, 0, 1)
	}

	if len(req.Tags) > 0 {
		f.tags = make(map[string]bool, len(req.Tags))
		for _, tag := range req.Tags {
			f.tags[strings.ToLower(strings.TrimSpace(tag))] = true
		}
	}

	return f, nil
}

// matches reports whether a document passes the filter. Tag filtering
// requires at least one overlapping tag, case-insensitively.
func (f searchFilter) matches(rec ledger.Record) bool {
	if !f.from.IsZero() && rec.UpdatedAt.Before(f.from) {
		return false
	}
	if !f.to.IsZero() && !rec.UpdatedAt.Before(f.to) {
		return false
	}
	if len(f.tags) > 0 {
		found := false
		for _, tag := range rec.Tags {
			if f.tags[strings.ToLower(tag)] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
