// Package group partitions a batch of candidate events into groups that
// plausibly describe the same real-world event, using entity-name overlap
// and date proximity.
//
// The clustering is greedy single-linkage: each record joins the first
// existing group whose representative it resembles, else starts a new group.
// The output is always a total partition of the input. Matching is
// intentionally permissive when dates are absent, since a missing date must
// not silently exclude a true duplicate; this can over-merge unrelated
// events that share one company name when both lack dates — callers needing
// stricter precision should pre-filter by additional context or tighten the
// window with WithMaxDateGap.
package group

import (
	"strings"
	"time"

	"github.com/dealgraph/dealgraph/pkg/events"
	"github.com/dealgraph/dealgraph/pkg/logging"
)

// DefaultMaxDateGap is the widest spread between two records' deal dates
// under which they may still describe the same event.
const DefaultMaxDateGap = 30 * 24 * time.Hour

// Grouper clusters candidate events.
type Grouper struct {
	maxDateGap time.Duration
}

// Option configures a Grouper.
type Option func(*Grouper)

// WithMaxDateGap overrides the date proximity window.
func WithMaxDateGap(gap time.Duration) Option {
	return func(g *Grouper) {
		if gap > 0 {
			g.maxDateGap = gap
		}
	}
}

// New creates a Grouper.
func New(opts ...Option) *Grouper {
	g := &Grouper{maxDateGap: DefaultMaxDateGap}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Group partitions records into same-event clusters. Every input record
// appears in exactly one output group, in input order. O(n·g) over the
// running group count, which is fine at the tens-to-hundreds batch sizes
// this pipeline sees.
func (g *Grouper) Group(records []events.CandidateEvent) [][]events.CandidateEvent {
	if len(records) == 0 {
		return nil
	}

	var groups [][]events.CandidateEvent
	for _, record := range records {
		joined := false
		for i := range groups {
			// The first record of each group is its representative.
			if g.similar(&groups[i][0], &record) {
				groups[i] = append(groups[i], record)
				joined = true
				break
			}
		}
		if !joined {
			groups = append(groups, []events.CandidateEvent{record})
		}
	}

	logging.Debug().
		Int("records", len(records)).
		Int("groups", len(groups)).
		Msg("Grouped candidate events")
	return groups
}

// Group runs a default Grouper over the records.
func Group(records []events.CandidateEvent) [][]events.CandidateEvent {
	return New().Group(records)
}

// similar reports whether two records plausibly describe the same event:
// their company-name sets intersect (case-insensitive) and their deal dates
// are within the window, with a missing date on either side counting as a
// match.
func (g *Grouper) similar(a, b *events.CandidateEvent) bool {
	if !companiesOverlap(a, b) {
		return false
	}
	if a.DealDate == nil || b.DealDate == nil {
		return true
	}
	gap := a.DealDate.Sub(*b.DealDate)
	if gap < 0 {
		gap = -gap
	}
	return gap <= g.maxDateGap
}

func companiesOverlap(a, b *events.CandidateEvent) bool {
	bNames := make(map[string]bool)
	for _, name := range b.Companies() {
		bNames[strings.ToLower(name)] = true
	}
	for _, name := range a.Companies() {
		if bNames[strings.ToLower(name)] {
			return true
		}
	}
	return false
}
