// Package reliability maintains the static trust table mapping data sources
// (domains or channel names) to reliability weights in [0,1]. The table is
// the leaf dependency of conflict resolution and confidence scoring: both
// consult it for every contested field and every factor computation.
package reliability

import (
	"sort"
	"strings"
)

// DefaultWeight is assigned to sources with no table entry. A record from an
// unrecognized source still receives a low-but-nonzero weight rather than
// being rejected.
const DefaultWeight = 0.5

// Table maps normalized source identifiers to reliability weights.
type Table struct {
	weights       map[string]float64
	defaultWeight float64
}

// Option configures a Table.
type Option func(*Table)

// WithWeight sets or overrides the weight for a single source.
func WithWeight(source string, weight float64) Option {
	return func(t *Table) {
		t.weights[Normalize(source)] = clamp01(weight)
	}
}

// WithWeights merges a weight map into the table.
func WithWeights(weights map[string]float64) Option {
	return func(t *Table) {
		for source, weight := range weights {
			t.weights[Normalize(source)] = clamp01(weight)
		}
	}
}

// WithDefaultWeight sets the weight returned for unknown sources.
func WithDefaultWeight(weight float64) Option {
	return func(t *Table) {
		t.defaultWeight = clamp01(weight)
	}
}

// New creates a Table seeded with the standard source weights, then applies
// any options.
func New(opts ...Option) *Table {
	t := &Table{
		weights:       defaultWeights(),
		defaultWeight: DefaultWeight,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Empty creates a Table with no entries, useful for tests and for callers
// that load every weight from configuration.
func Empty(opts ...Option) *Table {
	t := &Table{
		weights:       make(map[string]float64),
		defaultWeight: DefaultWeight,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Weight returns the reliability weight for a source, falling back to the
// default weight when the source is unknown or empty.
func (t *Table) Weight(source string) float64 {
	if source == "" {
		return t.defaultWeight
	}
	if w, ok := t.weights[Normalize(source)]; ok {
		return w
	}
	return t.defaultWeight
}

// MostReliable returns the source with the highest weight. Ties break
// alphabetically so the result is stable. Returns "" for an empty slice.
func (t *Table) MostReliable(sources []string) string {
	if len(sources) == 0 {
		return ""
	}
	sorted := make([]string, len(sources))
	copy(sorted, sources)
	sort.Strings(sorted)

	best := sorted[0]
	bestWeight := t.Weight(best)
	for _, s := range sorted[1:] {
		if w := t.Weight(s); w > bestWeight {
			best = s
			bestWeight = w
		}
	}
	return best
}

// Sources returns all known source identifiers, sorted.
func (t *Table) Sources() []string {
	sources := make([]string, 0, len(t.weights))
	for s := range t.weights {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	return sources
}

// Normalize canonicalizes a source identifier: lowercased, scheme and
// leading "www." stripped, path discarded.
func Normalize(source string) string {
	s := strings.ToLower(strings.TrimSpace(source))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return s
}

// regulatorDomains are official sources whose reports count as verification
// markers in confidence scoring.
var regulatorDomains = map[string]bool{
	"sec.gov":     true,
	"ftc.gov":     true,
	"justice.gov": true,
	"europa.eu":   true,
	"cma.gov.uk":  true,
}

// IsRegulator reports whether a source is an official regulator domain.
func IsRegulator(source string) bool {
	return regulatorDomains[Normalize(source)]
}

// defaultWeights is the standard trust table. Wire services and regulator
// filings rank highest, aggregators middle, social channels lowest.
func defaultWeights() map[string]float64 {
	return map[string]float64{
		"sec.gov":          0.98,
		"reuters.com":      0.95,
		"bloomberg.com":    0.93,
		"wsj.com":          0.92,
		"ft.com":           0.90,
		"businesswire.com": 0.85,
		"prnewswire.com":   0.82,
		"globenewswire.com": 0.82,
		"crunchbase.com":   0.85,
		"techcrunch.com":   0.80,
		"cnbc.com":         0.80,
		"forbes.com":       0.75,
		"businessinsider.com": 0.70,
		"linkedin.com":     0.65,
		"twitter.com":      0.60,
		"x.com":            0.60,
		"hackernews":       0.55,
		"news.ycombinator.com": 0.55,
		"medium.com":       0.50,
		"reddit.com":       0.45,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
