// Package resolve merges a group of candidate events that describe the same
// real-world event into a single canonical event, one field at a time. Each
// field type has its own strategy: monetary values within tolerance are
// reliability-weighted averaged, dates defer to the most reliable source,
// company names are fuzzy-clustered, deal types are settled by weighted
// vote, and descriptions are taken verbatim from the most reliable source.
//
// Every per-field resolution that saw more than one distinct value is
// recorded as a ConflictRecord on the canonical event. Unparsable or absent
// values never abort a resolution: a field absent from all records is simply
// omitted, and the event's confidence score reflects data quality rather
// than hiding it.
//
// Resolution is a pure function of its inputs plus the reliability table, so
// resolving the same group twice yields the same canonical event (modulo
// the generated ID and resolution timestamp).
package resolve

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealgraph/dealgraph/pkg/errors"
	"github.com/dealgraph/dealgraph/pkg/events"
	"github.com/dealgraph/dealgraph/pkg/logging"
	"github.com/dealgraph/dealgraph/pkg/reliability"
)

// Defaults for the per-field strategies.
const (
	// DefaultFuzzyThreshold is the minimum normalized name similarity at
	// which two spellings merge into one cluster.
	DefaultFuzzyThreshold = 0.8

	// DefaultValueTolerance is the max/min ratio under which monetary
	// values are close enough to average.
	DefaultValueTolerance = 1.1

	// DefaultDateConflictWindow is the date spread beyond which a date
	// resolution is flagged as a larger conflict.
	DefaultDateConflictWindow = 7 * 24 * time.Hour
)

// Confidence shaping constants.
const (
	corroborationBonus    = 0.05
	corroborationBonusCap = 0.20
	conflictPenalty       = 0.05
	minConfidence         = 0.1
	maxConfidence         = 1.0
)

// Resolver merges candidate event groups into canonical events.
type Resolver struct {
	table              *reliability.Table
	fuzzyThreshold     float64
	valueTolerance     float64
	dateConflictWindow time.Duration
	now                func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTable sets the source reliability table.
func WithTable(table *reliability.Table) Option {
	return func(r *Resolver) {
		if table != nil {
			r.table = table
		}
	}
}

// WithFuzzyThreshold overrides the name-similarity merge threshold.
func WithFuzzyThreshold(threshold float64) Option {
	return func(r *Resolver) {
		if threshold > 0 && threshold <= 1 {
			r.fuzzyThreshold = threshold
		}
	}
}

// WithValueTolerance overrides the max/min ratio for value averaging.
func WithValueTolerance(tolerance float64) Option {
	return func(r *Resolver) {
		if tolerance >= 1 {
			r.valueTolerance = tolerance
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// New creates a Resolver with the default reliability table and thresholds.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		table:              reliability.New(),
		fuzzyThreshold:     DefaultFuzzyThreshold,
		valueTolerance:     DefaultValueTolerance,
		dateConflictWindow: DefaultDateConflictWindow,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveGroup resolves one group of candidate events into a canonical
// event. An empty group returns ErrEmptyBatch; a singleton group
// short-circuits to a trivial resolution whose confidence is the sole
// source's reliability weight.
func (r *Resolver) ResolveGroup(records []events.CandidateEvent) (*events.CanonicalEvent, error) {
	switch len(records) {
	case 0:
		return nil, errors.ErrEmptyBatch
	case 1:
		return r.resolveSingle(&records[0]), nil
	}

	sources := make([]string, len(records))
	for i := range records {
		sources[i] = records[i].Source
	}
	mostReliable := r.table.MostReliable(sources)

	var conflicts []events.ConflictRecord
	record := func(c *events.ConflictRecord) {
		if c != nil {
			conflicts = append(conflicts, *c)
		}
	}

	sourceCompany, c := r.resolveCompanyField("source_company", records, func(e *events.CandidateEvent) string {
		return e.SourceCompany
	})
	record(c)

	targetCompany, c := r.resolveCompanyField("target_company", records, func(e *events.CandidateEvent) string {
		if e.TargetCompany == nil {
			return ""
		}
		return *e.TargetCompany
	})
	record(c)

	dealValue, c := r.resolveValue(records)
	record(c)

	dealDate, c := r.resolveDate(records)
	record(c)

	dealType, c := r.resolveDealType(records)
	record(c)

	description, c := r.resolveDescription(records)
	record(c)

	canonical := &events.CanonicalEvent{
		ID:                uuid.NewString(),
		SourceCompany:     sourceCompany,
		DealType:          dealType,
		DealValue:         dealValue,
		DealDate:          dealDate,
		Description:       description,
		Source:            mostReliable,
		DiscoveredAt:      earliestDiscovery(records),
		SourceCount:       len(records),
		ConflictsResolved: len(conflicts),
		Resolution: events.ResolutionMetadata{
			Sources:    sources,
			Conflicts:  conflicts,
			ResolvedAt: r.now(),
		},
	}
	if targetCompany != "" {
		canonical.TargetCompany = events.Ptr(targetCompany)
	}
	canonical.ConfidenceScore = r.groupConfidence(sources, len(conflicts))

	logging.Debug().
		Str("event_id", canonical.ID).
		Int("sources", len(records)).
		Int("conflicts", len(conflicts)).
		Float64("confidence", canonical.ConfidenceScore).
		Msg("Resolved event group")
	return canonical, nil
}

// resolveSingle is the trivial no-conflict resolution for a lone record.
func (r *Resolver) resolveSingle(e *events.CandidateEvent) *events.CanonicalEvent {
	return &events.CanonicalEvent{
		ID:              uuid.NewString(),
		SourceCompany:   e.SourceCompany,
		TargetCompany:   e.TargetCompany,
		DealType:        e.DealType,
		DealValue:       e.DealValue,
		DealDate:        e.DealDate,
		Description:     e.Description,
		Source:          e.Source,
		DiscoveredAt:    e.DiscoveredAt,
		ConfidenceScore: clampConfidence(r.table.Weight(e.Source)),
		SourceCount:     1,
		Resolution: events.ResolutionMetadata{
			Sources:    []string{e.Source},
			ResolvedAt: r.now(),
		},
	}
}

// groupConfidence combines the contributing sources' weights with
// corroboration bonuses and conflict penalties:
// reliability-weighted mean of weights, +0.05 per corroborating source
// beyond the first (capped at +0.20), −0.05 per resolved conflict,
// clamped to [0.1, 1.0].
func (r *Resolver) groupConfidence(sources []string, conflictCount int) float64 {
	var weightSum, weightedSum float64
	for _, s := range sources {
		w := r.table.Weight(s)
		weightSum += w
		weightedSum += w * w
	}
	if weightSum == 0 {
		return minConfidence
	}
	confidence := weightedSum / weightSum

	bonus := corroborationBonus * float64(len(sources)-1)
	if bonus > corroborationBonusCap {
		bonus = corroborationBonusCap
	}
	confidence += bonus
	confidence -= conflictPenalty * float64(conflictCount)

	return clampConfidence(confidence)
}

func clampConfidence(v float64) float64 {
	if v < minConfidence {
		return minConfidence
	}
	if v > maxConfidence {
		return maxConfidence
	}
	return v
}

func earliestDiscovery(records []events.CandidateEvent) time.Time {
	earliest := records[0].DiscoveredAt
	for _, rec := range records[1:] {
		if rec.DiscoveredAt.Before(earliest) {
			earliest = rec.DiscoveredAt
		}
	}
	return earliest
}
