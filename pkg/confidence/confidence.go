// Package confidence computes multi-factor confidence scores for business
// events. Six independent factors — source reliability, data completeness,
// cross-source validation, temporal freshness, semantic consistency, and
// structural quality — are combined by fixed weights, then shaped by a small
// set of global bonuses and penalties.
//
// The scorer is pure: given the same event and related-event set it always
// returns the same score. It holds no state beyond the reliability table and
// an injectable clock.
package confidence

import (
	"time"

	"github.com/dealgraph/dealgraph/pkg/events"
	"github.com/dealgraph/dealgraph/pkg/reliability"
)

// Factor weights. They sum to 1.0.
const (
	WeightSourceReliability   = 0.25
	WeightDataCompleteness    = 0.20
	WeightCrossValidation     = 0.20
	WeightTemporalFreshness   = 0.15
	WeightSemanticConsistency = 0.15
	WeightStructuralQuality   = 0.05
)

// Score bounds.
const (
	MinScore = 0.1
	MaxScore = 1.0
)

// Input is the scorer's view of an event: either a raw candidate or a
// resolved canonical event.
type Input struct {
	SourceCompany string
	TargetCompany *string
	DealType      events.DealType
	DealValue     *float64
	DealDate      *time.Time
	Description   string
	Source        string
	URL           string
	DiscoveredAt  time.Time
	Mentioned     []string
}

// FromCandidate adapts a candidate event for scoring.
func FromCandidate(e *events.CandidateEvent) Input {
	return Input{
		SourceCompany: e.SourceCompany,
		TargetCompany: e.TargetCompany,
		DealType:      e.DealType,
		DealValue:     e.DealValue,
		DealDate:      e.DealDate,
		Description:   e.Description,
		Source:        e.Source,
		URL:           e.URL,
		DiscoveredAt:  e.DiscoveredAt,
		Mentioned:     e.Mentioned,
	}
}

// FromCanonical adapts a canonical event for scoring.
func FromCanonical(e *events.CanonicalEvent) Input {
	return Input{
		SourceCompany: e.SourceCompany,
		TargetCompany: e.TargetCompany,
		DealType:      e.DealType,
		DealValue:     e.DealValue,
		DealDate:      e.DealDate,
		Description:   e.Description,
		Source:        e.Source,
		DiscoveredAt:  e.DiscoveredAt,
	}
}

// Breakdown is the structured factor report returned by Explain.
type Breakdown struct {
	Factors     events.ConfidenceFactors `json:"factors"`
	Weighted    float64                  `json:"weighted"` // before adjustments
	Adjustments []string                 `json:"adjustments,omitempty"`
	Final       float64                  `json:"final"`
}

// Scorer computes confidence scores against a reliability table.
type Scorer struct {
	table *reliability.Table
	now   func() time.Time
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithTable sets the source reliability table.
func WithTable(table *reliability.Table) Option {
	return func(s *Scorer) {
		if table != nil {
			s.table = table
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		s.now = now
	}
}

// New creates a Scorer with the default reliability table.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		table: reliability.New(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the overall confidence for an event in [0.1, 1.0]. The
// related set supplies cross-source validation: a related event confirms
// when it overlaps in company identity and comes from a different source.
func (s *Scorer) Score(event Input, related []Input) float64 {
	return s.Explain(event, related).Final
}

// Explain computes the full factor breakdown behind a score, for
// diagnostics and caller-side thresholds.
func (s *Scorer) Explain(event Input, related []Input) *Breakdown {
	factors := events.ConfidenceFactors{
		SourceReliability:   s.sourceReliability(event),
		DataCompleteness:    s.dataCompleteness(event),
		CrossValidation:     s.crossValidation(event, related),
		TemporalFreshness:   s.temporalFreshness(event),
		SemanticConsistency: s.semanticConsistency(event),
		StructuralQuality:   s.structuralQuality(event),
	}

	weighted := WeightSourceReliability*factors.SourceReliability +
		WeightDataCompleteness*factors.DataCompleteness +
		WeightCrossValidation*factors.CrossValidation +
		WeightTemporalFreshness*factors.TemporalFreshness +
		WeightSemanticConsistency*factors.SemanticConsistency +
		WeightStructuralQuality*factors.StructuralQuality

	breakdown := &Breakdown{
		Factors:  factors,
		Weighted: weighted,
	}

	final := weighted

	// Very large deals are likely well-documented.
	if event.DealValue != nil {
		switch {
		case *event.DealValue >= 1e10:
			final += 0.05
			breakdown.note("large deal value bonus +0.05")
		case *event.DealValue >= 1e9:
			final += 0.02
			breakdown.note("large deal value bonus +0.02")
		}
	}

	// Untrusted or hollow events cap out low regardless of other factors.
	if factors.SourceReliability < 0.3 || factors.DataCompleteness < 0.3 {
		final *= 0.8
		breakdown.note("low reliability or completeness penalty x0.8")
	}

	if allAbove(factors, 0.8) {
		final += 0.1
		breakdown.note("all factors strong bonus +0.1")
	}

	breakdown.Final = clampScore(final)
	return breakdown
}

func (b *Breakdown) note(msg string) {
	b.Adjustments = append(b.Adjustments, msg)
}

func allAbove(f events.ConfidenceFactors, threshold float64) bool {
	return f.SourceReliability > threshold &&
		f.DataCompleteness > threshold &&
		f.CrossValidation > threshold &&
		f.TemporalFreshness > threshold &&
		f.SemanticConsistency > threshold &&
		f.StructuralQuality > threshold
}

func clampScore(v float64) float64 {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}
