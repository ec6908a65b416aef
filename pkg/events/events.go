// Package events defines the core data model for the dealgraph pipeline:
// candidate event reports as observed from individual sources, canonical
// events produced by conflict resolution, and the entity/relationship types
// consumed and produced by the inference engine.
package events

import (
	"fmt"
	"strings"
	"time"
)

// DealType classifies the kind of business event a record describes.
type DealType string

// Deal types recognized by the extractor and resolver.
const (
	DealTypeAcquisition DealType = "acquisition"
	DealTypeMerger      DealType = "merger"
	DealTypePartnership DealType = "partnership"
	DealTypeInvestment  DealType = "investment"
	DealTypeFunding     DealType = "funding"
	DealTypeIPO         DealType = "ipo"
	DealTypeExit        DealType = "exit"
	DealTypeUnknown     DealType = "unknown"
)

// String returns the string representation of a deal type.
func (dt DealType) String() string {
	return string(dt)
}

// IsValid reports whether the deal type is one of the recognized values.
func (dt DealType) IsValid() bool {
	switch dt {
	case DealTypeAcquisition, DealTypeMerger, DealTypePartnership,
		DealTypeInvestment, DealTypeFunding, DealTypeIPO, DealTypeExit,
		DealTypeUnknown:
		return true
	}
	return false
}

// ParseDealType normalizes a raw string into a DealType, returning
// DealTypeUnknown for anything unrecognized.
func ParseDealType(s string) DealType {
	dt := DealType(strings.ToLower(strings.TrimSpace(s)))
	if dt.IsValid() {
		return dt
	}
	return DealTypeUnknown
}

// CandidateEvent is one source's report of one business event. It is
// immutable once created; the extractor is the only producer.
//
// Optional fields are pointers so that "absent" is distinguishable from a
// zero value downstream.
type CandidateEvent struct {
	ID            string     `json:"id"`
	SourceCompany string     `json:"source_company"`
	TargetCompany *string    `json:"target_company,omitempty"`
	DealType      DealType   `json:"deal_type"`
	DealValue     *float64   `json:"deal_value,omitempty"` // absolute currency units
	DealDate      *time.Time `json:"deal_date,omitempty"`

	// RawDealValue preserves money-shaped text that was present in the
	// source but could not be parsed; DealValue stays nil in that case and
	// the resolver records the raw spelling as a fallback.
	RawDealValue string `json:"raw_deal_value,omitempty"`
	Description   string     `json:"description"`
	Source        string     `json:"source"` // domain or channel name
	URL           string     `json:"url,omitempty"`
	DiscoveredAt  time.Time  `json:"discovered_at"`

	// Mentioned holds entity names found alongside the primary pair,
	// used by the scorer's semantic consistency check.
	Mentioned []string `json:"mentioned,omitempty"`
}

// Companies returns the non-empty company names on the record.
func (e *CandidateEvent) Companies() []string {
	names := make([]string, 0, 2)
	if e.SourceCompany != "" {
		names = append(names, e.SourceCompany)
	}
	if e.TargetCompany != nil && *e.TargetCompany != "" {
		names = append(names, *e.TargetCompany)
	}
	return names
}

// ResolutionMethod identifies how a field conflict was settled.
type ResolutionMethod string

// Resolution methods recorded on ConflictRecords.
const (
	MethodWeightedAverage ResolutionMethod = "weighted_average"
	MethodMostReliable    ResolutionMethod = "most_reliable"
	MethodWeightedVote    ResolutionMethod = "weighted_vote"
	MethodFuzzyCluster    ResolutionMethod = "fuzzy_cluster"
	MethodFallback        ResolutionMethod = "fallback" // value present but unparseable
)

// FieldValue is one source's contribution to a contested field.
type FieldValue struct {
	Value  any     `json:"value"`
	Source string  `json:"source"`
	Weight float64 `json:"weight"`
}

// ConflictRecord captures a per-field disagreement within a group and how it
// was resolved. The resolved value is always one of, or derived from, the
// input value set.
type ConflictRecord struct {
	Field      string           `json:"field"`
	Values     []FieldValue     `json:"values"`
	Method     ResolutionMethod `json:"method"`
	Resolved   any              `json:"resolved"`
	Confidence float64          `json:"confidence"` // contribution of this resolution
	Flagged    bool             `json:"flagged,omitempty"` // larger-than-expected disagreement
}

// ResolutionMetadata records how a canonical event was assembled.
type ResolutionMetadata struct {
	Sources    []string         `json:"sources"`
	Conflicts  []ConflictRecord `json:"conflicts,omitempty"`
	ResolvedAt time.Time        `json:"resolved_at"`
}

// CanonicalEvent is the single resolved representation of a real-world
// business event. It is never mutated after creation; a refresh produces a
// new CanonicalEvent.
type CanonicalEvent struct {
	ID            string     `json:"id"`
	SourceCompany string     `json:"source_company"`
	TargetCompany *string    `json:"target_company,omitempty"`
	DealType      DealType   `json:"deal_type"`
	DealValue     *float64   `json:"deal_value,omitempty"`
	DealDate      *time.Time `json:"deal_date,omitempty"`
	Description   string     `json:"description"`
	Source        string     `json:"source"` // most reliable contributing source
	DiscoveredAt  time.Time  `json:"discovered_at"`

	ConfidenceScore   float64            `json:"confidence_score"` // always in [0.1, 1.0]
	SourceCount       int                `json:"source_count"`
	ConflictsResolved int                `json:"conflicts_resolved"`
	Resolution        ResolutionMetadata `json:"resolution_metadata"`
}

// Summary returns a one-line human-readable description of the event.
func (e *CanonicalEvent) Summary() string {
	parties := e.SourceCompany
	if e.TargetCompany != nil {
		parties += " → " + *e.TargetCompany
	}
	s := fmt.Sprintf("%s: %s", e.DealType, parties)
	if e.DealValue != nil {
		s += fmt.Sprintf(" ($%.1fB)", *e.DealValue/1e9)
	}
	if e.DealDate != nil {
		s += " on " + e.DealDate.Format("2006-01-02")
	}
	return s
}

// ConfidenceFactors holds the six independent sub-scores, each in [0,1],
// computed fresh per scoring call.
type ConfidenceFactors struct {
	SourceReliability   float64 `json:"source_reliability"`
	DataCompleteness    float64 `json:"data_completeness"`
	CrossValidation     float64 `json:"cross_validation"`
	TemporalFreshness   float64 `json:"temporal_freshness"`
	SemanticConsistency float64 `json:"semantic_consistency"`
	StructuralQuality   float64 `json:"structural_quality"`
}

// Entity is a company as supplied by the external registry. The inference
// engine treats it as read-only per batch.
type Entity struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Industry           string  `json:"industry"`
	MarketCap          float64 `json:"market_cap"`
	ExtraordinaryScore float64 `json:"extraordinary_score"`
}

// RelationshipType classifies an inferred edge between two entities.
type RelationshipType string

// Relationship types produced by the inference engine.
const (
	RelationshipAcquisition       RelationshipType = "acquisition"
	RelationshipMerger            RelationshipType = "merger"
	RelationshipPartnership       RelationshipType = "partnership"
	RelationshipInvestment        RelationshipType = "investment"
	RelationshipStrategicAlliance RelationshipType = "strategic_alliance"
)

// Edge is a predicted relationship between two entities. Edges produced by
// the inference engine are always marked predicted, distinguishing them from
// edges backed by a CanonicalEvent.
type Edge struct {
	SourceID        string           `json:"source_company_id"`
	TargetID        string           `json:"target_company_id"`
	Type            RelationshipType `json:"relationship_type"`
	ConfidenceScore float64          `json:"confidence_score"`
	Reasoning       []string         `json:"reasoning"`
	PredictedDate   time.Time        `json:"predicted_date"`
	IsPredicted     bool             `json:"is_predicted"`
}

// AffectedCompany is one entry in an impact report's fallout list.
type AffectedCompany struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Industry string  `json:"industry"`
	Overlap  float64 `json:"overlap"`
}

// MarketImpact aggregates the downstream effect of a hypothesized
// relationship.
type MarketImpact struct {
	AffectedCompanies   []AffectedCompany `json:"affected_companies"`
	MarketConcentration float64           `json:"market_concentration"`
	InnovationImpact    string            `json:"innovation_impact"`
}

// ImpactTimeline gives coarse expectations at three horizons.
type ImpactTimeline struct {
	Immediate string `json:"immediate"`
	ShortTerm string `json:"short_term"`
	LongTerm  string `json:"long_term"`
}

// ImpactReport is the full output of a relationship impact simulation.
type ImpactReport struct {
	Relationship Edge           `json:"relationship"`
	Market       MarketImpact   `json:"market_impact"`
	Timeline     ImpactTimeline `json:"timeline"`
}

// Ptr returns a pointer to v. Convenience for building optional fields.
func Ptr[T any](v T) *T {
	return &v
}
