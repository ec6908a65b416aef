package linkpredict

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/dealgraph/dealgraph/pkg/errors"
	"github.com/dealgraph/dealgraph/pkg/events"
)

// Industry-overlap floor for a company to count as affected.
const affectedOverlapFloor = 0.6

// SimulateImpact scores a hypothesized relationship between two entities in
// the batch and estimates its downstream market effect: which other
// companies are exposed through industry overlap, how concentrated the
// shared market becomes, and a coarse innovation outlook.
//
// A source or target ID absent from the batch returns a NotFoundError;
// callers treat that as an expected mistake, not a failure.
func (e *Engine) SimulateImpact(sourceID, targetID string, entities []events.Entity, known []KnownEdge) (*events.ImpactReport, error) {
	byID := entityIndex(entities)
	a, okA := byID[sourceID]
	b, okB := byID[targetID]
	if !okA {
		return nil, errors.NewNotFoundError("company", sourceID)
	}
	if !okB {
		return nil, errors.NewNotFoundError("company", targetID)
	}
	if sourceID == targetID {
		return nil, errors.NewValidationError("target_id", targetID, "cannot simulate a self-relationship")
	}

	g := e.buildGraph(entities, known)
	score, reasoning := e.scorePair(g, a, b)
	relType := e.classify(a, b, score)

	edge := events.Edge{
		SourceID:        a.ID,
		TargetID:        b.ID,
		Type:            relType,
		ConfidenceScore: score,
		Reasoning:       reasoning,
		PredictedDate:   e.now(),
		IsPredicted:     true,
	}

	return &events.ImpactReport{
		Relationship: edge,
		Market: events.MarketImpact{
			AffectedCompanies:   e.affectedCompanies(a, b, entities),
			MarketConcentration: e.marketConcentration(a, b, entities),
			InnovationImpact:    e.innovationImpact(a, b),
		},
		Timeline: timelineFor(relType),
	}, nil
}

// affectedCompanies lists every other entity whose industry overlaps either
// endpoint, ranked by overlap strength.
func (e *Engine) affectedCompanies(a, b *events.Entity, entities []events.Entity) []events.AffectedCompany {
	var affected []events.AffectedCompany
	for i := range entities {
		x := &entities[i]
		if x.ID == a.ID || x.ID == b.ID {
			continue
		}
		overlap := e.industrySimilarity(x.Industry, a.Industry)
		if alt := e.industrySimilarity(x.Industry, b.Industry); alt > overlap {
			overlap = alt
		}
		if overlap <= affectedOverlapFloor {
			continue
		}
		affected = append(affected, events.AffectedCompany{
			ID:       x.ID,
			Name:     x.Name,
			Industry: x.Industry,
			Overlap:  overlap,
		})
	}

	sort.Slice(affected, func(i, j int) bool {
		if affected[i].Overlap != affected[j].Overlap {
			return affected[i].Overlap > affected[j].Overlap
		}
		return affected[i].ID < affected[j].ID
	})
	return affected
}

// marketConcentration is the pair's combined market cap over the total cap
// of their shared industry (both endpoint industries when they differ).
func (e *Engine) marketConcentration(a, b *events.Entity, entities []events.Entity) float64 {
	industries := map[string]bool{
		normalizeIndustry(a.Industry): true,
		normalizeIndustry(b.Industry): true,
	}

	var caps []float64
	for i := range entities {
		if industries[normalizeIndustry(entities[i].Industry)] {
			caps = append(caps, entities[i].MarketCap)
		}
	}
	total, err := stats.Sum(caps)
	if err != nil || total <= 0 {
		return 0
	}

	ratio := (a.MarketCap + b.MarketCap) / total
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

// innovationImpact is a coarse heuristic from prominence and industry mix.
func (e *Engine) innovationImpact(a, b *events.Entity) string {
	bothProminent := a.ExtraordinaryScore > prominenceFloor && b.ExtraordinaryScore > prominenceFloor
	similarity := e.industrySimilarity(a.Industry, b.Industry)

	switch {
	case bothProminent && similarity > 0.5:
		return "transformative"
	case bothProminent || similarity > 0.8:
		return "high"
	case similarity > 0.5:
		return "moderate"
	default:
		return "incremental"
	}
}

func timelineFor(relType events.RelationshipType) events.ImpactTimeline {
	switch relType {
	case events.RelationshipAcquisition, events.RelationshipMerger:
		return events.ImpactTimeline{
			Immediate: "regulatory review and market repricing of both companies",
			ShortTerm: "integration planning and competitive repositioning",
			LongTerm:  "consolidated market share and possible divestitures",
		}
	case events.RelationshipInvestment:
		return events.ImpactTimeline{
			Immediate: "capital infusion announcement",
			ShortTerm: "accelerated product development",
			LongTerm:  "potential acquisition or deeper ownership stake",
		}
	default:
		return events.ImpactTimeline{
			Immediate: "joint announcement and co-marketing",
			ShortTerm: "shared product or channel initiatives",
			LongTerm:  "deepened integration or quiet dissolution",
		}
	}
}
