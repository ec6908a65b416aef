// Package linkpredict infers relationship edges between companies from an
// entity snapshot, combining industry similarity, market-cap affinity, and
// topological link-prediction signals (Jaccard similarity and the
// Adamic–Adar index) into a weighted pairwise score.
//
// The engine keeps no state between calls: its working graph is rebuilt
// from the entity batch (plus any known edges the caller supplies) at the
// start of every invocation, so successive calls are independent
// transactions and results are a pure function of the inputs.
package linkpredict

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dealgraph/dealgraph/pkg/events"
	"github.com/dealgraph/dealgraph/pkg/logging"
)

// Pairwise factor weights.
const (
	weightIndustry    = 0.30
	weightMarketCap   = 0.20
	weightJaccard     = 0.25
	adamicAdarDivisor = 10.0
	adamicAdarCap     = 0.25
	prominenceBonus   = 0.15
	prominenceFloor   = 0.8
)

// DefaultThreshold is the minimum pairwise score at which an edge is
// emitted.
const DefaultThreshold = 0.6

// KnownEdge is an existing, confirmed relationship the caller already holds
// (typically backed by a canonical event). Known pairs are excluded from
// prediction and seed the topology signals.
type KnownEdge struct {
	SourceID string
	TargetID string
}

// Engine predicts missing relationships and simulates their market impact.
type Engine struct {
	threshold float64
	related   map[string][]string
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithThreshold overrides the emission threshold.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) {
		if threshold > 0 && threshold <= 1 {
			e.threshold = threshold
		}
	}
}

// WithRelatedIndustries replaces the curated related-industries table.
func WithRelatedIndustries(related map[string][]string) Option {
	return func(e *Engine) {
		if related != nil {
			e.related = related
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine with the default threshold and industry table.
func New(opts ...Option) *Engine {
	e := &Engine{
		threshold: DefaultThreshold,
		related:   defaultRelatedIndustries(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PredictMissing scores every entity pair without an existing edge and
// returns the pairs at or above the threshold, sorted descending by score
// with a stable ID tiebreak, truncated to maxPredictions. An empty entity
// batch yields an empty result.
func (e *Engine) PredictMissing(entities []events.Entity, known []KnownEdge, maxPredictions int) []events.Edge {
	if len(entities) < 2 {
		return nil
	}

	g := e.buildGraph(entities, known)
	byID := entityIndex(entities)
	now := e.now()

	var edges []events.Edge
	for i := 0; i < len(entities); i++ {
		for j := i + 1; j < len(entities); j++ {
			a, b := &entities[i], &entities[j]
			if g.neighbors(a.ID).contains(b.ID) {
				continue // existing edge
			}

			score, reasoning := e.scorePair(g, a, b)
			if score < e.threshold {
				continue
			}
			edges = append(edges, events.Edge{
				SourceID:        a.ID,
				TargetID:        b.ID,
				Type:            e.classify(a, b, score),
				ConfidenceScore: score,
				Reasoning:       reasoning,
				PredictedDate:   now,
				IsPredicted:     true,
			})
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].ConfidenceScore != edges[j].ConfidenceScore {
			return edges[i].ConfidenceScore > edges[j].ConfidenceScore
		}
		if edges[i].SourceID != edges[j].SourceID {
			return edges[i].SourceID < edges[j].SourceID
		}
		return edges[i].TargetID < edges[j].TargetID
	})

	if maxPredictions > 0 && len(edges) > maxPredictions {
		edges = edges[:maxPredictions]
	}

	logging.Debug().
		Int("entities", len(byID)).
		Int("predictions", len(edges)).
		Msg("Predicted missing relationships")
	return edges
}

// buildGraph assembles the per-call adjacency from scratch: nodes from the
// batch, edges only from the caller-supplied known set.
func (e *Engine) buildGraph(entities []events.Entity, known []KnownEdge) graph {
	g := make(graph, len(entities))
	for i := range entities {
		if g[entities[i].ID] == nil {
			g[entities[i].ID] = make(nodeSet)
		}
	}
	for _, edge := range known {
		// Edges naming entities outside the batch are dropped.
		if _, ok := g[edge.SourceID]; !ok {
			continue
		}
		if _, ok := g[edge.TargetID]; !ok {
			continue
		}
		g.addEdge(edge.SourceID, edge.TargetID)
	}
	return g
}

// scorePair computes the weighted pairwise score in [0,1] and the factor
// reasoning behind it.
func (e *Engine) scorePair(g graph, a, b *events.Entity) (float64, []string) {
	var reasoning []string

	industry := e.industrySimilarity(a.Industry, b.Industry)
	score := weightIndustry * industry
	if industry >= 0.6 {
		reasoning = append(reasoning, fmt.Sprintf("industry similarity %.2f (%s / %s)", industry, a.Industry, b.Industry))
	}

	affinity := marketCapAffinity(a.MarketCap, b.MarketCap)
	score += weightMarketCap * affinity
	if affinity > 0.5 {
		reasoning = append(reasoning, fmt.Sprintf("comparable market caps (affinity %.2f)", affinity))
	}

	if jaccard := g.jaccard(a.ID, b.ID); jaccard > 0 {
		score += weightJaccard * jaccard
		reasoning = append(reasoning, fmt.Sprintf("shared partners (jaccard %.2f)", jaccard))
	}

	if aa := g.adamicAdar(a.ID, b.ID); aa > 0 {
		normalized := aa / adamicAdarDivisor
		if normalized > adamicAdarCap {
			normalized = adamicAdarCap
		}
		score += normalized
		reasoning = append(reasoning, fmt.Sprintf("rare common connections (adamic-adar %.2f)", aa))
	}

	if a.ExtraordinaryScore > prominenceFloor && b.ExtraordinaryScore > prominenceFloor {
		score += prominenceBonus
		reasoning = append(reasoning, "both companies highly prominent")
	}

	if score > 1.0 {
		score = 1.0
	}
	return score, reasoning
}

// classify maps a scored pair to a relationship type. Same-industry pairs
// with lopsided market caps read as acquisitions; peers read as mergers.
func (e *Engine) classify(a, b *events.Entity, score float64) events.RelationshipType {
	industry := e.industrySimilarity(a.Industry, b.Industry)
	affinity := marketCapAffinity(a.MarketCap, b.MarketCap)

	switch {
	case industry > 0.8 && affinity < 0.3:
		return events.RelationshipAcquisition
	case industry > 0.8:
		return events.RelationshipMerger
	case industry > 0.5:
		return events.RelationshipStrategicAlliance
	case score > 0.7:
		return events.RelationshipInvestment
	default:
		return events.RelationshipPartnership
	}
}

// industrySimilarity: identical industries score 1.0, directly related 0.8,
// sharing a related category 0.6, anything else a 0.1 floor.
func (e *Engine) industrySimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.1
	}
	na, nb := normalizeIndustry(a), normalizeIndustry(b)
	if na == nb {
		return 1.0
	}
	if containsIndustry(e.related[na], nb) || containsIndustry(e.related[nb], na) {
		return 0.8
	}
	for category, members := range e.related {
		if category == na || category == nb {
			continue
		}
		if containsIndustry(members, na) && containsIndustry(members, nb) {
			return 0.6
		}
	}
	return 0.1
}

// marketCapAffinity is sqrt(min/max), 1.0 for equals, approaching 0 for
// wildly mismatched sizes.
func marketCapAffinity(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > b {
		a, b = b, a
	}
	return math.Sqrt(a / b)
}

func entityIndex(entities []events.Entity) map[string]*events.Entity {
	byID := make(map[string]*events.Entity, len(entities))
	for i := range entities {
		byID[entities[i].ID] = &entities[i]
	}
	return byID
}
