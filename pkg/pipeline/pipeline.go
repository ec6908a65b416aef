// Package pipeline wires the dealgraph core end to end: raw documents are
// run through the extractor, candidates are grouped, each group is resolved
// into a canonical event, and every canonical event is confidence-scored
// against the rest of the batch.
//
// A pipeline call is a single synchronous batch transaction: it receives
// full snapshots, returns full snapshots, and leaks no state between calls.
// Per-record failures are collected on the Result rather than aborting the
// batch.
package pipeline

import (
	"context"
	"time"

	"github.com/dealgraph/dealgraph/pkg/confidence"
	"github.com/dealgraph/dealgraph/pkg/events"
	"github.com/dealgraph/dealgraph/pkg/extract"
	"github.com/dealgraph/dealgraph/pkg/group"
	"github.com/dealgraph/dealgraph/pkg/linkpredict"
	"github.com/dealgraph/dealgraph/pkg/logging"
	"github.com/dealgraph/dealgraph/pkg/reliability"
	"github.com/dealgraph/dealgraph/pkg/resolve"
)

// RawDocument is unstructured text plus its source metadata, to be run
// through the extractor.
type RawDocument struct {
	Text string
	Meta extract.SourceMetadata
}

// Pipeline orchestrates extraction, grouping, resolution, and scoring.
type Pipeline struct {
	extractor extract.Extractor
	grouper   *group.Grouper
	resolver  *resolve.Resolver
	scorer    *confidence.Scorer
	engine    *linkpredict.Engine
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithExtractor substitutes the extraction strategy.
func WithExtractor(extractor extract.Extractor) Option {
	return func(p *Pipeline) {
		if extractor != nil {
			p.extractor = extractor
		}
	}
}

// WithReliabilityTable threads one trust table through the resolver and
// scorer.
func WithReliabilityTable(table *reliability.Table) Option {
	return func(p *Pipeline) {
		if table != nil {
			p.resolver = resolve.New(resolve.WithTable(table))
			p.scorer = confidence.New(confidence.WithTable(table))
		}
	}
}

// WithGrouper substitutes the grouping stage.
func WithGrouper(grouper *group.Grouper) Option {
	return func(p *Pipeline) {
		if grouper != nil {
			p.grouper = grouper
		}
	}
}

// WithResolver substitutes the resolution stage.
func WithResolver(resolver *resolve.Resolver) Option {
	return func(p *Pipeline) {
		if resolver != nil {
			p.resolver = resolver
		}
	}
}

// WithScorer substitutes the scoring stage.
func WithScorer(scorer *confidence.Scorer) Option {
	return func(p *Pipeline) {
		if scorer != nil {
			p.scorer = scorer
		}
	}
}

// WithEngine substitutes the relationship inference engine.
func WithEngine(engine *linkpredict.Engine) Option {
	return func(p *Pipeline) {
		if engine != nil {
			p.engine = engine
		}
	}
}

// New creates a Pipeline with default stages.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor: extract.NewKeywordExtractor(),
		grouper:   group.New(),
		resolver:  resolve.New(),
		scorer:    confidence.New(),
		engine:    linkpredict.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the full reconciliation pass: documents are extracted into
// candidates, merged with any pre-structured candidates, grouped, resolved,
// and scored. An empty input yields an empty (successful) result.
func (p *Pipeline) Process(ctx context.Context, docs []RawDocument, candidates []events.CandidateEvent) (*Result, error) {
	start := time.Now()
	log := logging.FromContext(ctx)

	all := make([]events.CandidateEvent, 0, len(candidates))
	for _, doc := range docs {
		all = append(all, p.extractor.Extract(doc.Text, doc.Meta)...)
	}
	all = append(all, candidates...)

	builder := NewResultBuilder().WithStartTime(start)
	builder.stats.CandidatesExtracted = len(all)

	if len(all) == 0 {
		return builder.Build(), nil
	}

	groups := p.grouper.Group(all)
	builder.stats.GroupsFormed = len(groups)

	// The whole batch serves as the cross-validation pool; the scorer
	// discounts same-source and unrelated entries itself.
	pool := make([]confidence.Input, len(all))
	for i := range all {
		pool[i] = confidence.FromCandidate(&all[i])
	}

	for _, g := range groups {
		canonical, err := p.resolver.ResolveGroup(g)
		if err != nil {
			builder.WithError(err)
			continue
		}
		breakdown := p.scorer.Explain(confidence.FromCanonical(canonical), pool)
		builder.WithEvent(ScoredEvent{
			Event:     canonical,
			Score:     breakdown.Final,
			Breakdown: breakdown,
		})
		builder.stats.ConflictsResolved += canonical.ConflictsResolved
	}

	result := builder.Build()
	log.Info().
		Int("candidates", len(all)).
		Int("groups", len(groups)).
		Int("events", len(result.Events)).
		Int("errors", len(result.Errors)).
		Dur("took", result.Metadata.Duration).
		Msg("Processed event batch")
	return result, nil
}

// Predict runs relationship inference over an entity snapshot, seeding the
// topology with edges derived from the given canonical events.
func (p *Pipeline) Predict(ctx context.Context, entities []events.Entity, resolved []events.CanonicalEvent, maxPredictions int) []events.Edge {
	known := KnownEdges(resolved, entities)
	edges := p.engine.PredictMissing(entities, known, maxPredictions)

	logging.FromContext(ctx).Info().
		Int("entities", len(entities)).
		Int("known_edges", len(known)).
		Int("predicted", len(edges)).
		Msg("Predicted relationships")
	return edges
}

// SimulateImpact proxies to the engine with event-derived known edges.
func (p *Pipeline) SimulateImpact(ctx context.Context, sourceID, targetID string, entities []events.Entity, resolved []events.CanonicalEvent) (*events.ImpactReport, error) {
	return p.engine.SimulateImpact(sourceID, targetID, entities, KnownEdges(resolved, entities))
}

// KnownEdges maps canonical events onto entity pairs by fuzzy name match,
// producing the confirmed edges that seed link prediction.
func KnownEdges(resolved []events.CanonicalEvent, entities []events.Entity) []linkpredict.KnownEdge {
	var known []linkpredict.KnownEdge
	for i := range resolved {
		e := &resolved[i]
		if e.TargetCompany == nil {
			continue
		}
		sourceID := matchEntity(e.SourceCompany, entities)
		targetID := matchEntity(*e.TargetCompany, entities)
		if sourceID == "" || targetID == "" || sourceID == targetID {
			continue
		}
		known = append(known, linkpredict.KnownEdge{SourceID: sourceID, TargetID: targetID})
	}
	return known
}

func matchEntity(name string, entities []events.Entity) string {
	bestID := ""
	bestScore := 0.0
	for i := range entities {
		if score := resolve.NameSimilarity(name, entities[i].Name); score >= 0.8 && score > bestScore {
			bestID = entities[i].ID
			bestScore = score
		}
	}
	return bestID
}
