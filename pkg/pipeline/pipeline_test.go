package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealgraph/dealgraph/pkg/events"
	"github.com/dealgraph/dealgraph/pkg/extract"
	"github.com/dealgraph/dealgraph/pkg/pipeline"
)

func candidate(source, company, target string, value float64, date time.Time) events.CandidateEvent {
	c := events.CandidateEvent{
		ID:            source + "-" + company,
		SourceCompany: company,
		DealType:      events.DealTypeAcquisition,
		Description:   company + " acquires " + target,
		Source:        source,
		DiscoveredAt:  date,
	}
	if target != "" {
		c.TargetCompany = events.Ptr(target)
	}
	if value > 0 {
		c.DealValue = events.Ptr(value)
	}
	c.DealDate = events.Ptr(date)
	return c
}

func TestProcessEmptyInput(t *testing.T) {
	result, err := pipeline.New().Process(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.True(t, result.IsSuccess())
	assert.Empty(t, result.Events)
	assert.Zero(t, result.Metadata.Stats.CandidatesExtracted)
}

func TestProcessReconcilesBatch(t *testing.T) {
	date := time.Date(2022, time.January, 18, 0, 0, 0, 0, time.UTC)
	candidates := []events.CandidateEvent{
		candidate("reuters.com", "Microsoft", "Activision Blizzard", 68.7e9, date),
		candidate("bloomberg.com", "Microsoft", "Activision Blizzard", 68.7e9, date),
		candidate("techcrunch.com", "Microsoft", "Activision", 69.0e9, date.AddDate(0, 0, 1)),
		candidate("reuters.com", "Salesforce", "Slack", 27.7e9, date),
	}

	result, err := pipeline.New().Process(context.Background(), nil, candidates)
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	// Three Microsoft reports collapse into one canonical event; the
	// Salesforce report stands alone.
	require.Len(t, result.Events, 2)
	assert.Equal(t, 4, result.Metadata.Stats.CandidatesExtracted)
	assert.Equal(t, 2, result.Metadata.Stats.GroupsFormed)
	assert.Equal(t, 2, result.Metadata.Stats.EventsResolved)

	var microsoft *pipeline.ScoredEvent
	for i := range result.Events {
		if result.Events[i].Event.SourceCompany == "Microsoft" {
			microsoft = &result.Events[i]
		}
	}
	require.NotNil(t, microsoft)
	assert.Equal(t, 3, microsoft.Event.SourceCount)
	assert.GreaterOrEqual(t, microsoft.Event.ConflictsResolved, 1)

	// Every scored event carries a bounded batch-level score and a
	// breakdown.
	for _, scored := range result.Events {
		assert.GreaterOrEqual(t, scored.Score, 0.1)
		assert.LessOrEqual(t, scored.Score, 1.0)
		require.NotNil(t, scored.Breakdown)
		assert.Equal(t, scored.Breakdown.Final, scored.Score)
	}

	assert.Contains(t, result.Summary(), "2 events")
	assert.NotEmpty(t, result.Report())
}

func TestProcessExtractsDocuments(t *testing.T) {
	docs := []pipeline.RawDocument{{
		Text: "Microsoft Corp announced an agreement to acquire Activision Blizzard for $68.7 billion on January 18, 2022.",
		Meta: extract.SourceMetadata{
			Source:       "reuters.com",
			DiscoveredAt: time.Date(2022, time.January, 18, 12, 0, 0, 0, time.UTC),
		},
	}}

	result, err := pipeline.New().Process(context.Background(), docs, nil)
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, events.DealTypeAcquisition, result.Events[0].Event.DealType)
}

func TestKnownEdges(t *testing.T) {
	entities := []events.Entity{
		{ID: "msft", Name: "Microsoft Corporation"},
		{ID: "atvi", Name: "Activision Blizzard"},
		{ID: "crm", Name: "Salesforce"},
	}
	resolved := []events.CanonicalEvent{
		{SourceCompany: "Microsoft Corp", TargetCompany: events.Ptr("Activision Blizzard Inc")},
		{SourceCompany: "Microsoft"}, // no target: no edge
		{SourceCompany: "Unknown Startup", TargetCompany: events.Ptr("Another Startup")},
	}

	known := pipeline.KnownEdges(resolved, entities)
	require.Len(t, known, 1)
	assert.Equal(t, "msft", known[0].SourceID)
	assert.Equal(t, "atvi", known[0].TargetID)
}

func TestPredictEndToEnd(t *testing.T) {
	entities := []events.Entity{
		{ID: "msft", Name: "Microsoft", Industry: "technology", MarketCap: 2000e9, ExtraordinaryScore: 0.95},
		{ID: "atvi", Name: "Activision Blizzard", Industry: "gaming", MarketCap: 75e9, ExtraordinaryScore: 0.85},
		{ID: "epic", Name: "Epic Games", Industry: "gaming", MarketCap: 30e9, ExtraordinaryScore: 0.7},
	}
	resolved := []events.CanonicalEvent{
		{SourceCompany: "Microsoft", TargetCompany: events.Ptr("Epic Games")},
		{SourceCompany: "Activision Blizzard", TargetCompany: events.Ptr("Epic Games")},
	}

	edges := pipeline.New().Predict(context.Background(), entities, resolved, 10)
	for _, edge := range edges {
		assert.True(t, edge.IsPredicted)
		assert.NotEqual(t, edge.SourceID, edge.TargetID)
	}
}

func TestSimulateImpactPassthrough(t *testing.T) {
	entities := []events.Entity{
		{ID: "a", Name: "A Corp", Industry: "technology", MarketCap: 100e9, ExtraordinaryScore: 0.9},
		{ID: "b", Name: "B Corp", Industry: "software", MarketCap: 90e9, ExtraordinaryScore: 0.9},
	}

	report, err := pipeline.New().SimulateImpact(context.Background(), "a", "b", entities, nil)
	require.NoError(t, err)
	assert.Equal(t, "a", report.Relationship.SourceID)

	_, err = pipeline.New().SimulateImpact(context.Background(), "a", "ghost", entities, nil)
	assert.Error(t, err)
}
