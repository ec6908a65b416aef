package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealgraph/dealgraph/internal/store"
	"github.com/dealgraph/dealgraph/pkg/events"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func canonical(id, company string, discovered time.Time) events.CanonicalEvent {
	return events.CanonicalEvent{
		ID:              id,
		SourceCompany:   company,
		TargetCompany:   events.Ptr("Activision Blizzard"),
		DealType:        events.DealTypeAcquisition,
		DealValue:       events.Ptr(68.7e9),
		DealDate:        events.Ptr(time.Date(2022, time.January, 18, 0, 0, 0, 0, time.UTC)),
		Description:     company + " acquires Activision Blizzard",
		Source:          "reuters.com",
		DiscoveredAt:    discovered,
		ConfidenceScore: 0.92,
		SourceCount:     3,
		Resolution: events.ResolutionMetadata{
			Sources:    []string{"reuters.com", "bloomberg.com"},
			ResolvedAt: discovered,
		},
	}
}

func TestSaveAndLoadEvents(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	base := time.Date(2022, time.January, 18, 12, 0, 0, 0, time.UTC)
	saved, err := s.SaveEvents(ctx, []events.CanonicalEvent{
		canonical("ev-1", "Microsoft", base),
		canonical("ev-2", "Salesforce", base.Add(time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	loaded, err := s.Events(ctx, 0)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// Newest first.
	assert.Equal(t, "ev-2", loaded[0].ID)
	assert.Equal(t, "ev-1", loaded[1].ID)

	got := loaded[1]
	assert.Equal(t, "Microsoft", got.SourceCompany)
	require.NotNil(t, got.TargetCompany)
	assert.Equal(t, "Activision Blizzard", *got.TargetCompany)
	assert.Equal(t, events.DealTypeAcquisition, got.DealType)
	require.NotNil(t, got.DealValue)
	assert.Equal(t, 68.7e9, *got.DealValue)
	require.NotNil(t, got.DealDate)
	assert.Equal(t, 0.92, got.ConfidenceScore)
	assert.Equal(t, []string{"reuters.com", "bloomberg.com"}, got.Resolution.Sources)
}

func TestSaveEventsUpsertsByID(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	base := time.Date(2022, time.January, 18, 12, 0, 0, 0, time.UTC)
	first := canonical("ev-1", "Microsoft", base)
	_, err := s.SaveEvents(ctx, []events.CanonicalEvent{first})
	require.NoError(t, err)

	updated := first
	updated.ConfidenceScore = 0.75
	updated.SourceCount = 4
	_, err = s.SaveEvents(ctx, []events.CanonicalEvent{updated})
	require.NoError(t, err)

	loaded, err := s.Events(ctx, 0)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 0.75, loaded[0].ConfidenceScore)
	assert.Equal(t, 4, loaded[0].SourceCount)
}

func TestEventsLimit(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	base := time.Date(2022, time.January, 18, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := s.SaveEvents(ctx, []events.CanonicalEvent{
			canonical("ev-"+string(rune('a'+i)), "Company", base.Add(time.Duration(i)*time.Hour)),
		})
		require.NoError(t, err)
	}

	loaded, err := s.Events(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestSaveEmptyEvents(t *testing.T) {
	s := openStore(t)
	saved, err := s.SaveEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, saved)
}

func TestEdgesSnapshotReplacement(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	first := []events.Edge{
		{SourceID: "a", TargetID: "b", Type: events.RelationshipMerger, ConfidenceScore: 0.8, Reasoning: []string{"industry match"}, PredictedDate: now, IsPredicted: true},
		{SourceID: "a", TargetID: "c", Type: events.RelationshipPartnership, ConfidenceScore: 0.65, PredictedDate: now, IsPredicted: true},
	}
	require.NoError(t, s.SaveEdges(ctx, first))

	loaded, err := s.Edges(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// Highest score first.
	assert.Equal(t, "b", loaded[0].TargetID)
	assert.Equal(t, events.RelationshipMerger, loaded[0].Type)
	assert.Equal(t, []string{"industry match"}, loaded[0].Reasoning)
	assert.True(t, loaded[0].IsPredicted)

	// A new snapshot replaces the old one wholesale.
	second := []events.Edge{
		{SourceID: "x", TargetID: "y", Type: events.RelationshipInvestment, ConfidenceScore: 0.7, PredictedDate: now, IsPredicted: true},
	}
	require.NoError(t, s.SaveEdges(ctx, second))

	loaded, err = s.Edges(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "x", loaded[0].SourceID)
}

func TestSaveEdgesEmptyClears(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEdges(ctx, []events.Edge{
		{SourceID: "a", TargetID: "b", Type: events.RelationshipMerger, ConfidenceScore: 0.8},
	}))
	require.NoError(t, s.SaveEdges(ctx, nil))

	loaded, err := s.Edges(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
