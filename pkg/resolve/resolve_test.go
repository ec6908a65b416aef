package resolve_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealgraph/dealgraph/pkg/errors"
	"github.com/dealgraph/dealgraph/pkg/events"
	"github.com/dealgraph/dealgraph/pkg/resolve"
)

func report(source, company, target string, value float64, date time.Time) events.CandidateEvent {
	c := events.CandidateEvent{
		ID:            source + "-report",
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
	if !date.IsZero() {
		c.DealDate = events.Ptr(date)
	}
	return c
}

func TestResolveEmptyGroup(t *testing.T) {
	_, err := resolve.New().ResolveGroup(nil)
	assert.ErrorIs(t, err, errors.ErrEmptyBatch)
}

func TestResolveSingleton(t *testing.T) {
	date := time.Date(2022, time.January, 18, 0, 0, 0, 0, time.UTC)
	in := report("reuters.com", "Microsoft", "Activision Blizzard", 68.7e9, date)

	got, err := resolve.New().ResolveGroup([]events.CandidateEvent{in})
	require.NoError(t, err)

	// A singleton resolves to itself, field for field.
	assert.Equal(t, in.SourceCompany, got.SourceCompany)
	assert.Equal(t, in.TargetCompany, got.TargetCompany)
	assert.Equal(t, in.DealType, got.DealType)
	assert.Equal(t, in.DealValue, got.DealValue)
	assert.Equal(t, in.DealDate, got.DealDate)
	assert.Equal(t, in.Description, got.Description)
	assert.Equal(t, "reuters.com", got.Source)
	assert.Equal(t, 1, got.SourceCount)
	assert.Zero(t, got.ConflictsResolved)

	// Confidence is exactly the sole source's reliability weight.
	assert.Equal(t, 0.95, got.ConfidenceScore)
}

func TestResolveWeightedAverageValue(t *testing.T) {
	date := time.Date(2022, time.January, 18, 0, 0, 0, 0, time.UTC)
	a := report("reuters.com", "Microsoft", "Activision Blizzard", 68.7e9, date)
	b := report("techcrunch.com", "Microsoft", "Activision Blizzard", 69.0e9, date)

	got, err := resolve.New().ResolveGroup([]events.CandidateEvent{a, b})
	require.NoError(t, err)

	// 69.0/68.7 is inside the 1.1 tolerance, so the values average by
	// source weight: (0.95*68.7e9 + 0.80*69.0e9) / 1.75.
	require.NotNil(t, got.DealValue)
	assert.InDelta(t, 68.837142857e9, *got.DealValue, 1e6)

	var valueConflict *events.ConflictRecord
	for i := range got.Resolution.Conflicts {
		if got.Resolution.Conflicts[i].Field == "deal_value" {
			valueConflict = &got.Resolution.Conflicts[i]
		}
	}
	require.NotNil(t, valueConflict)
	assert.Equal(t, events.MethodWeightedAverage, valueConflict.Method)
}

func TestResolveDivergentValueTakesMostReliable(t *testing.T) {
	date := time.Date(2022, time.January, 18, 0, 0, 0, 0, time.UTC)
	a := report("reuters.com", "Microsoft", "Activision Blizzard", 68.7e9, date)
	b := report("reddit.com", "Microsoft", "Activision Blizzard", 100e9, date)

	got, err := resolve.New().ResolveGroup([]events.CandidateEvent{a, b})
	require.NoError(t, err)

	require.NotNil(t, got.DealValue)
	assert.Equal(t, 68.7e9, *got.DealValue)

	var valueConflict *events.ConflictRecord
	for i := range got.Resolution.Conflicts {
		if got.Resolution.Conflicts[i].Field == "deal_value" {
			valueConflict = &got.Resolution.Conflicts[i]
		}
	}
	require.NotNil(t, valueConflict)
	assert.Equal(t, events.MethodMostReliable, valueConflict.Method)
}

func TestResolveFuzzyCompanyCluster(t *testing.T) {
	date := time.Date(2022, time.January, 18, 0, 0, 0, 0, time.UTC)
	a := report("reuters.com", "Microsoft Corporation", "Activision Blizzard", 68.7e9, date)
	b := report("techcrunch.com", "Microsoft Corp.", "Activision Blizzard", 68.7e9, date)

	got, err := resolve.New().ResolveGroup([]events.CandidateEvent{a, b})
	require.NoError(t, err)

	// Both spellings normalize to the same entity; the most reliable
	// source's spelling wins.
	assert.Equal(t, "Microsoft Corporation", got.SourceCompany)

	var nameConflict *events.ConflictRecord
	for i := range got.Resolution.Conflicts {
		if got.Resolution.Conflicts[i].Field == "source_company" {
			nameConflict = &got.Resolution.Conflicts[i]
		}
	}
	require.NotNil(t, nameConflict)
	assert.Equal(t, events.MethodFuzzyCluster, nameConflict.Method)
	assert.Equal(t, 1.0, nameConflict.Confidence, "single cluster holds all the weight")
}

func TestResolveDateSpreadFlagged(t *testing.T) {
	a := report("reuters.com", "Microsoft", "Activision Blizzard", 68.7e9,
		time.Date(2022, time.January, 18, 0, 0, 0, 0, time.UTC))
	b := report("techcrunch.com", "Microsoft", "Activision Blizzard", 68.7e9,
		time.Date(2022, time.February, 2, 0, 0, 0, 0, time.UTC)) // 15 days later

	got, err := resolve.New().ResolveGroup([]events.CandidateEvent{a, b})
	require.NoError(t, err)

	// Most reliable source's date wins.
	require.NotNil(t, got.DealDate)
	assert.Equal(t, 18, got.DealDate.Day())

	var dateConflict *events.ConflictRecord
	for i := range got.Resolution.Conflicts {
		if got.Resolution.Conflicts[i].Field == "deal_date" {
			dateConflict = &got.Resolution.Conflicts[i]
		}
	}
	require.NotNil(t, dateConflict)
	assert.True(t, dateConflict.Flagged, "spread beyond the window must be flagged")
}

func TestResolveDealTypeWeightedVote(t *testing.T) {
	date := time.Date(2022, time.January, 18, 0, 0, 0, 0, time.UTC)
	a := report("reuters.com", "Microsoft", "Activision Blizzard", 68.7e9, date)
	b := report("reddit.com", "Microsoft", "Activision Blizzard", 68.7e9, date)
	c := report("twitter.com", "Microsoft", "Activision Blizzard", 68.7e9, date)
	b.DealType = events.DealTypeMerger
	c.DealType = events.DealTypeMerger

	got, err := resolve.New().ResolveGroup([]events.CandidateEvent{a, b, c})
	require.NoError(t, err)

	// reddit (0.45) + twitter (0.60) outvote reuters (0.95).
	assert.Equal(t, events.DealTypeMerger, got.DealType)
}

func TestResolveUnknownTypeLosesToAnyVote(t *testing.T) {
	date := time.Date(2022, time.January, 18, 0, 0, 0, 0, time.UTC)
	a := report("reddit.com", "Microsoft", "Activision Blizzard", 68.7e9, date)
	b := report("reuters.com", "Microsoft", "Activision Blizzard", 68.7e9, date)
	a.DealType = events.DealTypeUnknown

	got, err := resolve.New().ResolveGroup([]events.CandidateEvent{a, b})
	require.NoError(t, err)
	assert.Equal(t, events.DealTypeAcquisition, got.DealType)
}

func TestResolveThreeSourceScenario(t *testing.T) {
	a := report("reuters.com", "Microsoft Corporation", "Activision Blizzard", 68.7e9,
		time.Date(2022, time.January, 18, 0, 0, 0, 0, time.UTC))
	b := report("bloomberg.com", "Microsoft Corp", "Activision Blizzard Inc", 68.7e9,
		time.Date(2022, time.January, 18, 0, 0, 0, 0, time.UTC))
	c := report("techcrunch.com", "Microsoft", "Activision", 69.0e9,
		time.Date(2022, time.January, 19, 0, 0, 0, 0, time.UTC))

	got, err := resolve.New().ResolveGroup([]events.CandidateEvent{a, b, c})
	require.NoError(t, err)

	assert.Equal(t, events.DealTypeAcquisition, got.DealType)
	assert.Equal(t, 3, got.SourceCount)
	assert.GreaterOrEqual(t, got.ConflictsResolved, 1)
	assert.Equal(t, "reuters.com", got.Source, "highest-weighted contributing source")
	assert.Equal(t, a.DiscoveredAt, got.DiscoveredAt, "earliest discovery wins")
	assert.ElementsMatch(t, []string{"reuters.com", "bloomberg.com", "techcrunch.com"}, got.Resolution.Sources)

	// Corroborated, lightly conflicted resolution scores well above a lone
	// mid-tier report but stays within bounds.
	assert.GreaterOrEqual(t, got.ConfidenceScore, 0.1)
	assert.LessOrEqual(t, got.ConfidenceScore, 1.0)
	assert.Greater(t, got.ConfidenceScore, 0.6)
}

func TestResolveConfidenceBounds(t *testing.T) {
	date := time.Date(2022, time.January, 18, 0, 0, 0, 0, time.UTC)

	// Many low-trust sources with disagreements everywhere.
	records := []events.CandidateEvent{
		report("reddit.com", "Acme Corp", "Globex", 1e9, date),
		report("reddit.com/r/stocks", "Acme Corporation", "Globex Inc", 5e9, date.AddDate(0, 0, 20)),
		report("twitter.com", "ACME", "Globex Co", 9e9, date.AddDate(0, 0, 40)),
	}
	got, err := resolve.New().ResolveGroup(records)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.ConfidenceScore, 0.1)
	assert.LessOrEqual(t, got.ConfidenceScore, 1.0)
}

func TestResolveDeterministic(t *testing.T) {
	date := time.Date(2022, time.January, 18, 0, 0, 0, 0, time.UTC)
	records := []events.CandidateEvent{
		report("reuters.com", "Microsoft", "Activision Blizzard", 68.7e9, date),
		report("techcrunch.com", "Microsoft Corp", "Activision", 69.0e9, date.AddDate(0, 0, 1)),
	}

	fixed := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	r := resolve.New(resolve.WithClock(func() time.Time { return fixed }))

	first, err := r.ResolveGroup(records)
	require.NoError(t, err)
	second, err := r.ResolveGroup(records)
	require.NoError(t, err)

	// Identical inputs resolve identically, modulo the generated ID.
	second.ID = first.ID
	assert.Equal(t, first, second)
}

func TestResolveEqualWeightSpellingPrefersLegalSuffix(t *testing.T) {
	date := time.Date(2022, time.January, 18, 0, 0, 0, 0, time.UTC)
	a := report("alpha.example", "Microsoft", "Activision Blizzard", 0, date)
	b := report("beta.example", "Microsoft Corporation", "Activision Blizzard", 0, date)

	// Both sources are unknown to the table and carry the default weight,
	// so the spelling with the corporate suffix wins regardless of order.
	for _, group := range [][]events.CandidateEvent{{a, b}, {b, a}} {
		got, err := resolve.New().ResolveGroup(group)
		require.NoError(t, err)
		assert.Equal(t, "Microsoft Corporation", got.SourceCompany)
	}
}

func TestResolveUnparsedValueFallback(t *testing.T) {
	date := time.Date(2022, time.January, 18, 0, 0, 0, 0, time.UTC)
	a := report("reuters.com", "Microsoft", "Activision Blizzard", 0, date)
	a.RawDealValue = "$12 billionish"
	b := report("reddit.com", "Microsoft", "Activision Blizzard", 0, date)
	b.RawDealValue = "twelve-ish billion"

	got, err := resolve.New().ResolveGroup([]events.CandidateEvent{a, b})
	require.NoError(t, err)

	// No source parsed a number: the canonical value stays unset and the
	// raw spellings survive on a fallback conflict record, led by the most
	// reliable source's spelling.
	assert.Nil(t, got.DealValue)

	var fallback *events.ConflictRecord
	for i := range got.Resolution.Conflicts {
		if got.Resolution.Conflicts[i].Field == "deal_value" {
			fallback = &got.Resolution.Conflicts[i]
		}
	}
	require.NotNil(t, fallback)
	assert.Equal(t, events.MethodFallback, fallback.Method)
	assert.Equal(t, "$12 billionish", fallback.Resolved)
	assert.Len(t, fallback.Values, 2)
	assert.Equal(t, 0.95, fallback.Confidence)
}

func TestNameSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, resolve.NameSimilarity("Microsoft", "Microsoft"))
	assert.Equal(t, 1.0, resolve.NameSimilarity("Microsoft Corp.", "Microsoft Corporation"))
	assert.Equal(t, 1.0, resolve.NameSimilarity("The Acme Company", "ACME"))

	low := resolve.NameSimilarity("Microsoft", "Salesforce")
	assert.Less(t, low, 0.5)

	// Symmetric.
	assert.Equal(t,
		resolve.NameSimilarity("Activision Blizzard", "Activision"),
		resolve.NameSimilarity("Activision", "Activision Blizzard"))

	assert.Equal(t, 0.0, resolve.NameSimilarity("", "Acme"))
}
