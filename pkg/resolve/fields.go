package resolve

import (
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/dealgraph/dealgraph/pkg/events"
)

// resolveCompanyField fuzzy-clusters the spellings of one company field and
// picks the winning cluster's best spelling. A field empty on every record
// resolves to "" (omitted from the canonical event).
func (r *Resolver) resolveCompanyField(field string, records []events.CandidateEvent, get func(*events.CandidateEvent) string) (string, *events.ConflictRecord) {
	var spellings, sources []string
	for i := range records {
		if name := get(&records[i]); name != "" {
			spellings = append(spellings, name)
			sources = append(sources, records[i].Source)
		}
	}
	if len(spellings) == 0 {
		return "", nil
	}

	clusters := r.clusterNames(spellings, sources)
	resolved := r.bestSpelling(clusters)

	if distinctStrings(spellings) < 2 {
		return resolved, nil
	}
	return resolved, &events.ConflictRecord{
		Field:      field,
		Values:     r.fieldValues(spellings, sources),
		Method:     events.MethodFuzzyCluster,
		Resolved:   resolved,
		Confidence: r.winnerShare(clusters),
	}
}

// resolveValue averages monetary values that agree within tolerance,
// weighting by source reliability; wider disagreement falls back to the most
// reliable source's value.
func (r *Resolver) resolveValue(records []events.CandidateEvent) (*float64, *events.ConflictRecord) {
	var values []float64
	var sources []string
	for i := range records {
		if records[i].DealValue != nil {
			values = append(values, *records[i].DealValue)
			sources = append(sources, records[i].Source)
		}
	}
	if len(values) == 0 {
		return nil, r.fallbackValue(records)
	}

	if distinctFloats(values) < 2 {
		return events.Ptr(values[0]), nil
	}

	min, _ := stats.Min(values)
	max, _ := stats.Max(values)

	var resolved float64
	var method events.ResolutionMethod
	if min > 0 && max/min <= r.valueTolerance {
		// Close agreement: reliability-weighted average.
		var weightSum, weightedSum float64
		for i, v := range values {
			w := r.table.Weight(sources[i])
			weightSum += w
			weightedSum += w * v
		}
		resolved = weightedSum / weightSum
		method = events.MethodWeightedAverage
	} else {
		resolved = values[r.mostReliableIndex(sources)]
		method = events.MethodMostReliable
	}

	return events.Ptr(resolved), &events.ConflictRecord{
		Field:      "deal_value",
		Values:     r.floatFieldValues(values, sources),
		Method:     method,
		Resolved:   resolved,
		Confidence: r.table.Weight(sources[r.mostReliableIndex(sources)]),
	}
}

// fallbackValue records money text no source managed to parse. The canonical
// value stays unset; the raw spellings survive on the conflict record, with
// the most reliable source's spelling as the nominal resolution.
func (r *Resolver) fallbackValue(records []events.CandidateEvent) *events.ConflictRecord {
	var raws, sources []string
	for i := range records {
		if records[i].RawDealValue != "" {
			raws = append(raws, records[i].RawDealValue)
			sources = append(sources, records[i].Source)
		}
	}
	if len(raws) == 0 {
		return nil
	}

	best := r.mostReliableIndex(sources)
	return &events.ConflictRecord{
		Field:      "deal_value",
		Values:     r.fieldValues(raws, sources),
		Method:     events.MethodFallback,
		Resolved:   raws[best],
		Confidence: r.table.Weight(sources[best]),
	}
}

// resolveDate always takes the most reliable source's date; a spread wider
// than the conflict window is flagged as a larger disagreement.
func (r *Resolver) resolveDate(records []events.CandidateEvent) (*time.Time, *events.ConflictRecord) {
	var dates []time.Time
	var sources []string
	for i := range records {
		if records[i].DealDate != nil {
			dates = append(dates, *records[i].DealDate)
			sources = append(sources, records[i].Source)
		}
	}
	if len(dates) == 0 {
		return nil, nil
	}

	resolved := dates[r.mostReliableIndex(sources)]
	if distinctDates(dates) < 2 {
		return &resolved, nil
	}

	earliest, latest := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(earliest) {
			earliest = d
		}
		if d.After(latest) {
			latest = d
		}
	}

	values := make([]events.FieldValue, len(dates))
	for i, d := range dates {
		values[i] = events.FieldValue{Value: d, Source: sources[i], Weight: r.table.Weight(sources[i])}
	}
	return &resolved, &events.ConflictRecord{
		Field:      "deal_date",
		Values:     values,
		Method:     events.MethodMostReliable,
		Resolved:   resolved,
		Confidence: r.table.Weight(sources[r.mostReliableIndex(sources)]),
		Flagged:    latest.Sub(earliest) > r.dateConflictWindow,
	}
}

// resolveDealType holds a reliability-weighted vote over categories; unknown
// only wins when no record offers anything better.
func (r *Resolver) resolveDealType(records []events.CandidateEvent) (events.DealType, *events.ConflictRecord) {
	votes := make(map[events.DealType]float64)
	var spellings, sources []string
	for i := range records {
		dt := records[i].DealType
		if dt == events.DealTypeUnknown {
			continue
		}
		votes[dt] += r.table.Weight(records[i].Source)
		spellings = append(spellings, dt.String())
		sources = append(sources, records[i].Source)
	}
	if len(votes) == 0 {
		return events.DealTypeUnknown, nil
	}

	// Deterministic winner: highest weight, ties broken by name.
	types := make([]events.DealType, 0, len(votes))
	for dt := range votes {
		types = append(types, dt)
	}
	sort.Slice(types, func(i, j int) bool {
		if votes[types[i]] != votes[types[j]] {
			return votes[types[i]] > votes[types[j]]
		}
		return types[i] < types[j]
	})
	winner := types[0]

	if len(votes) < 2 {
		return winner, nil
	}

	var totalWeight float64
	for _, w := range votes {
		totalWeight += w
	}
	return winner, &events.ConflictRecord{
		Field:      "deal_type",
		Values:     r.fieldValues(spellings, sources),
		Method:     events.MethodWeightedVote,
		Resolved:   winner.String(),
		Confidence: votes[winner] / totalWeight,
	}
}

// resolveDescription takes the most reliable source's description verbatim;
// descriptions are never synthesized.
func (r *Resolver) resolveDescription(records []events.CandidateEvent) (string, *events.ConflictRecord) {
	var descriptions, sources []string
	for i := range records {
		if records[i].Description != "" {
			descriptions = append(descriptions, records[i].Description)
			sources = append(sources, records[i].Source)
		}
	}
	if len(descriptions) == 0 {
		return "", nil
	}

	resolved := descriptions[r.mostReliableIndex(sources)]
	if distinctStrings(descriptions) < 2 {
		return resolved, nil
	}
	return resolved, &events.ConflictRecord{
		Field:      "description",
		Values:     r.fieldValues(descriptions, sources),
		Method:     events.MethodMostReliable,
		Resolved:   resolved,
		Confidence: r.table.Weight(sources[r.mostReliableIndex(sources)]),
	}
}

// mostReliableIndex returns the index of the highest-weighted source,
// preferring the earliest on ties for stability.
func (r *Resolver) mostReliableIndex(sources []string) int {
	best := 0
	bestWeight := r.table.Weight(sources[0])
	for i := 1; i < len(sources); i++ {
		if w := r.table.Weight(sources[i]); w > bestWeight {
			best = i
			bestWeight = w
		}
	}
	return best
}

// winnerShare is a conflict's confidence contribution: the winning cluster's
// share of the total source weight.
func (r *Resolver) winnerShare(clusters []*nameCluster) float64 {
	var total, best float64
	for _, c := range clusters {
		total += c.totalWeight
		if c.totalWeight > best {
			best = c.totalWeight
		}
	}
	if total == 0 {
		return 0
	}
	return best / total
}

func (r *Resolver) fieldValues(values, sources []string) []events.FieldValue {
	out := make([]events.FieldValue, len(values))
	for i := range values {
		out[i] = events.FieldValue{Value: values[i], Source: sources[i], Weight: r.table.Weight(sources[i])}
	}
	return out
}

func (r *Resolver) floatFieldValues(values []float64, sources []string) []events.FieldValue {
	out := make([]events.FieldValue, len(values))
	for i := range values {
		out[i] = events.FieldValue{Value: values[i], Source: sources[i], Weight: r.table.Weight(sources[i])}
	}
	return out
}

func distinctStrings(values []string) int {
	seen := make(map[string]bool)
	for _, v := range values {
		seen[strings.ToLower(strings.TrimSpace(v))] = true
	}
	return len(seen)
}

func distinctFloats(values []float64) int {
	seen := make(map[float64]bool)
	for _, v := range values {
		seen[v] = true
	}
	return len(seen)
}

func distinctDates(dates []time.Time) int {
	seen := make(map[int64]bool)
	for _, d := range dates {
		seen[d.Unix()] = true
	}
	return len(seen)
}
