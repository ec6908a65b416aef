package resolve

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/dealgraph/dealgraph/pkg/extract"
)

// nameNoise are tokens dropped before comparing company names, so that
// "Microsoft Corp." and "Microsoft Corporation" compare as the same entity.
var nameNoise = map[string]bool{
	"inc": true, "corp": true, "corporation": true, "ltd": true,
	"limited": true, "llc": true, "co": true, "company": true, "plc": true,
	"group": true, "holdings": true, "the": true,
}

// normalizeCompanyName lowercases, strips punctuation and legal-suffix
// noise, and collapses whitespace.
func normalizeCompanyName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if !nameNoise[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// NameSimilarity returns the normalized string similarity of two company
// names in [0,1]: 1 − levenshtein distance over the longer normalized form.
func NameSimilarity(a, b string) float64 {
	na, nb := normalizeCompanyName(a), normalizeCompanyName(b)
	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0.0
	}

	longest := len(na)
	if len(nb) > longest {
		longest = len(nb)
	}
	distance := levenshtein.ComputeDistance(na, nb)
	if distance >= longest {
		return 0.0
	}
	return 1.0 - float64(distance)/float64(longest)
}

// nameCluster is a set of spellings believed to name the same entity.
type nameCluster struct {
	exemplar    string   // first spelling seen
	spellings   []string // parallel to sources
	sources     []string
	totalWeight float64
}

// clusterNames greedily groups spellings by similarity against each
// cluster's exemplar. Spellings at or above the threshold merge; the rest
// stay separate.
func (r *Resolver) clusterNames(spellings, sources []string) []*nameCluster {
	var clusters []*nameCluster
	for i, spelling := range spellings {
		weight := r.table.Weight(sources[i])

		var home *nameCluster
		for _, c := range clusters {
			if NameSimilarity(c.exemplar, spelling) >= r.fuzzyThreshold {
				home = c
				break
			}
		}
		if home == nil {
			home = &nameCluster{exemplar: spelling}
			clusters = append(clusters, home)
		}
		home.spellings = append(home.spellings, spelling)
		home.sources = append(home.sources, sources[i])
		home.totalWeight += weight
	}
	return clusters
}

// bestSpelling picks the winning cluster by total source weight, then the
// most reliable member's spelling within it. Equally reliable members tie
// toward the spelling that carries a legal suffix, the fuller form.
func (r *Resolver) bestSpelling(clusters []*nameCluster) string {
	if len(clusters) == 0 {
		return ""
	}

	winner := clusters[0]
	for _, c := range clusters[1:] {
		if c.totalWeight > winner.totalWeight {
			winner = c
		}
	}

	best := 0
	bestWeight := r.table.Weight(winner.sources[0])
	for i := 1; i < len(winner.sources); i++ {
		w := r.table.Weight(winner.sources[i])
		switch {
		case w > bestWeight:
			best = i
			bestWeight = w
		case w == bestWeight &&
			!extract.HasLegalSuffix(winner.spellings[best]) &&
			extract.HasLegalSuffix(winner.spellings[i]):
			best = i
		}
	}
	return winner.spellings[best]
}
