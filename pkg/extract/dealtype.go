package extract

import (
	"strings"

	"github.com/dealgraph/dealgraph/pkg/events"
)

// keywordFamilies maps each deal type to the phrases that signal it.
// Classification is first-match by specificity: the longest matching phrase
// anywhere in the text decides the family, so "initial public offering"
// beats "offering" and "strategic alliance" beats "alliance".
var keywordFamilies = map[events.DealType][]string{
	events.DealTypeAcquisition: {
		"acquisition of", "agreement to acquire", "to acquire", "acquires",
		"acquired", "acquiring", "buyout", "takeover", "buys",
	},
	events.DealTypeMerger: {
		"merger of equals", "merges with", "merger with", "merger", "to merge",
		"merging with",
	},
	events.DealTypePartnership: {
		"strategic partnership", "partners with", "partnership with",
		"teams up with", "joins forces with", "partnership", "collaboration with",
	},
	events.DealTypeFunding: {
		"series a funding", "series b funding", "series c funding",
		"funding round", "seed round", "raises", "raised",
	},
	events.DealTypeInvestment: {
		"strategic investment", "invests in", "investment in", "stake in",
	},
	events.DealTypeIPO: {
		"initial public offering", "goes public", "going public", "ipo",
	},
	events.DealTypeExit: {
		"divests", "divestiture", "spins off", "spin-off", "exits",
	},
}

// classifierOrder fixes the scan order over families. Equal-length phrases
// from different families ("buyout", "merger", "raises") tie on specificity;
// the earlier family here wins, so classification is deterministic.
var classifierOrder = []events.DealType{
	events.DealTypeAcquisition,
	events.DealTypeMerger,
	events.DealTypePartnership,
	events.DealTypeFunding,
	events.DealTypeInvestment,
	events.DealTypeIPO,
	events.DealTypeExit,
}

// ClassifyDealType returns the deal type whose keyword family matches the
// text, preferring more specific (longer) phrases, with ties broken by the
// fixed family order. The second return reports whether any keyword matched
// at all.
func ClassifyDealType(text string) (events.DealType, bool) {
	lower := strings.ToLower(text)

	best := events.DealTypeUnknown
	bestLen := 0
	for _, dealType := range classifierOrder {
		phrases := keywordFamilies[dealType]
		for _, phrase := range phrases {
			if len(phrase) <= bestLen {
				continue
			}
			if containsPhrase(lower, phrase) {
				best = dealType
				bestLen = len(phrase)
			}
		}
	}
	return best, bestLen > 0
}

// containsPhrase matches on word boundaries so "ipo" does not fire inside
// "tripod".
func containsPhrase(text, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		beforeOK := start == 0 || !isWordRune(rune(text[start-1]))
		afterOK := end == len(text) || !isWordRune(rune(text[end]))
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}
