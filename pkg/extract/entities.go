package extract

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// legalSuffixes are tokens that confirm a capitalized run is a company name.
var legalSuffixes = map[string]bool{
	"inc": true, "inc.": true, "corp": true, "corp.": true, "corporation": true,
	"ltd": true, "ltd.": true, "llc": true, "co": true, "co.": true,
	"company": true, "group": true, "holdings": true, "plc": true,
	"technologies": true, "labs": true, "ventures": true, "partners": true,
	"s.a.": true, "n.v.": true, "ag": true, "gmbh": true,
}

// stopWords are capitalized sentence-starters and connectives that the
// capitalization heuristic must not mistake for name parts.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true, "at": true,
	"of": true, "for": true, "and": true, "but": true, "with": true,
	"its": true, "this": true, "that": true, "it": true, "is": true,
	"today": true, "yesterday": true, "breaking": true, "exclusive": true,
	"new": true, "after": true, "before": true, "as": true, "by": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
}

// capitalizedRun matches sequences of capitalized (or all-caps) words,
// optionally ending in a legal suffix. Ampersands and hyphens are allowed
// inside names ("Johnson & Johnson", "Rolls-Royce").
var capitalizedRun = regexp.MustCompile(`\b[A-Z][A-Za-z0-9&.\-]*(?:\s+(?:&\s+)?[A-Z][A-Za-z0-9&.\-]*)*\b`)

var titleCaser = cases.Title(language.English)

// ExtractEntities returns company names found in the text, order-preserved
// and deduplicated case-insensitively. The first entity is the tentative
// source company, the second the tentative target.
func ExtractEntities(text string) []string {
	var names []string
	seen := make(map[string]bool)

	for _, run := range capitalizedRun.FindAllString(text, -1) {
		name := trimRun(run)
		if name == "" || !plausibleName(name) {
			continue
		}
		name = normalizeName(name)
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	return names
}

// trimRun strips leading and trailing stop words from a capitalized run.
func trimRun(run string) string {
	words := strings.Fields(run)
	for len(words) > 0 && stopWords[strings.ToLower(words[0])] {
		words = words[1:]
	}
	for len(words) > 0 && stopWords[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// plausibleName filters out short and non-alphanumeric-dominant strings.
// Single words pass only when reasonably long or carrying a legal suffix.
func plausibleName(name string) bool {
	if len(name) < 2 {
		return false
	}

	alnum := 0
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if float64(alnum) < 0.6*float64(len(name)) {
		return false
	}

	words := strings.Fields(name)
	if stopWords[strings.ToLower(words[0])] {
		return false
	}
	if len(words) == 1 {
		return len(words[0]) >= 4 || legalSuffixes[strings.ToLower(words[0])]
	}
	return true
}

// normalizeName tidies casing on shouted names ("NVIDIA ANNOUNCES" style
// headlines) while leaving mixed-case names untouched.
func normalizeName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		if len(w) > 4 && w == strings.ToUpper(w) && !legalSuffixes[strings.ToLower(w)] {
			words[i] = titleCaser.String(strings.ToLower(w))
		}
	}
	return strings.Join(words, " ")
}

// HasLegalSuffix reports whether a name ends in a recognized corporate
// suffix. The resolver uses this as a tiebreak when picking a canonical
// spelling.
func HasLegalSuffix(name string) bool {
	words := strings.Fields(name)
	if len(words) == 0 {
		return false
	}
	return legalSuffixes[strings.ToLower(words[len(words)-1])]
}
