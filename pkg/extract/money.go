package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Layered monetary patterns, most specific first. All normalize to absolute
// currency units.
var moneyPatterns = []*regexp.Regexp{
	// $68.7 billion, $500 million, $1.2bn, $750M
	regexp.MustCompile(`(?i)\$\s?(\d+(?:,\d{3})*(?:\.\d+)?)\s*(billion|million|trillion|bn|b|mm|m|k)\b`),
	// 68.7 billion dollars / 500 million USD
	regexp.MustCompile(`(?i)\b(\d+(?:,\d{3})*(?:\.\d+)?)\s*(billion|million|trillion)\s+(?:dollars|usd)\b`),
	// Bare $1,200,000
	regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})+(?:\.\d+)?)`),
}

var moneyMultipliers = map[string]float64{
	"trillion": 1e12,
	"billion":  1e9,
	"bn":       1e9,
	"b":        1e9,
	"million":  1e6,
	"mm":       1e6,
	"m":        1e6,
	"k":        1e3,
}

// moneyMention loosely matches money-shaped text. It is consulted only after
// the strict patterns fail, so that unparseable spellings survive as raw
// values instead of vanishing.
var moneyMention = regexp.MustCompile(`(?i)\$\s?\d[\d.,]*(?:\s*(?:billion|million|trillion|bn|b|mm|m|k)[a-z]*)?|\b\d[\d.,]*\s*(?:billion|million|trillion)[a-z]*`)

// ExtractValue finds the first monetary amount in the text and returns it in
// absolute currency units, or nil when no amount parses.
func ExtractValue(text string) *float64 {
	for _, pattern := range moneyPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		raw := strings.ReplaceAll(match[1], ",", "")
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}

		if len(match) > 2 && match[2] != "" {
			if mult, ok := moneyMultipliers[strings.ToLower(match[2])]; ok {
				amount *= mult
			}
		}
		return &amount
	}
	return nil
}

// RawValueMention returns the first money-shaped snippet in the text, or ""
// when there is none. Callers use it after ExtractValue fails, keeping the
// unparseable spelling on the candidate record.
func RawValueMention(text string) string {
	return strings.TrimSpace(moneyMention.FindString(text))
}
