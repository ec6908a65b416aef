package extract

import (
	"regexp"
	"time"
)

// datePattern pairs a locating regex with the time layout that parses its
// match. Patterns are tried in order; the first parseable match wins.
type datePattern struct {
	re     *regexp.Regexp
	layout string
}

var datePatterns = []datePattern{
	{regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December) \d{1,2}, \d{4}\b`), "January 2, 2006"},
	{regexp.MustCompile(`\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec) \d{1,2}, \d{4}\b`), "Jan 2, 2006"},
	{regexp.MustCompile(`\b\d{1,2} (January|February|March|April|May|June|July|August|September|October|November|December) \d{4}\b`), "2 January 2006"},
	{regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`), "2006-01-02"},
	{regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`), "1/2/2006"},
}

// ExtractDate finds the first recognizable calendar date in the text,
// normalized to UTC midnight, or nil when none parses.
func ExtractDate(text string) *time.Time {
	for _, dp := range datePatterns {
		match := dp.re.FindString(text)
		if match == "" {
			continue
		}
		parsed, err := time.ParseInLocation(dp.layout, match, time.UTC)
		if err != nil {
			continue
		}
		return &parsed
	}
	return nil
}
