// Package extract turns unstructured text (press releases, social posts)
// into candidate event records using keyword and pattern matching. The
// extractor is deliberately heuristic: it is a pluggable strategy behind the
// Extractor interface so a stronger NLP-based implementation can be
// substituted without touching grouping, resolution, or scoring.
//
// Extraction is stateless and fails soft: text with no recognizable deal
// keyword and no plausible entity pair yields an empty slice, never an
// error. Near-identical sentences may produce duplicate candidates; the
// grouper owns deduplication.
package extract

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dealgraph/dealgraph/pkg/events"
	"github.com/dealgraph/dealgraph/pkg/logging"
)

// SourceMetadata describes where a piece of text came from.
type SourceMetadata struct {
	Source       string    // domain or channel name
	URL          string    // optional link to the original item
	DiscoveredAt time.Time // when the text was observed; zero means now
}

// Extractor produces candidate events from raw text.
type Extractor interface {
	Extract(text string, meta SourceMetadata) []events.CandidateEvent
}

// KeywordExtractor is the default regex/keyword extraction strategy.
type KeywordExtractor struct {
	now func() time.Time
}

// Option configures a KeywordExtractor.
type Option func(*KeywordExtractor)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *KeywordExtractor) {
		e.now = now
	}
}

// NewKeywordExtractor creates the default extractor.
func NewKeywordExtractor(opts ...Option) *KeywordExtractor {
	e := &KeywordExtractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract scans text sentence by sentence. A candidate is emitted for every
// sentence that names a deal type and at least one entity; monetary value
// and date fall back to document-level matches when the sentence has none.
func (e *KeywordExtractor) Extract(text string, meta SourceMetadata) []events.CandidateEvent {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	discoveredAt := meta.DiscoveredAt
	if discoveredAt.IsZero() {
		discoveredAt = e.now()
	}

	// Document-level fallbacks.
	docValue := ExtractValue(text)
	docDate := ExtractDate(text)
	docEntities := ExtractEntities(text)

	var docRawValue string
	if docValue == nil {
		docRawValue = RawValueMention(text)
	}

	var out []events.CandidateEvent
	for _, sentence := range splitSentences(text) {
		dealType, matched := ClassifyDealType(sentence)
		if !matched {
			continue
		}

		names := ExtractEntities(sentence)
		if len(names) == 0 {
			// A deal keyword with no nameable entity in the same
			// sentence is too weak a signal to report.
			continue
		}

		value := ExtractValue(sentence)
		if value == nil {
			value = docValue
		}
		var rawValue string
		if value == nil {
			if rawValue = RawValueMention(sentence); rawValue == "" {
				rawValue = docRawValue
			}
		}
		date := ExtractDate(sentence)
		if date == nil {
			date = docDate
		}

		candidate := events.CandidateEvent{
			ID:            uuid.NewString(),
			SourceCompany: names[0],
			DealType:      dealType,
			DealValue:     value,
			DealDate:      date,
			RawDealValue:  rawValue,
			Description:   strings.TrimSpace(sentence),
			Source:        meta.Source,
			URL:           meta.URL,
			DiscoveredAt:  discoveredAt,
			Mentioned:     docEntities,
		}
		if len(names) > 1 {
			candidate.TargetCompany = events.Ptr(names[1])
		}
		out = append(out, candidate)
	}

	if len(out) > 0 {
		logging.Debug().
			Str("source", meta.Source).
			Int("candidates", len(out)).
			Msg("Extracted candidate events")
	}
	return out
}

// splitSentences breaks text on sentence terminators. Abbreviation handling
// is intentionally minimal; legal suffixes like "Inc." are stitched back by
// the entity matcher operating per sentence fragment.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	runes := []rune(text)
	for i, r := range runes {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			// Don't split inside legal suffixes ("Inc.", "Corp.", "Co.").
			if r == '.' && i+1 < len(runes) && runes[i+1] != ' ' && runes[i+1] != '\n' {
				continue
			}
			if r == '.' && endsWithAbbreviation(b.String()) {
				continue
			}
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func endsWithAbbreviation(s string) bool {
	trimmed := strings.TrimSpace(s)
	for _, suffix := range []string{"Inc.", "Corp.", "Ltd.", "Co.", "S.A.", "N.V.", "plc."} {
		if strings.HasSuffix(trimmed, suffix) {
			return true
		}
	}
	return false
}
