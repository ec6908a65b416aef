package confidence

import (
	"strings"
	"time"
	"unicode"

	"github.com/dealgraph/dealgraph/pkg/events"
	"github.com/dealgraph/dealgraph/pkg/extract"
	"github.com/dealgraph/dealgraph/pkg/reliability"
	"github.com/dealgraph/dealgraph/pkg/resolve"
)

// hypePhrases are spam tells in social-sourced deal chatter.
var hypePhrases = []string{
	"to the moon", "guaranteed", "can't miss", "insider says",
	"rumor has it", "trust me", "100% confirmed", "huge news",
}

// verificationMarkers in text or URLs indicate an official announcement.
var verificationMarkers = []string{
	"official", "press release", "press-release", "announces", "sec filing",
}

// sourceReliability looks the source up in the trust table, rewards
// verification markers, and discounts spam-like patterns.
func (s *Scorer) sourceReliability(event Input) float64 {
	score := s.table.Weight(event.Source)

	if s.hasVerificationMarker(event) {
		score += 0.1
	}
	if s.looksSpammy(event) {
		score *= 0.8
	}
	return clamp01(score)
}

func (s *Scorer) hasVerificationMarker(event Input) bool {
	if reliability.IsRegulator(event.Source) {
		return true
	}
	haystack := strings.ToLower(event.Description + " " + event.URL)
	for _, marker := range verificationMarkers {
		if strings.Contains(haystack, marker) {
			return true
		}
	}
	return false
}

func (s *Scorer) looksSpammy(event Input) bool {
	// Excessive punctuation.
	if strings.Count(event.Description, "!") > 3 || strings.Contains(event.Description, "!!!") {
		return true
	}

	lower := strings.ToLower(event.Description)
	for _, phrase := range hypePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	// Suspiciously round billion-scale values pattern-match fabricated
	// numbers ("$5 billion deal!!").
	if event.DealValue != nil {
		v := *event.DealValue
		if v >= 1e9 && v == float64(int64(v/1e9))*1e9 && s.table.Weight(event.Source) < 0.7 {
			return true
		}
	}
	return false
}

// requiredFields lists what a report of each deal type must carry to count
// as complete.
func requiredFields(dealType events.DealType) []string {
	switch dealType {
	case events.DealTypeAcquisition, events.DealTypeMerger:
		return []string{"source_company", "target_company", "deal_value", "deal_date"}
	case events.DealTypePartnership:
		return []string{"source_company", "target_company"}
	case events.DealTypeFunding, events.DealTypeInvestment:
		return []string{"source_company", "deal_value"}
	case events.DealTypeIPO, events.DealTypeExit:
		return []string{"source_company", "deal_date"}
	default:
		// Unknown deal type: everything is required, since nothing about
		// the event is established.
		return []string{"source_company", "target_company", "deal_type", "deal_value", "deal_date"}
	}
}

// dataCompleteness is the fraction of deal-type-specific required fields
// present, plus a small bonus per optional enrichment field.
func (s *Scorer) dataCompleteness(event Input) float64 {
	present := map[string]bool{
		"source_company": event.SourceCompany != "",
		"target_company": event.TargetCompany != nil && *event.TargetCompany != "",
		"deal_type":      event.DealType != events.DealTypeUnknown,
		"deal_value":     event.DealValue != nil,
		"deal_date":      event.DealDate != nil,
	}

	required := requiredFields(event.DealType)
	have := 0
	for _, field := range required {
		if present[field] {
			have++
		}
	}
	score := float64(have) / float64(len(required))

	bonus := 0.0
	if event.DealValue != nil {
		bonus += 0.05
	}
	if event.Description != "" {
		bonus += 0.05
	}
	if event.URL != "" {
		bonus += 0.05
	}
	if len(event.Mentioned) > 0 {
		bonus += 0.05
	}
	if bonus > 0.2 {
		bonus = 0.2
	}
	return clamp01(score + bonus)
}

// crossValidation steps on the count of confirming related events. A
// related event confirms when it shares a company identity and comes from a
// different source domain.
func (s *Scorer) crossValidation(event Input, related []Input) float64 {
	confirming := 0
	eventSource := reliability.Normalize(event.Source)
	for i := range related {
		if reliability.Normalize(related[i].Source) == eventSource {
			continue
		}
		if companiesMatch(event, related[i]) {
			confirming++
		}
	}

	switch {
	case confirming >= 2:
		return 0.95
	case confirming == 1:
		return 0.7
	default:
		return 0.3
	}
}

func companiesMatch(a, b Input) bool {
	for _, an := range inputCompanies(a) {
		for _, bn := range inputCompanies(b) {
			if resolve.NameSimilarity(an, bn) >= 0.8 {
				return true
			}
		}
	}
	return false
}

func inputCompanies(in Input) []string {
	names := make([]string, 0, 2)
	if in.SourceCompany != "" {
		names = append(names, in.SourceCompany)
	}
	if in.TargetCompany != nil && *in.TargetCompany != "" {
		names = append(names, *in.TargetCompany)
	}
	return names
}

// temporalFreshness is a step function over hours since discovery. A zero
// discovery time scores as stale, not fresh.
func (s *Scorer) temporalFreshness(event Input) float64 {
	if event.DiscoveredAt.IsZero() {
		return 0.3
	}
	age := s.now().Sub(event.DiscoveredAt)

	switch {
	case age < time.Hour:
		return 1.0
	case age < 6*time.Hour:
		return 0.9
	case age < 24*time.Hour:
		return 0.8
	case age < 3*24*time.Hour:
		return 0.7
	case age < 7*24*time.Hour:
		return 0.5
	case age < 30*24*time.Hour:
		return 0.4
	default:
		return 0.3
	}
}

// semanticConsistency penalizes events whose declared deal type, company
// mentions, or value contradict their own text.
func (s *Scorer) semanticConsistency(event Input) float64 {
	score := 1.0

	// Declared type should have keyword evidence in the description.
	if event.Description != "" {
		evidence, found := extract.ClassifyDealType(event.Description)
		switch {
		case found && event.DealType != events.DealTypeUnknown && evidence != event.DealType:
			score *= 0.8
		case !found && event.DealType != events.DealTypeUnknown:
			score *= 0.8
		}
	}

	// Named companies should appear in the separately supplied mention list.
	if len(event.Mentioned) > 0 && event.SourceCompany != "" {
		found := false
		for _, m := range event.Mentioned {
			if resolve.NameSimilarity(m, event.SourceCompany) >= 0.8 {
				found = true
				break
			}
		}
		if !found {
			score *= 0.9
		}
	}

	// Implausible deal values.
	if event.DealValue != nil && (*event.DealValue < 0 || *event.DealValue > 1e12) {
		score *= 0.7
	}
	return clamp01(score)
}

// structuralQuality penalizes malformed text fields.
func (s *Scorer) structuralQuality(event Input) float64 {
	score := 1.0

	if isShouting(event.Description) || isShouting(event.SourceCompany) {
		score *= 0.8
	}
	if specialCharRatio(event.Description) > 0.2 {
		score *= 0.8
	}
	// A target with no source company is a malformed record shape.
	if event.SourceCompany == "" && event.TargetCompany != nil {
		score *= 0.9
	}
	return clamp01(score)
}

// isShouting reports whether a text field is all caps (long enough that
// it's not an acronym).
func isShouting(text string) bool {
	if len(text) < 12 {
		return false
	}
	letters := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return letters >= 8
}

func specialCharRatio(text string) float64 {
	if text == "" {
		return 0
	}
	special := 0
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) &&
			!strings.ContainsRune(".,;:'\"()-$%&", r) {
			special++
		}
	}
	return float64(special) / float64(len(text))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
