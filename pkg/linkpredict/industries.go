package linkpredict

import "strings"

// defaultRelatedIndustries is the curated adjacency between industry
// labels. Keys and members are normalized lowercase.
func defaultRelatedIndustries() map[string][]string {
	return map[string][]string{
		"technology":     {"software", "artificial intelligence", "cloud computing", "semiconductors", "cybersecurity", "fintech"},
		"software":       {"technology", "artificial intelligence", "cloud computing", "cybersecurity", "gaming"},
		"finance":        {"fintech", "banking", "insurance", "payments"},
		"fintech":        {"finance", "technology", "payments", "banking"},
		"healthcare":     {"biotechnology", "pharmaceuticals", "medical devices"},
		"biotechnology":  {"healthcare", "pharmaceuticals"},
		"energy":         {"utilities", "renewables", "oil and gas"},
		"retail":         {"e-commerce", "consumer goods", "logistics"},
		"e-commerce":     {"retail", "technology", "logistics", "payments"},
		"media":          {"entertainment", "gaming", "advertising", "streaming"},
		"entertainment":  {"media", "gaming", "streaming"},
		"gaming":         {"entertainment", "media", "software"},
		"automotive":     {"transportation", "mobility", "manufacturing"},
		"transportation": {"automotive", "logistics", "mobility"},
		"telecom":        {"technology", "media", "infrastructure"},
	}
}

func normalizeIndustry(industry string) string {
	return strings.ToLower(strings.TrimSpace(industry))
}

func containsIndustry(members []string, industry string) bool {
	for _, m := range members {
		if m == industry {
			return true
		}
	}
	return false
}
