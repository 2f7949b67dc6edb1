package roleplay

import "strings"

// Alternate key names seen in evaluations produced by older prompt versions
// and sloppy models. Ordered by preference.
var (
	mistakeOriginalKeys  = []string{"original", "originalSentence", "original_sentence", "wrong", "incorrect"}
	mistakeCorrectedKeys = []string{"corrected", "correctedSentence", "corrected_sentence", "right", "correction"}
	improvedOriginalKeys = []string{"original", "yourVersion", "your_version", "student", "studentVersion"}
	improvedImprovedKeys = []string{"improved", "native", "nativeVersion", "native_version", "better"}
	upgradeOriginalKeys  = []string{"original", "used", "youUsed", "you_used"}
	upgradeUpgradedKeys  = []string{"upgraded", "better", "alternative", "betterAlternative", "better_alternative"}
	explanationKeys      = []string{"explanation", "why", "reason"}
)

// NormalizeEvaluation remaps a stored evaluation with legacy field names
// into the current shape. Unrecognized fields fall back to empty strings so
// the caller always gets a renderable record.
func NormalizeEvaluation(raw map[string]any) Evaluation {
	km := subMap(raw, "keyMistake")
	is := subMap(raw, "improvedSentence")
	vu := subMap(raw, "vocabularyUpgrade")

	return Evaluation{
		GrammarScore:     toInt(raw["grammarScore"]),
		ClarityScore:     toInt(raw["clarityScore"]),
		NaturalnessScore: toInt(raw["naturalnessScore"]),
		KeyMistake: KeyMistake{
			Original:    pick(km, mistakeOriginalKeys),
			Corrected:   pick(km, mistakeCorrectedKeys),
			Explanation: pick(km, explanationKeys),
		},
		ImprovedSentence: ImprovedSentence{
			Original:    pick(is, improvedOriginalKeys),
			Improved:    pick(is, improvedImprovedKeys),
			Explanation: pick(is, explanationKeys),
		},
		VocabularyUpgrade: VocabularyUpgrade{
			Original:    pick(vu, upgradeOriginalKeys),
			Upgraded:    pick(vu, upgradeUpgradedKeys),
			Explanation: pick(vu, explanationKeys),
		},
	}
}

func subMap(raw map[string]any, key string) map[string]any {
	m, _ := raw[key].(map[string]any)
	return m
}

// pick returns the first non-blank string value among the candidate keys.
func pick(m map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
