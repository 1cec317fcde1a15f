package agent

import (
	"regexp"
	"strings"
)

// Reasoning effort levels accepted by the Responses API.
const (
	EffortLow    = "low"
	EffortMedium = "medium"
	EffortHigh   = "high"
)

var (
	comparisonPattern = regexp.MustCompile(`(?i)\b(compare|comparison|versus|vs\.?|difference|differences|better|worse|instead of|rather than|pros and cons|trade-?offs?)\b`)
	multiPartPattern  = regexp.MustCompile(`(?i)\b(and also|as well as|additionally|furthermore|secondly)\b|\?.+\?`)
	pronounPattern    = regexp.MustCompile(`(?i)\b(it|its|that|this|those|these|they|them|the same|the above)\b`)
	followUpPattern   = regexp.MustCompile(`(?i)^(what about|how about|and |also |what if|why not|ok but|but )`)
)

const followUpMaxWords = 6

// classifyEffort maps a question's shape to a reasoning effort level.
// Comparison and multi-part questions need the model to weigh multiple
// documentation excerpts against each other; everything else stays cheap.
func classifyEffort(question string) string {
	if comparisonPattern.MatchString(question) || multiPartPattern.MatchString(question) {
		return EffortMedium
	}
	return EffortLow
}

// isFollowUp reports whether a question only makes sense against prior
// conversation turns: short, pronoun-laden, or opening with a continuation
// phrase. Follow-ups don't change effort but force history to be attached.
func isFollowUp(question string, historyLen int) bool {
	if historyLen == 0 {
		return false
	}
	trimmed := strings.TrimSpace(question)
	if followUpPattern.MatchString(trimmed) {
		return true
	}
	words := strings.Fields(trimmed)
	return len(words) <= followUpMaxWords && pronounPattern.MatchString(trimmed)
}

// escalateEffort returns the next effort level up. Used once per turn when
// the first attempt produces an empty or out-of-scope answer.
func escalateEffort(effort string) string {
	switch effort {
	case EffortLow:
		return EffortMedium
	case EffortMedium:
		return EffortHigh
	default:
		return EffortHigh
	}
}
