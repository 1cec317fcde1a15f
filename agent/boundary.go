package agent

import (
	"regexp"
	"strings"
)

// RefusalText is returned when retrieval finds nothing usable or the model
// wanders outside the supplied documentation.
const RefusalText = "I can only answer questions about the Global Payments documentation, and I couldn't find anything relevant to this one. Try rephrasing, or ask about a specific product, API endpoint, or integration guide."

// Markers that the model answered from general knowledge or stepped outside
// the documentation-only boundary. Matching any of these rejects the answer.
var boundaryViolationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bas an ai\b`),
	regexp.MustCompile(`(?i)\bas a language model\b`),
	regexp.MustCompile(`(?i)\bi (?:do not|don't) have access to\b`),
	regexp.MustCompile(`(?i)\bbased on (?:my|general) (?:training|knowledge)\b`),
	regexp.MustCompile(`(?i)\bi cannot browse\b`),
	regexp.MustCompile(`(?i)\bconsult (?:a|your) (?:lawyer|attorney|financial advisor)\b`),
	regexp.MustCompile(`(?i)\bthe (?:provided |supplied )?documentation (?:excerpts? )?(?:does|do) not (?:contain|cover|mention|include)\b`),
	regexp.MustCompile(`(?i)\bno (?:relevant )?documentation (?:was |is )?(?:provided|available|found)\b`),
}

// Residual disclaimer sentences scrubbed from otherwise-accepted answers.
var disclaimerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:^|\n)\s*(?:please )?note that this (?:answer|information) is based (?:only|solely) on the (?:provided|supplied) documentation[^.\n]*\.\s*`),
	regexp.MustCompile(`(?i)(?:^|\n)\s*for (?:more|further) (?:details|information),? (?:please )?(?:refer to|consult|see) the (?:official |full )?documentation[^.\n]*\.\s*`),
}

// violatesBoundary reports whether the model's output shows it answered from
// outside the supplied documentation, or produced nothing at all.
func violatesBoundary(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return true
	}
	for _, p := range boundaryViolationPatterns {
		if p.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// scrubDisclaimers removes boilerplate documentation disclaimers from an
// accepted answer.
func scrubDisclaimers(answer string) string {
	out := answer
	for _, p := range disclaimerPatterns {
		out = p.ReplaceAllString(out, "\n")
	}
	return strings.TrimSpace(out)
}
