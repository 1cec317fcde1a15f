package agent

import (
	"regexp"
	"sort"

	"docs-agent/llmclient"
)

// Brand-affinity multipliers applied to raw vector-store scores.
const (
	globalPaymentsBoost = 2.2
	realexPenalty       = 0.15
	mixedBrandFactor    = 0.8
)

var (
	globalPaymentsPattern = regexp.MustCompile(`(?i)\bglobal\s*payments\b|\bgp\s*(?:api|ecommerce|e-commerce)\b`)
	realexPattern         = regexp.MustCompile(`(?i)\brealex\b|\brealauth\b|\brealvault\b`)
)

// RankedHit is a search hit with its brand-adjusted score.
type RankedHit struct {
	llmclient.SearchResult
	AdjustedScore float64
}

// brandFactor returns the multiplier for a chunk of documentation text.
// Global Payments content is boosted, legacy Realex-only content is heavily
// penalized, and mixed content (migration guides, mapping tables) is lightly
// discounted so current-brand pages win ties.
func brandFactor(text string) float64 {
	gp := globalPaymentsPattern.MatchString(text)
	rx := realexPattern.MatchString(text)
	switch {
	case gp && rx:
		return mixedBrandFactor
	case gp:
		return globalPaymentsBoost
	case rx:
		return realexPenalty
	default:
		return 1.0
	}
}

// rerank applies brand-affinity adjustment, drops hits below threshold, and
// returns at most keep hits ordered by adjusted score. Ties break on file id
// so repeated queries produce identical source lists.
func rerank(hits []llmclient.SearchResult, threshold float64, keep int) []RankedHit {
	ranked := make([]RankedHit, 0, len(hits))
	for _, hit := range hits {
		adjusted := hit.Score * brandFactor(hit.Text)
		if adjusted < threshold {
			continue
		}
		ranked = append(ranked, RankedHit{SearchResult: hit, AdjustedScore: adjusted})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].AdjustedScore != ranked[j].AdjustedScore {
			return ranked[i].AdjustedScore > ranked[j].AdjustedScore
		}
		return ranked[i].FileID < ranked[j].FileID
	})

	if keep > 0 && len(ranked) > keep {
		ranked = ranked[:keep]
	}
	return ranked
}
