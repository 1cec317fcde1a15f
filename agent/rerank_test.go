package agent

import (
	"testing"

	"docs-agent/llmclient"
)

func TestBrandFactor(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{
			name: "global_payments_content",
			text: "The Global Payments API returns an AUTH_CODE on approval.",
			want: globalPaymentsBoost,
		},
		{
			name: "realex_only_content",
			text: "Configure your Realex account with the shared secret.",
			want: realexPenalty,
		},
		{
			name: "mixed_migration_guide",
			text: "Migrating from Realex HPP to the Global Payments hosted fields.",
			want: mixedBrandFactor,
		},
		{
			name: "neutral_content",
			text: "The amount field is expressed in the minor currency unit.",
			want: 1.0,
		},
		{
			name: "case_insensitive_brand",
			text: "GLOBAL PAYMENTS supports 3DS2 challenge flows.",
			want: globalPaymentsBoost,
		},
		{
			name: "realauth_legacy_product",
			text: "RealAuth requests must include a SHA-1 hash.",
			want: realexPenalty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := brandFactor(tt.text); got != tt.want {
				t.Errorf("brandFactor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRerank(t *testing.T) {
	hits := []llmclient.SearchResult{
		{FileID: "f1", Filename: "realex-hpp.md", Score: 0.90, Text: "Realex HPP legacy integration."},
		{FileID: "f2", Filename: "gp-api.md", Score: 0.50, Text: "Global Payments API authentication."},
		{FileID: "f3", Filename: "currencies.md", Score: 0.45, Text: "ISO currency codes for settlement."},
		{FileID: "f4", Filename: "migration.md", Score: 0.60, Text: "Moving from Realex to Global Payments."},
		{FileID: "f5", Filename: "gp-webhooks.md", Score: 0.40, Text: "Global Payments webhook signatures."},
	}

	got := rerank(hits, 0.30, 3)

	if len(got) != 3 {
		t.Fatalf("rerank() kept %d hits, want 3", len(got))
	}
	// f2: 0.50*2.2=1.10, f5: 0.40*2.2=0.88, f4: 0.60*0.8=0.48,
	// f3: 0.45*1.0=0.45 (cut by top-3), f1: 0.90*0.15=0.135 (below threshold)
	wantOrder := []string{"f2", "f5", "f4"}
	for i, want := range wantOrder {
		if got[i].FileID != want {
			t.Errorf("rerank()[%d] = %s, want %s", i, got[i].FileID, want)
		}
	}
	if got[0].AdjustedScore != 0.50*globalPaymentsBoost {
		t.Errorf("adjusted score = %v, want %v", got[0].AdjustedScore, 0.50*globalPaymentsBoost)
	}
}

func TestRerankThresholdFiltersAll(t *testing.T) {
	hits := []llmclient.SearchResult{
		{FileID: "f1", Score: 0.20, Text: "Realex remote API."},
		{FileID: "f2", Score: 0.10, Text: "Unrelated text."},
	}
	if got := rerank(hits, 0.30, 3); len(got) != 0 {
		t.Errorf("rerank() kept %d hits, want 0", len(got))
	}
}

func TestRerankDeterministicTieBreak(t *testing.T) {
	hits := []llmclient.SearchResult{
		{FileID: "fb", Score: 0.50, Text: "Settlement timing details."},
		{FileID: "fa", Score: 0.50, Text: "Settlement batch windows."},
	}
	got := rerank(hits, 0.30, 3)
	if len(got) != 2 || got[0].FileID != "fa" || got[1].FileID != "fb" {
		t.Errorf("tie-break order = %v, want fa before fb", []string{got[0].FileID, got[1].FileID})
	}
}
