package agent

import "testing"

func TestClassifyEffort(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{
			name:     "simple_lookup",
			question: "What is the AUTH_CODE field?",
			want:     EffortLow,
		},
		{
			name:     "comparison_versus",
			question: "What is the difference between HPP and hosted fields?",
			want:     EffortMedium,
		},
		{
			name:     "comparison_vs_abbrev",
			question: "Card storage vs tokenization for recurring payments?",
			want:     EffortMedium,
		},
		{
			name:     "multi_part_two_questions",
			question: "How do I create a token? And how do I charge it later?",
			want:     EffortMedium,
		},
		{
			name:     "multi_part_as_well_as",
			question: "Explain refunds as well as chargebacks handling.",
			want:     EffortMedium,
		},
		{
			name:     "short_followup_stays_low",
			question: "What about EUR?",
			want:     EffortLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyEffort(tt.question); got != tt.want {
				t.Errorf("classifyEffort(%q) = %s, want %s", tt.question, got, tt.want)
			}
		})
	}
}

func TestIsFollowUp(t *testing.T) {
	tests := []struct {
		name       string
		question   string
		historyLen int
		want       bool
	}{
		{
			name:       "no_history_never_followup",
			question:   "What about refunds?",
			historyLen: 0,
			want:       false,
		},
		{
			name:       "what_about_prefix",
			question:   "What about refunds?",
			historyLen: 2,
			want:       true,
		},
		{
			name:       "short_pronoun_question",
			question:   "Does it expire?",
			historyLen: 4,
			want:       true,
		},
		{
			name:       "long_pronoun_question_not_followup",
			question:   "Does the hosted payment page support storing a card for later use in subscriptions?",
			historyLen: 4,
			want:       false,
		},
		{
			name:       "fresh_standalone_question",
			question:   "How do I verify webhook signatures?",
			historyLen: 4,
			want:       false,
		},
		{
			name:       "and_prefix_continuation",
			question:   "And for Apple Pay?",
			historyLen: 2,
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isFollowUp(tt.question, tt.historyLen); got != tt.want {
				t.Errorf("isFollowUp(%q, %d) = %v, want %v", tt.question, tt.historyLen, got, tt.want)
			}
		})
	}
}

func TestEscalateEffort(t *testing.T) {
	if got := escalateEffort(EffortLow); got != EffortMedium {
		t.Errorf("escalateEffort(low) = %s, want medium", got)
	}
	if got := escalateEffort(EffortMedium); got != EffortHigh {
		t.Errorf("escalateEffort(medium) = %s, want high", got)
	}
	if got := escalateEffort(EffortHigh); got != EffortHigh {
		t.Errorf("escalateEffort(high) = %s, want high", got)
	}
}
