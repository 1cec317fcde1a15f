package agent

import (
	"testing"

	"docs-agent/web/types"
)

func msg(role, content string) types.AgentMessage {
	return types.AgentMessage{Role: role, Content: content}
}

func TestTrimHistory(t *testing.T) {
	history := []types.AgentMessage{
		msg("user", "How do I create a payment?"),
		msg("assistant", "Use POST /transactions with the card details."),
		msg("user", "What currencies are supported?"),
		msg("assistant", "All ISO 4217 currencies enabled on your account."),
		msg("user", "And refunds?"),
		msg("assistant", "Use POST /transactions/{id}/refund."),
	}

	tests := []struct {
		name        string
		maxMessages int
		maxChars    int
		wantLen     int
		wantFirst   string
	}{
		{
			name:        "everything_fits",
			maxMessages: 12,
			maxChars:    8000,
			wantLen:     6,
			wantFirst:   "How do I create a payment?",
		},
		{
			name:        "message_budget_keeps_newest",
			maxMessages: 2,
			maxChars:    8000,
			wantLen:     2,
			wantFirst:   "And refunds?",
		},
		{
			name:        "char_budget_cuts_older",
			maxMessages: 12,
			maxChars:    90,
			wantLen:     2,
			wantFirst:   "And refunds?",
		},
		{
			name:        "zero_budget",
			maxMessages: 0,
			maxChars:    8000,
			wantLen:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := trimHistory(history, tt.maxMessages, tt.maxChars)
			if len(got) != tt.wantLen {
				t.Fatalf("trimHistory() kept %d messages, want %d", len(got), tt.wantLen)
			}
			if tt.wantLen > 0 && got[0].Content != tt.wantFirst {
				t.Errorf("first kept message = %q, want %q", got[0].Content, tt.wantFirst)
			}
		})
	}
}

func TestTrimHistoryDropsOrphanAssistant(t *testing.T) {
	history := []types.AgentMessage{
		msg("user", "How do I create a payment?"),
		msg("assistant", "Use POST /transactions with the card details."),
		msg("user", "And refunds?"),
		msg("assistant", "Use POST /transactions/{id}/refund."),
	}

	// Budget of 3 cuts the first user message; the window would then open on
	// its orphaned assistant reply, which must be dropped too.
	got := trimHistory(history, 3, 8000)
	if len(got) != 2 {
		t.Fatalf("trimHistory() kept %d messages, want 2", len(got))
	}
	if got[0].Role != "user" || got[0].Content != "And refunds?" {
		t.Errorf("first kept message = %s %q, want user \"And refunds?\"", got[0].Role, got[0].Content)
	}
}

func TestTrimHistoryChronologicalOrder(t *testing.T) {
	history := []types.AgentMessage{
		msg("user", "first"),
		msg("assistant", "second"),
		msg("user", "third"),
		msg("assistant", "fourth"),
	}
	got := trimHistory(history, 12, 8000)
	want := []string{"first", "second", "third", "fourth"}
	for i, w := range want {
		if got[i].Content != w {
			t.Errorf("message[%d] = %q, want %q", i, got[i].Content, w)
		}
	}
}

func TestTrimHistoryEmpty(t *testing.T) {
	if got := trimHistory(nil, 12, 8000); got != nil {
		t.Errorf("trimHistory(nil) = %v, want nil", got)
	}
}
