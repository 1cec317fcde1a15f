package agent

import (
	"docs-agent/web/types"
)

// trimHistory keeps the most recent messages that fit within both the
// message-count and character budgets, walking backwards from the newest
// message and returning the survivors in chronological order. An assistant
// message whose user question was cut is dropped with it so the model never
// sees an answer without its question.
func trimHistory(history []types.AgentMessage, maxMessages, maxChars int) []types.AgentMessage {
	if len(history) == 0 || maxMessages <= 0 || maxChars <= 0 {
		return nil
	}

	kept := 0
	chars := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		msgLen := len(history[i].Content)
		if kept+1 > maxMessages || chars+msgLen > maxChars {
			break
		}
		kept++
		chars += msgLen
		start = i
	}

	// If the window starts on an assistant message, its user question was
	// truncated away; shift forward to the next user turn.
	for start < len(history) && history[start].Role == "assistant" {
		start++
	}

	if start >= len(history) {
		return nil
	}
	return history[start:]
}
