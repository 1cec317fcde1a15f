package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docs-agent/agent"
	"docs-agent/database"
	"docs-agent/web/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ChatService struct {
	agent  *agent.Agent
	store  *database.PostgresStore
	logger *zap.Logger
}

func NewChatService(agent *agent.Agent, store *database.PostgresStore, logger *zap.Logger) *ChatService {
	return &ChatService{
		agent:  agent,
		store:  store,
		logger: logger,
	}
}

// HandleMessage runs one chat turn: load history, answer, persist both sides.
// The status callback receives progress messages while the answer is produced.
func (cs *ChatService) HandleMessage(ctx context.Context, sessionID uuid.UUID, input string, status agent.StatusFunc) (agent.Result, error) {
	history, err := cs.loadHistory(ctx, sessionID)
	if err != nil {
		return agent.Result{}, fmt.Errorf("load history: %w", err)
	}

	userMsg := types.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID.String(),
		Role:      "user",
		Content:   input,
	}
	if err := cs.store.CreateMessage(ctx, userMsg); err != nil {
		return agent.Result{}, fmt.Errorf("save user message: %w", err)
	}

	if len(history) == 0 {
		go cs.generateTitle(sessionID, input)
	}

	result, err := cs.agent.Answer(ctx, input, history, status)
	if err != nil {
		return agent.Result{}, err
	}

	assistantMsg := types.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID.String(),
		Role:      "assistant",
		Content:   result.Answer,
	}
	if err := cs.store.CreateMessage(ctx, assistantMsg); err != nil {
		cs.logger.Error("Failed to save assistant message",
			zap.Error(err),
			zap.String("session_id", sessionID.String()))
	}

	return result, nil
}

// loadHistory returns the session's prior turns as model messages, skipping
// anything that is not a plain user/assistant exchange.
func (cs *ChatService) loadHistory(ctx context.Context, sessionID uuid.UUID) ([]types.AgentMessage, error) {
	messages, err := cs.store.GetMessagesBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history := make([]types.AgentMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role != "user" && msg.Role != "assistant" {
			continue
		}
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		history = append(history, types.AgentMessage{Role: msg.Role, Content: msg.Content})
	}
	return history, nil
}

// generateTitle names a session after its opening message. Runs detached from
// the request; a failed title just leaves the date-based default in place.
func (cs *ChatService) generateTitle(sessionID uuid.UUID, firstMessage string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	title, err := cs.agent.GenerateTitle(ctx, firstMessage)
	if err != nil {
		cs.logger.Warn("Failed to generate session title",
			zap.Error(err),
			zap.String("session_id", sessionID.String()))
		return
	}

	if err := cs.store.UpdateSessionTitle(ctx, sessionID, title); err != nil {
		cs.logger.Warn("Failed to update session title",
			zap.Error(err),
			zap.String("session_id", sessionID.String()))
	}
}
