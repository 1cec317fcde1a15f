package handlers

import (
	"net/http"
	"strings"
	"sync"

	"docs-agent/database"
	"docs-agent/errors"
	"docs-agent/web/services"
	"docs-agent/web/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxQuestionLength = 4000

type ChatHandler struct {
	chatService   *services.ChatService
	streamService *services.StreamService
	store         *database.PostgresStore
	logger        *zap.Logger
}

type ChatRequest struct {
	Message string `json:"message" form:"message"`
}

func NewChatHandler(chatService *services.ChatService, streamService *services.StreamService, store *database.PostgresStore, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService:   chatService,
		streamService: streamService,
		store:         store,
		logger:        logger,
	}
}

func (h *ChatHandler) Index(c *gin.Context) {
	c.File("./web/static/index.html")
}

// SendMessage answers one question and returns the full result as JSON.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uuid.UUID)

	var req ChatRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request")
		return
	}
	question, ok := validQuestion(req.Message)
	if !ok {
		respondWithClientError(c, http.StatusBadRequest, "Message cannot be empty")
		return
	}

	result, err := h.chatService.HandleMessage(c.Request.Context(), sessionID, question, nil)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.IsUpstreamUnavailable(err) {
			status = http.StatusBadGateway
		}
		respondWithError(c, status, err, "Failed to answer the question", h.logger,
			zap.String("session_id", sessionID.String()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer":  result.Answer,
		"sources": result.Sources,
		"cached":  result.Cached,
	})
}

// StreamMessage answers one question over SSE: status events while the agent
// works, then the vetted answer, its sources, and an end event.
func (h *ChatHandler) StreamMessage(c *gin.Context) {
	sessionID := c.MustGet("sessionID").(uuid.UUID)

	question, ok := validQuestion(c.Query("message"))
	if !ok {
		respondWithClientError(c, http.StatusBadRequest, "Message cannot be empty")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx := c.Request.Context()
	var mu sync.Mutex
	write := func(data services.StreamData) {
		if err := h.streamService.WriteSSEData(ctx, c.Writer, data, &mu); err != nil {
			h.logger.Debug("SSE write failed", zap.Error(err))
		}
	}

	result, err := h.chatService.HandleMessage(ctx, sessionID, question, func(msg string) {
		write(services.StreamData{Type: "status", Content: msg})
	})
	if err != nil {
		h.logger.Error("Chat turn failed",
			zap.Error(err),
			zap.String("session_id", sessionID.String()))
		write(services.StreamData{Type: "error", Content: "Failed to answer the question"})
		write(services.StreamData{Type: "end"})
		return
	}

	write(services.StreamData{Type: "answer", Content: result.Answer})
	if len(result.Sources) > 0 {
		write(services.StreamData{Type: "sources", Sources: result.Sources})
	}
	write(services.StreamData{Type: "end"})
}

// ListSessions returns all sessions, most recently active first.
func (h *ChatHandler) ListSessions(c *gin.Context) {
	sessions, err := h.store.GetSessions(c.Request.Context())
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to load sessions", h.logger)
		return
	}
	if sessions == nil {
		sessions = []types.Session{}
	}
	c.JSON(http.StatusOK, sessions)
}

// GetSessionMessages returns the stored transcript of one session.
func (h *ChatHandler) GetSessionMessages(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid session ID")
		return
	}

	messages, err := h.store.GetMessagesBySession(c.Request.Context(), sessionID)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to load messages", h.logger,
			zap.String("session_id", sessionID.String()))
		return
	}
	if messages == nil {
		messages = []types.ChatMessage{}
	}
	c.JSON(http.StatusOK, messages)
}

func validQuestion(message string) (string, bool) {
	question := strings.TrimSpace(message)
	if question == "" || len(question) > maxQuestionLength {
		return "", false
	}
	return question, true
}
