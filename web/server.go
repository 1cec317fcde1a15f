package web

import (
	"context"
	"net/http"
	"time"

	"docs-agent/agent"
	"docs-agent/config"
	"docs-agent/database"
	"docs-agent/web/handlers"
	"docs-agent/web/middleware"
	"docs-agent/web/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router      *gin.Engine
	logger      *zap.Logger
	config      *config.Config
	rateLimiter *middleware.SessionRateLimiter
}

func NewServer(agent *agent.Agent, store *database.PostgresStore, logger *zap.Logger, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		c.Set("logger", logger)
		c.Next()
	})

	rateLimiter := middleware.NewSessionRateLimiter(middleware.RateLimiterConfig{
		MessagesPerMinute: cfg.RateLimitMessagesPerMin,
		BurstSize:         cfg.RateLimitBurstSize,
		CleanupInterval:   10 * time.Minute,
	}, logger)

	server := &Server{
		router:      router,
		logger:      logger,
		config:      cfg,
		rateLimiter: rateLimiter,
	}

	streamService := services.NewStreamService(logger)
	chatService := services.NewChatService(agent, store, logger)
	chatHandler := handlers.NewChatHandler(chatService, streamService, store, logger)

	server.setupRoutes(chatHandler, store)
	return server
}

func (s *Server) setupRoutes(chatHandler *handlers.ChatHandler, store *database.PostgresStore) {
	s.router.Static("/static", "./web/static")

	session := middleware.SessionMiddleware(store)
	rateLimit := middleware.RateLimitMiddleware(s.rateLimiter)

	s.router.GET("/", session, chatHandler.Index)

	api := s.router.Group("/api", session)
	{
		api.POST("/chat", rateLimit, chatHandler.SendMessage)
		api.GET("/chat/stream", rateLimit, chatHandler.StreamMessage)
		api.GET("/sessions", chatHandler.ListSessions)
		api.GET("/sessions/:sessionID/messages", chatHandler.GetSessionMessages)
	}
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	s.rateLimiter.Stop()
	return srv.Shutdown(context.Background())
}
