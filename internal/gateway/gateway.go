// Package gateway exposes the interview orchestrator over HTTP: a small REST
// surface for session lifecycle and a websocket per session carrying audio
// upstream and questions, statuses and the assessment downstream.
package gateway

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/interview"
)

// Server wires the HTTP routes onto an interview registry.
type Server struct {
	registry *interview.Registry
	router   *gin.Engine

	allowedOrigins []string
}

type ServerOption func(*Server)

// WithAllowedOrigins restricts browser origins. Empty means allow all, which
// is only sensible in development.
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) { s.allowedOrigins = origins }
}

// New builds the HTTP server around the registry.
func New(registry *interview.Registry, opts ...ServerOption) *Server {
	s := &Server{registry: registry}
	for _, opt := range opts {
		opt(s)
	}

	corsConfig := cors.DefaultConfig()
	if len(s.allowedOrigins) > 0 {
		corsConfig.AllowOrigins = s.allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig))

	api := router.Group("/api/v1")
	{
		api.POST("/interviews", s.createInterview)
		api.GET("/interviews/:id", s.getInterview)
		api.DELETE("/interviews/:id", s.endInterview)
		api.GET("/interviews/:id/ws", s.attachInterview)
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": registry.Len()})
	})

	s.router = router
	return s
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until the listener fails.
func (s *Server) Run(addr string) error { return s.router.Run(addr) }
