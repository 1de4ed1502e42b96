package gateway

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/interview"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/interview/events"
)

type createInterviewRequest struct {
	UserID             string `json:"userId" binding:"required"`
	MaxQuestions       int    `json:"maxQuestions"`
	MinAnswerSeconds   int    `json:"minAnswerSeconds"`
	IdleTimeoutSeconds int    `json:"idleTimeoutSeconds"`
	EndpointSilenceMs  int    `json:"endpointSilenceMs"`
}

type createInterviewResponse struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) createInterview(c *gin.Context) {
	var req createInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := s.registry.Create(req.UserID, interview.SessionConfig{
		MaxQuestions:       req.MaxQuestions,
		MinAnswerSeconds:   req.MinAnswerSeconds,
		IdleTimeoutSeconds: req.IdleTimeoutSeconds,
		EndpointSilenceMs:  req.EndpointSilenceMs,
	})
	c.JSON(http.StatusCreated, createInterviewResponse{SessionID: session.ID})
}

func (s *Server) getInterview(c *gin.Context) {
	session, err := s.registry.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "interview not found"})
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

func (s *Server) endInterview(c *gin.Context) {
	session, err := s.registry.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "interview not found"})
		return
	}
	if err := session.Dispatch(events.NewEndInterview("client_requested")); err != nil {
		if errors.Is(err, interview.ErrSessionClosed) {
			c.JSON(http.StatusConflict, gin.H{"error": "interview already closed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "closing"})
}
