package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-pos-vault/internal/ai"
	"go-pos-vault/internal/middleware"
)

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) AskAI(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	// 1. Run the assistant; it needs a Gemini key
	reply, err := h.agent.Ask(c.Request.Context(), req.Message, middleware.Actor(c))
	if errors.Is(err, ai.ErrNoAPIKey) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Server missing Gemini API Key"})
		return
	}
	if err != nil {
		h.app.Logger.Error("assistant failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	// 2. Return the Answer
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
