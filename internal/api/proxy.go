package api

import (
	"net/http"
	"sync"

	"github.com/BerylCAtieno/icp-builder/internal/chat"
	"github.com/BerylCAtieno/icp-builder/internal/models"
	"github.com/gin-gonic/gin"
)

// SessionState is the client-held conversation the proxy replays as history.
type SessionState struct {
	Messages []models.ChatMessage `json:"messages"`
	ICP      *models.ICP          `json:"icp,omitempty"`
}

type geminiRequest struct {
	Message      string        `json:"message"`
	SessionState *SessionState `json:"sessionState"`
}

type geminiResponse struct {
	Success bool       `json:"success"`
	Reply   string     `json:"reply"`
	ICP     models.ICP `json:"icp"`
	Updates int        `json:"updates"`
}

// Gemini runs one stateless turn with the server credential. Nothing is persisted.
func (h *Handler) Gemini(c *gin.Context) {
	if h.proxy.APIKey == "" || h.proxy.Factory == nil {
		h.logger.Error("GEMINI_API_KEY not found in environment variables")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server configuration error", "message": "API key not configured"})
		return
	}

	var req geminiRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "Message is required"})
		return
	}

	var (
		mu      sync.Mutex
		profile = models.NewICP()
		updates int
	)
	if req.SessionState != nil && req.SessionState.ICP != nil {
		profile = req.SessionState.ICP.Normalize()
	}
	apply := func(u models.Update) {
		mu.Lock()
		defer mu.Unlock()
		profile = profile.Apply(u)
		updates++
	}

	opts := append([]chat.Option{chat.WithLogger(h.logger)}, h.proxy.Options...)
	orch := chat.New(h.proxy.Factory, apply, opts...)
	defer orch.Disconnect()
	if req.SessionState != nil {
		orch.Restore(req.SessionState.Messages)
	}

	ctx := c.Request.Context()
	if err := orch.Connect(ctx, h.proxy.APIKey); err != nil {
		writeProxyError(c, err)
		return
	}
	reply, err := orch.Send(ctx, req.Message)
	if err != nil {
		writeProxyError(c, err)
		return
	}

	mu.Lock()
	defer mu.Unlock()
	c.JSON(http.StatusOK, geminiResponse{Success: true, Reply: reply.Text, ICP: profile, Updates: updates})
}

func writeProxyError(c *gin.Context, err error) {
	switch chat.Classify(err) {
	case chat.KindAuthRejected:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed", "message": "Invalid API key"})
	case chat.KindRateLimited:
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded", "message": "Too many requests. Please wait a moment."})
	case chat.KindNetworkFailure:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Network error", "message": "Unable to connect to AI service"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "message": "An unexpected error occurred"})
	}
}
