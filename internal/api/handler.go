package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/BerylCAtieno/icp-builder/internal/builder"
	"github.com/BerylCAtieno/icp-builder/internal/chat"
	"github.com/BerylCAtieno/icp-builder/internal/export"
	"github.com/BerylCAtieno/icp-builder/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProxyConfig configures the stateless /api/gemini endpoint, which uses a
// server-side credential instead of the builder's stored one.
type ProxyConfig struct {
	APIKey  string
	Factory chat.ModelFactory
	Options []chat.Option
}

type Handler struct {
	builder *builder.Builder
	webhook *export.Webhook
	proxy   ProxyConfig
	logger  *zap.Logger
	now     func() time.Time
}

func NewHandler(b *builder.Builder, webhook *export.Webhook, proxy ProxyConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		builder: b,
		webhook: webhook,
		proxy:   proxy,
		logger:  logger.Named("api"),
		now:     time.Now,
	}
}

// Register mounts every /api route on r.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.POST("/gemini", h.Gemini)

	api.GET("/icp", h.GetICP)
	api.GET("/messages", h.GetMessages)
	api.POST("/chat", h.PostChat)
	api.POST("/reset", h.Reset)
	api.POST("/sections/:section/toggle", h.ToggleSection)

	api.GET("/credential", h.GetCredential)
	api.PUT("/credential", h.PutCredential)
	api.DELETE("/credential", h.DeleteCredential)

	api.GET("/export", h.Export)
	api.POST("/share", h.Share)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

type profileResponse struct {
	ICP         models.ICP     `json:"icp"`
	Status      models.Status  `json:"status"`
	OpenSection models.Section `json:"openSection"`
}

func (h *Handler) profile() profileResponse {
	p := h.builder.Profile()
	return profileResponse{ICP: p, Status: models.StatusOf(p), OpenSection: h.builder.OpenSection()}
}

func (h *Handler) GetICP(c *gin.Context) {
	c.JSON(http.StatusOK, h.profile())
}

func (h *Handler) GetMessages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"messages": h.builder.Transcript(),
		"busy":     h.builder.Busy(),
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) PostChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "Invalid request body"})
		return
	}

	res, err := h.builder.Send(c.Request.Context(), req.Message)
	switch {
	case errors.Is(err, builder.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "Message is required"})
		return
	case errors.Is(err, chat.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "Busy", "message": "Please wait for the current reply."})
		return
	case errors.Is(err, context.Canceled):
		c.JSON(http.StatusConflict, gin.H{"error": "Reset", "message": "The conversation was reset."})
		return
	case err != nil:
		h.logger.Error("chat turn failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "message": "An unexpected error occurred"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Reset(c *gin.Context) {
	if err := h.builder.Reset(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reset incomplete", "message": "Failed to initialize AI chat"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"icp":      h.builder.Profile(),
		"messages": h.builder.Transcript(),
	})
}

func (h *Handler) ToggleSection(c *gin.Context) {
	section, ok := models.ParseSection(c.Param("section"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown section"})
		return
	}
	if models.IsSectionLocked(section, h.builder.Profile()) {
		c.JSON(http.StatusConflict, gin.H{"error": "Section locked", "message": section.LockMessage()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"openSection": h.builder.ToggleSection(section)})
}

func (h *Handler) GetCredential(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"hasApiKey": h.builder.HasCredential()})
}

type credentialRequest struct {
	APIKey string `json:"apiKey"`
}

func (h *Handler) PutCredential(c *gin.Context) {
	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "Invalid request body"})
		return
	}
	err := h.builder.SetCredential(c.Request.Context(), req.APIKey)
	switch {
	case errors.Is(err, builder.ErrEmptyCredential), errors.Is(err, builder.ErrInvalidCredential):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid API key", "message": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save API key", "message": "Failed to initialize AI chat"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hasApiKey": true})
}

func (h *Handler) DeleteCredential(c *gin.Context) {
	if err := h.builder.ClearCredential(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete API key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hasApiKey": false})
}

func (h *Handler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "markdown")
	now := h.now()
	p := h.builder.Profile()

	switch format {
	case "markdown", "md":
		c.Header("Content-Disposition", `attachment; filename="`+export.Filename("markdown", now)+`"`)
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(export.Markdown(p, now)))
	case "json":
		raw, err := export.JSON(p)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+export.Filename("json", now)+`"`)
		c.Data(http.StatusOK, "application/json", raw)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "format must be markdown or json"})
	}
}

type shareRequest struct {
	Email string `json:"email"`
}

func (h *Handler) Share(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "Invalid request body"})
		return
	}
	err := h.webhook.Send(c.Request.Context(), req.Email, h.builder.Profile())
	switch {
	case errors.Is(err, export.ErrWebhookDisabled):
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Sharing disabled", "message": "Please try downloading instead."})
	case errors.Is(err, export.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send email", "message": "Please try downloading instead."})
	default:
		c.JSON(http.StatusOK, gin.H{"sent": true})
	}
}
