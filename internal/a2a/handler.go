package a2a

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BerylCAtieno/icp-builder/internal/builder"
	"github.com/BerylCAtieno/icp-builder/internal/chat"
	"github.com/BerylCAtieno/icp-builder/internal/export"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextID identifies the single conversation the builder holds.
const ContextID = "icp-builder"

type A2AHandler struct {
	builder *builder.Builder
	baseURL string
	logger  *zap.Logger
}

func NewA2AHandler(b *builder.Builder, baseURL string, logger *zap.Logger) *A2AHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &A2AHandler{
		builder: b,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.Named("a2a"),
	}
}

// BodyLogger logs raw request bodies at debug level.
func BodyLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !logger.Core().Enabled(zap.DebugLevel) || c.Request.Body == nil {
			c.Next()
			return
		}
		bodyBytes, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		logger.Debug("incoming request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.ByteString("body", bodyBytes),
		)
		c.Next()
	}
}

// HandleICP processes A2A messages.
func (h *A2AHandler) HandleICP(c *gin.Context) {
	bodyBytes, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("failed to read request body", zap.Error(err))
		h.sendErrorResponse(c, "", "Failed to read request body", CodeParseError)
		return
	}

	var rpcReq JSONRPCRequest
	if err := json.Unmarshal(bodyBytes, &rpcReq); err != nil || rpcReq.Method == "" {
		h.logger.Debug("not a JSON-RPC request, trying direct message", zap.Error(err))
		h.handleDirectMessage(c, bodyBytes)
		return
	}

	if rpcReq.JSONRPC != "2.0" {
		h.logger.Warn("invalid JSON-RPC version", zap.String("version", rpcReq.JSONRPC))
		h.sendErrorResponse(c, rpcReq.ID, "Invalid JSON-RPC version", CodeInvalidRequest)
		return
	}

	switch rpcReq.Method {
	case "agent/task", "message/send":
		h.handleTask(c, rpcReq)
	default:
		h.logger.Warn("unknown method", zap.String("method", rpcReq.Method))
		h.sendErrorResponse(c, rpcReq.ID, fmt.Sprintf("Method not found: %s", rpcReq.Method), CodeMethodNotFound)
	}
}

// handleDirectMessage handles message params sent without the JSON-RPC envelope.
func (h *A2AHandler) handleDirectMessage(c *gin.Context, bodyBytes []byte) {
	var msgParams MessageParams
	if err := json.Unmarshal(bodyBytes, &msgParams); err != nil {
		h.logger.Warn("failed to parse direct message", zap.Error(err))
		h.sendErrorResponse(c, "", "Invalid request format", CodeParseError)
		return
	}
	h.sendSuccessResponse(c, "direct-message", h.runTurn(c, "direct-message", msgParams.Message))
}

func (h *A2AHandler) handleTask(c *gin.Context, rpcReq JSONRPCRequest) {
	paramsJSON, err := json.Marshal(rpcReq.Params)
	if err != nil {
		h.sendErrorResponse(c, rpcReq.ID, "Failed to parse parameters", CodeInvalidParams)
		return
	}

	var msgParams MessageParams
	if err := json.Unmarshal(paramsJSON, &msgParams); err != nil {
		h.logger.Warn("invalid params", zap.Error(err))
		h.sendErrorResponse(c, rpcReq.ID, "Invalid parameters", CodeInvalidParams)
		return
	}
	h.sendSuccessResponse(c, rpcReq.ID, h.runTurn(c, rpcReq.ID, msgParams.Message))
}

func (h *A2AHandler) runTurn(c *gin.Context, taskID string, msg A2AMessage) TaskResult {
	text := extractUserText(msg)
	if text == "" {
		return h.createFailedTaskResult(taskID, "Please describe your ideal customer to start building the profile.")
	}

	res, err := h.builder.Send(c.Request.Context(), text)
	switch {
	case errors.Is(err, chat.ErrBusy):
		return h.createFailedTaskResult(taskID, "Please wait for the current reply.")
	case err != nil:
		h.logger.Error("turn failed", zap.String("task", taskID), zap.Error(err))
		return h.createFailedTaskResult(taskID, chat.KindUnclassified.Message())
	case res.Kind != "":
		return h.createFailedTaskResult(taskID, res.Reply.Text)
	}

	state := StateInputRequired
	if res.Status.Complete {
		state = StateCompleted
	}
	h.logger.Info("turn completed", zap.String("task", taskID), zap.String("state", state), zap.Int("percentage", res.Status.Percentage))

	artifacts := []Artifact{
		{
			ArtifactID: uuid.NewString(),
			Name:       "Ideal Customer Profile",
			Parts:      []MessagePart{TextPart(export.Markdown(res.Profile, time.Now()))},
		},
	}
	if raw, err := export.JSON(res.Profile); err != nil {
		h.logger.Error("failed to encode profile artifact", zap.String("task", taskID), zap.Error(err))
	} else {
		artifacts = append(artifacts, Artifact{
			ArtifactID: uuid.NewString(),
			Name:       "ICP Data",
			Parts:      []MessagePart{DataPart(json.RawMessage(raw))},
		})
	}

	return TaskResult{
		ID:        taskID,
		ContextID: ContextID,
		Kind:      "task",
		Status: TaskStatus{
			State:     state,
			Timestamp: Timestamp(),
			Message: &A2AMessage{
				Kind:      "message",
				Role:      RoleAgent,
				MessageID: uuid.NewString(),
				TaskID:    taskID,
				Parts:     []MessagePart{TextPart(res.Reply.Text)},
			},
		},
		Artifacts: artifacts,
	}
}

// ServeAgentCard describes this agent.
func (h *A2AHandler) ServeAgentCard(c *gin.Context) {
	c.JSON(http.StatusOK, AgentCard{
		Name:        "ICP Builder",
		Description: "Builds an Ideal Customer Profile through a guided conversation.",
		URL:         h.baseURL + "/a2a/icp",
		Version:     "1.0.0",
		Capabilities: Capabilities{
			Streaming:         false,
			PushNotifications: false,
		},
		DefaultInputModes:  []string{"text/plain"},
		DefaultOutputModes: []string{"text/plain", "text/markdown", "application/json"},
		Skills: []Skill{
			{
				ID:          "icp-interview",
				Name:        "ICP interview",
				Description: "Asks about firmographics, pains, goals, objections, triggers and tech stack, recording answers into a structured profile.",
				Tags:        []string{"icp", "sales", "marketing"},
				Examples:    []string{"Our buyers are CTOs at Series B fintech startups in Europe."},
			},
		},
	})
}

// extractUserText joins the text parts of msg. Only when there are none does
// the most recent text entry of a history data part stand in for them.
func extractUserText(msg A2AMessage) string {
	var texts []string
	for _, part := range msg.Parts {
		if part.Kind != "text" {
			continue
		}
		if t := strings.TrimSpace(part.Text); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) > 0 {
		return strings.Join(texts, " ")
	}

	for i := len(msg.Parts) - 1; i >= 0; i-- {
		if msg.Parts[i].Kind != "data" {
			continue
		}
		if t := lastHistoryText(msg.Parts[i].Data); t != "" {
			return t
		}
	}
	return ""
}

func lastHistoryText(data any) string {
	if data == nil {
		return ""
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	for i := len(items) - 1; i >= 0; i-- {
		if kind, _ := items[i]["kind"].(string); kind != "text" {
			continue
		}
		text, _ := items[i]["text"].(string)
		text = strings.NewReplacer("<p>", "", "</p>", "").Replace(text)
		if text = strings.TrimSpace(text); text != "" {
			return text
		}
	}
	return ""
}

func (h *A2AHandler) createFailedTaskResult(taskID string, errorMsg string) TaskResult {
	return TaskResult{
		ID:        taskID,
		ContextID: ContextID,
		Kind:      "task",
		Status: TaskStatus{
			State:     StateFailed,
			Timestamp: Timestamp(),
			Message: &A2AMessage{
				Kind:      "message",
				Role:      RoleAgent,
				MessageID: uuid.NewString(),
				TaskID:    taskID,
				Parts:     []MessagePart{TextPart(errorMsg)},
			},
		},
	}
}

func (h *A2AHandler) sendSuccessResponse(c *gin.Context, id string, result any) {
	c.JSON(http.StatusOK, JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

// JSON-RPC errors are sent with 200 OK.
func (h *A2AHandler) sendErrorResponse(c *gin.Context, id string, message string, code int) {
	h.logger.Debug("rpc error", zap.Int("code", code), zap.String("message", message))
	c.JSON(http.StatusOK, JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &JSONRPCError{Code: code, Message: message},
	})
}
