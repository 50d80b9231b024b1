package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BerylCAtieno/icp-builder/internal/models"
	"go.uber.org/zap"
)

// Markdown renders the profile as a document covering all nine fields.
func Markdown(p models.ICP, generated time.Time) string {
	var builder strings.Builder
	builder.WriteString("# Ideal Customer Profile\n\n")
	builder.WriteString(fmt.Sprintf("_Generated %s_\n", generated.Format("January 2, 2006")))

	for _, section := range models.Sections {
		builder.WriteString(fmt.Sprintf("\n## %s\n", section.Title()))
		for _, field := range section.Fields() {
			values := p.FieldValue(field)
			if !models.IsListField(field) {
				value := "Not defined"
				if len(values) > 0 {
					value = values[0]
				}
				builder.WriteString(fmt.Sprintf("- **%s:** %s\n", models.FieldLabel(field), value))
				continue
			}
			builder.WriteString(fmt.Sprintf("\n**%s:**\n", models.FieldLabel(field)))
			if len(values) == 0 {
				builder.WriteString("- _None yet_\n")
			}
			for _, v := range values {
				builder.WriteString(fmt.Sprintf("- %s\n", strings.TrimSpace(v)))
			}
		}
	}
	return builder.String()
}

// JSON renders the profile as indented JSON.
func JSON(p models.ICP) ([]byte, error) {
	return json.MarshalIndent(p.Normalize(), "", "  ")
}

// Filename is the suggested download name for a format ("markdown" or "json").
func Filename(format string, now time.Time) string {
	ext := "md"
	if format == "json" {
		ext = "json"
	}
	return fmt.Sprintf("icp-%s.%s", now.Format("2006-01-02"), ext)
}

var (
	ErrWebhookDisabled = errors.New("webhook delivery is not configured")
	ErrInvalidEmail    = errors.New("a valid email address is required")
)

// WebhookPayload is posted to the share webhook.
type WebhookPayload struct {
	Email     string     `json:"email"`
	ICPData   models.ICP `json:"icpData"`
	Timestamp string     `json:"timestamp"`
}

// Webhook delivers completed profiles to an external endpoint.
type Webhook struct {
	url    string
	client *http.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewWebhook(url string, client *http.Client, logger *zap.Logger) *Webhook {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Webhook{url: url, client: client, logger: logger.Named("webhook"), now: time.Now}
}

// Enabled reports whether a webhook URL is configured.
func (w *Webhook) Enabled() bool {
	return w != nil && w.url != ""
}

// Send posts the profile with the recipient email and an RFC 3339 timestamp.
func (w *Webhook) Send(ctx context.Context, email string, p models.ICP) error {
	if !w.Enabled() {
		return ErrWebhookDisabled
	}
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}

	body, err := json.Marshal(WebhookPayload{
		Email:     email,
		ICPData:   p.Normalize(),
		Timestamp: w.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Error("webhook delivery failed", zap.Error(err))
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		w.logger.Error("webhook rejected payload", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	w.logger.Info("profile shared", zap.Int("status", resp.StatusCode))
	return nil
}
