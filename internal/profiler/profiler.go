package profiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/BerylCAtieno/icp-builder/internal/chat"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.5-flash"

// GeminiClient implements chat.Model on top of the Gemini API with the
// updateICP tool attached.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required to initialize chat")
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(2048)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(SystemInstruction)}}
	model.Tools = []*genai.Tool{UpdateICPTool}

	return &GeminiClient{
		client: client,
		model:  model,
		logger: logger.Named("gemini").With(zap.String("model", modelName)),
	}, nil
}

// Factory returns a chat.ModelFactory creating one GeminiClient per credential.
func Factory(modelName string, logger *zap.Logger) chat.ModelFactory {
	return func(ctx context.Context, credential string) (chat.Model, error) {
		return NewGeminiClient(ctx, credential, modelName, logger)
	}
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// Generate sends the last history entry with the preceding entries as chat history.
func (g *GeminiClient) Generate(ctx context.Context, history []chat.Content) (*chat.Response, error) {
	if len(history) == 0 {
		return nil, errors.New("empty history")
	}
	last := history[len(history)-1]

	cs := g.model.StartChat()
	cs.History = toGenaiContents(history[:len(history)-1])

	g.logger.Debug("sending message", zap.Int("history", len(cs.History)), zap.Int("parts", len(last.Parts)))
	resp, err := cs.SendMessage(ctx, toGenaiParts(last.Parts)...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	out := fromGenaiResponse(resp)
	g.logger.Debug("received response", zap.Int("calls", len(out.Calls)), zap.Int("textLength", len(out.Text)))
	return out, nil
}

func toGenaiContents(history []chat.Content) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, c := range history {
		out = append(out, &genai.Content{Role: c.Role, Parts: toGenaiParts(c.Parts)})
	}
	return out
}

func toGenaiParts(parts []chat.Part) []genai.Part {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		switch {
		case p.Call != nil:
			out = append(out, genai.FunctionCall{Name: p.Call.Name, Args: p.Call.Args})
		case p.Response != nil:
			out = append(out, genai.FunctionResponse{Name: p.Response.Name, Response: p.Response.Response})
		default:
			out = append(out, genai.Text(p.Text))
		}
	}
	return out
}

// fromGenaiResponse reads the first candidate. A candidate without content
// yields an empty response, which the orchestrator answers with its fallback.
func fromGenaiResponse(resp *genai.GenerateContentResponse) *chat.Response {
	out := &chat.Response{Content: chat.Content{Role: chat.RoleModel}}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			out.Text += string(v)
			out.Content.Parts = append(out.Content.Parts, chat.Part{Text: string(v)})
		case genai.FunctionCall:
			call := chat.FunctionCall{Name: v.Name, Args: v.Args}
			out.Calls = append(out.Calls, call)
			out.Content.Parts = append(out.Content.Parts, chat.Part{Call: &call})
		}
	}
	return out
}
