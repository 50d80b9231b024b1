package chat

import (
	"context"
	"strings"
)

// Roles used in model history.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// FunctionCall is a structured invocation emitted by the model.
type FunctionCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// FunctionResponse acknowledges a FunctionCall.
type FunctionResponse struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// Part is one piece of a Content. Exactly one field is set.
type Part struct {
	Text     string            `json:"text,omitempty"`
	Call     *FunctionCall     `json:"functionCall,omitempty"`
	Response *FunctionResponse `json:"functionResponse,omitempty"`
}

// Content is one entry of model history.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Response is what a Model returns for one request.
type Response struct {
	Text  string
	Calls []FunctionCall
	// Content is the raw model entry appended to history. When empty it is
	// rebuilt from Text and Calls.
	Content Content
}

func (r *Response) content() Content {
	if len(r.Content.Parts) > 0 {
		c := r.Content
		if c.Role == "" {
			c.Role = RoleModel
		}
		return c
	}
	c := Content{Role: RoleModel}
	if r.Text != "" {
		c.Parts = append(c.Parts, Part{Text: r.Text})
	}
	for i := range r.Calls {
		call := r.Calls[i]
		c.Parts = append(c.Parts, Part{Call: &call})
	}
	return c
}

// Model is the generative capability: given the full history, whose last entry
// is the new user input, it produces the next model entry.
type Model interface {
	Generate(ctx context.Context, history []Content) (*Response, error)
}

// ModelFactory builds a Model bound to a credential.
type ModelFactory func(ctx context.Context, credential string) (Model, error)

// TextOf concatenates the text parts of c.
func TextOf(c Content) string {
	var b strings.Builder
	for _, p := range c.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// CallsOf returns the function calls in c.
func CallsOf(c Content) []FunctionCall {
	var calls []FunctionCall
	for _, p := range c.Parts {
		if p.Call != nil {
			calls = append(calls, *p.Call)
		}
	}
	return calls
}

func cloneHistory(history []Content) []Content {
	out := make([]Content, len(history))
	for i, c := range history {
		out[i] = Content{Role: c.Role, Parts: append([]Part(nil), c.Parts...)}
	}
	return out
}
