package chat_test

import (
	"context"
	"sync"

	"github.com/BerylCAtieno/icp-builder/internal/chat"
)

// scriptedModel answers each Generate call with the next function in script,
// repeating the last one once the script runs out.
type scriptedModel struct {
	mu      sync.Mutex
	script  []func(history []chat.Content) (*chat.Response, error)
	calls   int
	history [][]chat.Content
	closed  bool
}

func (m *scriptedModel) Generate(ctx context.Context, history []chat.Content) (*chat.Response, error) {
	m.mu.Lock()
	idx := m.calls
	if idx >= len(m.script) {
		idx = len(m.script) - 1
	}
	m.calls++
	m.history = append(m.history, history)
	step := m.script[idx]
	m.mu.Unlock()
	return step(history)
}

func (m *scriptedModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *scriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *scriptedModel) LastHistory() []chat.Content {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history[len(m.history)-1]
}

func text(s string) func([]chat.Content) (*chat.Response, error) {
	return func([]chat.Content) (*chat.Response, error) {
		return &chat.Response{Text: s}, nil
	}
}

func call(args map[string]any) func([]chat.Content) (*chat.Response, error) {
	return func([]chat.Content) (*chat.Response, error) {
		return &chat.Response{Calls: []chat.FunctionCall{{ID: "call-1", Name: chat.UpdateToolName, Args: args}}}, nil
	}
}

func fail(err error) func([]chat.Content) (*chat.Response, error) {
	return func([]chat.Content) (*chat.Response, error) {
		return nil, err
	}
}

func factoryFor(models ...*scriptedModel) (chat.ModelFactory, *[]string) {
	var (
		mu          sync.Mutex
		credentials []string
		next        int
	)
	return func(_ context.Context, credential string) (chat.Model, error) {
		mu.Lock()
		defer mu.Unlock()
		credentials = append(credentials, credential)
		m := models[next]
		if next < len(models)-1 {
			next++
		}
		return m, nil
	}, &credentials
}
