package chat

import (
	"context"
	"io"
	"sync"

	"github.com/BerylCAtieno/icp-builder/internal/models"
)

// Session is the conversational context bound to one credential. Its history is
// seeded from the transcript and grows by one committed exchange per successful turn.
type Session struct {
	credential string
	model      Model

	mu      sync.Mutex
	history []Content
}

// NewSession binds model to credential and seeds the history from transcript.
func NewSession(model Model, credential string, transcript []models.ChatMessage) *Session {
	return &Session{
		credential: credential,
		model:      model,
		history:    HistoryFromTranscript(transcript),
	}
}

// Credential returns the credential the session was created for.
func (s *Session) Credential() string {
	return s.credential
}

// History returns a copy of the committed history.
func (s *Session) History() []Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneHistory(s.history)
}

// Close releases the underlying model if it holds resources.
func (s *Session) Close() error {
	if c, ok := s.model.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Session) begin() *exchange {
	return &exchange{model: s.model, history: s.History()}
}

// commit replaces the history with the one built by e. Exchanges that failed or
// were abandoned are never committed.
func (s *Session) commit(e *exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = e.history
}

// exchange is the working copy of history for a single turn.
type exchange struct {
	model   Model
	history []Content
}

func (e *exchange) send(ctx context.Context, parts ...Part) (*Response, error) {
	next := append(e.history, Content{Role: RoleUser, Parts: parts})
	resp, err := e.model.Generate(ctx, cloneHistory(next))
	if err != nil {
		return nil, err
	}
	e.history = append(next, resp.content())
	return resp, nil
}

// HistoryFromTranscript converts a transcript into alternating-role model history.
// The seed greeting is dropped and consecutive messages with the same role are merged.
func HistoryFromTranscript(transcript []models.ChatMessage) []Content {
	history := make([]Content, 0, len(transcript))
	for _, msg := range transcript {
		if msg.IsSeed() {
			continue
		}
		role := RoleUser
		if msg.Role == models.RoleModel {
			role = RoleModel
		}
		if n := len(history); n > 0 && history[n-1].Role == role {
			history[n-1].Parts = append(history[n-1].Parts, Part{Text: msg.Text})
			continue
		}
		history = append(history, Content{Role: role, Parts: []Part{{Text: msg.Text}}})
	}
	return history
}
