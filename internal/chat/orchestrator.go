package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/BerylCAtieno/icp-builder/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// UpdateToolName is the only structured invocation the orchestrator acts on.
	UpdateToolName = "updateICP"

	DefaultMaxIterations = 10
	DefaultTimeout       = 30 * time.Second

	// FallbackReply stands in for a final response without text.
	FallbackReply = "Got it! What else would you like to add?"

	updateAck = "ICP Updated successfully."
)

// ApplyFunc receives each profile update as soon as the model emits it.
type ApplyFunc func(models.Update)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxIterations caps the number of tool-call round trips per turn.
func WithMaxIterations(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithTimeout bounds the wall-clock duration of a turn.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithIDs overrides message ID generation.
func WithIDs(next func() string) Option {
	return func(o *Orchestrator) {
		if next != nil {
			o.newID = next
		}
	}
}

// Orchestrator drives one conversation: it owns the transcript and the Session
// for the active credential, and runs the tool-call loop for each user turn.
// Turns are serialized; a second Send while one is in flight fails with ErrBusy.
type Orchestrator struct {
	factory       ModelFactory
	apply         ApplyFunc
	logger        *zap.Logger
	maxIterations int
	timeout       time.Duration
	newID         func() string

	mu         sync.Mutex
	busy       bool
	generation int
	cancelTurn context.CancelFunc
	credential string
	session    *Session
	transcript []models.ChatMessage
}

// New returns an Orchestrator with a fresh transcript and no session.
func New(factory ModelFactory, apply ApplyFunc, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		factory:       factory,
		apply:         apply,
		logger:        zap.NewNop(),
		maxIterations: DefaultMaxIterations,
		timeout:       DefaultTimeout,
		newID:         func() string { return uuid.NewString() },
		transcript:    models.NewTranscript(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.Named("chat")
	if o.apply == nil {
		o.apply = func(models.Update) {}
	}
	return o
}

// Restore replaces the transcript, e.g. with one loaded from persistence.
// An empty transcript falls back to the seed message.
func (o *Orchestrator) Restore(transcript []models.ChatMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(transcript) == 0 {
		o.transcript = models.NewTranscript()
		return
	}
	o.transcript = append([]models.ChatMessage(nil), transcript...)
}

// Connect establishes the Session for credential, seeded with the current
// transcript. Connecting again with the same credential keeps the existing session.
func (o *Orchestrator) Connect(ctx context.Context, credential string) error {
	if credential == "" {
		return &Error{Kind: KindMissingCredential}
	}
	o.mu.Lock()
	if o.session != nil && o.credential == credential {
		o.mu.Unlock()
		return nil
	}
	transcript := append([]models.ChatMessage(nil), o.transcript...)
	o.mu.Unlock()

	session, err := o.newSession(ctx, credential, transcript)
	if err != nil {
		o.mu.Lock()
		o.credential = credential
		o.replaceSession(nil)
		o.mu.Unlock()
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.credential = credential
	o.replaceSession(session)
	o.logger.Info("session initialized", zap.Int("history", len(session.History())))
	return nil
}

// Disconnect forgets the credential and drops the session.
func (o *Orchestrator) Disconnect() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.credential = ""
	o.replaceSession(nil)
}

// Connected reports whether a session exists for the current credential.
func (o *Orchestrator) Connected() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session != nil
}

// Busy reports whether a turn is in flight.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// Transcript returns a copy of the transcript.
func (o *Orchestrator) Transcript() []models.ChatMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]models.ChatMessage(nil), o.transcript...)
}

// Reset clears the transcript back to the seed message and, when a credential
// is present, starts a new session with only the seed as history. A turn still
// in flight is abandoned: its reply is discarded.
func (o *Orchestrator) Reset(ctx context.Context) error {
	o.mu.Lock()
	o.generation++
	o.busy = false
	if o.cancelTurn != nil {
		o.cancelTurn()
		o.cancelTurn = nil
	}
	o.transcript = models.NewTranscript()
	credential := o.credential
	o.replaceSession(nil)
	o.mu.Unlock()

	if credential == "" {
		return nil
	}
	session, err := o.newSession(ctx, credential, models.NewTranscript())
	if err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.credential == credential && o.session == nil {
		o.session = session
	}
	return nil
}

// Send runs one user turn. The transcript always gains exactly one model
// message: the reply, or the fixed text for the failure kind. On failure the
// returned error is an *Error; the returned message is still the one appended.
func (o *Orchestrator) Send(ctx context.Context, text string) (models.ChatMessage, error) {
	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return models.ChatMessage{}, ErrBusy
	}
	if o.credential == "" {
		msg := o.appendLocked(models.RoleModel, KindMissingCredential.Message())
		o.mu.Unlock()
		return msg, &Error{Kind: KindMissingCredential}
	}
	o.appendLocked(models.RoleUser, text)
	o.busy = true
	gen := o.generation
	session := o.session
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.cancelTurn = cancel
	o.mu.Unlock()

	var (
		reply string
		err   error
	)
	if session == nil {
		err = &Error{Kind: KindUninitializedContext}
	} else {
		reply, err = o.runTurn(ctx, gen, session, text)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		o.logger.Info("discarding reply of a reset conversation")
		return models.ChatMessage{}, context.Canceled
	}
	o.busy = false
	o.cancelTurn = nil
	if err != nil {
		kind := Classify(err)
		o.logger.Error("turn failed", zap.Stringer("kind", kind), zap.Error(err))
		msg := o.appendLocked(models.RoleModel, kind.Message())
		var ce *Error
		if !errors.As(err, &ce) {
			ce = &Error{Kind: kind, Err: err}
		}
		return msg, ce
	}
	return o.appendLocked(models.RoleModel, reply), nil
}

type turnResult struct {
	reply string
	err   error
}

// runTurn races the exchange against the turn timeout. On timeout the exchange
// goroutine is abandoned; profile updates it already applied stay in effect.
func (o *Orchestrator) runTurn(ctx context.Context, gen int, session *Session, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	done := make(chan turnResult, 1)
	go func() {
		reply, err := o.exchange(ctx, gen, session, text)
		done <- turnResult{reply: reply, err: err}
	}()

	select {
	case r := <-done:
		return r.reply, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &Error{Kind: KindTimeout, Err: ctx.Err()}
		}
		return "", ctx.Err()
	}
}

func (o *Orchestrator) exchange(ctx context.Context, gen int, session *Session, text string) (string, error) {
	ex := session.begin()
	resp, err := ex.send(ctx, Part{Text: text})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}

	for i := 0; len(resp.Calls) > 0 && i < o.maxIterations; i++ {
		var acks []Part
		for _, call := range resp.Calls {
			if call.Name != UpdateToolName {
				o.logger.Warn("ignoring unknown function call", zap.String("name", call.Name))
				continue
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			update := models.UpdateFromArgs(call.Args)
			o.logger.Debug("applying profile update", zap.Strings("fields", update.Fields()), zap.Int("iteration", i))
			if !o.applyCurrent(gen, update) {
				return "", context.Canceled
			}
			acks = append(acks, Part{Response: &FunctionResponse{
				ID:       call.ID,
				Name:     call.Name,
				Response: map[string]any{"result": updateAck},
			}})
		}
		if len(acks) == 0 {
			break
		}
		if resp, err = ex.send(ctx, acks...); err != nil {
			return "", fmt.Errorf("send function response: %w", err)
		}
	}
	if len(resp.Calls) > 0 {
		o.logger.Warn("tool loop stopped with pending calls", zap.Int("maxIterations", o.maxIterations))
	}

	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	session.commit(ex)

	reply := resp.Text
	if strings.TrimSpace(reply) == "" {
		reply = FallbackReply
	}
	return reply, nil
}

// applyCurrent applies u unless the conversation was reset after turn gen
// started. Holding mu orders it against Reset.
func (o *Orchestrator) applyCurrent(gen int, u models.Update) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return false
	}
	o.apply(u)
	return true
}

func (o *Orchestrator) newSession(ctx context.Context, credential string, transcript []models.ChatMessage) (*Session, error) {
	model, err := o.factory(ctx, credential)
	if err != nil {
		o.logger.Error("failed to initialize session", zap.Error(err))
		return nil, fmt.Errorf("initialize session: %w", err)
	}
	return NewSession(model, credential, transcript), nil
}

func (o *Orchestrator) replaceSession(next *Session) {
	if o.session != nil && o.session != next {
		if err := o.session.Close(); err != nil {
			o.logger.Warn("failed to close session", zap.Error(err))
		}
	}
	o.session = next
}

func (o *Orchestrator) appendLocked(role, text string) models.ChatMessage {
	msg := models.ChatMessage{ID: o.newID(), Role: role, Text: text}
	o.transcript = append(o.transcript, msg)
	return msg
}
