// Package builder ties the profile, the conversation and persistence into the
// single-user session a presentation layer drives.
package builder

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/BerylCAtieno/icp-builder/internal/chat"
	"github.com/BerylCAtieno/icp-builder/internal/models"
	"github.com/BerylCAtieno/icp-builder/internal/store"
	"go.uber.org/zap"
)

// CredentialPrefix is the literal prefix of a Gemini API key.
const CredentialPrefix = "AIza"

var (
	ErrEmptyCredential   = errors.New("please enter an API key")
	ErrInvalidCredential = errors.New(`invalid API key format. Google AI keys start with "AIza"`)
	ErrEmptyMessage      = errors.New("message is required")
)

// ValidateCredential checks the client-side format of an API key.
func ValidateCredential(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyCredential
	}
	if !strings.HasPrefix(key, CredentialPrefix) {
		return ErrInvalidCredential
	}
	return nil
}

// TurnResult is the outcome of one user turn as seen by a presentation layer.
type TurnResult struct {
	Reply   models.ChatMessage `json:"reply"`
	Profile models.ICP         `json:"icp"`
	Status  models.Status      `json:"status"`
	// Navigate is the section to expand, set only when completion grew.
	Navigate models.Section `json:"navigate,omitempty"`
	// Kind is set when the reply stands in for a failed turn.
	Kind string `json:"errorKind,omitempty"`
}

// Builder owns the profile, the orchestrator and the stored credential.
type Builder struct {
	store  *store.Store
	orch   *chat.Orchestrator
	logger *zap.Logger

	mu         sync.RWMutex
	profile    models.ICP
	credential string
	tracker    *models.Tracker
}

// New restores state from st and, when a credential is stored, initializes the
// conversational context with the restored transcript.
func New(ctx context.Context, st *store.Store, factory chat.ModelFactory, logger *zap.Logger, opts ...chat.Option) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Builder{
		store:   st,
		logger:  logger.Named("builder"),
		profile: st.LoadProfile(),
		tracker: models.NewTracker(),
	}
	b.tracker.Observe(b.profile)

	opts = append([]chat.Option{chat.WithLogger(logger)}, opts...)
	b.orch = chat.New(factory, b.applyUpdate, opts...)
	b.orch.Restore(st.LoadTranscript())

	if key := st.LoadCredential(); key != "" {
		b.credential = key
		if err := b.orch.Connect(ctx, key); err != nil {
			b.logger.Error("failed to initialize AI chat", zap.Error(err))
		}
	}
	return b
}

func (b *Builder) applyUpdate(u models.Update) {
	b.mu.Lock()
	b.profile = b.profile.Apply(u)
	p := b.profile
	b.mu.Unlock()
	b.store.SaveProfile(p)
}

// Profile returns a copy of the current profile.
func (b *Builder) Profile() models.ICP {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.profile.Clone()
}

// Status derives the presentation state of the current profile.
func (b *Builder) Status() models.Status {
	return models.StatusOf(b.Profile())
}

// OpenSection is the section the presentation layer should show expanded.
func (b *Builder) OpenSection() models.Section {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tracker.Open()
}

// ToggleSection expands s or collapses it if it is already open.
func (b *Builder) ToggleSection(s models.Section) models.Section {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tracker.Toggle(s)
}

// Transcript returns the conversation so far.
func (b *Builder) Transcript() []models.ChatMessage {
	return b.orch.Transcript()
}

// Busy reports whether a turn is in flight; input should be disabled meanwhile.
func (b *Builder) Busy() bool {
	return b.orch.Busy()
}

// HasCredential reports whether the builder is unlocked.
func (b *Builder) HasCredential() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.credential != ""
}

// Send runs a user turn. Turn failures are reported in the result, not as an
// error; the only errors are an empty message and chat.ErrBusy.
func (b *Builder) Send(ctx context.Context, text string) (TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TurnResult{}, ErrEmptyMessage
	}

	reply, err := b.orch.Send(ctx, text)
	if errors.Is(err, chat.ErrBusy) || errors.Is(err, context.Canceled) {
		return TurnResult{}, err
	}
	b.store.SaveTranscript(b.orch.Transcript())

	res := TurnResult{Reply: reply}
	var ce *chat.Error
	if errors.As(err, &ce) {
		res.Kind = ce.Kind.String()
	}

	b.mu.Lock()
	res.Profile = b.profile.Clone()
	if section, ok := b.tracker.Observe(b.profile); ok {
		res.Navigate = section
	}
	b.mu.Unlock()
	res.Status = models.StatusOf(res.Profile)
	return res, nil
}

// Reset empties the profile and the conversation and clears both from storage.
// The conversation is reset first so an in-flight turn can no longer apply
// updates once the profile is cleared.
func (b *Builder) Reset(ctx context.Context) error {
	err := b.orch.Reset(ctx)

	b.mu.Lock()
	b.profile = models.NewICP()
	b.tracker.Observe(b.profile)
	b.mu.Unlock()
	b.store.ClearProfile()
	b.store.ClearTranscript()
	if err != nil {
		b.logger.Error("failed to reinitialize chat after reset", zap.Error(err))
		return err
	}
	return nil
}

// SetCredential validates, stores and activates an API key. The conversational
// context is rebuilt from the current transcript when the key changes.
func (b *Builder) SetCredential(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if err := ValidateCredential(key); err != nil {
		return err
	}
	if err := b.store.SaveCredential(key); err != nil {
		return err
	}
	b.mu.Lock()
	b.credential = key
	b.mu.Unlock()

	if err := b.orch.Connect(ctx, key); err != nil {
		b.logger.Error("failed to initialize AI chat", zap.Error(err))
		return err
	}
	return nil
}

// ClearCredential removes the stored API key and drops the conversational context.
func (b *Builder) ClearCredential() error {
	if err := b.store.DeleteCredential(); err != nil {
		return err
	}
	b.mu.Lock()
	b.credential = ""
	b.mu.Unlock()
	b.orch.Disconnect()
	return nil
}
