// Package store persists the profile, transcript and credential in a local
// key-value backend. Profile and transcript access is best-effort: failures are
// logged and swallowed so they never block a conversation.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BerylCAtieno/icp-builder/internal/models"
	"go.uber.org/zap"
)

// Keys under which state is persisted.
const (
	KeyProfile    = "icp-builder-data"
	KeyTranscript = "icp-builder-chat-messages"
	KeyCredential = "gemini-api-key"
)

// ErrNotFound is returned by KV.Get for absent keys.
var ErrNotFound = errors.New("key not found")

// KV is a minimal key-value persistence capability.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
	Close() error
}

// Open returns the backend named by driver.
func Open(driver, path string) (KV, error) {
	switch driver {
	case "", "bolt":
		return OpenBolt(path)
	case "sqlite":
		return OpenSQLite(path)
	case "memory":
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}

// Store wraps a KV with typed accessors for the builder's state.
type Store struct {
	kv     KV
	logger *zap.Logger
}

func New(kv KV, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, logger: logger.Named("store")}
}

func (s *Store) Close() error {
	return s.kv.Close()
}

// LoadProfile returns the stored profile, or the empty profile when it is
// missing or unreadable.
func (s *Store) LoadProfile() models.ICP {
	var p models.ICP
	if !s.loadJSON(KeyProfile, &p) {
		return models.NewICP()
	}
	return p.Normalize()
}

func (s *Store) SaveProfile(p models.ICP) {
	s.saveJSON(KeyProfile, p.Normalize())
}

// LoadTranscript returns the stored transcript, or a fresh one holding only the
// seed message when it is missing, unreadable or empty.
func (s *Store) LoadTranscript() []models.ChatMessage {
	var msgs []models.ChatMessage
	if !s.loadJSON(KeyTranscript, &msgs) || len(msgs) == 0 {
		return models.NewTranscript()
	}
	return msgs
}

func (s *Store) SaveTranscript(msgs []models.ChatMessage) {
	s.saveJSON(KeyTranscript, msgs)
}

func (s *Store) ClearTranscript() {
	s.remove(KeyTranscript)
}

func (s *Store) ClearProfile() {
	s.remove(KeyProfile)
}

// LoadCredential returns the stored credential, or "" when none is stored.
func (s *Store) LoadCredential() string {
	raw, err := s.kv.Get(KeyCredential)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("failed to load API key", zap.Error(err))
		}
		return ""
	}
	return string(raw)
}

// SaveCredential persists the credential. Unlike profile writes, failures are returned.
func (s *Store) SaveCredential(key string) error {
	if err := s.kv.Set(KeyCredential, []byte(key)); err != nil {
		s.logger.Error("failed to save API key", zap.Error(err))
		return fmt.Errorf("failed to save API key: %w", err)
	}
	return nil
}

func (s *Store) DeleteCredential() error {
	if err := s.kv.Remove(KeyCredential); err != nil {
		s.logger.Error("failed to delete API key", zap.Error(err))
		return fmt.Errorf("failed to delete API key: %w", err)
	}
	return nil
}

func (s *Store) loadJSON(key string, v any) bool {
	raw, err := s.kv.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("failed to load", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn("discarding malformed value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) saveJSON(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("failed to encode", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.kv.Set(key, raw); err != nil {
		s.logger.Warn("failed to save", zap.String("key", key), zap.Error(err))
	}
}

func (s *Store) remove(key string) {
	if err := s.kv.Remove(key); err != nil {
		s.logger.Warn("failed to remove", zap.String("key", key), zap.Error(err))
	}
}
