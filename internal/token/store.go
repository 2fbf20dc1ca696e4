// Package token holds the Ad Library access token and checks tokens against the Graph API.
package token

import (
	"encoding/hex"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/adscout/backend/config"
)

// Token sources reported by Store.Source.
const (
	SourceUser    = "user"
	SourceDefault = "default"
	SourceNone    = "none"
)

// Store holds the default token and the last user-supplied valid token. It lives in memory only.
type Store struct {
	mu         sync.RWMutex
	defaultTok string
	userTok    string
}

// NewStore creates a store seeded with the configured default token.
func NewStore(defaultToken string) *Store {
	return &Store{defaultTok: strings.TrimSpace(defaultToken)}
}

// Usable reports whether tok can be sent upstream: non-empty and not the shipped placeholder.
func Usable(tok string) bool {
	tok = strings.TrimSpace(tok)
	return tok != "" && tok != config.PlaceholderToken
}

// SetUser replaces the user-supplied token. Callers verify it first.
func (s *Store) SetUser(tok string) {
	s.mu.Lock()
	s.userTok = strings.TrimSpace(tok)
	s.mu.Unlock()
}

// Default returns the configured default token.
func (s *Store) Default() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultTok
}

// Current returns the user token when set, otherwise the default token.
func (s *Store) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.userTok != "" {
		return s.userTok
	}
	return s.defaultTok
}

// Source reports where Current comes from, or SourceNone if it is not usable.
func (s *Store) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.userTok != "":
		return SourceUser
	case Usable(s.defaultTok):
		return SourceDefault
	default:
		return SourceNone
	}
}

// Fingerprint is a short, non-reversible id for logging a token.
func Fingerprint(tok string) string {
	if tok == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:4])
}
