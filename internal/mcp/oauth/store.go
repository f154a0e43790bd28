package oauth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/giantswarm/mcp-oauth/storage"
	"github.com/giantswarm/mcp-oauth/storage/memory"
	"golang.org/x/oauth2"
)

// Store keeps validated Google tokens and user info for authenticated MCP
// sessions. Token persistence is delegated to an mcp-oauth TokenStore so
// the backing can be swapped (the default is the library's in-memory store
// with its own expiry cleanup).
type Store struct {
	tokens storage.TokenStore

	mu       sync.RWMutex
	userInfo map[string]*GoogleUserInfo

	logger *slog.Logger
	stop   func()
}

// NewStore creates a store backed by the mcp-oauth in-memory token store.
func NewStore(logger *slog.Logger) *Store {
	backing := memory.New()
	s := NewStoreWithBacking(backing, logger)
	s.stop = backing.Stop
	return s
}

// NewStoreWithBacking creates a store on an existing token store.
func NewStoreWithBacking(tokens storage.TokenStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		tokens:   tokens,
		userInfo: make(map[string]*GoogleUserInfo),
		logger:   logger,
	}
}

// SaveGoogleToken saves a Google OAuth token keyed by the user's email.
func (s *Store) SaveGoogleToken(ctx context.Context, email string, token *oauth2.Token) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	if err := s.tokens.SaveToken(ctx, email, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	s.logger.Debug("saved Google token", "user", email, "expiry", token.Expiry)
	return nil
}

// GetGoogleToken retrieves a user's Google token. Expired tokens are
// rejected.
func (s *Store) GetGoogleToken(ctx context.Context, email string) (*oauth2.Token, error) {
	token, err := s.tokens.GetToken(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("Google token not found for user %s: %w", email, err)
	}

	if !token.Expiry.IsZero() && token.Expiry.Before(time.Now()) {
		return nil, fmt.Errorf("Google token expired for user: %s", email)
	}

	return token, nil
}

// SaveUserInfo records the user info returned by Google's userinfo
// endpoint.
func (s *Store) SaveUserInfo(email string, info *GoogleUserInfo) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if info == nil {
		return fmt.Errorf("userInfo cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.userInfo[email] = info
	return nil
}

// GetUserInfo retrieves recorded user info for a user.
func (s *Store) GetUserInfo(email string) (*GoogleUserInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.userInfo[email]
	if !ok {
		return nil, fmt.Errorf("user info not found for user: %s", email)
	}
	return info, nil
}

// Stop shuts down the backing token store's background cleanup, if any.
func (s *Store) Stop() {
	if s.stop != nil {
		s.stop()
	}
}
