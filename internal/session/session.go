// Package session holds the local authentication state of one execution
// context and mirrors it to the shared channel, so the checkout process can
// act for the user who logged in on the storefront.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/channel"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
)

const DefaultKey = "auth"

var ErrNotLoggedIn = errors.New("not logged in")

type State struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type Session struct {
	mu    sync.RWMutex
	state *State
	ch    channel.Channel
	key   string
	log   *slog.Logger
}

func New(ch channel.Channel, key string) *Session {
	if key == "" {
		key = DefaultKey
	}
	return &Session{
		ch:  ch,
		key: key,
		log: slog.Default().With("component", "session"),
	}
}

// Restore adopts whatever state the channel holds. A missing or unreadable
// value leaves the session logged out.
func (s *Session) Restore(ctx context.Context) {
	data, err := s.ch.Get(ctx, s.key)
	var st *State
	switch {
	case errors.Is(err, channel.ErrKeyNotFound):
	case err != nil:
		s.log.WarnContext(ctx, "read session failed", "error", err)
	default:
		var decoded State
		if jsonErr := json.Unmarshal(data, &decoded); jsonErr != nil || decoded.Token == "" {
			s.log.WarnContext(ctx, "discarding malformed session")
		} else {
			st = &decoded
		}
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) Set(ctx context.Context, res domain.AuthResult) {
	st := &State{Token: res.Token, User: res.User}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	data, err := json.Marshal(st)
	if err != nil {
		s.log.ErrorContext(ctx, "encode session failed", "error", err)
		return
	}
	if err := s.ch.Set(ctx, s.key, data); err != nil {
		s.log.ErrorContext(ctx, "write session failed", "error", err)
	}
}

func (s *Session) Clear(ctx context.Context) {
	s.mu.Lock()
	s.state = nil
	s.mu.Unlock()

	if err := s.ch.Delete(ctx, s.key); err != nil {
		s.log.ErrorContext(ctx, "clear session failed", "error", err)
	}
}

func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return "", ErrNotLoggedIn
	}
	return s.state.Token, nil
}

func (s *Session) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return domain.User{}, false
	}
	return s.state.User, true
}

func (s *Session) IsAdmin() bool {
	u, ok := s.User()
	return ok && u.IsAdmin
}
