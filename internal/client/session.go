package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/vncsmyrnk/tasks/internal/core/domain"
)

// State is an immutable snapshot of the session.
type State struct {
	Token   string
	User    *domain.PublicUser
	Loading bool
}

type Gate int

const (
	GateLoading Gate = iota
	GateRedirectLogin
	GateAllow
)

type userFetcher interface {
	Me(ctx context.Context) (*domain.PublicUser, error)
}

// Session is the client's single source of truth for who is logged in.
// Subscribers are notified synchronously after every change.
type Session struct {
	mu     sync.Mutex
	state  State
	store  TokenStore
	subs   map[int]func(State)
	nextID int
}

// NewSession starts in the loading phase until Restore runs.
func NewSession(store TokenStore) *Session {
	if store == nil {
		store = &MemoryTokenStore{}
	}
	return &Session{
		state: State{Loading: true},
		store: store,
		subs:  make(map[int]func(State)),
	}
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) Login(token string, user domain.PublicUser) error {
	if err := s.store.Save(token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	s.set(func(st *State) {
		st.Token = token
		st.User = &user
	})
	return nil
}

// Logout clears the session even if the persisted token cannot be removed.
func (s *Session) Logout() error {
	err := s.store.Clear()
	s.set(func(st *State) {
		st.Token = ""
		st.User = nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// Restore loads a persisted token and validates it against the server.
// Only a token the server rejects with 401 is forgotten; when the server
// cannot answer, the token is kept and the error returned.
func (s *Session) Restore(ctx context.Context, api userFetcher) error {
	s.set(func(st *State) { st.Loading = true })
	defer s.set(func(st *State) { st.Loading = false })

	token, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}
	if token == "" {
		return nil
	}

	s.set(func(st *State) { st.Token = token })

	user, err := api.Me(ctx)
	if err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
			return fmt.Errorf("failed to validate stored session: %w", err)
		}

		clearErr := s.store.Clear()
		s.set(func(st *State) {
			st.Token = ""
			st.User = nil
		})
		if clearErr != nil {
			return fmt.Errorf("failed to clear rejected token: %w", clearErr)
		}
		return fmt.Errorf("stored session rejected: %w", err)
	}

	s.set(func(st *State) { st.User = user })
	return nil
}

// Gate decides what a protected view may do: render nothing while
// loading, redirect to login without a token, otherwise render.
func (s *Session) Gate() Gate {
	st := s.Snapshot()
	switch {
	case st.Loading:
		return GateLoading
	case st.Token == "":
		return GateRedirectLogin
	default:
		return GateAllow
	}
}

func (s *Session) set(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	snap := s.snapshot()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Session) snapshot() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}
