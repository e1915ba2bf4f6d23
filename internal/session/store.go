package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
	"golang.org/x/oauth2"
)

const DefaultLogoutTimeout = 5 * time.Second

// Listener receives every transition, in order.
type Listener func(prev, next Session)

// StoreOpts configures a [Store].
type StoreOpts struct {
	Auth    Authenticator
	Storage Storage
	Logger  *log.Logger
	// LogoutTimeout bounds the best-effort server logout.
	LogoutTimeout time.Duration
}

// Store holds the current [Session].
//
// Login and Logout are serialized: each transition persists, then notifies subscribers, before the
// next one starts. Listeners run while the transition lock is held and must not call Login or
// Logout themselves.
type Store struct {
	auth          Authenticator
	storage       Storage
	logger        *log.Logger
	logoutTimeout time.Duration

	transition sync.Mutex

	mu        sync.RWMutex
	current   Session
	listeners map[int]Listener
	nextID    int

	background sync.WaitGroup
}

// NewStore creates a store and restores the persisted session.
func NewStore(ctx context.Context, opts StoreOpts) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	storage := opts.Storage
	if storage == nil {
		storage = NewMemoryStorage()
	}

	timeout := opts.LogoutTimeout
	if timeout <= 0 {
		timeout = DefaultLogoutTimeout
	}

	s := &Store{
		auth:          opts.Auth,
		storage:       storage,
		logger:        shared.WithLogger(logger, "component", "session"),
		logoutTimeout: timeout,
		listeners:     make(map[int]Listener),
	}
	s.Bootstrap(ctx)
	return s
}

// Bootstrap replaces the current session with the persisted one.
//
// Missing, unreadable, unparseable or partial records all yield an anonymous session; the problem is
// logged and never returned.
func (s *Store) Bootstrap(ctx context.Context) {
	next := s.restore(ctx)

	s.transition.Lock()
	defer s.transition.Unlock()
	s.apply(next)
}

func (s *Store) restore(ctx context.Context) Session {
	raw, err := s.storage.Get(ctx, KeyAuth)
	if errors.Is(err, shared.ErrKeyNotFound) {
		return Session{}
	}
	if err != nil {
		s.logger.Warn("failed to read persisted session", "error", err)
		return Session{}
	}

	var persisted struct {
		User  *models.User `json:"user"`
		Token *string      `json:"token"`
	}
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		s.logger.Warn("ignoring persisted session", "error", fmt.Errorf("%w: %v", shared.ErrMalformedPersistedState, err))
		return Session{}
	}

	token := ""
	if persisted.Token != nil {
		token = *persisted.Token
	}

	switch {
	case persisted.User == nil && token == "":
		return Session{}
	case persisted.User == nil, token == "":
		s.logger.Warn("ignoring persisted session",
			"error", fmt.Errorf("%w: user and token must both be present", shared.ErrMalformedPersistedState),
			"has_user", persisted.User != nil,
			"has_token", token != "",
		)
		return Session{}
	}

	s.logger.Debug("restored session", "user", persisted.User.Username)
	return Session{User: persisted.User, Token: token}
}

// Login authenticates and, on success, replaces the session with exactly the returned user and token.
//
// A failed call leaves the session unchanged and returns the error; there is no retry.
func (s *Store) Login(ctx context.Context, username, password string) (Session, error) {
	if s.auth == nil {
		return Session{}, fmt.Errorf("%w: no account API configured", shared.ErrMissingConfig)
	}

	res, err := s.auth.Login(ctx, username, password)
	if err != nil {
		s.logger.Debug("login failed", "user", username, "error", err)
		return s.Current(), err
	}

	if res == nil || res.User == nil || res.Token == "" {
		return s.Current(), fmt.Errorf("%w: login response is missing the user or token", shared.ErrInvalidCredentials)
	}

	next := Session{User: res.User, Token: res.Token}

	s.transition.Lock()
	defer s.transition.Unlock()

	s.persist(ctx, next)
	s.apply(next)
	s.logger.Info("logged in", "user", next.Username())
	return next, nil
}

// Logout clears the session immediately and then tells the server in the background.
//
// The server call carries the previous token explicitly and its result is ignored.
func (s *Store) Logout(ctx context.Context) {
	s.transition.Lock()
	prev := s.Current()

	if err := s.storage.Delete(ctx, KeyAuth, KeyAccessToken); err != nil {
		s.logger.Warn("failed to clear persisted session", "error", err)
	}
	s.apply(Session{})
	s.transition.Unlock()

	if prev.Token == "" || s.auth == nil {
		return
	}

	s.logger.Info("logged out", "user", prev.Username())

	s.background.Add(1)
	go func(token string) {
		defer s.background.Done()

		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.logoutTimeout)
		defer cancel()

		if err := s.auth.Logout(callCtx, token); err != nil {
			s.logger.Debug("server logout failed", "error", err)
		}
	}(prev.Token)
}

// Wait blocks until background server logouts finish.
func (s *Store) Wait() {
	s.background.Wait()
}

func (s *Store) persist(ctx context.Context, next Session) {
	data, err := json.Marshal(next)
	if err != nil {
		s.logger.Warn("failed to encode session", "error", err)
		return
	}

	if err := s.storage.Set(ctx, KeyAuth, string(data)); err != nil {
		s.logger.Warn("failed to persist session", "error", err)
	}
	if err := s.storage.Set(ctx, KeyAccessToken, next.Token); err != nil {
		s.logger.Warn("failed to persist access token", "error", err)
	}
}

// apply swaps the session and notifies listeners. Callers hold the transition lock.
func (s *Store) apply(next Session) {
	s.mu.Lock()
	prev := s.current
	s.current = next
	listeners := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(prev, next)
	}
}

// Current returns the session snapshot.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) State() State {
	return s.Current().State()
}

// Token implements [oauth2.TokenSource].
func (s *Store) Token() (*oauth2.Token, error) {
	cur := s.Current()
	if !cur.Authenticated() {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: cur.Token, TokenType: "Bearer"}, nil
}

// Subscribe registers fn for future transitions and returns a function that unregisters it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

var _ oauth2.TokenSource = (*Store)(nil)
