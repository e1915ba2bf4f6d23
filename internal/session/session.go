package session

import (
	"context"

	"github.com/desertthunder/reelx/internal/models"
)

const (
	KeyAuth        = "auth"
	KeyAccessToken = "accessToken"
)

// State is the coarse session state.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "AUTHENTICATED"
	default:
		return "ANONYMOUS"
	}
}

// Session is an immutable snapshot. User is nil exactly when Token is empty.
type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// State reports whether the snapshot is authenticated.
func (s Session) State() State {
	if s.User != nil && s.Token != "" {
		return Authenticated
	}
	return Anonymous
}

func (s Session) Authenticated() bool {
	return s.State() == Authenticated
}

// Username returns the user's name, or "" when anonymous.
func (s Session) Username() string {
	if s.User == nil {
		return ""
	}
	return s.User.Username
}

// Storage persists string values by key. Get returns [shared.ErrKeyNotFound] for missing keys.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Authenticator is the subset of the account API the store calls.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.LoginResult, error)
	Logout(ctx context.Context, token string) error
}
