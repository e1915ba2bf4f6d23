// Account endpoints: registration, login, profile and favourites
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

// RegisterRequest is the body of POST /users/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	DOB      string `json:"dob"`
}

// ProfileUpdate is the body of PATCH /users/profile. Empty fields are omitted.
type ProfileUpdate struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	DOB   string `json:"dob,omitempty"`
}

// AccountService calls the authenticated user endpoints through a [Gateway].
type AccountService struct {
	gateway *Gateway
	logger  *log.Logger
}

// NewAccountService creates an account client.
func NewAccountService(g *Gateway, logger *log.Logger) *AccountService {
	if logger == nil {
		logger = g.logger
	}
	return &AccountService{gateway: g, logger: shared.WithLogger(logger, "service", "account")}
}

// Register creates an account. The response body is returned as-is.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*Response, error) {
	return s.gateway.Post(ctx, "/users/register", req)
}

// Login exchanges credentials for a user record and a token.
func (s *AccountService) Login(ctx context.Context, username, password string) (*models.LoginResult, error) {
	resp, err := s.gateway.Post(ctx, "/users/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var body struct {
		User    *wireUser `json:"user"`
		Token   text      `json:"token"`
		Message text      `json:"message"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, err
	}

	return &models.LoginResult{
		User:    body.User.normalize(),
		Token:   body.Token.String(),
		Message: body.Message.String(),
	}, nil
}

// Logout ends the server session. A non-empty token is sent as an explicit Authorization header.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	req := Request{Method: http.MethodPost, Path: "/users/logout"}
	if token != "" {
		req.Headers = http.Header{"Authorization": []string{"Bearer " + token}}
	}
	_, err := s.gateway.Do(ctx, req)
	return err
}

// Profile fetches the current user's profile.
func (s *AccountService) Profile(ctx context.Context) (*models.Profile, error) {
	resp, err := s.gateway.Get(ctx, "/users/profile", nil)
	if err != nil {
		return nil, err
	}

	var w wireProfile
	if err := resp.Decode(&w); err != nil {
		return nil, err
	}
	return w.normalize(), nil
}

// UpdateProfile patches the current user's profile and returns the updated record.
func (s *AccountService) UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.Profile, error) {
	resp, err := s.gateway.Patch(ctx, "/users/profile", update)
	if err != nil {
		return nil, err
	}

	var w wireProfile
	if err := resp.Decode(&w); err != nil {
		return nil, err
	}
	return w.normalize(), nil
}

// Favourites fetches the user's favourite movies in server order. A non-array body yields an empty list.
func (s *AccountService) Favourites(ctx context.Context) ([]models.Movie, error) {
	resp, err := s.gateway.Get(ctx, "/users/favorites", nil)
	if err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body)
	if !resp.IsJSON || len(body) == 0 || body[0] != '[' {
		s.logger.Debug("favourites response is not a list", "json", resp.IsJSON)
		return []models.Movie{}, nil
	}

	var ws []wireMovie
	if err := json.Unmarshal(body, &ws); err != nil {
		s.logger.Warn("failed to decode favourites", "error", err)
		return []models.Movie{}, nil
	}
	return normalizeMovies(ws), nil
}

// AddFavourite marks a movie as favourite.
func (s *AccountService) AddFavourite(ctx context.Context, id models.ID) error {
	p, err := resourcePath("/users/favorites", id)
	if err != nil {
		return err
	}
	_, err = s.gateway.Post(ctx, p, nil)
	return err
}

// RemoveFavourite unmarks a movie as favourite.
func (s *AccountService) RemoveFavourite(ctx context.Context, id models.ID) error {
	p, err := resourcePath("/users/favorites", id)
	if err != nil {
		return err
	}
	_, err = s.gateway.Delete(ctx, p)
	return err
}
