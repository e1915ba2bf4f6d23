package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/reelx/internal/shared"
	tu "github.com/desertthunder/reelx/internal/testing"
	"golang.org/x/oauth2"
)

func newAccount(t *testing.T, handler http.HandlerFunc) *AccountService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	g := NewGateway(GatewayOpts{
		BaseURL: server.URL,
		Tokens:  oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "current"}),
	})
	return NewAccountService(g, nil)
}

func TestAccountService(t *testing.T) {
	ctx := context.Background()

	t.Run("Login", func(t *testing.T) {
		svc := newAccount(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/users/login" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["username"] != "ana" || body["password"] != "secret" {
				t.Errorf("unexpected body %v", body)
			}
			tu.WriteJSON(t, w, http.StatusOK, map[string]any{
				"message": "ok",
				"token":   "tok-1",
				"user":    map[string]any{"id": 5, "username": "ana", "email": "ana@example.com"},
			})
		})

		res, err := svc.Login(ctx, "ana", "secret")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Token != "tok-1" || res.User == nil || res.User.Username != "ana" || res.User.ID != "5" {
			t.Errorf("unexpected login result %+v", res)
		}
	})

	t.Run("Login Without User", func(t *testing.T) {
		svc := newAccount(t, func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(t, w, http.StatusOK, map[string]any{"token": "tok-1"})
		})

		res, err := svc.Login(ctx, "ana", "secret")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.User != nil {
			t.Errorf("expected nil user, got %+v", res.User)
		}
	})

	t.Run("Login Failure", func(t *testing.T) {
		svc := newAccount(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		})

		if _, err := svc.Login(ctx, "ana", "wrong"); !errors.Is(err, shared.ErrRequestFailed) {
			t.Errorf("expected ErrRequestFailed, got %v", err)
		}
	})

	t.Run("Logout Sends Explicit Token", func(t *testing.T) {
		svc := newAccount(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer previous" {
				t.Errorf("expected explicit token, got %q", got)
			}
			w.WriteHeader(http.StatusOK)
		})

		if err := svc.Logout(ctx, "previous"); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Register", func(t *testing.T) {
		svc := newAccount(t, func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			var got map[string]string
			json.Unmarshal(body, &got)
			for _, k := range []string{"username", "email", "password", "phone", "dob"} {
				if _, ok := got[k]; !ok {
					t.Errorf("expected %s in register payload", k)
				}
			}
			tu.WriteJSON(t, w, http.StatusCreated, map[string]string{"message": "registered"})
		})

		resp, err := svc.Register(ctx, RegisterRequest{Username: "ana", Email: "a@b.c", Password: "pw", Phone: "1", DOB: "1990-01-01"})
		if err != nil || resp.StatusCode != http.StatusCreated {
			t.Errorf("unexpected register result %v %v", resp, err)
		}
	})

	t.Run("Profile And Update", func(t *testing.T) {
		svc := newAccount(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				tu.WriteJSON(t, w, http.StatusOK, map[string]any{"username": "ana", "dob": "1990-05-17T00:00:00Z"})
			case http.MethodPatch:
				var got map[string]any
				json.NewDecoder(r.Body).Decode(&got)
				if _, ok := got["email"]; ok {
					t.Error("empty email should be omitted")
				}
				tu.WriteJSON(t, w, http.StatusOK, map[string]any{"username": "ana", "phone": got["phone"]})
			}
		})

		p, err := svc.Profile(ctx)
		if err != nil || p.DOB != "1990-05-17" {
			t.Errorf("unexpected profile %+v %v", p, err)
		}

		p, err = svc.UpdateProfile(ctx, ProfileUpdate{Phone: "555"})
		if err != nil || p.Phone != "555" {
			t.Errorf("unexpected updated profile %+v %v", p, err)
		}
	})

	t.Run("Favourites", func(t *testing.T) {
		tests := []struct {
			name        string
			contentType string
			body        string
			want        int
		}{
			{"array", "application/json", `[{"id":1,"title":"A"},{"id":2,"title":"B"}]`, 2},
			{"object", "application/json", `{"data":[{"id":1}]}`, 0},
			{"null", "application/json", `null`, 0},
			{"text", "text/plain", `[{"id":1}]`, 0},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc := newAccount(t, func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Content-Type", tt.contentType)
					w.Write([]byte(tt.body))
				})

				movies, err := svc.Favourites(ctx)
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if movies == nil || len(movies) != tt.want {
					t.Errorf("expected %d movies, got %v", tt.want, movies)
				}
			})
		}
	})

	t.Run("Add And Remove Favourite", func(t *testing.T) {
		var calls []string
		svc := newAccount(t, func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, r.Method+" "+r.URL.Path)
			if r.Header.Get("Authorization") != "Bearer current" {
				t.Errorf("expected session token, got %q", r.Header.Get("Authorization"))
			}
			w.WriteHeader(http.StatusOK)
		})

		if err := svc.AddFavourite(ctx, "42"); err != nil {
			t.Errorf("add failed: %v", err)
		}
		if err := svc.RemoveFavourite(ctx, "42"); err != nil {
			t.Errorf("remove failed: %v", err)
		}
		if err := svc.AddFavourite(ctx, ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}

		if len(calls) != 2 || calls[0] != "POST /users/favorites/42" || calls[1] != "DELETE /users/favorites/42" {
			t.Errorf("unexpected calls %v", calls)
		}
	})
}
