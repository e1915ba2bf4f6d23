package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelx/internal/session"
	"github.com/desertthunder/reelx/internal/shared"
	tu "github.com/desertthunder/reelx/internal/testing"
	"github.com/urfave/cli/v3"
)

// fakeBackend serves the catalogue and user endpoints for one user with the password "secret".
type fakeBackend struct {
	mu       sync.Mutex
	favs     []string
	queries  []string
	logouts  int
	appToken string
}

func movieJSON(id, title string) map[string]any {
	return map[string]any{"id": id, "title": title, "year": "1995", "rating": 8.3, "genres": []string{"Crime", "Drama"}}
}

var fakeTitles = map[string]string{"tt1": "Heat", "tt2": "Ronin", "tt3": "Collateral"}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer tok-ana"
	}

	list := func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.queries = append(b.queries, r.URL.RawQuery)
		b.appToken = r.Header.Get("X-App-Token")
		b.mu.Unlock()

		tu.WriteJSON(t, w, http.StatusOK, map[string]any{
			"data": []any{movieJSON("tt1", "Heat"), movieJSON("tt2", "Ronin")},
			"pagination": map[string]any{
				"current_page": 1, "total_pages": 3, "total_items": 42, "limit": 2,
			},
		})
	}
	mux.HandleFunc("GET /movies", list)
	mux.HandleFunc("GET /movies/search", list)
	mux.HandleFunc("GET /movies/top-rated", list)
	mux.HandleFunc("GET /movies/most-popular", list)

	mux.HandleFunc("GET /movies/{id}", func(w http.ResponseWriter, r *http.Request) {
		title, ok := fakeTitles[r.PathValue("id")]
		if !ok {
			http.Error(w, "movie not found", http.StatusNotFound)
			return
		}
		m := movieJSON(r.PathValue("id"), title)
		m["runtime"] = 170
		m["directors"] = []any{map[string]any{"id": "nm1", "name": "Michael Mann"}}
		tu.WriteJSON(t, w, http.StatusOK, m)
	})

	mux.HandleFunc("POST /users/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["password"] != "secret" {
			tu.WriteJSON(t, w, http.StatusUnauthorized, map[string]any{"message": "invalid credentials"})
			return
		}
		tu.WriteJSON(t, w, http.StatusOK, map[string]any{
			"user":  map[string]any{"id": "u1", "username": body["username"]},
			"token": "tok-ana",
		})
	})

	mux.HandleFunc("POST /users/logout", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.logouts++
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /users/profile", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		tu.WriteJSON(t, w, http.StatusOK, map[string]any{"username": "ana", "email": "ana@example.com"})
	})

	mux.HandleFunc("GET /users/favorites", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		b.mu.Lock()
		out := []any{}
		for _, id := range b.favs {
			out = append(out, movieJSON(id, fakeTitles[id]))
		}
		b.mu.Unlock()
		tu.WriteJSON(t, w, http.StatusOK, out)
	})

	mux.HandleFunc("POST /users/favorites/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		b.mu.Lock()
		b.favs = append(b.favs, r.PathValue("id"))
		b.mu.Unlock()
		tu.WriteJSON(t, w, http.StatusCreated, map[string]any{"message": "added"})
	})

	mux.HandleFunc("DELETE /users/favorites/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		b.mu.Lock()
		b.favs = slices.DeleteFunc(b.favs, func(id string) bool { return id == r.PathValue("id") })
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /echo", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	return mux
}

func (b *fakeBackend) favourites() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.favs)
}

func (b *fakeBackend) setFavourites(ids ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.favs = ids
}

func (b *fakeBackend) lastAppToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.appToken
}

func (b *fakeBackend) lastQuery() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queries) == 0 {
		return ""
	}
	return b.queries[len(b.queries)-1]
}

type testEnv struct {
	backend *fakeBackend
	server  *httptest.Server
	storage *session.MemoryStorage
	config  *shared.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	b := &fakeBackend{}
	srv := httptest.NewServer(b.handler(t))
	t.Cleanup(srv.Close)

	config := shared.DefaultConfig()
	config.API.BaseURL = srv.URL
	config.API.Token = "app-123"
	config.API.RateLimit = 0
	config.Storage.Driver = "memory"

	return &testEnv{backend: b, server: srv, storage: session.NewMemoryStorage(), config: config}
}

// runner returns a runner sharing the environment's storage, as separate invocations of the binary would.
// A nil storage uses the configured driver.
func (e *testEnv) runner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()

	var storage session.Storage
	if e.storage != nil {
		storage = e.storage
	}

	output := &bytes.Buffer{}
	r := NewRunner(RunnerOpts{
		Config:     e.config,
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		HTTPClient: e.server.Client(),
		Storage:    storage,
		Logger:     log.New(io.Discard),
		Output:     output,
	})
	t.Cleanup(r.Close)
	return r, output
}

func run(r *Runner, args ...string) error {
	app := &cli.Command{
		Name:     "reelx",
		Flags:    globalFlags(),
		Before:   r.Before,
		Commands: r.register(),
	}
	return app.Run(context.Background(), append([]string{"reelx"}, args...))
}

func login(t *testing.T, env *testEnv) {
	t.Helper()
	r, _ := env.runner(t)
	if err := run(r, "auth", "login", "-u", "ana", "-p", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	r.Close()
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			storage := session.NewMemoryStorage()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Storage:    storage,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.storage != storage {
				t.Error("expected storage to be set")
			}
			if runner.sessions != nil {
				t.Error("expected stores to be built lazily")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		var names []string
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names = append(names, cmd.Name)
		}

		for _, want := range []string{"setup", "auth", "movies", "persons", "favourites", "api", "storage", "tui"} {
			if !slices.Contains(names, want) {
				t.Errorf("expected %q command, got %v", want, names)
			}
		}
	})

	t.Run("openStorage", func(t *testing.T) {
		tests := []struct {
			name    string
			cfg     shared.StorageConfig
			wantErr error
			memory  bool
		}{
			{name: "memory", cfg: shared.StorageConfig{Driver: "memory"}, memory: true},
			{name: "unreachable redis falls back to memory", cfg: shared.StorageConfig{Driver: "redis", RedisAddr: "127.0.0.1:1"}, memory: true},
			{name: "unknown driver", cfg: shared.StorageConfig{Driver: "etcd"}, wantErr: shared.ErrInvalidConfig},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				config := shared.DefaultConfig()
				config.Storage = tt.cfg
				r := NewRunner(RunnerOpts{Config: config, Logger: log.New(io.Discard)})
				defer r.Close()

				storage, err := r.openStorage(context.Background())
				if tt.wantErr != nil {
					if !errors.Is(err, tt.wantErr) {
						t.Fatalf("expected %v, got %v", tt.wantErr, err)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if _, ok := storage.(*session.MemoryStorage); ok != tt.memory {
					t.Errorf("expected memory storage %v, got %T", tt.memory, storage)
				}
			})
		}

		t.Run("sqlite lists entries", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Storage = shared.StorageConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "reelx.db")}
			r := NewRunner(RunnerOpts{Config: config, Logger: log.New(io.Discard), Output: &bytes.Buffer{}})
			defer r.Close()

			if err := r.connect(context.Background()); err != nil {
				t.Fatalf("connect failed: %v", err)
			}
			if r.entries == nil {
				t.Error("expected sqlite storage to list entries")
			}
		})
	})
}

func TestMovieCommands(t *testing.T) {
	t.Run("list prints titles and pagination", func(t *testing.T) {
		env := newTestEnv(t)
		r, out := env.runner(t)

		if err := run(r, "movies", "list", "--page", "2", "--limit", "2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := out.String()
		for _, want := range []string{"Heat", "Ronin", "Page 1 of 3"} {
			if !strings.Contains(got, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, got)
			}
		}
		if q := env.backend.lastQuery(); !strings.Contains(q, "page=2") || !strings.Contains(q, "limit=2") {
			t.Errorf("expected paging query, got %q", q)
		}
		if got := env.backend.lastAppToken(); got != "app-123" {
			t.Errorf("expected app token header, got %q", got)
		}
	})

	t.Run("search sends query and filters", func(t *testing.T) {
		env := newTestEnv(t)
		r, _ := env.runner(t)

		if err := run(r, "movies", "search", "--genre", "Crime", "heat"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		q := env.backend.lastQuery()
		if !strings.Contains(q, "q=heat") || !strings.Contains(q, "genre=Crime") {
			t.Errorf("expected q and genre in query, got %q", q)
		}
	})

	t.Run("search without terms", func(t *testing.T) {
		env := newTestEnv(t)
		r, _ := env.runner(t)

		err := run(r, "movies", "search")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("show writes JSON", func(t *testing.T) {
		env := newTestEnv(t)
		r, out := env.runner(t)

		if err := run(r, "movies", "show", "--json", "tt1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), `"title": "Heat"`) {
			t.Errorf("expected movie JSON, got %s", out.String())
		}
	})

	t.Run("show surfaces server errors", func(t *testing.T) {
		env := newTestEnv(t)
		r, _ := env.runner(t)

		err := run(r, "movies", "show", "tt404")
		if !errors.Is(err, shared.ErrRequestFailed) {
			t.Errorf("expected ErrRequestFailed, got %v", err)
		}
	})

	t.Run("home", func(t *testing.T) {
		env := newTestEnv(t)
		r, out := env.runner(t)

		if err := run(r, "movies", "home"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Top 5", "Most Popular", "Top Rated", "1. Heat"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("login persists the session across runs", func(t *testing.T) {
		env := newTestEnv(t)
		r, out := env.runner(t)

		if err := run(r, "auth", "login", "-u", "ana", "-p", "secret"); err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if !strings.Contains(out.String(), "Logged in as ana") {
			t.Errorf("unexpected output %q", out.String())
		}
		if !env.storage.Has(session.KeyAuth) || !env.storage.Has(session.KeyAccessToken) {
			t.Fatal("expected session keys to be persisted")
		}

		next, nextOut := env.runner(t)
		if err := run(next, "auth", "status"); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !strings.Contains(nextOut.String(), "Logged in as ana") {
			t.Errorf("expected restored session, got %q", nextOut.String())
		}
	})

	t.Run("login with wrong password", func(t *testing.T) {
		env := newTestEnv(t)
		r, _ := env.runner(t)

		err := run(r, "auth", "login", "-u", "ana", "-p", "nope")
		if err == nil {
			t.Fatal("expected login to fail")
		}
		if env.storage.Has(session.KeyAuth) {
			t.Error("expected nothing persisted")
		}
	})

	t.Run("logout clears storage and notifies the server", func(t *testing.T) {
		env := newTestEnv(t)
		login(t, env)

		r, out := env.runner(t)
		if err := run(r, "auth", "logout"); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
		r.Close()

		if env.storage.Has(session.KeyAuth) || env.storage.Has(session.KeyAccessToken) {
			t.Error("expected session keys to be removed")
		}
		if !strings.Contains(out.String(), "Logged out ana") {
			t.Errorf("unexpected output %q", out.String())
		}

		env.backend.mu.Lock()
		defer env.backend.mu.Unlock()
		if env.backend.logouts != 1 {
			t.Errorf("expected one server logout, got %d", env.backend.logouts)
		}
	})

	t.Run("profile requires a session", func(t *testing.T) {
		env := newTestEnv(t)
		r, _ := env.runner(t)

		err := run(r, "auth", "profile")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("profile sends the session token", func(t *testing.T) {
		env := newTestEnv(t)
		login(t, env)

		r, out := env.runner(t)
		if err := run(r, "auth", "profile"); err != nil {
			t.Fatalf("profile failed: %v", err)
		}
		if !strings.Contains(out.String(), "ana@example.com") {
			t.Errorf("expected profile output, got %q", out.String())
		}
	})

	t.Run("profile update needs a field", func(t *testing.T) {
		env := newTestEnv(t)
		r, _ := env.runner(t)

		err := run(r, "auth", "profile", "update")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestFavouritesCommands(t *testing.T) {
	t.Run("require a session", func(t *testing.T) {
		env := newTestEnv(t)
		r, _ := env.runner(t)

		err := run(r, "favourites", "list")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("add list and remove", func(t *testing.T) {
		env := newTestEnv(t)
		login(t, env)

		r, out := env.runner(t)
		if err := run(r, "favourites", "add", "tt1"); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if !strings.Contains(out.String(), "Added Heat") {
			t.Errorf("unexpected output %q", out.String())
		}
		if got := env.backend.favourites(); !slices.Equal(got, []string{"tt1"}) {
			t.Fatalf("expected server favourites [tt1], got %v", got)
		}

		r, out = env.runner(t)
		if err := run(r, "favourites", "add", "tt1"); err != nil {
			t.Fatalf("second add failed: %v", err)
		}
		if !strings.Contains(out.String(), "already in your favourites") {
			t.Errorf("expected add to be a no-op, got %q", out.String())
		}

		r, out = env.runner(t)
		if err := run(r, "favourites", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(out.String(), "Heat") || !strings.Contains(out.String(), "(1)") {
			t.Errorf("unexpected list output:\n%s", out.String())
		}

		r, out = env.runner(t)
		if err := run(r, "favourites", "toggle", "tt1"); err != nil {
			t.Fatalf("toggle failed: %v", err)
		}
		if !strings.Contains(out.String(), "Removed Heat") {
			t.Errorf("unexpected output %q", out.String())
		}
		if got := env.backend.favourites(); len(got) != 0 {
			t.Errorf("expected no server favourites, got %v", got)
		}

		r, out = env.runner(t)
		if err := run(r, "favourites", "remove", "tt1"); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if !strings.Contains(out.String(), "not in your favourites") {
			t.Errorf("expected remove to be a no-op, got %q", out.String())
		}
	})

	t.Run("list marks favourites in movie tables", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.setFavourites("tt2")
		login(t, env)

		r, out := env.runner(t)
		if err := run(r, "movies", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if n := strings.Count(out.String(), "♥"); n < 2 {
			t.Errorf("expected a heart column and one marked row, got:\n%s", out.String())
		}
	})

	t.Run("export writes a file", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.setFavourites("tt1", "tt3")
		login(t, env)

		path := filepath.Join(t.TempDir(), "favs.csv")
		r, out := env.runner(t)
		if err := run(r, "favourites", "export", "-f", "csv", "-o", path, "--rate", "100"); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		tu.AssertFileExists(t, path)
		content := tu.MustReadFile(t, path)
		if !strings.Contains(content, "Heat") || !strings.Contains(content, "Collateral") {
			t.Errorf("unexpected export:\n%s", content)
		}
		if !strings.Contains(content, "Michael Mann") {
			t.Errorf("expected directors from detail records:\n%s", content)
		}
		if !strings.Contains(out.String(), "Exported 2 favourites") {
			t.Errorf("unexpected output %q", out.String())
		}
	})
}

func TestAPICommands(t *testing.T) {
	t.Run("post rejects invalid JSON", func(t *testing.T) {
		env := newTestEnv(t)
		r, _ := env.runner(t)

		err := run(r, "api", "post", "-d", "{nope", "/echo")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("post sends the body as given", func(t *testing.T) {
		env := newTestEnv(t)
		r, out := env.runner(t)

		if err := run(r, "api", "post", "-d", `{"a":1}`, "echo"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), `"a": 1`) {
			t.Errorf("expected echoed JSON, got %q", out.String())
		}
	})

	t.Run("get wraps request failures", func(t *testing.T) {
		env := newTestEnv(t)
		r, _ := env.runner(t)

		err := run(r, "api", "get", "/missing")
		if !errors.Is(err, shared.ErrAPIRequest) || !errors.Is(err, shared.ErrRequestFailed) {
			t.Errorf("expected ErrAPIRequest wrapping ErrRequestFailed, got %v", err)
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("config refuses to overwrite without force", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		r := NewRunner(RunnerOpts{ConfigPath: path, Logger: log.New(io.Discard), Output: &bytes.Buffer{}})

		if err := run(r, "setup", "config"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertFileExists(t, path)

		if err := run(r, "setup", "config"); err == nil {
			t.Error("expected an error for an existing file")
		}
		if err := run(r, "setup", "config", "--force"); err != nil {
			t.Errorf("expected --force to overwrite, got %v", err)
		}
	})

	t.Run("token saves base URL and app token", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		r := NewRunner(RunnerOpts{ConfigPath: path, Logger: log.New(io.Discard), Output: &bytes.Buffer{}})

		curl := `curl 'https://movies.example.com/api/movies/tt1' -H 'X-App-Token: app-999'`
		if err := run(r, "setup", "token", "--curl", curl); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		config, err := shared.LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if config.API.BaseURL != "https://movies.example.com/api" {
			t.Errorf("unexpected base URL %q", config.API.BaseURL)
		}
		if config.API.Token != "app-999" {
			t.Errorf("unexpected token %q", config.API.Token)
		}
	})

	t.Run("token needs exactly one source", func(t *testing.T) {
		r := NewRunner(RunnerOpts{Logger: log.New(io.Discard), Output: &bytes.Buffer{}})

		if err := run(r, "setup", "token"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := run(r, "setup", "token", "--curl", "x", "--curl-file", "y"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("database applies and rolls back migrations", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Storage = shared.StorageConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "reelx.db")}
		out := &bytes.Buffer{}
		r := NewRunner(RunnerOpts{Config: config, Logger: log.New(io.Discard), Output: out})

		if err := run(r, "setup", "database"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "✓ 0000") {
			t.Errorf("expected applied migration, got %q", out.String())
		}

		out.Reset()
		if err := run(r, "setup", "database", "--rollback"); err != nil {
			t.Fatalf("rollback failed: %v", err)
		}
		if !strings.Contains(out.String(), "✗ 0000") {
			t.Errorf("expected rolled back migration, got %q", out.String())
		}
	})
}

func TestStorageList(t *testing.T) {
	t.Run("memory storage cannot list", func(t *testing.T) {
		env := newTestEnv(t)
		r, _ := env.runner(t)

		err := run(r, "storage", "list")
		if !errors.Is(err, shared.ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})

	t.Run("sqlite storage redacts the token", func(t *testing.T) {
		env := newTestEnv(t)
		env.config.Storage = shared.StorageConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "reelx.db")}
		env.storage = nil

		r, _ := env.runner(t)
		if err := run(r, "auth", "login", "-u", "ana", "-p", "secret"); err != nil {
			t.Fatalf("login failed: %v", err)
		}
		r.Close()

		next, out := env.runner(t)
		if err := run(next, "storage", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}

		got := out.String()
		if !strings.Contains(got, session.KeyAccessToken) || !strings.Contains(got, "tok-****") {
			t.Errorf("expected redacted token entry, got:\n%s", got)
		}
		if strings.Contains(got, "tok-ana") {
			t.Errorf("expected token value to be hidden, got:\n%s", got)
		}
	})
}

func TestRedact(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{session.KeyAccessToken, "tok-ana", "tok-****"},
		{"refreshToken", "abc", "****"},
		{session.KeyAuth, `{"username":"ana"}`, `{"username":"ana"}`},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := redact(tt.key, tt.value); got != tt.want {
				t.Errorf("redact(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
