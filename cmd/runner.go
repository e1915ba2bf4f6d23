package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelx/internal/favourites"
	"github.com/desertthunder/reelx/internal/repositories"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/session"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The gateway, stores and persisted storage are opened on first use by [Runner.connect], so setup
// commands work without a reachable database and the TUI can redirect logs before anything is built.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	once       sync.Once
	connectErr error
	closers    []func() error

	storage    session.Storage
	entries    entryLister
	gateway    *services.Gateway
	catalogue  *services.CatalogueService
	account    *services.AccountService
	sessions   *session.Store
	favourites *favourites.Store
	engine     *tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	// Storage replaces the configured persisted storage.
	Storage session.Storage
	Logger  *log.Logger
	Output  io.Writer
}

// entryLister is implemented by storages that can enumerate their keys.
type entryLister interface {
	Entries(ctx context.Context) ([]repositories.Entry, error)
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		storage:    opts.Storage,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, personsCommand, favouritesCommand, apiCommand, storageCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by components built after this call.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// connect builds the gateway, the API clients and the session and favourites stores once.
func (r *Runner) connect(ctx context.Context) error {
	r.once.Do(func() {
		r.connectErr = r.open(ctx)
	})
	return r.connectErr
}

func (r *Runner) open(ctx context.Context) error {
	if r.storage == nil {
		storage, err := r.openStorage(ctx)
		if err != nil {
			return err
		}
		r.storage = storage
	}
	if l, ok := r.storage.(entryLister); ok {
		r.entries = l
	}

	r.gateway = services.NewGateway(services.GatewayOpts{
		BaseURL:   r.config.API.BaseURL,
		AppToken:  r.config.API.Token,
		Client:    r.httpClient,
		RateLimit: r.config.API.RateLimit,
		Timeout:   r.config.API.RequestTimeout(),
		Logger:    r.logger,
	})
	r.catalogue = services.NewCatalogueService(r.gateway, r.logger)
	r.account = services.NewAccountService(r.gateway, r.logger)

	r.sessions = session.NewStore(ctx, session.StoreOpts{
		Auth:    r.account,
		Storage: r.storage,
		Logger:  r.logger,
	})
	r.gateway.SetTokenSource(r.sessions)

	r.favourites = favourites.NewStore(favourites.StoreOpts{
		API:      r.account,
		Sessions: r.sessions,
		Logger:   r.logger,
	})
	r.engine = tasks.NewEngine(r.catalogue, r.logger)

	r.logger.Debug("connected", "base_url", r.gateway.BaseURL(), "session", r.sessions.State())
	return nil
}

// openStorage opens the configured persisted storage, falling back to memory so the client stays
// usable; a session kept in memory does not survive the process.
func (r *Runner) openStorage(ctx context.Context) (session.Storage, error) {
	cfg := r.config.Storage

	switch cfg.Driver {
	case "memory":
		return session.NewMemoryStorage(), nil
	case "redis":
		client, err := repositories.NewRedisClient(ctx, cfg)
		if err != nil {
			r.logger.Warn("redis unavailable, session will not be persisted", "addr", cfg.RedisAddr, "error", err)
			return session.NewMemoryStorage(), nil
		}
		store := repositories.NewRedisStorage(client, cfg.Prefix)
		r.closers = append(r.closers, store.Close)
		return store, nil
	case "", "sqlite", "sqlite3":
		db, err := shared.OpenStorageDatabase(cfg)
		if err != nil {
			r.logger.Warn("database unavailable, session will not be persisted", "path", cfg.Path, "error", err)
			return session.NewMemoryStorage(), nil
		}
		r.closers = append(r.closers, db.Close)
		return repositories.NewSQLiteStorage(db), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}

// Close waits for background resyncs and the best-effort server logout, then releases storage.
func (r *Runner) Close() {
	if r.favourites != nil {
		r.favourites.Close()
	}
	if r.sessions != nil {
		r.sessions.Wait()
	}
	for _, c := range r.closers {
		if err := c(); err != nil {
			r.logger.Warn("failed to close storage", "error", err)
		}
	}
	r.closers = nil
}

// requireSession returns [shared.ErrNotAuthenticated] unless a user is logged in.
func (r *Runner) requireSession() (session.Session, error) {
	cur := r.sessions.Current()
	if !cur.Authenticated() {
		return cur, fmt.Errorf("%w: run 'reelx auth login' first", shared.ErrNotAuthenticated)
	}
	return cur, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
