package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/reelx/internal/favourites"
	"github.com/desertthunder/reelx/internal/formatter"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/session"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// loadFavourites waits for the startup resync of a logged in user and reports its failure.
func (r *Runner) loadFavourites(ctx context.Context) (session.Session, error) {
	if err := r.connect(ctx); err != nil {
		return session.Session{}, err
	}
	cur, err := r.requireSession()
	if err != nil {
		return cur, err
	}

	r.favourites.Wait()
	if err := r.favourites.Err(); err != nil {
		return cur, fmt.Errorf("failed to load favourites: %w", err)
	}
	return cur, nil
}

// FavouritesList lists the favourites of the logged in user.
func (r *Runner) FavouritesList(ctx context.Context, cmd *cli.Command) error {
	cur, err := r.loadFavourites(ctx)
	if err != nil {
		return err
	}

	items := r.favourites.Items()
	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s's favourites (%d)", cur.Username(), len(items)))
	if len(items) == 0 {
		return r.writePlain("No favourites yet. Add one with 'reelx favourites add <id>'.\n")
	}
	return r.writePlain("%s", formatter.MovieTable(items, nil))
}

// movieSummary finds the summary record for id, in the favourites first and then in the catalogue.
func (r *Runner) movieSummary(ctx context.Context, id models.ID) (models.Movie, error) {
	for _, m := range r.favourites.Items() {
		if m.ID == id {
			return m, nil
		}
	}

	detail, err := r.catalogue.Movie(ctx, id)
	if err != nil {
		return models.Movie{}, err
	}
	return detail.Movie, nil
}

type toggleMode int

const (
	toggleAny toggleMode = iota
	toggleAddOnly
	toggleRemoveOnly
)

func (r *Runner) toggle(ctx context.Context, cmd *cli.Command, mode toggleMode) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	if _, err := r.loadFavourites(ctx); err != nil {
		return err
	}

	movie, err := r.movieSummary(ctx, id)
	if err != nil {
		return err
	}

	present := r.favourites.Contains(id)
	switch {
	case mode == toggleAddOnly && present:
		return r.writePlain("♥ %s is already in your favourites\n", movie.Title)
	case mode == toggleRemoveOnly && !present:
		return r.writePlain("%s is not in your favourites\n", movie.Title)
	}

	r.logger.Info("toggling favourite", "id", id, "title", movie.Title)

	state, err := r.favourites.Toggle(ctx, movie)
	if err != nil {
		if errors.Is(err, shared.ErrOperationInProgress) {
			return fmt.Errorf("%w: %s is %s", err, movie.Title, state)
		}
		return err
	}

	if state == favourites.Present {
		return r.writePlain("✓ ♥ Added %s\n", movie.Title)
	}
	return r.writePlain("✓ Removed %s\n", movie.Title)
}

// FavouritesToggle adds a movie to the favourites, or removes it when already present.
func (r *Runner) FavouritesToggle(ctx context.Context, cmd *cli.Command) error {
	return r.toggle(ctx, cmd, toggleAny)
}

// FavouritesAdd adds a movie unless it is already a favourite.
func (r *Runner) FavouritesAdd(ctx context.Context, cmd *cli.Command) error {
	return r.toggle(ctx, cmd, toggleAddOnly)
}

// FavouritesRemove removes a movie if it is a favourite.
func (r *Runner) FavouritesRemove(ctx context.Context, cmd *cli.Command) error {
	return r.toggle(ctx, cmd, toggleRemoveOnly)
}

// FavouritesExport writes the favourites with their detail records to a file.
func (r *Runner) FavouritesExport(ctx context.Context, cmd *cli.Command) error {
	cur, err := r.loadFavourites(ctx)
	if err != nil {
		return err
	}

	items := r.favourites.Items()
	if len(items) == 0 {
		return r.writePlain("No favourites to export.\n")
	}

	opts := tasks.ExportOpts{
		Format:     cmd.String("format"),
		Output:     cmd.String("output"),
		Username:   cur.Username(),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
		SkipDetail: cmd.Bool("no-detail"),
	}

	r.logger.Info("exporting favourites", "count", len(items), "format", opts.Format)

	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
			r.writePlain("  %s\n", update.Message)
		}
	}()

	result, err := r.engine.ExportFavourites(ctx, progressCh, items, opts)
	close(progressCh)
	<-done

	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlainln("✓ Exported %d favourites", len(result.Export.Entries))
	if !opts.SkipDetail {
		r.writePlain("Details: %d fetched, %d failed\n", result.Enriched, result.Failed)
	}
	for _, f := range result.Files {
		r.writePlain("  → %s\n", f)
	}
	return nil
}
