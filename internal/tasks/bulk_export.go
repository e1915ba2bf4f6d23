package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/reelx/internal/formatter"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
	"golang.org/x/time/rate"
)

// ExportOpts contains configuration for favourites exports.
type ExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	Output     string  // File path, or directory for markdown
	Username   string  // Owner shown in the export header
	NumWorkers int     // Concurrent workers (default: 4, max: 10)
	RateLimit  float64 // Detail requests per second (default: 5)
	SkipDetail bool    // Export the summary records only
}

// ExportResult summarizes a favourites export.
type ExportResult struct {
	Export   *formatter.FavouritesExport
	Files    []string
	Enriched int // Entries with a detail record
	Failed   int // Entries whose detail fetch failed
}

type detailJob struct {
	index int
	movie models.Movie
}

type detailResult struct {
	index  int
	detail *models.MovieDetail
	err    error
}

// ExportFavourites fetches the detail of every movie with a rate-limited worker pool and writes the export.
//
// Entries keep the order of movies. A failed detail fetch is recorded on its entry and does not fail the export.
func (e *Engine) ExportFavourites(ctx context.Context, prog chan<- ProgressUpdate, movies []models.Movie, opts ExportOpts) (*ExportResult, error) {
	if opts.Format == "" {
		opts.Format = "json"
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	export := &formatter.FavouritesExport{
		Username:    opts.Username,
		GeneratedAt: time.Now().UTC(),
		Entries:     make([]formatter.ExportEntry, len(movies)),
	}
	for i, m := range movies {
		export.Entries[i].Movie = m
	}
	result := &ExportResult{Export: export}

	if !opts.SkipDetail && len(movies) > 0 {
		if e.catalogue == nil {
			return nil, fmt.Errorf("%w: catalogue not initialized", shared.ErrServiceUnavailable)
		}
		if err := e.fetchDetails(ctx, prog, export, opts); err != nil {
			return result, err
		}
		for _, entry := range export.Entries {
			if entry.Detail != nil {
				result.Enriched++
			} else {
				result.Failed++
			}
		}
	}

	e.sendProgress(prog, writeExportUpdate(opts.Format, len(movies)))
	files, err := formatter.WriteExport(export, opts.Format, opts.Output)
	if err != nil {
		return result, err
	}
	result.Files = files
	return result, nil
}

func (e *Engine) fetchDetails(ctx context.Context, prog chan<- ProgressUpdate, export *formatter.FavouritesExport, opts ExportOpts) error {
	total := len(export.Entries)
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan detailJob, total)
	results := make(chan detailResult, total)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.detailWorker(ctx, &wg, limiter, jobs, results)
	}

	for i, entry := range export.Entries {
		jobs <- detailJob{index: i, movie: entry.Movie}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		entry := &export.Entries[res.index]
		if res.err != nil {
			entry.Error = res.err.Error()
			e.logger.Warn("detail fetch failed", "id", entry.Movie.ID, "error", res.err)
			e.sendProgress(prog, detailFailedUpdate(completed, total, entry.Movie, res.err))
			continue
		}
		entry.Detail = res.detail
		e.sendProgress(prog, detailCompletedUpdate(completed, total, entry.Movie))
	}

	return ctx.Err()
}

// detailWorker fetches movie details from the jobs channel.
func (e *Engine) detailWorker(ctx context.Context, wg *sync.WaitGroup, limiter *rate.Limiter, jobs <-chan detailJob, results chan<- detailResult) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			results <- detailResult{index: job.index, err: err}
			continue
		}
		detail, err := e.catalogue.Movie(ctx, job.movie.ID)
		results <- detailResult{index: job.index, detail: detail, err: err}
	}
}
