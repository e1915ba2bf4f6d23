package tasks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/shared"
)

const (
	PopularLimit   = 20
	TopRatedLimit  = 18
	HighlightCount = 5
)

// Catalogue is the subset of [services.CatalogueService] the engine reads.
type Catalogue interface {
	TopRated(ctx context.Context, params services.Params) ([]models.Movie, error)
	MostPopular(ctx context.Context, params services.Params) ([]models.Movie, error)
	Movie(ctx context.Context, id models.ID) (*models.MovieDetail, error)
}

// HomeResult is the dashboard data.
type HomeResult struct {
	Popular    []models.Movie
	TopRated   []models.Movie
	Highlights []models.Movie // First movies of Popular
}

// Highlight returns the featured movie: the first highlight, else the first popular or top-rated movie.
func (r *HomeResult) Highlight() *models.Movie {
	for _, list := range [][]models.Movie{r.Highlights, r.Popular, r.TopRated} {
		if len(list) > 0 {
			return &list[0]
		}
	}
	return nil
}

// Engine runs catalogue workflows.
type Engine struct {
	catalogue Catalogue
	logger    *log.Logger
}

// NewEngine creates an Engine reading from catalogue.
func NewEngine(catalogue Catalogue, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{catalogue: catalogue, logger: shared.WithLogger(logger, "component", "tasks")}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Home fetches the popular and top-rated lists concurrently.
func (e *Engine) Home(ctx context.Context, progress chan<- ProgressUpdate) (*HomeResult, error) {
	if e.catalogue == nil {
		return nil, fmt.Errorf("%w: catalogue not initialized", shared.ErrServiceUnavailable)
	}

	result := &HomeResult{}
	var popularErr, topRatedErr error
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		e.sendProgress(progress, fetchListUpdate(FetchPopular, 1, 2))
		result.Popular, popularErr = e.catalogue.MostPopular(ctx, services.Params{"page": 1, "limit": PopularLimit})
	}()
	go func() {
		defer wg.Done()
		e.sendProgress(progress, fetchListUpdate(FetchTopRated, 2, 2))
		result.TopRated, topRatedErr = e.catalogue.TopRated(ctx, services.Params{"page": 1, "limit": TopRatedLimit})
	}()
	wg.Wait()

	if popularErr != nil {
		return nil, fmt.Errorf("failed to load popular movies: %w", popularErr)
	}
	if topRatedErr != nil {
		return nil, fmt.Errorf("failed to load top rated movies: %w", topRatedErr)
	}

	if result.Popular == nil {
		result.Popular = []models.Movie{}
	}
	if result.TopRated == nil {
		result.TopRated = []models.Movie{}
	}
	result.Highlights = result.Popular[:min(HighlightCount, len(result.Popular))]

	e.logger.Debug("home loaded", "popular", len(result.Popular), "top_rated", len(result.TopRated))
	return result, nil
}
