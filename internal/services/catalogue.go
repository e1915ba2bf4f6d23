// Catalogue endpoints: movies, reviews and persons
package services

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

// CatalogueService reads public catalogue records through a [Gateway].
type CatalogueService struct {
	gateway *Gateway
	logger  *log.Logger
}

// NewCatalogueService creates a catalogue client.
func NewCatalogueService(g *Gateway, logger *log.Logger) *CatalogueService {
	if logger == nil {
		logger = g.logger
	}
	return &CatalogueService{gateway: g, logger: shared.WithLogger(logger, "service", "catalogue")}
}

// Movies lists movies (GET /movies).
func (s *CatalogueService) Movies(ctx context.Context, params Params) (*models.Page[models.Movie], error) {
	return s.moviePage(ctx, "/movies", params)
}

// SearchMovies searches by q, title, genre or person (GET /movies/search).
func (s *CatalogueService) SearchMovies(ctx context.Context, params Params) (*models.Page[models.Movie], error) {
	return s.moviePage(ctx, "/movies/search", params)
}

// TopRated lists the highest rated movies (GET /movies/top-rated).
func (s *CatalogueService) TopRated(ctx context.Context, params Params) ([]models.Movie, error) {
	page, err := s.moviePage(ctx, "/movies/top-rated", params)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// MostPopular lists the most popular movies (GET /movies/most-popular).
func (s *CatalogueService) MostPopular(ctx context.Context, params Params) ([]models.Movie, error) {
	page, err := s.moviePage(ctx, "/movies/most-popular", params)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *CatalogueService) moviePage(ctx context.Context, path string, params Params) (*models.Page[models.Movie], error) {
	resp, err := s.gateway.Get(ctx, path, BuildQuery(params))
	if err != nil {
		return nil, err
	}

	var env listEnvelope[wireMovie]
	if err := resp.Decode(&env); err != nil {
		return nil, err
	}

	return &models.Page[models.Movie]{Items: normalizeMovies(env.Data), Pagination: env.Pagination}, nil
}

// Movie fetches the full record of one movie (GET /movies/{id}).
func (s *CatalogueService) Movie(ctx context.Context, id models.ID) (*models.MovieDetail, error) {
	p, err := resourcePath("/movies", id)
	if err != nil {
		return nil, err
	}

	resp, err := s.gateway.Get(ctx, p, nil)
	if err != nil {
		return nil, err
	}

	var w wireMovieDetail
	if err := resp.Decode(&w); err != nil {
		return nil, err
	}
	return w.normalize(), nil
}

// Reviews fetches a page of reviews for a movie (GET /movies/{id}/reviews).
func (s *CatalogueService) Reviews(ctx context.Context, id models.ID, params Params) (*models.ReviewPage, error) {
	p, err := resourcePath("/movies", id, "reviews")
	if err != nil {
		return nil, err
	}

	resp, err := s.gateway.Get(ctx, p, BuildQuery(params))
	if err != nil {
		return nil, err
	}

	var env struct {
		MovieID    models.ID          `json:"movie_id"`
		MovieTitle text               `json:"movie_title"`
		Data       []wireReview       `json:"data"`
		Pagination *models.Pagination `json:"pagination"`
	}
	if err := resp.Decode(&env); err != nil {
		return nil, err
	}

	page := &models.ReviewPage{
		MovieID:    env.MovieID,
		MovieTitle: env.MovieTitle.String(),
		Reviews:    make([]models.Review, 0, len(env.Data)),
		Pagination: env.Pagination,
	}
	for _, r := range env.Data {
		page.Reviews = append(page.Reviews, r.normalize())
	}
	return page, nil
}

// Credits returns the directors and actors of a movie, taken from its detail record.
func (s *CatalogueService) Credits(ctx context.Context, id models.ID) (directors, actors []models.Credit, err error) {
	m, err := s.Movie(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return m.Directors, m.Actors, nil
}

// Persons lists cast and crew (GET /persons).
func (s *CatalogueService) Persons(ctx context.Context, params Params) (*models.Page[models.Person], error) {
	resp, err := s.gateway.Get(ctx, "/persons", BuildQuery(params))
	if err != nil {
		return nil, err
	}

	var env listEnvelope[wirePerson]
	if err := resp.Decode(&env); err != nil {
		return nil, err
	}
	return &models.Page[models.Person]{Items: normalizePersons(env.Data), Pagination: env.Pagination}, nil
}

// Person fetches one person with the movies they are known for (GET /persons/{id}).
func (s *CatalogueService) Person(ctx context.Context, id models.ID) (*models.PersonDetail, error) {
	p, err := resourcePath("/persons", id)
	if err != nil {
		return nil, err
	}

	resp, err := s.gateway.Get(ctx, p, nil)
	if err != nil {
		return nil, err
	}

	var w wirePersonDetail
	if err := resp.Decode(&w); err != nil {
		return nil, err
	}
	return w.normalize(), nil
}
