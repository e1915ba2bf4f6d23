package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/reelx/internal/formatter"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/urfave/cli/v3"
)

func pageParams(cmd *cli.Command) services.Params {
	return services.Params{"page": cmd.Int("page"), "limit": cmd.Int("limit")}
}

func requireID(cmd *cli.Command) (models.ID, error) {
	id := cmd.StringArg("id")
	if id == "" {
		return "", fmt.Errorf("%w: movie or person id", shared.ErrMissingArgument)
	}
	return models.ID(id), nil
}

// isFavourite marks favourites in tables. It is nil while anonymous so tables skip the column.
func (r *Runner) isFavourite() func(models.ID) bool {
	if !r.sessions.Current().Authenticated() {
		return nil
	}
	r.favourites.Wait()
	return r.favourites.Contains
}

func (r *Runner) writeMovies(cmd *cli.Command, title string, page *models.Page[models.Movie]) error {
	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	r.writePlainHeader(title)
	if len(page.Items) == 0 {
		return r.writePlain("No movies found.\n")
	}
	r.writePlain("%s", formatter.MovieTable(page.Items, r.isFavourite()))
	if p := formatter.PaginationText(page.Pagination); p != "" {
		r.writePlain("%s\n", p)
	}
	return nil
}

// MoviesList lists movies.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	params := pageParams(cmd)
	params["sort"] = cmd.String("sort")

	r.logger.Info("listing movies", "page", params["page"], "limit", params["limit"])

	page, err := r.catalogue.Movies(ctx, params)
	if err != nil {
		return err
	}
	return r.writeMovies(cmd, "Movies", page)
}

// MoviesSearch searches movies by free text, genre or person.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	genre := cmd.String("genre")
	person := cmd.String("person")

	if query == "" && genre == "" && person == "" {
		return fmt.Errorf("%w: a query, --genre or --person is required", shared.ErrMissingArgument)
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	params := pageParams(cmd)
	params["q"] = query
	params["genre"] = genre
	params["person"] = person

	r.logger.Info("searching movies", "q", query, "genre", genre, "person", person)

	page, err := r.catalogue.SearchMovies(ctx, params)
	if err != nil {
		return err
	}
	return r.writeMovies(cmd, fmt.Sprintf("Search: %s", shared.FirstNonEmpty(query, genre, person)), page)
}

// MoviesTopRated lists the highest rated movies.
func (r *Runner) MoviesTopRated(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	movies, err := r.catalogue.TopRated(ctx, pageParams(cmd))
	if err != nil {
		return err
	}
	return r.writeMovies(cmd, "Top Rated", &models.Page[models.Movie]{Items: movies})
}

// MoviesPopular lists the most popular movies.
func (r *Runner) MoviesPopular(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	movies, err := r.catalogue.MostPopular(ctx, pageParams(cmd))
	if err != nil {
		return err
	}
	return r.writeMovies(cmd, "Most Popular", &models.Page[models.Movie]{Items: movies})
}

// MoviesHome shows the dashboard.
func (r *Runner) MoviesHome(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	home, err := r.engine.Home(ctx, nil)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"highlights": home.Highlights,
			"popular":    home.Popular,
			"top_rated":  home.TopRated,
		}, cmd.Bool("pretty"))
	}

	fav := r.isFavourite()

	r.writePlainHeader("Top 5")
	for i, m := range home.Highlights {
		r.writePlain("%d. %s [%s]\n", i+1, formatter.MovieLine(m), m.ID)
	}
	r.writePlainln("Most Popular")
	r.writePlain("%s", formatter.MovieTable(home.Popular, fav))
	r.writePlainln("Top Rated")
	r.writePlain("%s", formatter.MovieTable(home.TopRated, fav))
	return nil
}

// MoviesShow shows the full record of a movie.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	movie, err := r.catalogue.Movie(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("poster") {
		if err := shared.OpenBrowser(movie.Image); err != nil {
			r.logger.Warn("failed to open poster", "url", movie.Image, "error", err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(movie, cmd.Bool("pretty"))
	}

	r.writePlain("%s", formatter.MovieDetailText(movie))
	if fav := r.isFavourite(); fav != nil && fav(movie.ID) {
		r.writePlain("\n♥ In your favourites\n")
	}
	return nil
}

// MoviesReviews lists a page of reviews of a movie.
func (r *Runner) MoviesReviews(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	params := pageParams(cmd)
	params["sort"] = cmd.String("sort")

	page, err := r.catalogue.Reviews(ctx, id, params)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.ReviewsText(page))
}

// MoviesCredits lists the directors and cast of a movie.
func (r *Runner) MoviesCredits(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	directors, actors, err := r.catalogue.Credits(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"directors": directors, "actors": actors}, cmd.Bool("pretty"))
	}
	if len(directors) == 0 && len(actors) == 0 {
		return r.writePlain("No credits available.\n")
	}
	return r.writePlain("%s", formatter.CreditsText(directors, actors))
}
