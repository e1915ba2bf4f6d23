package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/reelx/internal/favourites"
	"github.com/desertthunder/reelx/internal/models"
)

var _ list.Item = movieItem{}

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie      models.Movie
	membership favourites.Membership
}

func (i movieItem) FilterValue() string { return i.movie.Title }

func (i movieItem) Title() string {
	switch i.membership {
	case favourites.Present:
		return styles.heart.Render("♥") + " " + i.movie.Title
	case favourites.PendingAdd, favourites.PendingRemove:
		return "… " + i.movie.Title
	default:
		return i.movie.Title
	}
}

func (i movieItem) Description() string {
	parts := []string{}
	if i.movie.Year != "" {
		parts = append(parts, i.movie.Year)
	}
	parts = append(parts, fmt.Sprintf("★ %s", i.movie.RatingText()))
	if len(i.movie.Genres) > 0 {
		parts = append(parts, strings.Join(i.movie.Genres, ", "))
	}
	return strings.Join(parts, " • ")
}

func newMovieList() list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("movie", "movies")
	return l
}
