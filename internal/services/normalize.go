// Wire records and their normalization into [models] types.
//
// The API is inconsistent about field names for the same concept, so each wire struct carries every
// alternate name and the first non-empty one wins.
package services

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

// text decodes a JSON string, number or boolean into its text form. Falsy values become "".
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
	case 't':
		*t = "true"
	case 'n', 'f', '[', '{':
		*t = ""
	default:
		if n, ok := jsonNumber(data); ok && n != 0 {
			*t = text(strconv.FormatFloat(n, 'f', -1, 64))
		} else {
			*t = ""
		}
	}
	return nil
}

func (t text) String() string { return string(t) }

// jsonNumber reports the value of raw when it is a JSON number literal.
func jsonNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return 0, false
	}
	n, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

type wireMovie struct {
	ID               models.ID       `json:"id"`
	Title            text            `json:"title"`
	Image            text            `json:"image"`
	PosterURL        text            `json:"posterUrl"`
	PosterPath       text            `json:"poster_path"`
	PosterURLUpper   text            `json:"posterURL"`
	Rate             json.RawMessage `json:"rate"`
	Rating           json.RawMessage `json:"rating"`
	ShortDescription text            `json:"short_description"`
	Overview         text            `json:"overview"`
	Plot             text            `json:"plot"`
	Description      text            `json:"description"`
	Year             text            `json:"year"`
	ReleaseYear      text            `json:"release_year"`
	ReleaseDate      json.RawMessage `json:"releaseDate"`
	Genres           json.RawMessage `json:"genres"`
	Role             text            `json:"role"`
	Character        text            `json:"character"`
}

type wireMovieDetail struct {
	wireMovie
	FullTitle     text            `json:"full_title"`
	PlotFull      text            `json:"plot_full"`
	Runtime       json.RawMessage `json:"runtime"`
	Directors     []wireCredit    `json:"directors"`
	Actors        []wireCredit    `json:"actors"`
	SimilarMovies []wireMovie     `json:"similar_movies"`
}

type wireCredit struct {
	ID          models.ID `json:"id"`
	Name        text      `json:"name"`
	Role        text      `json:"role"`
	Character   text      `json:"character"`
	Image       text      `json:"image"`
	ProfilePath text      `json:"profile_path"`
}

type wirePerson struct {
	ID          models.ID `json:"id"`
	Name        text      `json:"name"`
	Image       text      `json:"image"`
	ProfilePath text      `json:"profile_path"`
	Avatar      text      `json:"avatar"`
	Photo       text      `json:"photo"`
	Role        text      `json:"role"`
	BirthDate   text      `json:"birth_date"`
	DeathDate   text      `json:"death_date"`
	Height      text      `json:"height"`
	Summary     text      `json:"summary"`
}

type wirePersonDetail struct {
	wirePerson
	KnownFor []wireMovie `json:"known_for"`
}

type wireReview struct {
	ID        models.ID       `json:"id"`
	Username  text            `json:"username"`
	Author    text            `json:"author"`
	Rate      json.RawMessage `json:"rate"`
	Rating    json.RawMessage `json:"rating"`
	Title     text            `json:"title"`
	Content   text            `json:"content"`
	Date      text            `json:"date"`
	CreatedAt text            `json:"created_at"`
	Spoilers  bool            `json:"warning_spoilers"`
}

type wireUser struct {
	ID       models.ID `json:"id"`
	Username text      `json:"username"`
	Email    text      `json:"email"`
}

type wireProfile struct {
	Username text `json:"username"`
	Email    text `json:"email"`
	Phone    text `json:"phone"`
	DOB      text `json:"dob"`
}

// listEnvelope is the {data, pagination} shape of list endpoints.
type listEnvelope[T any] struct {
	Data       []T                `json:"data"`
	Pagination *models.Pagination `json:"pagination"`
}

func (w wireMovie) normalize() models.Movie {
	return models.Movie{
		ID:               w.ID,
		Title:            w.Title.String(),
		Image:            shared.FirstNonEmpty(w.Image.String(), w.PosterURL.String(), w.PosterPath.String(), w.PosterURLUpper.String()),
		Rating:           numericRating(w.Rate, w.Rating),
		ShortDescription: shared.FirstNonEmpty(w.ShortDescription.String(), w.Overview.String(), w.Plot.String(), w.Description.String()),
		Year:             shared.FirstNonEmpty(w.Year.String(), w.ReleaseYear.String(), releaseYear(w.ReleaseDate)),
		Genres:           genres(w.Genres),
		Role:             w.Role.String(),
		Character:        w.Character.String(),
	}
}

func (w wireMovieDetail) normalize() *models.MovieDetail {
	d := &models.MovieDetail{
		Movie:     w.wireMovie.normalize(),
		FullTitle: w.FullTitle.String(),
		PlotFull:  w.PlotFull.String(),
		Runtime:   runtime(w.Runtime),
		Directors: normalizeCredits(w.Directors),
		Actors:    normalizeCredits(w.Actors),
	}
	d.SimilarMovies = normalizeMovies(w.SimilarMovies)
	return d
}

func (w wireCredit) normalize() models.Credit {
	return models.Credit{
		ID:        w.ID,
		Name:      w.Name.String(),
		Role:      w.Role.String(),
		Character: w.Character.String(),
		Image:     shared.FirstNonEmpty(w.Image.String(), w.ProfilePath.String()),
	}
}

func (w wirePerson) normalize() models.Person {
	return models.Person{
		ID:        w.ID,
		Name:      w.Name.String(),
		Image:     shared.FirstNonEmpty(w.Image.String(), w.ProfilePath.String(), w.Avatar.String(), w.Photo.String()),
		Role:      w.Role.String(),
		BirthDate: w.BirthDate.String(),
		DeathDate: w.DeathDate.String(),
		Height:    w.Height.String(),
		Summary:   w.Summary.String(),
	}
}

func (w wirePersonDetail) normalize() *models.PersonDetail {
	return &models.PersonDetail{
		Person:   w.wirePerson.normalize(),
		KnownFor: normalizeMovies(w.KnownFor),
	}
}

func (w wireReview) normalize() models.Review {
	return models.Review{
		ID:        w.ID,
		Author:    shared.FirstNonEmpty(w.Username.String(), w.Author.String()),
		Rating:    numericRating(w.Rate, w.Rating),
		Title:     w.Title.String(),
		Content:   w.Content.String(),
		CreatedAt: shared.FirstNonEmpty(w.Date.String(), w.CreatedAt.String()),
		Spoilers:  w.Spoilers,
	}
}

func (w *wireUser) normalize() *models.User {
	if w == nil {
		return nil
	}
	return &models.User{ID: w.ID, Username: w.Username.String(), Email: w.Email.String()}
}

func (w wireProfile) normalize() *models.Profile {
	dob := w.DOB.String()
	if len(dob) > 10 {
		dob = dob[:10]
	}
	return &models.Profile{
		Username: w.Username.String(),
		Email:    w.Email.String(),
		Phone:    w.Phone.String(),
		DOB:      dob,
	}
}

func normalizeMovies(ws []wireMovie) []models.Movie {
	movies := make([]models.Movie, 0, len(ws))
	for _, w := range ws {
		movies = append(movies, w.normalize())
	}
	return movies
}

func normalizeCredits(ws []wireCredit) []models.Credit {
	credits := make([]models.Credit, 0, len(ws))
	for _, w := range ws {
		credits = append(credits, w.normalize())
	}
	return credits
}

func normalizePersons(ws []wirePerson) []models.Person {
	persons := make([]models.Person, 0, len(ws))
	for _, w := range ws {
		persons = append(persons, w.normalize())
	}
	return persons
}

// numericRating returns rate if it is a JSON number, else rating if it is a JSON number.
func numericRating(rate, rating json.RawMessage) *float64 {
	for _, raw := range []json.RawMessage{rate, rating} {
		if n, ok := jsonNumber(raw); ok {
			return &n
		}
	}
	return nil
}

// releaseYear returns the first four characters of a string release date.
func releaseYear(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	if len(s) > 4 {
		return s[:4]
	}
	return s
}

func genres(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}

	var items []text
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, g := range items {
		if g != "" {
			out = append(out, g.String())
		}
	}
	return out
}

// runtime keeps string runtimes verbatim and formats minute counts.
func runtime(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}

	if n, ok := jsonNumber(raw); ok && !math.IsNaN(n) {
		return shared.FormatRuntime(int(n))
	}
	return ""
}
