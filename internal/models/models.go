package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an opaque record identifier.
type ID string

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Movie is the summary record shared by list endpoints and the favourites set.
type Movie struct {
	ID               ID       `json:"id"`
	Title            string   `json:"title"`
	Image            string   `json:"image,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
	ShortDescription string   `json:"short_description,omitempty"`
	Year             string   `json:"year,omitempty"`
	Genres           []string `json:"genres,omitempty"`
	Role             string   `json:"role,omitempty"`
	Character        string   `json:"character,omitempty"`
}

// RatingText renders the rating with one decimal, or "N/A" when absent.
func (m Movie) RatingText() string {
	if m.Rating == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*m.Rating, 'f', 1, 64)
}

// MovieDetail is the full movie record.
type MovieDetail struct {
	Movie
	FullTitle     string   `json:"full_title,omitempty"`
	PlotFull      string   `json:"plot_full,omitempty"`
	Runtime       string   `json:"runtime,omitempty"`
	Directors     []Credit `json:"directors,omitempty"`
	Actors        []Credit `json:"actors,omitempty"`
	SimilarMovies []Movie  `json:"similar_movies,omitempty"`
}

// Credit links a person to a movie.
type Credit struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	Character string `json:"character,omitempty"`
	Image     string `json:"image,omitempty"`
}

// Person is the summary record for cast and crew.
type Person struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Role      string `json:"role,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
	DeathDate string `json:"death_date,omitempty"`
	Height    string `json:"height,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// PersonDetail adds the movies a person is known for.
type PersonDetail struct {
	Person
	KnownFor []Movie `json:"known_for,omitempty"`
}

type Review struct {
	ID        ID       `json:"id"`
	Author    string   `json:"author"`
	Rating    *float64 `json:"rating,omitempty"`
	Title     string   `json:"title,omitempty"`
	Content   string   `json:"content"`
	CreatedAt string   `json:"created_at,omitempty"`
	Spoilers  bool     `json:"spoilers,omitempty"`
}

type ReviewPage struct {
	MovieID    ID          `json:"movie_id"`
	MovieTitle string      `json:"movie_title"`
	Reviews    []Review    `json:"reviews"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination mirrors the API's pagination block.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalItems  int `json:"total_items"`
	Limit       int `json:"limit"`
}

// HasNext reports whether another page follows.
func (p *Pagination) HasNext() bool {
	return p != nil && p.CurrentPage < p.TotalPages
}

// Page is one page of list results.
type Page[T any] struct {
	Items      []T         `json:"items"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// User is the identity attached to a session. Only Username is guaranteed.
type User struct {
	ID       ID     `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Same reports whether u and o identify the same account.
func (u *User) Same(o *User) bool {
	if u == nil || o == nil {
		return u == o
	}
	if u.ID != "" && o.ID != "" {
		return u.ID == o.ID
	}
	return u.Username == o.Username
}

// Profile holds editable account details. DOB is formatted YYYY-MM-DD.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	DOB      string `json:"dob,omitempty"`
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	User    *User  `json:"user"`
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
}
