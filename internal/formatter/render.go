package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// MovieLine renders a one-line summary: "Title (Year) ★ 8.5 · Drama, Crime".
func MovieLine(m models.Movie) string {
	var b strings.Builder
	b.WriteString(shared.FirstNonEmpty(m.Title, "Untitled"))
	if m.Year != "" {
		fmt.Fprintf(&b, " (%s)", m.Year)
	}
	fmt.Fprintf(&b, " ★ %s", m.RatingText())
	if len(m.Genres) > 0 {
		fmt.Fprintf(&b, " · %s", strings.Join(firstN(m.Genres, 3), ", "))
	}
	return b.String()
}

// MovieTable renders movies as a table. The favourite column is shown when isFavourite is non-nil.
func MovieTable(movies []models.Movie, isFavourite func(models.ID) bool) string {
	headers := []string{"#", "ID", "Title", "Year", "Rating", "Genres"}
	if isFavourite != nil {
		headers = append(headers, "♥")
	}

	rows := make([][]string, 0, len(movies))
	for i, m := range movies {
		row := []string{
			fmt.Sprint(i + 1),
			m.ID.String(),
			shared.Truncate(m.Title, 40),
			m.Year,
			m.RatingText(),
			strings.Join(firstN(m.Genres, 2), ", "),
		}
		if isFavourite != nil {
			heart := ""
			if isFavourite(m.ID) {
				heart = "♥"
			}
			row = append(row, heart)
		}
		rows = append(rows, row)
	}

	return renderTable(headers, rows)
}

// PersonTable renders persons as a table.
func PersonTable(persons []models.Person) string {
	rows := make([][]string, 0, len(persons))
	for i, p := range persons {
		rows = append(rows, []string{fmt.Sprint(i + 1), p.ID.String(), p.Name, p.Role, p.BirthDate})
	}
	return renderTable([]string{"#", "ID", "Name", "Role", "Born"}, rows)
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render() + "\n"
}

// MovieDetailText renders the full record of a movie.
func MovieDetailText(d *models.MovieDetail) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", shared.FirstNonEmpty(d.FullTitle, d.Title))
	fmt.Fprintf(&b, "ID: %s\n", d.ID)
	if d.Year != "" {
		fmt.Fprintf(&b, "Year: %s\n", d.Year)
	}
	fmt.Fprintf(&b, "Rating: %s\n", d.RatingText())
	if d.Runtime != "" {
		fmt.Fprintf(&b, "Runtime: %s\n", d.Runtime)
	}
	if len(d.Genres) > 0 {
		fmt.Fprintf(&b, "Genres: %s\n", strings.Join(firstN(d.Genres, 3), ", "))
	}
	if d.Image != "" {
		fmt.Fprintf(&b, "Poster: %s\n", d.Image)
	}

	if plot := shared.FirstNonEmpty(d.PlotFull, d.ShortDescription); plot != "" {
		fmt.Fprintf(&b, "\n%s\n", plot)
	}

	if len(d.Directors) > 0 || len(d.Actors) > 0 {
		b.WriteString("\n")
		b.WriteString(CreditsText(d.Directors, d.Actors))
	}

	if len(d.SimilarMovies) > 0 {
		b.WriteString("\nSimilar:\n")
		for _, m := range d.SimilarMovies {
			fmt.Fprintf(&b, "  - %s [%s]\n", MovieLine(m), m.ID)
		}
	}

	return b.String()
}

// CreditsText renders directors with their role and actors with their character.
func CreditsText(directors, actors []models.Credit) string {
	var b strings.Builder
	if len(directors) > 0 {
		b.WriteString("Directors:\n")
		for _, d := range directors {
			fmt.Fprintf(&b, "  - %s", d.Name)
			if d.Role != "" {
				fmt.Fprintf(&b, " – %s", d.Role)
			}
			fmt.Fprintf(&b, " [%s]\n", d.ID)
		}
	}
	if len(actors) > 0 {
		b.WriteString("Cast:\n")
		for _, a := range actors {
			fmt.Fprintf(&b, "  - %s", a.Name)
			if a.Character != "" {
				fmt.Fprintf(&b, " – %s", a.Character)
			}
			fmt.Fprintf(&b, " [%s]\n", a.ID)
		}
	}
	return b.String()
}

// PersonDetailText renders a person and the movies they are known for.
func PersonDetailText(p *models.PersonDetail) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", p.Name)
	fmt.Fprintf(&b, "ID: %s\n", p.ID)
	for _, f := range []struct{ label, value string }{
		{"Role", p.Role},
		{"Born", p.BirthDate},
		{"Died", p.DeathDate},
		{"Height", p.Height},
		{"Photo", p.Image},
	} {
		if f.value != "" {
			fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
		}
	}

	if p.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", p.Summary)
	}

	if len(p.KnownFor) > 0 {
		b.WriteString("\nKnown for:\n")
		for _, m := range p.KnownFor {
			fmt.Fprintf(&b, "  - %s [%s] · Role: %s", shared.FirstNonEmpty(m.Title, "Untitled"), m.ID, shared.FirstNonEmpty(m.Role, "N/A"))
			if m.Character != "" {
				fmt.Fprintf(&b, " · Character: %s", m.Character)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// ReviewsText renders a page of reviews.
func ReviewsText(page *models.ReviewPage) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Reviews for %s\n", shared.FirstNonEmpty(page.MovieTitle, page.MovieID.String()))
	if len(page.Reviews) == 0 {
		b.WriteString("\nNo reviews yet.\n")
	}

	for _, r := range page.Reviews {
		rating := "–"
		if r.Rating != nil {
			rating = fmt.Sprintf("%g", *r.Rating)
		}
		fmt.Fprintf(&b, "\n%s ★ %s", shared.FirstNonEmpty(r.Author, "anonymous"), rating)
		if r.CreatedAt != "" {
			fmt.Fprintf(&b, " · %s", r.CreatedAt)
		}
		if r.Spoilers {
			b.WriteString(" · contains spoilers")
		}
		b.WriteString("\n")
		if r.Title != "" {
			fmt.Fprintf(&b, "%s\n", r.Title)
		}
		if r.Content != "" {
			fmt.Fprintf(&b, "%s\n", r.Content)
		}
	}

	if p := PaginationText(page.Pagination); p != "" {
		fmt.Fprintf(&b, "\n%s\n", p)
	}
	return b.String()
}

// PaginationText renders "Page 2 of 5 (42 items)", or "" without pagination.
func PaginationText(p *models.Pagination) string {
	if p == nil || p.TotalPages == 0 {
		return ""
	}
	s := fmt.Sprintf("Page %d of %d", p.CurrentPage, p.TotalPages)
	if p.TotalItems > 0 {
		s += fmt.Sprintf(" (%d items)", p.TotalItems)
	}
	return s
}

// ProfileText renders an account profile.
func ProfileText(p *models.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Username: %s\n", p.Username)
	fmt.Fprintf(&b, "Email: %s\n", shared.FirstNonEmpty(p.Email, "-"))
	fmt.Fprintf(&b, "Phone: %s\n", shared.FirstNonEmpty(p.Phone, "-"))
	fmt.Fprintf(&b, "Date of birth: %s\n", shared.FirstNonEmpty(p.DOB, "-"))
	return b.String()
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
