// package formatter renders catalogue records for the terminal and exports favourites to CSV, Markdown,
// plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

// ExportEntry is one favourite with its detail record, when it could be fetched.
type ExportEntry struct {
	Movie  models.Movie        `json:"movie"`
	Detail *models.MovieDetail `json:"detail,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// Runtime returns the detail runtime, if known.
func (e ExportEntry) Runtime() string {
	if e.Detail == nil {
		return ""
	}
	return e.Detail.Runtime
}

// Directors returns the comma separated director names, if known.
func (e ExportEntry) Directors() string {
	if e.Detail == nil {
		return ""
	}
	names := make([]string, 0, len(e.Detail.Directors))
	for _, d := range e.Detail.Directors {
		names = append(names, d.Name)
	}
	return strings.Join(names, ", ")
}

// FavouritesExport is a user's favourites list prepared for export.
type FavouritesExport struct {
	Username    string        `json:"username"`
	GeneratedAt time.Time     `json:"generated_at"`
	Entries     []ExportEntry `json:"entries"`
}

// ExportToCSV converts a FavouritesExport to CSV with columns: ID, Title, Year, Rating, Genres, Runtime, Directors, Image
func ExportToCSV(export *FavouritesExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Year", "Rating", "Genres", "Runtime", "Directors", "Image"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range export.Entries {
		rating := ""
		if e.Movie.Rating != nil {
			rating = e.Movie.RatingText()
		}
		record := []string{
			e.Movie.ID.String(),
			e.Movie.Title,
			e.Movie.Year,
			rating,
			strings.Join(e.Movie.Genres, "|"),
			e.Runtime(),
			e.Directors(),
			e.Movie.Image,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a FavouritesExport to Markdown with an optional cover image
func ExportToMarkdown(export *FavouritesExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s's favourites\n\n", shared.FirstNonEmpty(export.Username, "Unknown"))

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	fmt.Fprintf(&buf, "**Movies**: %d\n", len(export.Entries))
	if !export.GeneratedAt.IsZero() {
		fmt.Fprintf(&buf, "**Exported**: %s\n", export.GeneratedAt.Format(time.RFC1123))
	}
	buf.WriteString("\n## Movies\n\n")

	for i, e := range export.Entries {
		m := e.Movie
		year := ""
		if m.Year != "" {
			year = fmt.Sprintf(" (%s)", m.Year)
		}
		fmt.Fprintf(&buf, "%d. **%s**%s ★ %s", i+1, m.Title, year, m.RatingText())
		if rt := e.Runtime(); rt != "" {
			fmt.Fprintf(&buf, " · %s", rt)
		}
		buf.WriteString("\n")
		if d := e.Directors(); d != "" {
			fmt.Fprintf(&buf, "   - Directed by %s\n", d)
		}
		if m.ShortDescription != "" {
			fmt.Fprintf(&buf, "   - %s\n", m.ShortDescription)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a FavouritesExport to plain text
func ExportToText(export *FavouritesExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Favourites: %s\n", shared.FirstNonEmpty(export.Username, "Unknown"))
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(export.Entries))

	for i, e := range export.Entries {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, MovieLine(e.Movie))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a FavouritesExport to indented JSON
func ExportToJSON(export *FavouritesExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty URL provided", shared.ErrInvalidArgument)
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// WriteExport writes export to path in the given format: csv, md, txt or json.
//
// Markdown exports are written as {path}/README.md with the first poster downloaded to {path}/cover.jpg
// when it is an http(s) URL. Returns the files written.
func WriteExport(export *FavouritesExport, format, path string) ([]string, error) {
	switch strings.ToLower(format) {
	case "csv":
		return writeFile(path, "favourites.csv", export, ExportToCSV)
	case "txt", "text":
		return writeFile(path, "favourites.txt", export, ExportToText)
	case "json":
		return writeFile(path, "favourites.json", export, ExportToJSON)
	case "md", "markdown":
		return writeMarkdown(export, path)
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidFlag, format)
	}
}

func writeFile(path, fallback string, export *FavouritesExport, render func(*FavouritesExport) ([]byte, error)) ([]string, error) {
	if path == "" {
		path = fallback
	}

	data, err := render(export)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write export file: %w", err)
	}
	return []string{path}, nil
}

func writeMarkdown(export *FavouritesExport, dir string) ([]string, error) {
	if dir == "" {
		dir = "favourites"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	var files []string
	cover := ""
	if len(export.Entries) > 0 {
		if img := export.Entries[0].Movie.Image; strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
			if data, err := DownloadImage(img); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
			} else if err := os.WriteFile(filepath.Join(dir, "cover.jpg"), data, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
			} else {
				cover = "cover.jpg"
				files = append(files, filepath.Join(dir, cover))
			}
		}
	}

	data, err := ExportToMarkdown(export, cover)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(dir, "README.md")
	if err := os.WriteFile(mdFile, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	return append(files, mdFile), nil
}
