package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
	th "github.com/desertthunder/reelx/internal/testing"
)

func detailCatalogue(ids ...string) *mockCatalogue {
	cat := &mockCatalogue{details: map[models.ID]*models.MovieDetail{}, detailErr: map[models.ID]error{}}
	for _, id := range ids {
		cat.details[models.ID(id)] = &models.MovieDetail{
			Movie:   models.Movie{ID: models.ID(id), Title: "Movie " + id},
			Runtime: "1h 30mins",
		}
	}
	return cat
}

func TestEngine_ExportFavourites(t *testing.T) {
	t.Run("enriches entries in order", func(t *testing.T) {
		cat := detailCatalogue("1", "2", "3", "4", "5")
		out := filepath.Join(t.TempDir(), "favs.json")
		progress := make(chan ProgressUpdate, 20)

		res, err := NewEngine(cat, nil).ExportFavourites(context.Background(), progress, movies("3", "1", "5", "2", "4"), ExportOpts{
			Format:     "json",
			Output:     out,
			Username:   "alice",
			NumWorkers: 3,
			RateLimit:  1000,
		})
		if err != nil {
			t.Fatalf("ExportFavourites() error = %v", err)
		}

		if res.Enriched != 5 || res.Failed != 0 {
			t.Errorf("enriched=%d failed=%d", res.Enriched, res.Failed)
		}
		if cat.detailCalls != 5 {
			t.Errorf("expected 5 detail calls, got %d", cat.detailCalls)
		}

		want := []models.ID{"3", "1", "5", "2", "4"}
		for i, e := range res.Export.Entries {
			if e.Movie.ID != want[i] {
				t.Errorf("entry %d = %s, want %s", i, e.Movie.ID, want[i])
			}
			if e.Detail == nil || e.Detail.ID != want[i] {
				t.Errorf("entry %d detail mismatch: %+v", i, e.Detail)
			}
		}

		if len(res.Files) != 1 || res.Files[0] != out {
			t.Fatalf("unexpected files %v", res.Files)
		}
		content := th.MustReadFile(t, out)
		if !strings.Contains(content, `"username": "alice"`) || !strings.Contains(content, "1h 30mins") {
			t.Errorf("unexpected export content: %s", content)
		}

		close(progress)
		var details, writes int
		for u := range progress {
			switch u.Phase {
			case FetchDetail:
				details++
			case WriteExport:
				writes++
			}
		}
		if details != 5 || writes != 1 {
			t.Errorf("progress: %d detail updates, %d write updates", details, writes)
		}
	})

	t.Run("failed detail keeps the summary", func(t *testing.T) {
		cat := detailCatalogue("1", "3")
		cat.detailErr["2"] = errors.New("upstream 500")
		out := filepath.Join(t.TempDir(), "favs.csv")

		res, err := NewEngine(cat, nil).ExportFavourites(context.Background(), nil, movies("1", "2", "3"), ExportOpts{
			Format:    "csv",
			Output:    out,
			RateLimit: 1000,
		})
		if err != nil {
			t.Fatalf("ExportFavourites() error = %v", err)
		}

		if res.Enriched != 2 || res.Failed != 1 {
			t.Errorf("enriched=%d failed=%d", res.Enriched, res.Failed)
		}
		failed := res.Export.Entries[1]
		if failed.Detail != nil || failed.Error != "upstream 500" {
			t.Errorf("unexpected failed entry: %+v", failed)
		}

		lines := strings.Split(strings.TrimSpace(th.MustReadFile(t, out)), "\n")
		if len(lines) != 4 {
			t.Errorf("expected header and 3 rows, got %d", len(lines))
		}
	})

	t.Run("skip detail", func(t *testing.T) {
		cat := detailCatalogue("1")
		out := filepath.Join(t.TempDir(), "favs.txt")

		res, err := NewEngine(cat, nil).ExportFavourites(context.Background(), nil, movies("1"), ExportOpts{
			Format:     "txt",
			Output:     out,
			SkipDetail: true,
		})
		if err != nil {
			t.Fatalf("ExportFavourites() error = %v", err)
		}
		if cat.detailCalls != 0 {
			t.Errorf("expected no detail calls, got %d", cat.detailCalls)
		}
		if res.Enriched != 0 || res.Export.Entries[0].Detail != nil {
			t.Errorf("unexpected enrichment: %+v", res)
		}
		th.AssertFileExists(t, out)
	})

	t.Run("empty list", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "favs.json")

		res, err := NewEngine(nil, nil).ExportFavourites(context.Background(), nil, nil, ExportOpts{Output: out})
		if err != nil {
			t.Fatalf("ExportFavourites() error = %v", err)
		}
		if len(res.Export.Entries) != 0 {
			t.Errorf("expected no entries, got %d", len(res.Export.Entries))
		}
		th.AssertFileExists(t, out)
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := NewEngine(detailCatalogue(), nil).ExportFavourites(context.Background(), nil, nil, ExportOpts{Format: "xml"})
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		cat := detailCatalogue("1", "2")
		res, err := NewEngine(cat, nil).ExportFavourites(ctx, nil, movies("1", "2"), ExportOpts{
			Output: filepath.Join(t.TempDir(), "favs.json"),
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if res == nil || res.Files != nil {
			t.Errorf("no files should be written: %+v", res)
		}
	})
}
