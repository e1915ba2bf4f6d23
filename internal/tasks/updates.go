package tasks

import (
	"fmt"

	"github.com/desertthunder/reelx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPopular Phase = iota
	FetchTopRated
	FetchDetail
	WriteExport
)

func (p Phase) String() string {
	switch p {
	case FetchPopular:
		return "fetch_popular"
	case FetchTopRated:
		return "fetch_top_rated"
	case FetchDetail:
		return "fetch_detail"
	case WriteExport:
		return "write_export"
	default:
		return ""
	}
}

func fetchListUpdate(phase Phase, step, total int) ProgressUpdate {
	msg := "Fetching most popular movies..."
	if phase == FetchTopRated {
		msg = "Fetching top rated movies..."
	}
	return ProgressUpdate{Phase: phase, Step: step, Total: total, Message: msg}
}

func detailCompletedUpdate(step, total int, m models.Movie) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDetail,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, m.Title),
		Data:    m,
	}
}

func detailFailedUpdate(step, total int, m models.Movie, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDetail,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, m.Title, err),
		Data:    m,
	}
}

func writeExportUpdate(format string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing %d movies as %s...", count, format),
	}
}
