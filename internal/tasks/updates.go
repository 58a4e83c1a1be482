package tasks

import (
	"fmt"

	"github.com/desertthunder/setlistify/internal/models"
)

// ProgressUpdate represents a progress event during a batch export.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data, e.g. the [ArtistExportResult]
}

// Operation phase enumeration
type Phase int

const (
	AcquireSetlist Phase = iota
	ExportSetlist
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case AcquireSetlist:
		return "acquire_setlist"
	case ExportSetlist:
		return "export_setlist"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func acquiringUpdate(step, total int, artist models.Artist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AcquireSetlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Acquiring setlist: %s...", step, total, artist.Name),
	}
}

func exportCompletedUpdate(step, total int, res ArtistExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSetlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d songs)", step, total, res.Artist.Name, res.Songs),
		Data:    res,
	}
}

func exportFailedUpdate(step, total int, res ArtistExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSetlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Artist.Name, res.Err),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written: %s", path),
	}
}
