package workflow

import "github.com/desertthunder/setlistify/internal/models"

// Step indexes the workflow.
type Step int

const (
	StepChooseArtist Step = iota
	StepPreviewSetlist
	StepCreatePlaylist
)

// LastStep is the final workflow step.
const LastStep = StepCreatePlaylist

func (s Step) String() string {
	switch s {
	case StepChooseArtist:
		return "Choose artist"
	case StepPreviewSetlist:
		return "Preview setlist"
	case StepCreatePlaylist:
		return "Create playlist"
	default:
		return "Unknown"
	}
}

// Steps lists every step in order.
func Steps() []Step {
	return []Step{StepChooseArtist, StepPreviewSetlist, StepCreatePlaylist}
}

// State is a snapshot of the workflow.
type State struct {
	Step     Step
	Artist   *models.Artist
	Setlist  *models.Setlist
	Complete bool

	// Progress is the last progress notification of the running acquisition.
	Progress *models.Notification
	// Failure is the terminal failure of the last acquisition, if it failed.
	Failure *models.Failure
}

// Ready reports whether the current step's readiness predicate holds.
func (s State) Ready() bool {
	switch s.Step {
	case StepChooseArtist:
		return s.Artist != nil && s.Artist.Valid()
	case StepPreviewSetlist:
		return !s.Setlist.Empty()
	case StepCreatePlaylist:
		return !s.Setlist.Empty()
	default:
		return false
	}
}

// clone copies the pointer fields so callers never alias controller state.
func (s State) clone() State {
	if s.Artist != nil {
		a := *s.Artist
		s.Artist = &a
	}
	s.Setlist = s.Setlist.Clone()
	if s.Progress != nil {
		p := *s.Progress
		s.Progress = &p
	}
	if s.Failure != nil {
		f := *s.Failure
		s.Failure = &f
	}
	return s
}
