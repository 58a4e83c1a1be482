package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistify/internal/acquisition"
	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/shared"
)

// Acquirer starts acquisitions. [acquisition.Engine] implements it.
//
// An acquirer keeps at most one session active, so concurrent callers need one each.
type Acquirer interface {
	Acquire(ctx context.Context, artist models.Artist) *acquisition.Session
}

// Collect reads s until its terminal notification and returns the setlist.
//
// Failures are returned as [*models.Failure]. A complete notification without
// songs counts as a malformed response. Collect cancels s on return and waits
// for it to stop.
func Collect(ctx context.Context, s *acquisition.Session, onProgress func(models.Notification)) (*models.Setlist, error) {
	defer func() {
		s.Cancel()
		<-s.Done()
	}()

	for {
		n, ok := s.Next(ctx)
		if !ok {
			if err := s.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: acquisition ended without a result", shared.ErrCancelled)
		}

		switch n.Kind {
		case models.KindProgress:
			if onProgress != nil {
				onProgress(n)
			}
		case models.KindComplete:
			if n.Setlist.Empty() {
				return nil, &models.Failure{Reason: models.ReasonMalformedResponse, Message: "setlist has no songs"}
			}
			return n.Setlist, nil
		case models.KindFailure:
			return nil, n.Failure
		}
	}
}

// Batch exports setlists for many artists concurrently.
type Batch struct {
	newAcquirer func() Acquirer
	logger      *log.Logger
}

// NewBatch creates a Batch. newAcquirer is called once per worker.
func NewBatch(newAcquirer func() Acquirer, logger *log.Logger) *Batch {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Batch{newAcquirer: newAcquirer, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (b *Batch) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
