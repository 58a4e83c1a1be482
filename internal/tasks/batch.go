package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/setlistify/internal/formatter"
	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/shared"
	"golang.org/x/time/rate"
)

const manifestName = "manifest.json"

// BatchOpts contains configuration for batch setlist exports.
type BatchOpts struct {
	Format     formatter.Format // Export format for every setlist
	OutputDir  string           // Base output directory (default: setlists_{epoch})
	NumWorkers int              // Concurrent acquisitions (default: 2, max: 5)
	RateLimit  float64          // Acquisitions started per second (default: 1)
}

// ArtistExportResult is the outcome for one artist of a batch.
type ArtistExportResult struct {
	Artist    models.Artist `json:"artist"`
	Success   bool          `json:"success"`
	File      string        `json:"file,omitempty"`
	Songs     int           `json:"songs"`
	Transport string        `json:"transport,omitempty"`
	Error     string        `json:"error,omitempty"`
	Err       error         `json:"-"`
}

// BatchResult summarizes a batch export. It is also the manifest written to the output directory.
type BatchResult struct {
	TotalArtists      int                  `json:"total_artists"`
	SuccessfulExports int                  `json:"successful_exports"`
	FailedExports     int                  `json:"failed_exports"`
	Format            formatter.Format     `json:"format"`
	OutputDirectory   string               `json:"output_directory"`
	ExportedAt        time.Time            `json:"exported_at"`
	Results           []ArtistExportResult `json:"results"`
	ManifestPath      string               `json:"-"`
}

type exportJob struct {
	index  int
	artist models.Artist
}

type exportResult struct {
	index int
	ArtistExportResult
}

// Export acquires and writes setlists for artists concurrently with rate limiting and progress tracking.
//
// Duplicate artists are exported once. Failed artists are recorded in the
// result and manifest; only setup errors and a cancelled ctx are returned.
// Results keep the order of artists.
func (b *Batch) Export(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	artists []models.Artist,
	opts BatchOpts,
) (*BatchResult, error) {
	if b.newAcquirer == nil {
		return nil, fmt.Errorf("%w: acquirer not configured", shared.ErrServiceUnavailable)
	}

	artists = uniqueArtists(artists)
	if len(artists) == 0 {
		return nil, fmt.Errorf("%w: no artists to export", shared.ErrMissingArgument)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("setlists_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 2
	}
	if opts.NumWorkers > 5 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > len(artists) {
		opts.NumWorkers = len(artists)
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BatchResult{
		TotalArtists:    len(artists),
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		ExportedAt:      time.Now().UTC(),
		Results:         make([]ArtistExportResult, len(artists)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan exportJob, len(artists))
	results := make(chan exportResult, len(artists))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go b.exportWorker(ctx, &wg, prog, b.newAcquirer(), limiter, jobs, results, len(artists), opts)
	}

	go func() {
		defer close(jobs)
		for i, artist := range artists {
			select {
			case <-ctx.Done():
				return
			case jobs <- exportJob{index: i, artist: artist}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results[res.index] = res.ArtistExportResult

		if res.Success {
			result.SuccessfulExports++
			b.sendProgress(prog, exportCompletedUpdate(completed, len(artists), res.ArtistExportResult))
		} else {
			result.FailedExports++
			b.sendProgress(prog, exportFailedUpdate(completed, len(artists), res.ArtistExportResult))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("%w: batch export interrupted after %d of %d artists", shared.ErrCancelled, completed, len(artists))
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	b.sendProgress(prog, manifestUpdate(manifestPath))

	b.logger.Info("batch export finished",
		"artists", result.TotalArtists,
		"succeeded", result.SuccessfulExports,
		"failed", result.FailedExports,
		"dir", opts.OutputDir,
	)
	return result, nil
}

// exportWorker drains jobs with its own acquirer, waiting on the shared limiter before each acquisition.
func (b *Batch) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	prog chan<- ProgressUpdate,
	acq Acquirer,
	limiter *rate.Limiter,
	jobs <-chan exportJob,
	results chan<- exportResult,
	total int,
	opts BatchOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		b.sendProgress(prog, acquiringUpdate(job.index+1, total, job.artist))
		results <- exportResult{index: job.index, ArtistExportResult: b.exportArtist(ctx, acq, job.artist, opts)}
	}
}

// exportArtist acquires one setlist and writes it to the output directory.
func (b *Batch) exportArtist(ctx context.Context, acq Acquirer, artist models.Artist, opts BatchOpts) ArtistExportResult {
	result := ArtistExportResult{Artist: artist}
	logger := shared.WithLogger(b.logger, "artist", artist.Name)

	s := acq.Acquire(ctx, artist)
	setlist, err := Collect(ctx, s, func(n models.Notification) {
		logger.Debug(n.Message, "step", n.Step, "total", n.Total)
	})
	result.Transport = s.Transport()
	if err != nil {
		result.Err = err
		result.Error = err.Error()
		logger.Warn("acquisition failed", "error", err)
		return result
	}

	export := &formatter.SetlistExport{Artist: artist, Setlist: setlist}
	path := filepath.Join(opts.OutputDir, formatter.DefaultFilename(export, opts.Format))
	written, err := formatter.WriteExport(export, opts.Format, path)
	if err != nil {
		result.Err = err
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.File = written
	result.Songs = len(setlist.Songs)
	return result
}

func writeManifest(result *BatchResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// uniqueArtists drops invalid artists and repeats, keeping the first occurrence.
func uniqueArtists(artists []models.Artist) []models.Artist {
	out := make([]models.Artist, 0, len(artists))
	for _, a := range artists {
		if !a.Valid() {
			continue
		}
		seen := false
		for _, o := range out {
			if o.Same(a) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, a)
		}
	}
	return out
}
