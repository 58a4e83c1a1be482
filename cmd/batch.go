package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/setlistify/internal/formatter"
	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/shared"
	"github.com/desertthunder/setlistify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Batch exports setlists for every artist given by --artist and --file.
func (r *Runner) Batch(ctx context.Context, cmd *cli.Command) error {
	names := cmd.StringSlice("artist")
	if path := cmd.String("file"); path != "" {
		fromFile, err := readArtistFile(path)
		if err != nil {
			return err
		}
		names = append(names, fromFile...)
	}

	artists := make([]models.Artist, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			artists = append(artists, models.Artist{Name: name})
		}
	}
	if len(artists) == 0 {
		return fmt.Errorf("%w: provide --artist or --file", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if path := cmd.String("metrics-file"); path != "" {
		defer r.writeMetrics(path)
	}

	progress := make(chan tasks.ProgressUpdate, len(artists)*2+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			r.logger.Info(u.Message, "phase", u.Phase)
		}
	}()

	batch := tasks.NewBatch(func() tasks.Acquirer { return r.engine() }, r.logger)
	result, err := batch.Export(ctx, progress, artists, tasks.BatchOpts{
		Format:     format,
		OutputDir:  cmd.String("output-dir"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("✓ Exported %d of %d setlists to %s", result.SuccessfulExports, result.TotalArtists, result.OutputDirectory)
	for _, res := range result.Results {
		if res.Success {
			r.writePlain("  ✓ %s: %s (%d songs)\n", res.Artist.Name, res.File, res.Songs)
		} else {
			r.writePlain("  ✗ %s: %v\n", res.Artist.Name, r.explain(res.Err))
		}
	}
	return r.writePlain("Manifest: %s\n", result.ManifestPath)
}

// readArtistFile reads one artist per line, skipping blanks and # comments.
func readArtistFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artist file: %w", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read artist file: %w", err)
	}
	return names, nil
}
