package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/setlistify/internal/formatter"
	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/shared"
	"github.com/desertthunder/setlistify/internal/tasks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
)

// Setlist runs one acquisition for --artist and prints or saves the result.
func (r *Runner) Setlist(ctx context.Context, cmd *cli.Command) error {
	artist := models.Artist{
		Name:       strings.TrimSpace(cmd.String("artist")),
		ExternalID: strings.TrimSpace(cmd.String("mbid")),
	}
	if !artist.Valid() {
		return fmt.Errorf("%w: --artist must not be blank", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if path := cmd.String("metrics-file"); path != "" {
		defer r.writeMetrics(path)
	}

	setlist, err := r.acquire(ctx, artist)
	if err != nil {
		return err
	}

	export := &formatter.SetlistExport{Artist: artist, Setlist: setlist}
	if path := cmd.String("output"); path != "" {
		written, err := formatter.WriteExport(export, format, path)
		if err != nil {
			return err
		}
		r.logger.Info("setlist written", "path", written, "songs", len(setlist.Songs))
	} else {
		data, err := formatter.Export(export, format)
		if err != nil {
			return err
		}
		if _, err := r.output.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	if !cmd.Bool("create") {
		return nil
	}

	playlist, err := r.playlistService().Create(ctx, models.PlaylistRequest{ArtistName: artist.Name, Songs: setlist.Songs})
	if err != nil {
		return r.explain(err)
	}

	r.writePlainln("✓ Playlist created")
	r.writePlain("Name: %s\n", playlist.Name)
	return r.writePlain("URL: %s\n", playlist.URL)
}

// acquire follows one session to its terminal notification, logging progress.
// It returns once the session has fully stopped so its metrics are recorded.
func (r *Runner) acquire(ctx context.Context, artist models.Artist) (*models.Setlist, error) {
	s := r.engine().Acquire(ctx, artist)
	setlist, err := tasks.Collect(ctx, s, func(n models.Notification) {
		r.logger.Info(n.Message, "step", n.Step, "total", n.Total, "transport", s.Transport())
	})
	if err != nil {
		return nil, r.explain(err)
	}
	r.logger.Debug("setlist received", "songs", len(setlist.Songs), "transport", s.Transport())
	return setlist, nil
}

// explain adds the login hint to unauthenticated failures.
func (r *Runner) explain(err error) error {
	var f *models.Failure
	if errors.As(err, &f) && f.Reason == models.ReasonUnauthenticated {
		redirect := f.RedirectURL
		if redirect == "" {
			redirect = r.config.Backend.LoginURL()
		}
		return fmt.Errorf("%w (sign in at %s, then run `setlistify auth import`)", err, redirect)
	}
	return err
}

func (r *Runner) writeMetrics(path string) {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		r.logger.Warn("failed to write metrics", "path", path, "error", err)
		return
	}
	r.logger.Debug("metrics written", "path", path)
}
