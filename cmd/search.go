package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/setlistify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search prints the artists matching the query argument.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	svc, closeCache := r.searchService()
	defer closeCache()

	artists, err := svc.Search(ctx, query)
	if err != nil {
		return r.explain(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(artists, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Artists matching %q", query))
	for i, a := range artists {
		r.writePlain("%2d. %s\n", i+1, a)
		if a.ExternalID != "" {
			r.writePlain("    mbid: %s\n", a.ExternalID)
		}
	}
	return nil
}
