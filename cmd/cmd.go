// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strings"

	"github.com/desertthunder/setlistify/internal/formatter"
	"github.com/urfave/cli/v3"
)

// newApp builds the root command. Global flags are read by [Runner.Before].
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "setlistify",
		Usage:   "Turn an artist's recent setlists into a playlist",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("SETLISTIFY_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.Before,
		Commands: r.register(),
	}
}

func formatNames() string {
	names := make([]string, 0, len(formatter.Formats()))
	for _, f := range formatter.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// wizardCommand returns the top-level TUI command for the interactive workflow.
func wizardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "wizard",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive setlist to playlist wizard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where the wizard writes its logs",
				Value: "./tmp/setlistify-tui.log",
			},
		},
		Action: r.Wizard,
	}
}

// setlistCommand generates a setlist without the wizard.
func setlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setlist",
		Usage: "Generate a setlist for an artist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "artist",
				Aliases:  []string{"a"},
				Usage:    "Artist name",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "mbid",
				Usage: "MusicBrainz id of the artist",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   fmt.Sprintf("Output format (%s)", formatNames()),
				Value:   string(formatter.FormatText),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the setlist to a file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "create",
				Usage: "Create a playlist from the setlist",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write acquisition metrics in Prometheus text format to this file",
			},
		},
		Action: r.Setlist,
	}
}

// batchCommand exports setlists for several artists at once.
func batchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Export setlists for several artists",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "artist",
				Aliases: []string{"a"},
				Usage:   "Artist name, may be repeated",
			},
			&cli.StringFlag{
				Name:  "file",
				Usage: "File with one artist per line",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   fmt.Sprintf("Output format (%s)", formatNames()),
				Value:   string(formatter.FormatJSON),
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: setlists_{timestamp})",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent acquisitions",
				Value: 2,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Acquisitions started per second",
				Value: 1,
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write acquisition metrics in Prometheus text format to this file",
			},
		},
		Action: r.Batch,
	}
}

// searchCommand looks up artists.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search for an artist",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Search,
	}
}

// authCommand handles the backend session.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the backend session",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Check whether the stored session is signed in",
				Action: r.AuthStatus,
			},
			{
				Name:  "login",
				Usage: "Open the backend login page in the browser",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Only print the login URL",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "import",
				Usage: "Store the session from a browser request (Copy as cURL)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.AuthImport,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session",
				Action: r.AuthLogout,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a configuration file from the template",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the cache database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// cacheCommand manages the artist search cache.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the artist search cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show how many searches are cached",
				Action: r.CacheStats,
			},
			{
				Name:  "purge",
				Usage: "Remove cached searches",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Remove every entry, not only expired ones",
					},
				},
				Action: r.CachePurge,
			},
		},
	}
}
