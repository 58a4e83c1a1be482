package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistify/internal/acquisition"
	"github.com/desertthunder/setlistify/internal/repositories"
	"github.com/desertthunder/setlistify/internal/services"
	"github.com/desertthunder/setlistify/internal/shared"
	"github.com/desertthunder/setlistify/internal/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
)

const apiTimeout = 30 * time.Second

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	transport  http.RoundTripper
	logger     *log.Logger
	output     io.Writer
	registry   *prometheus.Registry
	metrics    *acquisition.Metrics
	openURL    func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Transport  http.RoundTripper // Base transport for backend requests, defaults to [http.DefaultTransport]
	Logger     *log.Logger
	Output     io.Writer
	OpenURL    func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	registry := prometheus.NewRegistry()

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		transport:  opts.Transport,
		logger:     opts.Logger,
		output:     opts.Output,
		registry:   registry,
		metrics:    acquisition.NewMetrics(registry),
		openURL:    opts.OpenURL,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		wizardCommand, setlistCommand, batchCommand, searchCommand, authCommand, setupCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config and applies --verbose.
//
// A missing file keeps the defaults so commands work before `setup config`.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if path == "" {
		return ctx, nil
	}
	r.configPath = path

	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", path)
		return ctx, nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return ctx, err
	}
	r.config = config
	return ctx, nil
}

// SetLogger replaces the runner logger, e.g. with a file logger for the TUI.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// saveConfig persists the in-memory configuration to the configured path.
func (r *Runner) saveConfig() error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrInvalidConfig)
	}
	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (r *Runner) httpClient(timeout time.Duration) *http.Client {
	return services.NewHTTPClient(r.config.Session.Token(), timeout, r.transport)
}

func (r *Runner) api() *services.APIService {
	return services.NewAPIService(r.config.Backend.BaseURL, r.httpClient(apiTimeout))
}

func (r *Runner) authService() *services.AuthService {
	return services.NewAuthService(r.api(), r.config)
}

func (r *Runner) playlistService() *services.PlaylistService {
	return services.NewPlaylistService(r.api(), r.config, r.logger)
}

// engine wires the acquisition engine. The stream client has no overall timeout;
// the pull adapter bounds its own request.
func (r *Runner) engine() *acquisition.Engine {
	push := transport.NewPush(r.httpClient(0), r.config, r.logger)
	pull := transport.NewPull(r.httpClient(0), r.config, r.logger)

	return acquisition.New(r.authService(), push, pull,
		acquisition.WithFailoverTimeout(r.config.Acquisition.FailoverTimeout()),
		acquisition.WithLogger(r.logger),
		acquisition.WithMetrics(r.metrics),
	)
}

// searchService wires artist search with the SQLite cache when it can be opened.
// The returned close function is never nil.
func (r *Runner) searchService() (*services.SearchService, func()) {
	var cache services.ArtistCache
	closeFn := func() {}

	if r.config.Search.CacheTTL() >= 0 {
		if db, err := r.openCache(); err != nil {
			r.logger.Warn("artist cache unavailable, searching without it", "error", err)
		} else {
			cache = repositories.NewArtistCacheRepository(db)
			closeFn = func() { db.Close() }
		}
	}

	return services.NewSearchService(r.api(), r.config, cache, r.logger), closeFn
}

func (r *Runner) openCache() (*sql.DB, error) {
	return shared.OpenDatabase(r.config.Database)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
