package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/setlistify/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthStatus reports whether the stored session is accepted by the backend.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	status, err := r.authService().CheckAuthenticated(ctx)
	if err != nil {
		return err
	}

	if status.Authenticated {
		r.writePlain("Authentication: ✓ Authenticated\n")
		if tok := r.config.Session.Token(); tok != nil && !tok.Expiry.IsZero() {
			r.writePlain("Session expires: %s\n", tok.Expiry.Local().Format("2006-01-02 15:04"))
		}
		return nil
	}

	r.writePlain("Authentication: ✗ Not authenticated\n")
	return r.writePlain("Sign in at: %s\n", status.RedirectURL)
}

// AuthLogin opens the backend login page.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	loginURL := r.config.Backend.LoginURL()

	if !cmd.Bool("no-browser") {
		if err := r.openURL(loginURL); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	r.writePlain("Sign in at: %s\n", loginURL)
	return r.writePlain("Then copy any backend request as cURL and run `setlistify auth import --curl '...'`\n")
}

// AuthImport extracts the session credential from a browser cURL command and saves it.
func (r *Runner) AuthImport(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var req *shared.CurlRequest
	var err error

	if curlFile != "" {
		req, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		req, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	tok, err := req.SessionToken()
	if err != nil {
		return err
	}

	r.config.Session.SetToken(tok)
	if err := r.saveConfig(); err != nil {
		return err
	}

	r.logger.Debug("session stored", "path", r.configPath)
	return r.writePlain("✓ Session imported\n")
}

// AuthLogout clears the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.config.Session.SetToken(nil)
	if err := r.saveConfig(); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}
