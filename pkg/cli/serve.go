package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/picklenerd/counterfeit/pkg/cli/internal/output"
	"github.com/picklenerd/counterfeit/pkg/config"
	"github.com/picklenerd/counterfeit/pkg/engine"
	"github.com/picklenerd/counterfeit/pkg/logging"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	flags := &serverFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the mock server",
		Long: `Run the mock server until interrupted.

The server answers every request from the response directory, except paths
under /__counterfeit/ which expose health, request history and metrics.`,
		Example: `  # Serve ./responses on port 3000
  counterfeit serve

  # Serve another directory and create files for unmatched methods
  counterfeit serve --base-dir ./fixtures --create-missing

  # Use a config file, overriding its port
  counterfeit serve --config counterfeit.yaml --port 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolveConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cmd.OutOrStdout(), cfg, opts.jsonOutput)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// runServer starts the engine and blocks until ctx is done.
func runServer(ctx context.Context, w io.Writer, cfg *config.ServerConfiguration, jsonOutput bool) error {
	logFormat := logging.ParseFormat(cfg.LogFormat)
	if jsonOutput {
		logFormat = logging.FormatJSON
	}
	log, closeLog, err := logging.Open(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logFormat,
		Output: os.Stderr,
		File:   cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	if info, err := os.Stat(cfg.BaseDir); err != nil || !info.IsDir() {
		output.Warn(w, "base directory %q does not exist; every request will return 404", cfg.BaseDir)
	}

	srv, err := engine.NewServer(cfg, engine.WithLogger(log))
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}

	printStartup(w, srv, jsonOutput)

	<-ctx.Done()
	if !jsonOutput {
		_, _ = fmt.Fprintln(w, "\nShutting down...")
	}
	return srv.Stop()
}

// startupInfo is printed with --json once the server listens.
type startupInfo struct {
	URL     string `json:"url"`
	BaseDir string `json:"baseDir"`
	Admin   string `json:"admin"`
}

func printStartup(w io.Writer, srv *engine.Server, jsonOutput bool) {
	cfg := srv.Config()
	if jsonOutput {
		_ = output.JSON(w, startupInfo{
			URL:     srv.URL(),
			BaseDir: cfg.BaseDir,
			Admin:   srv.URL() + engine.AdminPrefix,
		})
		return
	}

	output.Success(w, "counterfeit listening on %s", srv.URL())
	output.KeyValue(w, "base dir", cfg.BaseDir)
	output.KeyValue(w, "create missing", cfg.CreateMissing)
	output.KeyValue(w, "mutations", len(cfg.Mutations))
	output.KeyValue(w, "health", srv.URL()+engine.AdminPrefix+"/health")
	if cfg.Metrics {
		output.KeyValue(w, "metrics", srv.URL()+engine.AdminPrefix+"/metrics")
	}
	if cfg.Watch {
		output.KeyValue(w, "watching", cfg.BaseDir)
	}
}
