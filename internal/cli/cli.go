// Package cli implements the bgremover command-line interface.
//
// The CLI is built with cobra and logs with charmbracelet/log to stderr, so
// stdout stays free for the MCP protocol and for piping images.
//
// # Commands
//
//   - mcp: serve the MCP tools over stdio
//   - serve: serve the HTTP upload endpoint
//   - remove: remove the background of one file
//
// # Configuration
//
// --config names a TOML file (see internal/config). --verbose (-v) forces
// debug logging regardless of log_level.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/background-remover/internal/config"
)

var (
	version = "dev"     // semantic version (e.g., "v1.2.3")
	commit  = "unknown" // git commit SHA
	date    = "unknown" // build timestamp
)

// SetVersion sets the version information displayed by --version.
// The main package calls it with values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the bgremover CLI until the command finishes or ctx is done.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:           "bgremover",
		Short:         "Remove uniform backgrounds from images",
		Long:          `bgremover removes a uniform background from product shots and similar images by color keying, replacing it with transparency or a solid color. It runs as an MCP server, an HTTP service or a one-shot command.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			level, err := cfg.Level()
			if err != nil {
				return err
			}
			if verbose {
				level = log.DebugLevel
			}

			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			ctx = withConfig(ctx, cfg)
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("bgremover %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")

	root.AddCommand(newMCPCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newRemoveCmd())

	return root
}

// configKey is the context key for the loaded configuration.
type configKey struct{}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// configFromContext returns the loaded configuration, or the defaults if
// none was attached.
func configFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.Default()
}
