package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/background-remover/internal/server"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the image tools over MCP (JSON-RPC on stdio)",
		Long: `Serve the background remover and image tools to an MCP client.

Requests are read from stdin one per line and responses written to stdout.
Configure the binary in your MCP client with the arguments ["mcp"].`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			srv := server.New(configFromContext(ctx), logger)
			srv.SetVersion(version)

			logger.Debug("mcp server starting", "version", version, "commit", commit)
			return srv.Run(ctx)
		},
	}
}
