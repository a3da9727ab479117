// Command propsync ingests property feeds and serves the search API.
//
// Logging:
//   - Base logger is created once per command from config
//   - Components receive it via constructors or the request/run context
//   - No global zap logger (no zap.ReplaceGlobals)
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/propsync/internal/config"
	"github.com/kailas-cloud/propsync/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "propsync",
		Short:        "Property feed ingestion and search service",
		Version:      version.String(),
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("env", "", "config environment: local, dev, docker, prod (default: $ENV or local)")

	rootCmd.AddCommand(newServeCmd(), newIngestCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveEnv prefers the --env flag over $ENV.
func resolveEnv(cmd *cobra.Command) string {
	if env, _ := cmd.Flags().GetString("env"); env != "" {
		return env
	}
	return config.GetEnv()
}
