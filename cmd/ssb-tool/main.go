// ssb-tool is the operator companion to the build server: it tails service
// logs, simulates VCS webhook traffic against a running server, and checks
// or repairs the Redis catalog cache.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "ssb-tool",
		Short:        "Operational tooling for the SSB build server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newLogsCmd(), newWebhookCmd(), newRedisCmd())
	return rootCmd
}
