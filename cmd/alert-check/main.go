// Command alert-check inspects how the watcher would treat an alert without
// running the webhook server.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mr1hm/go-security-alert-watcher/internal/logging"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:           "alert-check",
	Short:         "Inspect security alert approval decisions",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(logLevel, "text")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(severityCmd, configCmd, membershipCmd, evaluateCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
