// Package cli implements the solarctl operator CLI: read-only commands
// against a running solard's status API.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/solard/internal/logging"
)

var (
	flagServer   string
	flagDebug    bool
	flagLogLevel string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default daemon URL, checking SOLARD_SERVER
// env var first.
func defaultServer() string {
	if s := os.Getenv("SOLARD_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for solarctl.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "solarctl",
		Short: "solarctl inspects a running solard",
		Long:  "solarctl queries a solard daemon for runner health, battery state, the active schedule decision, and recent telemetry.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.New(flagLogLevel, "text")
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "solard URL (or SOLARD_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newStatusCmd(),
		newRunnersCmd(),
		newActionCmd(),
		newBatteryCmd(),
		newScheduleCmd(),
		newReadingsCmd(),
		newActionsCmd(),
		newNotificationsCmd(),
	)

	return root
}
