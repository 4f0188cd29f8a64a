package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"partquote/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool

	tel telemetry.Telemetry
)

var rootCmd = &cobra.Command{
	Use:   "partquote",
	Short: "partquote compares electronic component offers across suppliers and finds the cheapest quantity to buy.",
	// errors are logged once by main
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)

		var err error
		tel, err = telemetry.SetupFromEnv(cmd.Context(), "partquote")
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to set up telemetry exporting", "err", err)
		}
	},
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "partquote.json5", "The configuration file listing suppliers and parts.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output.")
}

// ExecuteContext runs the command line and flushes telemetry afterwards, also
// when the command failed.
func ExecuteContext(ctx context.Context) error {
	defer func() {
		err := tel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to shut down telemetry", "err", err)
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}
