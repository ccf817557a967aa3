// rostersync reconciles a membership roster export against the member
// database and writes JSON/HTML run reports.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:           "rostersync",
		Short:         "Reconcile a membership roster export against the member database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newSyncCmd())
	root.AddCommand(newCleanupCmd())
	root.AddCommand(newReportCmd())

	if err := root.Execute(); err != nil {
		newLogger().Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than failing the run.
		return zap.NewNop()
	}
	return log
}
