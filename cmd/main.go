package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString("readiness: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "readiness",
		Short: "Likert self-assessment scoring and history",
		Long: `readiness scores self-assessment questionnaires on a 1..5 scale,
labels each dimension, and keeps a per-owner history of saved results.

Configuration comes from READINESS_* environment variables, an optional
YAML file named by READINESS_CONFIG, and an optional dotenv file named by
READINESS_ENV_FILE.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newScoreCmd(), newHistoryCmd())
	return root
}
