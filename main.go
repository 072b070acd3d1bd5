package main

import (
	"os"

	"attendly/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCommand creates the attendly CLI. Configuration is loaded once before
// any subcommand runs.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendly",
		Short: "Attendly - capacity-bounded bookings with verified attendance",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadConfig()
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newWorkerCommand())
	cmd.AddCommand(newMigrateCommand())

	return cmd
}
