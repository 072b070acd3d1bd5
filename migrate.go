package main

import (
	"context"
	"time"

	"attendly/utils"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create indexes for every collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			// Only the store is needed; Redis may not be reachable from a migration job.
			a := &app{pingers: map[string]utils.Pinger{}, logger: utils.GetLogger()}
			defer a.Close()

			repos, err := openRepositories(ctx, a)
			if err != nil {
				return err
			}
			if err := repos.EnsureIndexes(ctx); err != nil {
				return err
			}
			a.logger.Info("Indexes ensured")
			return nil
		},
	}
}
