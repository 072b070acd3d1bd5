package main

import (
	"os"
	"os/signal"
	"syscall"

	"attendly/cron"

	"github.com/spf13/cobra"
)

func newWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run post-event booking reconciliation",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			srv := cron.InitReconcileWorker(a.services.Booking, a.logger)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			a.logger.Info("Worker is shutting down")
			srv.Shutdown()
			return nil
		},
	}
}
