package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"schtocal/internal/gcal"
	"schtocal/internal/job"
	appLog "schtocal/internal/log"
	"schtocal/internal/web"
)

func serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run the optional sync schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig()
			if err != nil {
				return err
			}
			// --listen overrides the config file.
			if listen != "" {
				conf.Listen = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner := job.NewRunner(conf, job.GoogleFactory(gcal.GoogleOptions{}))

			if conf.SyncCron != "" && conf.CoursesFile != "" {
				// SyncConfigured logs its own failures.
				_, err := job.Schedule(ctx, conf.SyncCron, func(ctx context.Context) {
					_, _ = runner.SyncConfigured(ctx, osFs)
				})
				if err != nil {
					return err
				}
			}

			appLog.Info("schtocal serving", "version", Version, "listen", conf.Listen)
			return web.StartServer(ctx, conf, runner)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	return cmd
}
