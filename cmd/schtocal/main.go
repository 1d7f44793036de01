package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"schtocal/internal/config"
	appLog "schtocal/internal/log"
)

var Version = "0.1.0-dev"

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	logLevel   string
}

var (
	flags rootFlags
	osFs  = afero.NewOsFs()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "schtocal",
		Short:         "Turn a university timetable into an iCalendar file or Google Calendar events",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "/etc/schtocal/config.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR); overrides config")

	rootCmd.AddCommand(icsCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		appLog.Error("command failed", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and configures logging from it.
func loadConfig() (*config.Config, error) {
	conf, err := config.Load(osFs, flags.configPath)
	if err != nil && conf == nil {
		return nil, fmt.Errorf("load config %s: %w", flags.configPath, err)
	}
	if err != nil {
		appLog.Warn("could not write default config; continuing with defaults",
			"config_path", flags.configPath, "err", err.Error())
	}

	level := conf.Log.Level
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	appLog.Configure(appLog.Options{
		Level: appLog.ParseLevel(level),
		File:  conf.Log.File,
	})

	appLog.Debug("effective config",
		"listen", conf.Listen,
		"semester_start", conf.Semester.Start,
		"semester_end", conf.Semester.End,
		"remap_mode", conf.RemapMode,
		"language", conf.Language,
		"commute_in", conf.Commute.InboundMinutes,
		"commute_out", conf.Commute.OutboundMinutes,
		"sync_cron", conf.SyncCron,
	)
	return conf, nil
}
