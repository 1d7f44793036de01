package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"schtocal/internal/courses"
	"schtocal/internal/gcal"
	"schtocal/internal/job"
)

func syncCmd() *cobra.Command {
	var coursesPath string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replace this semester's events in Google Calendar",
		Long: `Replace this semester's events in Google Calendar.

The OAuth access token is read from the environment variable named by
google.token_env in the config (SCHTOCAL_GOOGLE_TOKEN by default).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig()
			if err != nil {
				return err
			}
			if coursesPath == "" {
				coursesPath = conf.CoursesFile
			}
			f, err := courses.Load(osFs, coursesPath)
			if err != nil {
				return err
			}
			opts, err := conf.SemesterOptions()
			if err != nil {
				return err
			}

			runner := job.NewRunner(conf, job.GoogleFactory(gcal.GoogleOptions{}))
			res, err := runner.Sync(cmd.Context(), conf.Token(), f.Courses, opts)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVar(&coursesPath, "courses", "", "Course list (YAML or JSON); defaults to courses_file from config")
	return cmd
}
