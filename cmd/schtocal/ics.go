package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"schtocal/internal/courses"
	"schtocal/internal/ics"
	appLog "schtocal/internal/log"
	"schtocal/internal/series"
)

func icsCmd() *cobra.Command {
	var coursesPath, outPath string

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Write the semester schedule as an .ics file",
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

			built := series.Build(f.Courses, opts)
			doc, err := ics.Encode(built, opts.Start, opts.End)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = ics.Filename(f.StudentName)
			}
			if err := afero.WriteFile(osFs, outPath, []byte(doc), 0o644); err != nil {
				return err
			}
			appLog.Info("ics written", "path", outPath, "series", len(built))
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&coursesPath, "courses", "", "Course list (YAML or JSON); defaults to courses_file from config")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path; defaults to schedule_<student>.ics")
	return cmd
}
