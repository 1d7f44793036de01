package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"schtocal/internal/ics"
)

func previewCmd() *cobra.Command {
	var icsPath string
	var days int

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "List the occurrences of an .ics file for its first days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			body, err := afero.ReadFile(osFs, icsPath)
			if err != nil {
				return err
			}
			events, err := ics.ParseICS(body)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no events")
				return nil
			}

			first := events[0].Start
			for _, ev := range events[1:] {
				if ev.Start.Before(first) {
					first = ev.Start
				}
			}
			rangeStart := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location())
			res, err := ics.ExpandOccurrences(events, ics.ExpandConfig{
				RangeStart: rangeStart,
				RangeEnd:   rangeStart.AddDate(0, 0, days),
			})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, occ := range res.Occurrences {
				fmt.Fprintf(tw, "%s\t%s-%s\t%s\t%s\n",
					occ.Start.Format("Mon 2006-01-02"),
					occ.Start.Format("15:04"),
					occ.End.Format("15:04"),
					occ.Summary,
					occ.Location,
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&icsPath, "ics", "", "Path to an .ics file")
	cmd.Flags().IntVar(&days, "days", 7, "Number of days to list")
	_ = cmd.MarkFlagRequired("ics")
	return cmd
}
