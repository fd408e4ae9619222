package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ChenRenault/tracy/event"
	"github.com/ChenRenault/tracy/internal/metrics"
	"github.com/ChenRenault/tracy/internal/tracefile"
)

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file...]",
		Short: "Count the records, bytes and errors of every input",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := metrics.New()
			decodeErr := a.each(cmd.Context(), tracefile.Args(args), m,
				func(string, *event.Record) error { return nil })

			samples, err := m.Snapshot()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, s := range samples {
				name := s.Name
				if s.Label != "" {
					name += "{" + s.Label + "}"
				}
				fmt.Fprintf(tw, "%s\t%v\n", name, s.Value)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return decodeErr
		},
	}
}
