package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChenRenault/tracy/event"
	"github.com/ChenRenault/tracy/internal/tracefile"
)

func newCatCommand(a *app) *cobra.Command {
	var names bool
	cmd := &cobra.Command{
		Use:   "cat [file...]",
		Short: "Print every record of each input",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := tracefile.Args(args)
			prefix := names || len(paths) > 1
			out := cmd.OutOrStdout()
			return a.each(cmd.Context(), paths, nil, func(name string, rec *event.Record) error {
				if prefix {
					_, err := fmt.Fprintf(out, "%s: %v\n", name, rec)
					return err
				}
				_, err := fmt.Fprintln(out, rec)
				return err
			})
		},
	}
	cmd.Flags().BoolVarP(&names, "with-filename", "H", false, "prefix each record with its input name")
	return cmd
}
