package cmd

import (
	"bufio"
	"errors"

	"github.com/spf13/cobra"

	"github.com/ChenRenault/tracy/encoding"
	"github.com/ChenRenault/tracy/event"
	"github.com/ChenRenault/tracy/internal/tracefile"
	"github.com/ChenRenault/tracy/internal/tracegen"
)

func newGenCommand(a *app) *cobra.Command {
	var (
		output string
		g      = tracegen.New(1)
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Write a generated record stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			w, err := tracefile.Create(output, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, w.Close())
			}()

			bw := bufio.NewWriterSize(w, a.cfg.BufferSize)
			enc := encoding.NewEncoder(bw, a.options(nil)...)

			var n int
			err = g.Run(cmd.Context(), func(rec event.Record) error {
				n++
				return enc.Emit(rec)
			})
			if err != nil {
				return err
			}
			if err := bw.Flush(); err != nil {
				return err
			}
			a.log.Info("generated", "output", output, "records", n, "bytes", enc.Offset(), "seed", g.Seed)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", tracefile.Stdio, "file to write, - for stdout")
	flags.Uint64Var(&g.Seed, "seed", g.Seed, "random seed")
	flags.IntVar(&g.Threads, "threads", g.Threads, "number of threads")
	flags.IntVar(&g.Frames, "frames", g.Frames, "number of frames")
	flags.IntVar(&g.Zones, "zones", g.Zones, "zones per thread and frame")
	flags.IntVar(&g.Locks, "locks", g.Locks, "number of locks")
	return cmd
}
