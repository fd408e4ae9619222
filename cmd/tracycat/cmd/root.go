// Package cmd implements the tracycat commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ChenRenault/tracy/encoding"
	"github.com/ChenRenault/tracy/event"
	"github.com/ChenRenault/tracy/internal/config"
	"github.com/ChenRenault/tracy/internal/tracefile"
)

const (
	flagLogLevelUsage    = "log level, one of debug, info, warn or error"
	flagSlotsUsage       = "records are stored in fixed 32 byte slots"
	flagBufferSizeUsage  = "size of the read buffer for each input"
	flagConcurrencyUsage = "how many inputs to decode at once"
)

// app holds the state shared by every command of one invocation.
type app struct {
	cfg   config.Config
	log   *slog.Logger
	stdin io.Reader
}

// NewRootCommand returns the tracycat command tree.
func NewRootCommand() *cobra.Command {
	a := &app{log: slog.New(slog.DiscardHandler)}
	root := &cobra.Command{
		Use:          "tracycat",
		Short:        "Decode, filter and generate queue record streams",
		Long:         help,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("log-level", "", flagLogLevelUsage)
	flags.Bool("slots", false, flagSlotsUsage)
	flags.Int("buffer-size", 0, flagBufferSizeUsage)
	flags.IntP("concurrency", "c", 0, flagConcurrencyUsage)

	root.AddCommand(
		newCatCommand(a),
		newGrepCommand(a),
		newGenCommand(a),
		newStatsCommand(a),
	)
	return root
}

// setup loads the environment configuration and applies any flags given on
// the command line over it.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("slots") {
		cfg.Slots, _ = flags.GetBool("slots")
	}
	if flags.Changed("buffer-size") {
		cfg.BufferSize, _ = flags.GetInt("buffer-size")
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lvl, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.stdin = cmd.InOrStdin()
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
	a.log.Debug("configured", "slots", cfg.Slots, "buffer_size", cfg.BufferSize, "concurrency", cfg.Concurrency)
	return nil
}

func (a *app) options(obs encoding.Observer) []encoding.Option {
	opts := []encoding.Option{encoding.WithBufferSize(a.cfg.BufferSize)}
	if a.cfg.Slots {
		opts = append(opts, encoding.WithSlots())
	}
	if obs != nil {
		opts = append(opts, encoding.WithObserver(obs))
	}
	return opts
}

// visitFn is called for each decoded record along with the name of the input
// it came from. Calls are serialized across inputs.
type visitFn func(name string, rec *event.Record) error

// each decodes every input, up to the configured concurrency at a time. A
// failing input does not stop the others, all errors are joined.
func (a *app) each(ctx context.Context, paths tracefile.List, obs encoding.Observer, fn visitFn) error {
	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(a.cfg.Concurrency)

	visit := func(name string, rec *event.Record) error {
		mu.Lock()
		defer mu.Unlock()
		return fn(name, rec)
	}
	for _, path := range paths {
		g.Go(func() error {
			if err := a.decode(ctx, path, obs, visit); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	return errors.Join(errs...)
}

// decode a single input, stopping at the first decoding error.
func (a *app) decode(ctx context.Context, path string, obs encoding.Observer, fn visitFn) error {
	tr, err := tracefile.Open(path, a.stdin)
	if err != nil {
		return err
	}
	defer tr.Close()

	log := a.log.With("input", tr.Name)
	log.Debug("decoding", "size", tr.Size)

	notice := a.stdinNotice(tr, log)
	defer notice.Stop()

	var rec event.Record
	dec := encoding.NewDecoder(tr, a.options(obs)...)
	for dec.More() {
		notice.Stop()
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := dec.Decode(&rec); err != nil {
			break // err will be in Err()
		}
		if err := fn(tr.Name, &rec); err != nil {
			return err
		}
	}
	if err := dec.Err(); err != nil {
		log.Error("decode failed", "offset", dec.Offset(), "err", err)
		return fmt.Errorf("%s: %w", tr.Name, err)
	}

	st := dec.Stats()
	log.Debug("decoded", "records", st.Records, "bytes", st.Bytes, "terminated", st.Terminated)
	return nil
}

// stdinNotice logs a hint when stdin has produced nothing for a while.
func (a *app) stdinNotice(tr *tracefile.Trace, log *slog.Logger) *time.Timer {
	if tr.Path != tracefile.Stdio {
		t := time.NewTimer(time.Hour)
		t.Stop()
		return t
	}
	return time.AfterFunc(time.Second/2, func() {
		log.Info("waiting for stdin...")
	})
}

var help = `Small utility for working with queue record streams.

Example:

  # Generate a stream to test with
  tracycat gen > test.tracy

  # If no inputs are given, read stdin
  cat test.tracy | tracycat cat

  # If inputs are given, decode each of them
  tracycat cat test.tracy test.tracy

  # Or stdin & inputs with "-" in place of stdin
  tracycat cat - test.tracy

  # Print only lock records, or everything but zones
  tracycat grep -r '^event\.Lock' test.tracy
  tracycat grep -v -t ZoneBegin,ZoneEnd test.tracy

  # Count records per type
  tracycat stats test.tracy

Environment:

  TRACY_LOG_LEVEL, TRACY_BUFFER_SIZE, TRACY_SLOTS and TRACY_CONCURRENCY set
  the defaults of the matching flags.`
