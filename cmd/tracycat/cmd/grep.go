package cmd

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/ChenRenault/tracy/event"
	"github.com/ChenRenault/tracy/internal/tracefile"
)

const (
	flagRegexpUsage = "regexp to match against the printed record"
	flagTypeUsage   = "record type names to match, e.g. ZoneBegin,ZoneEnd"
	flagInvertUsage = "invert matching, like grep -v"
	flagCountUsage  = "print only the number of matching records"
)

type grepFlags struct {
	regexp string
	types  []string
	invert bool
	count  bool
}

// matcher builds the record predicate from the flags. A record matches when
// it satisfies every given filter.
func (f *grepFlags) matcher() (func(rec *event.Record) bool, error) {
	var re *regexp.Regexp
	if len(f.regexp) > 0 {
		var err error
		if re, err = regexp.Compile(f.regexp); err != nil {
			return nil, fmt.Errorf("grep regexp: %w", err)
		}
	}

	var types map[event.Type]bool
	if len(f.types) > 0 {
		byName := make(map[string]event.Type, event.EvCount)
		for typ := event.Type(0); typ < event.EvCount; typ++ {
			byName[typ.Name()] = typ
		}
		types = make(map[event.Type]bool, len(f.types))
		for _, name := range f.types {
			typ, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("grep type: unknown record type %q", name)
			}
			types[typ] = true
		}
	}

	return func(rec *event.Record) bool {
		match := true
		if types != nil {
			match = types[rec.Type]
		}
		if match && re != nil {
			match = re.MatchString(rec.String())
		}
		return match != f.invert
	}, nil
}

func newGrepCommand(a *app) *cobra.Command {
	var f grepFlags
	cmd := &cobra.Command{
		Use:   "grep [file...]",
		Short: "Print the records of each input that match a filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			match, err := f.matcher()
			if err != nil {
				return err
			}

			var n int
			paths := tracefile.Args(args)
			out := cmd.OutOrStdout()
			err = a.each(cmd.Context(), paths, nil, func(name string, rec *event.Record) error {
				if !match(rec) {
					return nil
				}
				n++
				if f.count {
					return nil
				}
				if len(paths) > 1 {
					_, err := fmt.Fprintf(out, "%s: %v\n", name, rec)
					return err
				}
				_, err := fmt.Fprintln(out, rec)
				return err
			})
			if f.count {
				fmt.Fprintln(out, n)
			}
			a.log.Debug("grep done", "matched", n)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.regexp, "regexp", "r", "", flagRegexpUsage)
	flags.StringSliceVarP(&f.types, "type", "t", nil, flagTypeUsage)
	flags.BoolVarP(&f.invert, "invert", "v", false, flagInvertUsage)
	flags.BoolVar(&f.count, "count", false, flagCountUsage)
	return cmd
}
