package cli

import (
	"context"

	"ft/internal/feature"

	flag "github.com/spf13/pflag"
)

// ShowCmd returns the show command.
func ShowCmd(cfg *feature.Config) *Command {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "show <id>",
		Short: "Print a feature document",
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execShow(o, cfg, args)
		},
	}
}

func execShow(o *IO, cfg *feature.Config, args []string) error {
	if len(args) == 0 {
		return feature.ErrIDRequired
	}

	idx, err := feature.Scan(cfg.FeaturesDirAbs, cfg.CompletedDirAbs)
	if err != nil {
		return err
	}

	rec, err := idx.Lookup(args[0])
	if err != nil {
		return err
	}

	o.Printf("%s", feature.FormatRecord(rec))

	return nil
}
