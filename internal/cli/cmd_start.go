package cli

import (
	"context"

	"ft/internal/feature"

	flag "github.com/spf13/pflag"
)

// StartCmd returns the start command.
func StartCmd(cfg *feature.Config) *Command {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "start <id>",
		Short: "Activate a ready feature",
		Long: `Activate a ready feature. Only one feature may be active at a time;
if another is active this fails and you must 'ft pause' it first.
Stamps the started date and increments the session counter.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return feature.ErrIDRequired
			}

			rec, err := runTransition(cfg, args[0], feature.ActionActivate, feature.TransitionOptions{})
			if err != nil {
				return err
			}

			o.Printf("Started %s (session %d)\n", rec.ID, rec.Session)

			return nil
		},
	}
}
