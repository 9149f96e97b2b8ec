package cli

import (
	"context"

	"ft/internal/feature"

	flag "github.com/spf13/pflag"
)

// PauseCmd returns the pause command.
func PauseCmd(cfg *feature.Config) *Command {
	fs := flag.NewFlagSet("pause", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "pause <id>",
		Short: "Deactivate the active feature back to ready",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return feature.ErrIDRequired
			}

			rec, err := runTransition(cfg, args[0], feature.ActionDeactivate, feature.TransitionOptions{})
			if err != nil {
				return err
			}

			o.Println("Paused", rec.ID)

			return nil
		},
	}
}
