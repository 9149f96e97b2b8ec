package cli

import (
	"context"

	"ft/internal/feature"

	flag "github.com/spf13/pflag"
)

// PromoteCmd returns the promote command.
func PromoteCmd(cfg *feature.Config) *Command {
	fs := flag.NewFlagSet("promote", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "promote <id>",
		Short: "Move a backlog feature to ready",
		Long:  "Move a backlog feature into the ready pool so it can be started.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return feature.ErrIDRequired
			}

			rec, err := runTransition(cfg, args[0], feature.ActionPromote, feature.TransitionOptions{})
			if err != nil {
				return err
			}

			o.Println("Promoted", rec.ID)

			return nil
		},
	}
}
