package cli

import (
	"context"

	"ft/internal/feature"

	flag "github.com/spf13/pflag"
)

// BlockCmd returns the block command.
func BlockCmd(cfg *feature.Config) *Command {
	fs := flag.NewFlagSet("block", flag.ContinueOnError)
	fs.StringP("reason", "r", "", "Why the feature is blocked (required)")

	return &Command{
		Flags: fs,
		Usage: "block <id> -r <reason>",
		Short: "Block the active feature",
		Long:  "Mark the active feature blocked with a reason. Unblock resumes it.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return feature.ErrIDRequired
			}

			reason := mustString(fs, "reason")

			rec, err := runTransition(cfg, args[0], feature.ActionBlock, feature.TransitionOptions{Reason: reason})
			if err != nil {
				return err
			}

			o.Println("Blocked", rec.ID+":", rec.BlockedReason)

			return nil
		},
	}
}

// UnblockCmd returns the unblock command.
func UnblockCmd(cfg *feature.Config) *Command {
	fs := flag.NewFlagSet("unblock", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "unblock <id>",
		Short: "Resume a blocked feature",
		Long: `Resume a blocked feature, making it active again. Fails if another
feature became active in the meantime.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return feature.ErrIDRequired
			}

			rec, err := runTransition(cfg, args[0], feature.ActionUnblock, feature.TransitionOptions{})
			if err != nil {
				return err
			}

			o.Printf("Unblocked %s (session %d)\n", rec.ID, rec.Session)

			return nil
		},
	}
}
