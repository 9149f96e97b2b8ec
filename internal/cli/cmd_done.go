package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ft/internal/feature"

	flag "github.com/spf13/pflag"
)

// DoneCmd returns the done command.
func DoneCmd(cfg *feature.Config) *Command {
	fs := flag.NewFlagSet("done", flag.ContinueOnError)
	fs.Bool("force", false, "Complete even with incomplete tasks")
	fs.BoolP("interactive", "i", false, "Confirm incomplete-task completion at a prompt")

	return &Command{
		Flags: fs,
		Usage: "done <id> [flags]",
		Short: "Complete the active feature",
		Long: `Complete the active feature and archive it to the completed directory.
Refuses if tasks are incomplete unless --force is given (or confirmed
with --interactive). Appends a retrospective section to fill in.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execDone(o, cfg, fs, args)
		},
	}
}

func execDone(o *IO, cfg *feature.Config, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 {
		return feature.ErrIDRequired
	}

	id := args[0]
	force, _ := fs.GetBool("force")
	interactive, _ := fs.GetBool("interactive")

	idx, err := feature.Scan(cfg.FeaturesDirAbs, cfg.CompletedDirAbs)
	if err != nil {
		return err
	}

	opts := feature.TransitionOptions{Force: force}

	res, err := feature.Transition(idx, id, feature.ActionComplete, opts)
	if errors.Is(err, feature.ErrPrecondition) && interactive && !force {
		confirmed, promptErr := confirm(fmt.Sprintf("%v. Complete anyway?", err))
		if promptErr != nil {
			return promptErr
		}

		if !confirmed {
			return err
		}

		opts.Force = true

		res, err = feature.Transition(idx, id, feature.ActionComplete, opts)
	}

	if err != nil {
		return err
	}

	res.Record.Body = appendRetrospective(res.Record.Body)

	applyErr := feature.Apply(*cfg, res)
	if applyErr != nil {
		return applyErr
	}

	o.Println("Completed", res.Record.ID)

	return nil
}

// appendRetrospective adds the retrospective stub for the terminal record,
// unless the document already carries one.
func appendRetrospective(body string) string {
	if strings.Contains(body, "## Retrospective") {
		return body
	}

	stub := "\n## Retrospective\n\n" +
		"Completed " + time.Now().UTC().Format(time.DateOnly) + ".\n\n" +
		"- Summary:\n- Decisions:\n- Follow-ups:\n"

	if body != "" && !strings.HasSuffix(body, "\n") {
		body += "\n"
	}

	return body + stub
}
