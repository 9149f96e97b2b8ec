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

var (
	errTitleRequired   = errors.New("title is required")
	errInvalidPriority = errors.New("invalid priority (must be high|medium|low)")
)

// CreateCmd returns the create command.
func CreateCmd(cfg *feature.Config) *Command {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.StringP("priority", "p", "", "Priority (high|medium|low)")
	fs.StringP("effort", "e", "", "Effort estimate, free-form (e.g. \"~3 hours\")")
	fs.StringP("description", "d", "", "Description text")
	fs.StringArray("task", nil, "Task description (repeatable)")
	fs.Bool("backlog", false, "Create in backlog instead of ready")

	return &Command{
		Flags: fs,
		Usage: "create <title> [flags]",
		Short: "Create a feature, prints its ID",
		Long: `Create a new feature document. Prints the derived identifier on success.

The identifier is the lowercased, hyphenated title; collisions get a
numeric suffix (-2, -3, ...). Features start ready unless --backlog.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execCreate(o, cfg, fs, args)
		},
	}
}

func execCreate(o *IO, cfg *feature.Config, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 || args[0] == "" {
		return errTitleRequired
	}

	title := args[0]

	base := feature.DeriveID(title)
	if base == "" {
		return feature.ErrEmptyTitle
	}

	priority := feature.Priority(strings.ToLower(mustString(fs, "priority")))
	if !feature.IsValidPriority(priority) {
		return fmt.Errorf("%w: %s", errInvalidPriority, priority)
	}

	status := feature.StatusReady
	if backlog, _ := fs.GetBool("backlog"); backlog {
		status = feature.StatusBacklog
	}

	rec := feature.Record{
		ID:       feature.UniqueID(*cfg, base),
		Status:   status,
		Title:    title,
		Priority: priority,
		Effort:   mustString(fs, "effort"),
		Created:  time.Now(),
		Body:     buildBody(mustString(fs, "description"), mustStringArray(fs, "task")),
	}

	_, err := feature.WriteRecord(*cfg, rec)
	if err != nil {
		return err
	}

	o.Println(rec.ID)

	return nil
}

// buildBody assembles the initial document body: description prose followed
// by a Tasks section of unchecked items.
func buildBody(description string, tasks []string) string {
	var builder strings.Builder

	if description != "" {
		builder.WriteString("\n" + description + "\n")
	}

	if len(tasks) > 0 {
		builder.WriteString("\n## Tasks\n\n")

		for _, task := range tasks {
			builder.WriteString("- [ ] " + task + "\n")
		}
	}

	return builder.String()
}

func mustString(fs *flag.FlagSet, name string) string {
	v, _ := fs.GetString(name)
	return v
}

func mustStringArray(fs *flag.FlagSet, name string) []string {
	v, _ := fs.GetStringArray(name)
	return v
}
