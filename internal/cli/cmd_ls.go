package cli

import (
	"context"
	"fmt"
	"strings"

	"ft/internal/feature"

	flag "github.com/spf13/pflag"
)

// LsCmd returns the ls command.
func LsCmd(cfg *feature.Config) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.String("status", "", "Filter by status (ready|active|backlog|blocked|done)")

	return &Command{
		Flags: fs,
		Usage: "ls [flags]",
		Short: "List features",
		Long:  "List all features grouped by status. Done features are listed only with --status=done.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			return execLs(o, cfg, fs)
		},
	}
}

func execLs(o *IO, cfg *feature.Config, fs *flag.FlagSet) error {
	statusFilter := feature.Status(mustString(fs, "status"))
	if fs.Changed("status") && !isKnownStatus(statusFilter) {
		return fmt.Errorf("invalid status: %s", statusFilter)
	}

	idx, err := feature.Scan(cfg.FeaturesDirAbs, cfg.CompletedDirAbs)
	if err != nil {
		return err
	}

	warnViolations(o, idx.Violations)
	warnParse(o, idx.Warnings)

	statuses := []feature.Status{feature.StatusActive, feature.StatusReady, feature.StatusBlocked, feature.StatusBacklog}
	if fs.Changed("status") {
		statuses = []feature.Status{statusFilter}
	}

	total := 0

	for _, status := range statuses {
		for _, rec := range idx.ByStatus(status) {
			o.Println(formatLsLine(rec))

			total++
		}
	}

	if total == 0 {
		o.ErrPrintln("no features found")
	}

	return nil
}

func isKnownStatus(s feature.Status) bool {
	switch s {
	case feature.StatusReady, feature.StatusActive, feature.StatusBacklog, feature.StatusBlocked, feature.StatusDone:
		return true
	default:
		return false
	}
}

func formatLsLine(rec feature.Record) string {
	fields := []string{rec.ID, string(rec.Status)}

	if rec.Priority != feature.PriorityUnset {
		fields = append(fields, string(rec.Priority))
	}

	if len(rec.Tasks) > 0 {
		fields = append(fields, fmt.Sprintf("%d/%d", rec.CompletedTasks(), len(rec.Tasks)))
	}

	fields = append(fields, rec.Title)

	return strings.Join(fields, "  ")
}
