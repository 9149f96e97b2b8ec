package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ft/internal/feature"

	flag "github.com/spf13/pflag"
)

// StatusCmd returns the status command.
func StatusCmd(cfg *feature.Config) *Command {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.Int("recent", 0, "How many recently completed features to show (default from config)")
	fs.Bool("json", false, "Output the report as JSON")

	return &Command{
		Flags: fs,
		Usage: "status [flags]",
		Short: "Categorized summary with a suggested next action",
		Long: `Summarize the repository: features grouped by status, task completion
for the active feature, recently completed features, and a suggested
next action.`,
		Exec: func(_ context.Context, o *IO, _ []string) error {
			return execStatus(o, cfg, fs)
		},
	}
}

func execStatus(o *IO, cfg *feature.Config, fs *flag.FlagSet) error {
	idx, err := feature.Scan(cfg.FeaturesDirAbs, cfg.CompletedDirAbs)
	if err != nil {
		return err
	}

	warnViolations(o, idx.Violations)

	limit := cfg.RecentDoneLimit
	if recent, _ := fs.GetInt("recent"); recent > 0 {
		limit = recent
	}

	report := feature.GenerateReport(idx, feature.ReportOptions{RecentDoneLimit: limit})

	if jsonOut, _ := fs.GetBool("json"); jsonOut {
		out, marshalErr := json.MarshalIndent(report, "", "  ")
		if marshalErr != nil {
			return fmt.Errorf("encoding report: %w", marshalErr)
		}

		o.Println(string(out))

		return nil
	}

	printSection(o, "Active", report.Active)
	printSection(o, "Ready", report.Ready)
	printSection(o, "Blocked", report.Blocked)
	printSection(o, "Backlog", report.Backlog)
	printRecentDone(o, report.RecentDone)

	o.Println()
	o.Println(suggestionLine(report.Suggestion))

	return nil
}

func printSection(o *IO, header string, recs []feature.Record) {
	if len(recs) == 0 {
		return
	}

	o.Printf("%s (%d):\n", header, len(recs))

	for _, rec := range recs {
		line := "  " + formatLsLine(rec)
		if rec.Status == feature.StatusBlocked && rec.BlockedReason != "" {
			line += " (blocked: " + rec.BlockedReason + ")"
		}

		o.Println(line)
	}
}

func printRecentDone(o *IO, recs []feature.Record) {
	if len(recs) == 0 {
		return
	}

	o.Printf("Recently done (%d):\n", len(recs))

	for _, rec := range recs {
		line := "  " + rec.ID
		if !rec.Completed.IsZero() {
			line += "  " + rec.Completed.UTC().Format(time.DateOnly)
		}

		line += "  " + rec.Title
		o.Println(line)
	}
}

func suggestionLine(s feature.Suggestion) string {
	switch s.Kind {
	case feature.SuggestStart:
		return fmt.Sprintf("suggestion: start %s (ft start %s)", s.ID, s.ID)
	case feature.SuggestContinue:
		percent := 0
		if s.TotalTasks > 0 {
			percent = s.CompletedTasks * 100 / s.TotalTasks
		}

		return fmt.Sprintf("suggestion: continue %s (%d/%d tasks done, %d%%)",
			s.ID, s.CompletedTasks, s.TotalTasks, percent)
	case feature.SuggestComplete:
		return fmt.Sprintf("suggestion: all tasks done, complete %s (ft done %s)", s.ID, s.ID)
	case feature.SuggestPromote:
		return fmt.Sprintf("suggestion: promote %s from backlog (ft promote %s)", s.ID, s.ID)
	default:
		return "suggestion: nothing tracked, create a feature (ft create <title>)"
	}
}
