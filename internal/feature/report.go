package feature

import (
	"slices"
	"strconv"
	"strings"
)

// DefaultRecentDoneLimit is how many completed records a report includes
// when no limit is configured.
const DefaultRecentDoneLimit = 5

// ReportOptions configures report generation.
type ReportOptions struct {
	// RecentDoneLimit caps the recently-completed list. 0 means the
	// default.
	RecentDoneLimit int
}

// SuggestionKind is the category of next action a report proposes.
type SuggestionKind string

// Suggestion kinds.
const (
	SuggestNone     SuggestionKind = "none"     // nothing tracked
	SuggestStart    SuggestionKind = "start"    // activate the named ready record
	SuggestContinue SuggestionKind = "continue" // keep working the active record
	SuggestComplete SuggestionKind = "complete" // active record's tasks are all done
	SuggestPromote  SuggestionKind = "promote"  // no ready work, promote from backlog
)

// Suggestion is the deterministic next-action recommendation.
type Suggestion struct {
	Kind           SuggestionKind
	ID             string
	CompletedTasks int
	TotalTasks     int
}

// Report is the structured aggregate view of the repository. Rendering is
// the caller's concern; nothing here is pre-formatted text.
type Report struct {
	Ready      []Record
	Active     []Record
	Blocked    []Record
	Backlog    []Record
	RecentDone []Record
	Violations []Violation
	Suggestion Suggestion
}

// GenerateReport aggregates the index into a categorized summary. Pure and
// deterministic: the same index always yields the same report.
func GenerateReport(idx Index, opts ReportOptions) Report {
	limit := opts.RecentDoneLimit
	if limit <= 0 {
		limit = DefaultRecentDoneLimit
	}

	report := Report{
		Ready:      idx.ByStatus(StatusReady),
		Active:     idx.ByStatus(StatusActive),
		Blocked:    idx.ByStatus(StatusBlocked),
		Backlog:    idx.ByStatus(StatusBacklog),
		RecentDone: recentDone(idx, limit),
		Violations: idx.Violations,
	}

	report.Suggestion = suggest(report)

	return report
}

func recentDone(idx Index, limit int) []Record {
	done := idx.ByStatus(StatusDone)

	slices.SortFunc(done, func(a, b Record) int {
		if !a.Completed.Equal(b.Completed) {
			if a.Completed.After(b.Completed) {
				return -1
			}

			return 1
		}

		return strings.Compare(a.ID, b.ID)
	})

	if len(done) > limit {
		done = done[:limit]
	}

	return done
}

// suggest picks the next action:
//   - an active record: report its completion fraction, or propose
//     completing it once every task is done
//   - no active but ready records: propose starting the best one
//   - only backlog: propose promoting the best backlog record
func suggest(report Report) Suggestion {
	if len(report.Active) > 0 {
		active := report.Active[0]
		s := Suggestion{
			ID:             active.ID,
			CompletedTasks: active.CompletedTasks(),
			TotalTasks:     len(active.Tasks),
		}

		if active.TasksComplete() {
			s.Kind = SuggestComplete
		} else {
			s.Kind = SuggestContinue
		}

		return s
	}

	if len(report.Ready) > 0 {
		return Suggestion{Kind: SuggestStart, ID: pickNext(report.Ready).ID}
	}

	if len(report.Backlog) > 0 {
		return Suggestion{Kind: SuggestPromote, ID: pickNext(report.Backlog).ID}
	}

	return Suggestion{Kind: SuggestNone}
}

// pickNext chooses the best candidate: highest priority, then lowest
// parseable effort (unparseable efforts sort last), then identifier.
func pickNext(recs []Record) Record {
	best := recs[0]

	for _, rec := range recs[1:] {
		if candidateBefore(rec, best) {
			best = rec
		}
	}

	return best
}

func candidateBefore(a, b Record) bool {
	if ra, rb := priorityRank(a.Priority), priorityRank(b.Priority); ra != rb {
		return ra < rb
	}

	ha, oka := parseEffortHours(a.Effort)
	hb, okb := parseEffortHours(b.Effort)

	switch {
	case oka && okb && ha != hb:
		return ha < hb
	case oka != okb:
		return oka
	}

	return a.ID < b.ID
}

// parseEffortHours extracts a comparable hour count from a free-form effort
// estimate like "~3 hours", "2d", or "90 min". Days count as 8 hours. The
// estimate stays advisory; this exists only for tie-breaking.
func parseEffortHours(effort string) (float64, bool) {
	s := strings.TrimSpace(strings.ToLower(effort))
	s = strings.TrimPrefix(s, "~")
	s = strings.TrimSpace(s)

	if s == "" {
		return 0, false
	}

	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}

	if end == 0 {
		return 0, false
	}

	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}

	switch strings.TrimSpace(s[end:]) {
	case "", "h", "hr", "hrs", "hour", "hours":
		return value, true
	case "m", "min", "mins", "minute", "minutes":
		return value / 60, true
	case "d", "day", "days":
		return value * 8, true
	default:
		return 0, false
	}
}
