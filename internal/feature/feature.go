// Package feature implements the feature lifecycle tracker: parsing feature
// documents, the status state machine, repository scanning, and status
// reporting. All business logic is pure; disk I/O is confined to Scan and
// Apply so everything else is testable in isolation.
package feature

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a feature record.
type Status string

// Lifecycle statuses. Done is terminal; a done record never re-enters the
// active pool.
const (
	StatusReady   Status = "ready"
	StatusActive  Status = "active"
	StatusBacklog Status = "backlog"
	StatusBlocked Status = "blocked"
	StatusDone    Status = "done"
)

// Priority is the advisory priority of a record. The zero value means unset.
type Priority string

// Priorities, highest first.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityUnset  Priority = ""
)

// priorityRank orders priorities for sorting. Unset sorts last.
func priorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// IsValidPriority reports whether p is a known priority or unset.
func IsValidPriority(p Priority) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow || p == PriorityUnset
}

// Task is one checkbox line from a feature document, in document order.
type Task struct {
	Description string
	Done        bool
}

// Record is one tracked feature. Status is authoritative here; the filename
// suffix is only its serialized form.
type Record struct {
	ID       string
	Status   Status
	Title    string
	Priority Priority

	// Effort is a free-form estimate like "~3 hours". Advisory only; the
	// report uses it as a tie-breaker when it happens to be parseable.
	Effort string

	Created time.Time // zero = unset
	Started time.Time // zero = unset
	Session int       // 0 = unset; meaningful only when active

	Tasks []Task

	BlockedReason string    // set only when blocked
	Completed     time.Time // set only when done

	// Body is everything after the title line, verbatim. Tasks are parsed
	// from it but it is never rewritten, so manual edits round-trip.
	Body string
}

// CompletedTasks returns how many tasks are done.
func (r Record) CompletedTasks() int {
	n := 0

	for _, t := range r.Tasks {
		if t.Done {
			n++
		}
	}

	return n
}

// TasksComplete reports whether every task is done. A record with no tasks
// is vacuously complete.
func (r Record) TasksComplete() bool {
	return r.CompletedTasks() == len(r.Tasks)
}

// Suffixes for the filename status convention. No suffix means ready; done
// records live in the completed directory with no suffix.
const (
	mdExt         = ".md"
	suffixActive  = ".active"
	suffixBacklog = ".backlog"
	suffixBlocked = ".blocked"
)

// Filename returns the file name encoding the given status. Done uses the
// plain name; its location (the completed directory) implies the status.
func Filename(id string, status Status) string {
	switch status {
	case StatusActive:
		return id + suffixActive + mdExt
	case StatusBacklog:
		return id + suffixBacklog + mdExt
	case StatusBlocked:
		return id + suffixBlocked + mdExt
	default:
		return id + mdExt
	}
}

// DecodeFilename extracts the identifier and status from a file name in the
// features directory. Returns ok=false for non-markdown files and for names
// containing "#", which is reserved for the scanner's duplicate keys.
func DecodeFilename(name string) (id string, status Status, ok bool) {
	stem, found := strings.CutSuffix(name, mdExt)
	if !found || stem == "" || strings.ContainsRune(stem, '#') {
		return "", "", false
	}

	switch {
	case strings.HasSuffix(stem, suffixActive):
		return strings.TrimSuffix(stem, suffixActive), StatusActive, true
	case strings.HasSuffix(stem, suffixBacklog):
		return strings.TrimSuffix(stem, suffixBacklog), StatusBacklog, true
	case strings.HasSuffix(stem, suffixBlocked):
		return strings.TrimSuffix(stem, suffixBlocked), StatusBlocked, true
	default:
		return stem, StatusReady, true
	}
}

// DeriveID derives an identifier from a human-readable title: lowercase,
// hyphenated, one hyphen between words.
func DeriveID(title string) string {
	var builder strings.Builder

	lastHyphen := true // suppress leading hyphen

	for _, r := range strings.ToLower(title) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			builder.WriteRune(r)
			lastHyphen = false

			continue
		}

		if !lastHyphen {
			builder.WriteByte('-')
			lastHyphen = true
		}
	}

	return strings.TrimSuffix(builder.String(), "-")
}
