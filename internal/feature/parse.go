package feature

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Warning is a non-fatal parse issue. The record is still usable; warnings
// exist for visibility only.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return w.Field + ": " + w.Message
}

// MaxFrontmatterLines bounds the frontmatter block. If the closing delimiter
// is not found within this limit the block is treated as body text.
const MaxFrontmatterLines = 100

const frontmatterDelimiter = "---"

// Frontmatter keys.
const (
	fieldPriority      = "priority"
	fieldEffort        = "effort"
	fieldCreated       = "created"
	fieldStarted       = "started"
	fieldSession       = "session"
	fieldBlockedReason = "blocked-reason"
	fieldCompleted     = "completed"
)

// ParseRecord parses a feature document into a Record. The identifier and
// status come from the filename convention and are passed in; the document
// never stores them redundantly.
//
// Parsing never fails hard: missing or malformed metadata degrades to unset
// with a warning, so even a badly mangled document still counts toward the
// status report.
func ParseRecord(content []byte, id string, status Status) (Record, []Warning) {
	rec := Record{ID: id, Status: status}

	var warnings []Warning

	meta, rest, fmWarnings := splitFrontmatter(string(content))
	warnings = append(warnings, fmWarnings...)

	warnings = append(warnings, applyMeta(&rec, meta)...)

	title, body, ok := extractTitle(rest)
	if !ok {
		warnings = append(warnings, Warning{Field: "title", Message: "no heading found, using identifier"})

		title = id
	}

	rec.Title = title
	rec.Body = body
	rec.Tasks = parseTasks(body)

	return rec, warnings
}

// splitFrontmatter separates the YAML frontmatter block from the rest of the
// document. Returns nil meta if there is no usable frontmatter.
func splitFrontmatter(content string) (map[string]any, string, []Warning) {
	lines := strings.Split(content, "\n")

	if len(lines) == 0 || strings.TrimRight(lines[0], " \t") != frontmatterDelimiter {
		return nil, content, []Warning{{Field: "frontmatter", Message: "missing, all metadata unset"}}
	}

	closing := -1

	for idx := 1; idx < len(lines) && idx <= MaxFrontmatterLines; idx++ {
		if strings.TrimRight(lines[idx], " \t") == frontmatterDelimiter {
			closing = idx

			break
		}
	}

	if closing == -1 {
		return nil, content, []Warning{{Field: "frontmatter", Message: "unclosed, treating as body"}}
	}

	block := strings.Join(lines[1:closing], "\n")
	rest := strings.Join(lines[closing+1:], "\n")

	var meta map[string]any

	err := yaml.Unmarshal([]byte(block), &meta)
	if err != nil {
		return nil, rest, []Warning{{Field: "frontmatter", Message: "invalid YAML, all metadata unset"}}
	}

	return meta, rest, nil
}

// applyMeta copies recognized frontmatter keys onto the record, one warning
// per malformed value. Unknown keys are ignored.
func applyMeta(rec *Record, meta map[string]any) []Warning {
	var warnings []Warning

	warn := func(field, format string, a ...any) {
		warnings = append(warnings, Warning{Field: field, Message: fmt.Sprintf(format, a...)})
	}

	for key, raw := range meta {
		switch key {
		case fieldPriority:
			p := Priority(strings.ToLower(asString(raw)))
			if !IsValidPriority(p) {
				warn(key, "unknown priority %q, treating as unset", raw)

				continue
			}

			rec.Priority = p

		case fieldEffort:
			rec.Effort = asString(raw)

		case fieldCreated:
			rec.Created = parseDateField(raw, key, warn)

		case fieldStarted:
			rec.Started = parseDateField(raw, key, warn)

		case fieldCompleted:
			rec.Completed = parseDateField(raw, key, warn)

		case fieldSession:
			n, ok := asInt(raw)
			if !ok || n < 1 {
				warn(key, "expected positive integer, got %q", fmt.Sprint(raw))

				continue
			}

			rec.Session = n

		case fieldBlockedReason:
			rec.BlockedReason = asString(raw)
		}
	}

	return warnings
}

func parseDateField(raw any, field string, warn func(field, format string, a ...any)) time.Time {
	// The YAML decoder already resolves unquoted dates.
	if t, ok := raw.(time.Time); ok {
		return t
	}

	value := asString(raw)
	if value == "" {
		return time.Time{}
	}

	t, err := ParseDate(value)
	if err != nil {
		warn(field, "unparseable date %q, treating as unset", value)

		return time.Time{}
	}

	return t
}

// ParseDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return t, nil
	}

	t, err = time.Parse(time.DateOnly, value)
	if err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("parsing date %q: %w", value, err)
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

// extractTitle finds the first "# " heading. Everything after that line is
// the body, returned verbatim.
func extractTitle(rest string) (title, body string, ok bool) {
	lines := strings.Split(rest, "\n")

	for idx, line := range lines {
		if after, found := strings.CutPrefix(line, "# "); found {
			title = strings.TrimSpace(after)
			if title == "" {
				continue
			}

			return title, strings.Join(lines[idx+1:], "\n"), true
		}
	}

	return "", rest, false
}

// Checkbox markers. Anything else that looks vaguely like a checkbox is
// ignored rather than counted.
const (
	uncheckedMarker = "- [ ] "
	checkedMarker   = "- [x] "
	checkedMarkerUC = "- [X] "
)

// parseTasks collects checkbox lines from the body in document order.
func parseTasks(body string) []Task {
	var tasks []Task

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimLeft(line, " \t")

		switch {
		case strings.HasPrefix(trimmed, uncheckedMarker):
			tasks = append(tasks, Task{Description: strings.TrimSpace(trimmed[len(uncheckedMarker):])})
		case strings.HasPrefix(trimmed, checkedMarker):
			tasks = append(tasks, Task{Description: strings.TrimSpace(trimmed[len(checkedMarker):]), Done: true})
		case strings.HasPrefix(trimmed, checkedMarkerUC):
			tasks = append(tasks, Task{Description: strings.TrimSpace(trimmed[len(checkedMarkerUC):]), Done: true})
		}
	}

	return tasks
}
