package feature

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FormatRecord renders a record back to its document form. Unset fields are
// omitted; the body (and therefore task order and completion flags) is
// written back verbatim, so parse/format round-trips are idempotent.
func FormatRecord(rec Record) string {
	var builder strings.Builder

	builder.WriteString(frontmatterDelimiter + "\n")

	if rec.Priority != PriorityUnset {
		builder.WriteString(fieldPriority + ": " + string(rec.Priority) + "\n")
	}

	if rec.Effort != "" {
		builder.WriteString(fieldEffort + ": " + yamlScalar(rec.Effort) + "\n")
	}

	writeDate(&builder, fieldCreated, rec.Created)
	writeDate(&builder, fieldStarted, rec.Started)

	if rec.Session > 0 {
		builder.WriteString(fmt.Sprintf(fieldSession+": %d\n", rec.Session))
	}

	if rec.BlockedReason != "" {
		builder.WriteString(fieldBlockedReason + ": " + yamlScalar(rec.BlockedReason) + "\n")
	}

	writeDate(&builder, fieldCompleted, rec.Completed)

	builder.WriteString(frontmatterDelimiter + "\n")
	builder.WriteString("# " + rec.Title + "\n")
	builder.WriteString(rec.Body)

	return builder.String()
}

func writeDate(builder *strings.Builder, field string, t time.Time) {
	if t.IsZero() {
		return
	}

	builder.WriteString(field + ": " + t.UTC().Format(time.DateOnly) + "\n")
}

// yamlScalar encodes a single string value, quoting only when YAML requires
// it (leading "~", colons, and the like).
func yamlScalar(s string) string {
	out, err := yaml.Marshal(s)
	if err != nil {
		return s
	}

	return strings.TrimSuffix(string(out), "\n")
}
