package feature_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"ft/internal/feature"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func doc(title string) string {
	return "---\npriority: medium\n---\n# " + title + "\n\n- [ ] task\n"
}

func TestScanBuildsIndex(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	done := filepath.Join(dir, "done")

	writeDoc(t, dir, "auth.md", doc("Auth"))
	writeDoc(t, dir, "search.active.md", doc("Search"))
	writeDoc(t, dir, "billing.backlog.md", doc("Billing"))
	writeDoc(t, dir, "export.blocked.md", doc("Export"))
	writeDoc(t, done, "onboarding.md", "---\ncompleted: 2026-08-10\n---\n# Onboarding\n")

	idx, err := feature.Scan(dir, done)
	require.NoError(t, err)
	require.Len(t, idx.Records, 5)
	require.Empty(t, idx.Violations)

	require.Equal(t, feature.StatusReady, idx.Records["auth"].Status)
	require.Equal(t, feature.StatusActive, idx.Records["search"].Status)
	require.Equal(t, feature.StatusBacklog, idx.Records["billing"].Status)
	require.Equal(t, feature.StatusBlocked, idx.Records["export"].Status)
	require.Equal(t, feature.StatusDone, idx.Records["onboarding"].Status)
}

func TestScanIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	done := filepath.Join(dir, "done")

	writeDoc(t, dir, "auth.md", doc("Auth"))
	writeDoc(t, dir, "search.active.md", doc("Search"))
	writeDoc(t, dir, "broken.md", "no frontmatter, no title")
	writeDoc(t, done, "shipped.md", "---\ncompleted: 2026-08-10\n---\n# Shipped\n")

	first, err := feature.Scan(dir, done)
	require.NoError(t, err)

	second, err := feature.Scan(dir, done)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("scan is not idempotent (-first +second):\n%s", diff)
	}
}

func TestScanDuplicateIdentifier(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeDoc(t, dir, "auth.md", doc("Auth ready"))
	writeDoc(t, dir, "auth.backlog.md", doc("Auth backlog"))

	idx, err := feature.Scan(dir, filepath.Join(dir, "done"))
	require.NoError(t, err)

	require.Len(t, idx.Violations, 1)
	require.Equal(t, feature.ViolationDuplicateID, idx.Violations[0].Kind)
	require.Equal(t, "auth", idx.Violations[0].ID)

	// Both records survive under disambiguated keys.
	require.Len(t, idx.Records, 2)
	require.Contains(t, idx.Records, "auth#ready")
	require.Contains(t, idx.Records, "auth#backlog")

	_, err = idx.Lookup("auth")
	require.ErrorIs(t, err, feature.ErrAmbiguousID)
}

func TestScanMultipleActive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeDoc(t, dir, "one.active.md", doc("One"))
	writeDoc(t, dir, "two.active.md", doc("Two"))

	idx, err := feature.Scan(dir, filepath.Join(dir, "done"))
	require.NoError(t, err)

	require.Len(t, idx.Violations, 1)
	require.Equal(t, feature.ViolationMultipleActive, idx.Violations[0].Kind)

	_, ok := idx.Active()
	require.False(t, ok, "Active() must not pick one of several")
}

func TestScanMalformedRecordDoesNotAbort(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeDoc(t, dir, "good.md", doc("Good"))
	writeDoc(t, dir, "mangled.md", "---\npriority: [nonsense\n")

	idx, err := feature.Scan(dir, filepath.Join(dir, "done"))
	require.NoError(t, err)

	// The mangled record is still indexed, with warnings, alongside the
	// good one.
	require.Len(t, idx.Records, 2)
	require.NotEmpty(t, idx.Warnings)
}

func TestScanMissingDirectories(t *testing.T) {
	t.Parallel()

	idx, err := feature.Scan(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "also-nope"))
	require.NoError(t, err)
	require.Empty(t, idx.Records)
	require.Empty(t, idx.Violations)
}

func TestScanSkipsNonRecordFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeDoc(t, dir, "auth.md", doc("Auth"))
	writeDoc(t, dir, "README.txt", "not a record")
	writeDoc(t, dir, "foo#bar.md", doc("Hash"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".locks"), 0o750))

	idx, err := feature.Scan(dir, filepath.Join(dir, "done"))
	require.NoError(t, err)
	require.Len(t, idx.Records, 1)

	// "#" is reserved for duplicate disambiguation, so the skipped file must
	// not make unrelated lookups ambiguous.
	_, err = idx.Lookup("foo")
	require.ErrorIs(t, err, feature.ErrNotFound)
}
