package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ft/internal/feature"
)

// CLI provides a clean interface for running CLI commands in tests.
// It manages a temp directory and environment variables.
type CLI struct {
	t   *testing.T
	Dir string
	Env map[string]string
}

// NewCLI creates a new test CLI with a temp directory.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	return &CLI{
		t:   t,
		Dir: t.TempDir(),
		Env: map[string]string{},
	}
}

// Run executes the CLI with the given args and returns stdout, stderr, and exit code.
// Args should not include "ft" or "--cwd" - those are added automatically.
func (r *CLI) Run(args ...string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"ft", "--cwd", r.Dir}, args...)
	code := Run(&outBuf, &errBuf, fullArgs, r.Env, nil)

	return outBuf.String(), errBuf.String(), code
}

// MustRun executes the CLI and fails the test if the command returns non-zero.
// Returns trimmed stdout on success.
func (r *CLI) MustRun(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code != 0 {
		r.t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail executes the CLI and fails the test if the command succeeds.
// Returns trimmed stderr.
func (r *CLI) MustFail(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code == 0 {
		r.t.Fatalf("command %v should have failed but succeeded\nstdout: %s", args, stdout)
	}

	return strings.TrimSpace(stderr)
}

// FeaturesDir returns the path to the .features directory.
func (r *CLI) FeaturesDir() string {
	return filepath.Join(r.Dir, ".features")
}

// DoneDir returns the path to the completed directory.
func (r *CLI) DoneDir() string {
	return filepath.Join(r.FeaturesDir(), "done")
}

// ReadFeature reads the content of a feature file with the given status.
func (r *CLI) ReadFeature(id string, status feature.Status) string {
	r.t.Helper()

	dir := r.FeaturesDir()
	if status == feature.StatusDone {
		dir = r.DoneDir()
	}

	content, err := os.ReadFile(filepath.Join(dir, feature.Filename(id, status)))
	if err != nil {
		r.t.Fatalf("failed to read feature %s: %v", id, err)
	}

	return string(content)
}

// WriteFeature writes a raw feature document with the given status suffix.
func (r *CLI) WriteFeature(id string, status feature.Status, content string) {
	r.t.Helper()

	dir := r.FeaturesDir()
	if status == feature.StatusDone {
		dir = r.DoneDir()
	}

	err := os.MkdirAll(dir, 0o750)
	if err != nil {
		r.t.Fatalf("failed to create dir: %v", err)
	}

	err = os.WriteFile(filepath.Join(dir, feature.Filename(id, status)), []byte(content), 0o600)
	if err != nil {
		r.t.Fatalf("failed to write feature %s: %v", id, err)
	}
}

// Exists reports whether a feature file with the given status exists.
func (r *CLI) Exists(id string, status feature.Status) bool {
	dir := r.FeaturesDir()
	if status == feature.StatusDone {
		dir = r.DoneDir()
	}

	_, err := os.Stat(filepath.Join(dir, feature.Filename(id, status)))

	return err == nil
}

// AssertContains fails the test if content doesn't contain substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("content should contain %q\ncontent:\n%s", substr, content)
	}
}

// AssertNotContains fails the test if content contains substr.
func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("content should NOT contain %q\ncontent:\n%s", substr, content)
	}
}
