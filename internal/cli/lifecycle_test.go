package cli_test

import (
	"testing"

	"ft/internal/cli"
	"ft/internal/feature"
)

// Walks a feature through the full lifecycle on disk:
// ready -> active -> blocked -> active -> done.
func TestFullLifecycle(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	id := c.MustRun("create", "Payments", "--task", "schema", "--task", "api")

	out := c.MustRun("start", id)
	cli.AssertContains(t, out, "Started payments (session 1)")

	if !c.Exists(id, feature.StatusActive) || c.Exists(id, feature.StatusReady) {
		t.Fatal("start must rename ready file to active")
	}

	out = c.MustRun("block", id, "-r", "waiting on PSP sandbox")
	cli.AssertContains(t, out, "Blocked payments: waiting on PSP sandbox")
	cli.AssertContains(t, c.ReadFeature(id, feature.StatusBlocked), "blocked-reason: waiting on PSP sandbox")

	out = c.MustRun("unblock", id)
	cli.AssertContains(t, out, "Unblocked payments (session 2)")
	cli.AssertNotContains(t, c.ReadFeature(id, feature.StatusActive), "blocked-reason")

	// Tasks are still open, so done needs --force.
	stderr := c.MustFail("done", id)
	cli.AssertContains(t, stderr, "incomplete tasks")

	out = c.MustRun("done", id, "--force")
	cli.AssertContains(t, out, "Completed payments")

	if !c.Exists(id, feature.StatusDone) || c.Exists(id, feature.StatusActive) {
		t.Fatal("done must archive the active file")
	}

	content := c.ReadFeature(id, feature.StatusDone)
	cli.AssertContains(t, content, "completed: ")
	cli.AssertContains(t, content, "## Retrospective")
	cli.AssertContains(t, content, "session: 2")
}

func TestStartRefusesSecondActive(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	a := c.MustRun("create", "First")
	b := c.MustRun("create", "Second")

	c.MustRun("start", a)

	stderr := c.MustFail("start", b)
	cli.AssertContains(t, stderr, "another feature is already active")
	cli.AssertContains(t, stderr, a)

	if !c.Exists(b, feature.StatusReady) {
		t.Fatal("refused start must leave the file untouched")
	}
}

func TestStartRefusedWhenRepositoryHasTwoActive(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFeature("one", feature.StatusActive, "---\n---\n# One\n")
	c.WriteFeature("two", feature.StatusActive, "---\n---\n# Two\n")
	c.WriteFeature("three", feature.StatusReady, "---\n---\n# Three\n")

	stderr := c.MustFail("start", "three")
	cli.AssertContains(t, stderr, "another feature is already active")

	if !c.Exists("three", feature.StatusReady) {
		t.Fatal("refused start must leave the file untouched")
	}
}

func TestPauseThenStartOther(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	a := c.MustRun("create", "First")
	b := c.MustRun("create", "Second")

	c.MustRun("start", a)
	out := c.MustRun("pause", a)
	cli.AssertContains(t, out, "Paused first")

	c.MustRun("start", b)

	if !c.Exists(a, feature.StatusReady) || !c.Exists(b, feature.StatusActive) {
		t.Fatal("pause must free the active slot")
	}
}

func TestPromoteFromBacklog(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	id := c.MustRun("create", "Later", "--backlog")

	out := c.MustRun("promote", id)
	cli.AssertContains(t, out, "Promoted later")

	if !c.Exists(id, feature.StatusReady) {
		t.Fatal("promote must move backlog to ready")
	}

	stderr := c.MustFail("promote", id)
	cli.AssertContains(t, stderr, "illegal status transition")
}

func TestDoneOnlyFromActive(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	id := c.MustRun("create", "Direct")

	stderr := c.MustFail("done", id)
	cli.AssertContains(t, stderr, "illegal status transition")
}

func TestDoneWithAllTasksChecked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFeature("ship", feature.StatusActive, "---\npriority: high\n---\n# Ship\n\n- [x] everything\n")

	out := c.MustRun("done", "ship")
	cli.AssertContains(t, out, "Completed ship")
}

func TestBlockRequiresReason(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	id := c.MustRun("create", "Needs Reason")
	c.MustRun("start", id)

	stderr := c.MustFail("block", id)
	cli.AssertContains(t, stderr, "block reason is required")
}

func TestUnblockRefusedWhileAnotherActive(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFeature("stuck", feature.StatusBlocked, "---\nblocked-reason: deps\n---\n# Stuck\n")
	c.WriteFeature("busy", feature.StatusActive, "# Busy\n")

	stderr := c.MustFail("unblock", "stuck")
	cli.AssertContains(t, stderr, "another feature is already active")
}

func TestTransitionUnknownID(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("start", "ghost")
	cli.AssertContains(t, stderr, "feature not found")
}
