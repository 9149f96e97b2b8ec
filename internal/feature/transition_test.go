package feature_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"ft/internal/feature"
)

func indexOf(recs ...feature.Record) feature.Index {
	idx := feature.Index{Records: make(map[string]feature.Record, len(recs))}

	for _, rec := range recs {
		idx.Records[rec.ID] = rec
	}

	return idx
}

func countActive(idx feature.Index) int {
	n := 0

	for _, rec := range idx.Records {
		if rec.Status == feature.StatusActive {
			n++
		}
	}

	return n
}

func TestTransitionConflictGuard(t *testing.T) {
	t.Parallel()

	idx := indexOf(
		feature.Record{ID: "x", Status: feature.StatusActive},
		feature.Record{ID: "y", Status: feature.StatusReady},
	)

	_, err := feature.Transition(idx, "y", feature.ActionActivate, feature.TransitionOptions{})
	require.ErrorIs(t, err, feature.ErrConflict)

	// Explicit two-step: deactivate x, then activate y.
	res, err := feature.Transition(idx, "x", feature.ActionDeactivate, feature.TransitionOptions{})
	require.NoError(t, err)

	res, err = feature.Transition(res.Index, "y", feature.ActionActivate, feature.TransitionOptions{})
	require.NoError(t, err)
	require.Equal(t, feature.StatusActive, res.Record.Status)
	require.Equal(t, 1, countActive(res.Index))
}

// Even a repository already violating the single-active invariant must not
// gain another active record.
func TestTransitionConflictGuardWithMultipleActive(t *testing.T) {
	t.Parallel()

	idx := indexOf(
		feature.Record{ID: "x", Status: feature.StatusActive},
		feature.Record{ID: "y", Status: feature.StatusActive},
		feature.Record{ID: "z", Status: feature.StatusReady},
		feature.Record{ID: "b", Status: feature.StatusBlocked, BlockedReason: "deps"},
	)

	_, err := feature.Transition(idx, "z", feature.ActionActivate, feature.TransitionOptions{})
	require.ErrorIs(t, err, feature.ErrConflict)
	require.ErrorContains(t, err, "x", "names the smallest active identifier")

	_, err = feature.Transition(idx, "b", feature.ActionUnblock, feature.TransitionOptions{})
	require.ErrorIs(t, err, feature.ErrConflict)
}

func TestTransitionCompletionGuard(t *testing.T) {
	t.Parallel()

	rec := feature.Record{
		ID:     "partial",
		Status: feature.StatusActive,
		Tasks:  []feature.Task{{Description: "a", Done: true}, {Description: "b"}},
	}

	_, err := feature.Transition(indexOf(rec), "partial", feature.ActionComplete, feature.TransitionOptions{})
	require.ErrorIs(t, err, feature.ErrPrecondition)

	res, err := feature.Transition(indexOf(rec), "partial", feature.ActionComplete, feature.TransitionOptions{Force: true})
	require.NoError(t, err)
	require.Equal(t, feature.StatusDone, res.Record.Status)
	require.False(t, res.Record.Completed.IsZero())
	require.Equal(t, feature.OpArchive, res.Instructions[0].Op)
}

func TestTransitionCompleteOnlyFromActive(t *testing.T) {
	t.Parallel()

	idx := indexOf(feature.Record{ID: "ready-one", Status: feature.StatusReady})

	_, err := feature.Transition(idx, "ready-one", feature.ActionComplete, feature.TransitionOptions{})
	require.ErrorIs(t, err, feature.ErrIllegalTransition)
}

func TestTransitionIllegalEdges(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name   string
		status feature.Status
		action feature.Action
	}{
		{"activate from backlog", feature.StatusBacklog, feature.ActionActivate},
		{"promote from ready", feature.StatusReady, feature.ActionPromote},
		{"block when not active", feature.StatusReady, feature.ActionBlock},
		{"unblock when not blocked", feature.StatusActive, feature.ActionUnblock},
		{"deactivate from blocked", feature.StatusBlocked, feature.ActionDeactivate},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			idx := indexOf(feature.Record{ID: "f", Status: tt.status})

			_, err := feature.Transition(idx, "f", tt.action, feature.TransitionOptions{Reason: "r"})
			require.ErrorIs(t, err, feature.ErrIllegalTransition)
		})
	}
}

func TestTransitionBlockRequiresReason(t *testing.T) {
	t.Parallel()

	idx := indexOf(feature.Record{ID: "f", Status: feature.StatusActive})

	_, err := feature.Transition(idx, "f", feature.ActionBlock, feature.TransitionOptions{})
	require.ErrorIs(t, err, feature.ErrReasonRequired)

	res, err := feature.Transition(idx, "f", feature.ActionBlock, feature.TransitionOptions{Reason: "waiting on API keys"})
	require.NoError(t, err)
	require.Equal(t, "waiting on API keys", res.Record.BlockedReason)
}

func TestTransitionUnblockClearsReasonAndGuards(t *testing.T) {
	t.Parallel()

	idx := indexOf(
		feature.Record{ID: "f", Status: feature.StatusBlocked, BlockedReason: "deps"},
		feature.Record{ID: "g", Status: feature.StatusActive},
	)

	_, err := feature.Transition(idx, "f", feature.ActionUnblock, feature.TransitionOptions{})
	require.ErrorIs(t, err, feature.ErrConflict)

	res, err := feature.Transition(indexOf(idx.Records["f"]), "f", feature.ActionUnblock, feature.TransitionOptions{})
	require.NoError(t, err)
	require.Equal(t, feature.StatusActive, res.Record.Status)
	require.Empty(t, res.Record.BlockedReason)
}

func TestTransitionSessionAndStartedStamps(t *testing.T) {
	t.Parallel()

	day1 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)

	idx := indexOf(feature.Record{ID: "f", Status: feature.StatusReady})

	res, err := feature.Transition(idx, "f", feature.ActionActivate, feature.TransitionOptions{Now: day1})
	require.NoError(t, err)
	require.Equal(t, day1, res.Record.Started)
	require.Equal(t, 1, res.Record.Session)

	res, err = feature.Transition(res.Index, "f", feature.ActionDeactivate, feature.TransitionOptions{})
	require.NoError(t, err)

	res, err = feature.Transition(res.Index, "f", feature.ActionActivate, feature.TransitionOptions{Now: day2})
	require.NoError(t, err)
	require.Equal(t, day1, res.Record.Started, "started date is stamped once")
	require.Equal(t, 2, res.Record.Session)
}

func TestTransitionUnknownRecord(t *testing.T) {
	t.Parallel()

	_, err := feature.Transition(indexOf(), "ghost", feature.ActionActivate, feature.TransitionOptions{})
	require.ErrorIs(t, err, feature.ErrNotFound)
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	idx := indexOf(feature.Record{ID: "f", Status: feature.StatusReady})
	before := indexOf(feature.Record{ID: "f", Status: feature.StatusReady})

	_, err := feature.Transition(idx, "f", feature.ActionActivate, feature.TransitionOptions{})
	require.NoError(t, err)

	if diff := cmp.Diff(before, idx); diff != "" {
		t.Errorf("input index mutated (-want +got):\n%s", diff)
	}
}

// The single-active invariant holds at every step of any sequence of valid
// transitions.
func TestSingleActiveInvariantOverSequence(t *testing.T) {
	t.Parallel()

	idx := indexOf(
		feature.Record{ID: "a", Status: feature.StatusReady},
		feature.Record{ID: "b", Status: feature.StatusReady},
		feature.Record{ID: "c", Status: feature.StatusBacklog},
	)

	steps := []struct {
		id     string
		action feature.Action
		opts   feature.TransitionOptions
	}{
		{"a", feature.ActionActivate, feature.TransitionOptions{}},
		{"a", feature.ActionBlock, feature.TransitionOptions{Reason: "blocked"}},
		{"a", feature.ActionUnblock, feature.TransitionOptions{}},
		{"a", feature.ActionDeactivate, feature.TransitionOptions{}},
		{"c", feature.ActionPromote, feature.TransitionOptions{}},
		{"b", feature.ActionActivate, feature.TransitionOptions{}},
		{"b", feature.ActionComplete, feature.TransitionOptions{Force: true}},
		{"c", feature.ActionActivate, feature.TransitionOptions{}},
	}

	for _, step := range steps {
		res, err := feature.Transition(idx, step.id, step.action, step.opts)
		if err != nil {
			t.Fatalf("%s %s: %v", step.action, step.id, err)
		}

		idx = res.Index

		if n := countActive(idx); n > 1 {
			t.Fatalf("after %s %s: %d active records", step.action, step.id, n)
		}
	}
}

func TestTransitionRejectsAmbiguousID(t *testing.T) {
	t.Parallel()

	idx := feature.Index{Records: map[string]feature.Record{
		"auth#ready":   {ID: "auth", Status: feature.StatusReady},
		"auth#backlog": {ID: "auth", Status: feature.StatusBacklog},
	}}

	_, err := feature.Transition(idx, "auth", feature.ActionActivate, feature.TransitionOptions{})
	if !errors.Is(err, feature.ErrAmbiguousID) {
		t.Fatalf("err=%v, want ErrAmbiguousID", err)
	}
}
