package feature

import (
	"fmt"
	"maps"
	"time"
)

// Action is a requested status transition.
type Action string

// Actions.
const (
	ActionPromote    Action = "promote"    // backlog -> ready
	ActionActivate   Action = "activate"   // ready -> active
	ActionDeactivate Action = "deactivate" // active -> ready
	ActionBlock      Action = "block"      // active -> blocked
	ActionUnblock    Action = "unblock"    // blocked -> active
	ActionComplete   Action = "complete"   // active -> done (terminal)
)

// TransitionOptions tunes a transition request.
type TransitionOptions struct {
	// Force allows completing a record whose tasks are not all done. The
	// caller explicitly acknowledges partial completion.
	Force bool

	// Reason is the blocked reason; required for block.
	Reason string

	// Now is the clock used for started/completed stamps. Zero means
	// time.Now.
	Now time.Time
}

// OpKind is a persistence operation the caller must execute.
type OpKind string

// Persistence operations. The engine never performs I/O; it emits these for
// the filesystem layer (Apply) to execute after validation.
const (
	OpRelocate OpKind = "relocate" // rewrite under the new status filename
	OpArchive  OpKind = "archive"  // move to the completed directory
)

// Instruction is one abstract persistence operation.
type Instruction struct {
	Op   OpKind
	ID   string
	From Status
	To   Status
}

// TransitionResult holds the outcome of a validated transition: the updated
// snapshot, the rewritten record, and the persistence instructions.
type TransitionResult struct {
	Index        Index
	Record       Record
	Instructions []Instruction

	// Forced records that the caller overrode the completion precondition,
	// so the apply step must not re-check it against the fresh scan.
	Forced bool
}

// transitions is the legal state machine. Guards (single-active,
// task-completion) are checked separately.
var transitions = map[Action]struct{ from, to Status }{
	ActionPromote:    {StatusBacklog, StatusReady},
	ActionActivate:   {StatusReady, StatusActive},
	ActionDeactivate: {StatusActive, StatusReady},
	ActionBlock:      {StatusActive, StatusBlocked},
	ActionUnblock:    {StatusBlocked, StatusActive},
	ActionComplete:   {StatusActive, StatusDone},
}

// Transition validates the requested action against the snapshot and, if
// legal, returns the updated index plus the persistence instructions. The
// input index is never mutated; on error nothing changes.
//
// Activation never displaces a running record implicitly: with another
// record active it fails with ErrConflict and the caller must deactivate
// first. Silent displacement would discard in-progress session state.
func Transition(idx Index, id string, action Action, opts TransitionOptions) (TransitionResult, error) {
	rec, err := idx.Lookup(id)
	if err != nil {
		return TransitionResult{}, err
	}

	edge, known := transitions[action]
	if !known {
		return TransitionResult{}, fmt.Errorf("%w: unknown action %q", ErrIllegalTransition, action)
	}

	if rec.Status != edge.from {
		return TransitionResult{}, fmt.Errorf("%w: %s requires %s, %s is %s",
			ErrIllegalTransition, action, edge.from, id, rec.Status)
	}

	if edge.to == StatusActive {
		if other, ok := idx.OtherActive(id); ok {
			return TransitionResult{}, fmt.Errorf("%w: %s (deactivate it first)", ErrConflict, other.ID)
		}
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	switch action {
	case ActionActivate, ActionUnblock:
		if rec.Started.IsZero() {
			rec.Started = now
		}

		rec.Session++
		rec.BlockedReason = ""

	case ActionBlock:
		if opts.Reason == "" {
			return TransitionResult{}, ErrReasonRequired
		}

		rec.BlockedReason = opts.Reason

	case ActionComplete:
		if !rec.TasksComplete() && !opts.Force {
			return TransitionResult{}, fmt.Errorf("%w: %d of %d done (use force to complete anyway)",
				ErrPrecondition, rec.CompletedTasks(), len(rec.Tasks))
		}

		rec.Completed = now
	}

	from := rec.Status
	rec.Status = edge.to

	op := OpRelocate
	if action == ActionComplete {
		op = OpArchive
	}

	next := Index{
		Records:    maps.Clone(idx.Records),
		Violations: idx.Violations,
		Warnings:   idx.Warnings,
	}
	next.Records[id] = rec

	return TransitionResult{
		Index:  next,
		Record: rec,
		Instructions: []Instruction{
			{Op: op, ID: id, From: from, To: edge.to},
		},
		Forced: opts.Force,
	}, nil
}
