package engine

import (
	"errors"
	"fmt"

	"github.com/papapumpkin/closeboard/internal/board"
	"github.com/papapumpkin/closeboard/internal/dag"
)

// HasCircularDependency reports whether making candidateID depend on
// proposedDepID would create a cycle, i.e. whether candidateID is already
// reachable from proposedDepID along existing dependency edges. A task
// depending on itself counts as a cycle. The board is not modified, and the
// search terminates even if the board already contains a cycle.
func HasCircularDependency(b *board.Board, candidateID, proposedDepID string) bool {
	if candidateID == proposedDepID {
		return true
	}
	g := buildGraph(b.Tasks())
	return g.HasPath(proposedDepID, candidateID)
}

// AvailableDependencies returns the tasks taskID could additionally depend
// on without creating a cycle, in board order. Tasks it already depends on
// are excluded.
func AvailableDependencies(b *board.Board, taskID string) ([]board.Task, error) {
	task, ok := b.Task(taskID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	tasks := b.Tasks()
	g := buildGraph(tasks)

	var out []board.Task
	for _, t := range tasks {
		if t.ID == taskID || task.DependsOnID(t.ID) {
			continue
		}
		if g.HasPath(t.ID, taskID) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// AddDependency returns a new board where taskID also depends on depID,
// with the dates of taskID and everything downstream of it recomputed.
// Returns ErrCircularDependency if the edge would close a cycle, and
// ErrBlockedTransition if taskID is done while depID is not.
func AddDependency(b *board.Board, taskID, depID string, base board.Date) (*board.Board, error) {
	task, ok := b.Task(taskID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if _, ok := b.Task(depID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDependency, depID)
	}
	if task.DependsOnID(depID) {
		return b.Clone(), nil
	}
	if err := buildGraph(b.Tasks()).AddEdge(taskID, depID); err != nil {
		if errors.Is(err, dag.ErrCycle) || errors.Is(err, dag.ErrSelfEdge) {
			return nil, fmt.Errorf("%w: %w", ErrCircularDependency, err)
		}
		return nil, err
	}
	if ct, _ := b.ColumnTypeOf(taskID); ct == board.ColumnDone {
		if dct, _ := b.ColumnTypeOf(depID); dct != board.ColumnDone {
			return nil, fmt.Errorf("%w: task %s is done but %s is not", ErrBlockedTransition, taskID, depID)
		}
	}

	next := b.Clone()
	ref := next.TaskRef(taskID)
	ref.DependsOn = append(ref.DependsOn, depID)
	if err := rescheduleFrom(next, []string{taskID}, base); err != nil {
		return nil, err
	}
	return next, nil
}
