package engine

import (
	"fmt"
	"time"

	"github.com/papapumpkin/closeboard/internal/board"
)

// Policy tunes the transition guard.
type Policy struct {
	// RequireStartedDependencies also gates entry into the in-progress
	// column: every dependency must at least be in progress. Off by
	// default, letting work start in parallel with unfinished prerequisites.
	RequireStartedDependencies bool `mapstructure:"require_started_dependencies"`
}

// Decision is the guard's answer for one proposed move.
type Decision struct {
	CanMove       bool         `json:"can_move"`
	BlockingTasks []board.Task `json:"blocking_tasks"`
}

// BlockingDependencies returns the direct dependencies of task that are not
// in the done column, in DependsOn order. These are what keeps task out of
// done. Dangling dependency ids are ignored.
func BlockingDependencies(b *board.Board, task board.Task) []board.Task {
	var blocking []board.Task
	for _, dep := range b.Dependencies(task) {
		if ct, _ := b.ColumnTypeOf(dep.ID); ct != board.ColumnDone {
			blocking = append(blocking, dep)
		}
	}
	return blocking
}

// unstartedDependencies returns the direct dependencies of task sitting in
// neither the in-progress nor the done column.
func unstartedDependencies(b *board.Board, task board.Task) []board.Task {
	var blocking []board.Task
	for _, dep := range b.Dependencies(task) {
		switch ct, _ := b.ColumnTypeOf(dep.ID); ct {
		case board.ColumnInProgress, board.ColumnDone:
		default:
			blocking = append(blocking, dep)
		}
	}
	return blocking
}

// CanMoveToColumn decides whether the task may move into the target column.
// Only a done target is gated by default: every dependency must already be
// done. Generic and todo targets are always allowed.
func CanMoveToColumn(b *board.Board, taskID, targetColumnID string, policy Policy) (Decision, error) {
	task, ok := b.Task(taskID)
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	target, ok := b.Column(targetColumnID)
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s", ErrColumnNotFound, targetColumnID)
	}

	var blocking []board.Task
	switch target.Type {
	case board.ColumnDone:
		blocking = BlockingDependencies(b, task)
	case board.ColumnInProgress:
		if policy.RequireStartedDependencies {
			blocking = unstartedDependencies(b, task)
		}
	case board.ColumnTodo, board.ColumnGeneric:
	}
	return Decision{CanMove: len(blocking) == 0, BlockingTasks: blocking}, nil
}

// MoveTask applies a column move the guard allows and returns the new
// board. Entering in-progress stamps ActualStartDate and entering done
// stamps ActualEndDate, each only when unset and using the calendar day of
// now. A new start stamp and every done move reschedule the task's
// dependents. A refused move
// returns a *BlockedError and no board.
func MoveTask(b *board.Board, taskID, targetColumnID string, now time.Time, base board.Date, policy Policy) (*board.Board, Decision, error) {
	decision, err := CanMoveToColumn(b, taskID, targetColumnID, policy)
	if err != nil {
		return nil, Decision{}, err
	}
	if !decision.CanMove {
		return nil, decision, &BlockedError{
			TaskID:        taskID,
			TargetColumn:  targetColumnID,
			BlockingTasks: decision.BlockingTasks,
		}
	}

	next := b.Clone()
	current, _ := next.Task(taskID)
	if current.ColumnID != targetColumnID {
		task, _ := next.RemoveTask(taskID)
		next.AppendTask(targetColumnID, task)
	}

	target, _ := next.Column(targetColumnID)
	ref := next.TaskRef(taskID)
	today := board.DateOf(now)
	propagate := false
	switch target.Type {
	case board.ColumnInProgress:
		if ref.ActualStartDate == nil {
			ref.ActualStartDate = today.Ptr()
			propagate = true
		}
	case board.ColumnDone:
		if ref.ActualEndDate == nil {
			ref.ActualEndDate = today.Ptr()
		}
		propagate = true
	case board.ColumnTodo, board.ColumnGeneric:
	}

	if propagate {
		next, err = RecalculateDates(next, taskID, base)
		if err != nil {
			return nil, Decision{}, err
		}
	}
	return next, decision, nil
}
