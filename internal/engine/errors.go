package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/papapumpkin/closeboard/internal/board"
)

// Sentinel errors returned by engine operations.
var (
	// ErrTaskNotFound indicates an operation named a task id not on the board.
	ErrTaskNotFound = errors.New("task not found")
	// ErrColumnNotFound indicates an operation named a column id not on the board.
	ErrColumnNotFound = errors.New("column not found")
	// ErrMalformedGraph indicates a traversal ran into a pre-existing
	// dependency cycle and aborted.
	ErrMalformedGraph = errors.New("malformed dependency graph")
	// ErrCircularDependency indicates a proposed dependency would close a cycle.
	ErrCircularDependency = errors.New("circular dependency")
	// ErrUnknownDependency indicates a new dependency names a task that does
	// not exist. Dependencies that dangle after a deletion are not errors.
	ErrUnknownDependency = errors.New("unknown dependency")
	// ErrBlockedTransition indicates a column move was refused by the guard.
	ErrBlockedTransition = errors.New("blocked transition")
	// ErrInvalidTask indicates task input failed validation.
	ErrInvalidTask = errors.New("invalid task")
	// ErrNoClosingColumn indicates the board lacks a required todo,
	// in-progress or done column.
	ErrNoClosingColumn = errors.New("missing closing column")
)

// BlockedError reports a refused column move together with the tasks that
// caused the refusal.
type BlockedError struct {
	TaskID        string
	TargetColumn  string
	BlockingTasks []board.Task
}

// Error lists the blocking task ids.
func (e *BlockedError) Error() string {
	ids := make([]string, len(e.BlockingTasks))
	for i, t := range e.BlockingTasks {
		ids[i] = t.ID
	}
	return fmt.Sprintf("%s: task %s cannot move to %s, waiting on %s",
		ErrBlockedTransition, e.TaskID, e.TargetColumn, strings.Join(ids, ", "))
}

// Unwrap returns ErrBlockedTransition for use with errors.Is.
func (e *BlockedError) Unwrap() error {
	return ErrBlockedTransition
}
