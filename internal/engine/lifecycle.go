package engine

import (
	"fmt"
	"strings"

	"github.com/papapumpkin/closeboard/internal/board"
)

// NewTask is the input for CreateTask.
type NewTask struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DependsOn   []string       `json:"depends_on"`
	Duration    int            `json:"duration"`
	Priority    board.Priority `json:"priority"`
}

// Details holds the fields UpdateDetails may change. Nil fields are left
// alone.
type Details struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Priority    *board.Priority `json:"priority,omitempty"`
	Progress    *int            `json:"progress,omitempty"`
}

// CreateTask adds a task to the todo column of a copy of b and schedules
// it. Every dependency must name an existing task; repeated ids collapse.
// newID supplies the task id.
func CreateTask(b *board.Board, nt NewTask, base board.Date, newID func() string) (*board.Board, board.Task, error) {
	if strings.TrimSpace(nt.Title) == "" {
		return nil, board.Task{}, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if nt.Duration < 1 {
		return nil, board.Task{}, fmt.Errorf("%w: duration %d, must be at least 1", ErrInvalidTask, nt.Duration)
	}
	todo, err := closingColumn(b, board.ColumnTodo)
	if err != nil {
		return nil, board.Task{}, err
	}

	var deps []string
	seen := make(map[string]bool)
	for _, id := range nt.DependsOn {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := b.Task(id); !ok {
			return nil, board.Task{}, fmt.Errorf("%w: %s", ErrUnknownDependency, id)
		}
		deps = append(deps, id)
	}

	id := newID()
	if _, exists := b.Task(id); exists || id == "" {
		return nil, board.Task{}, fmt.Errorf("%w: id %q unavailable", ErrInvalidTask, id)
	}

	task := board.Task{
		ID:          id,
		Title:       nt.Title,
		Description: nt.Description,
		DependsOn:   deps,
		Duration:    nt.Duration,
		Priority:    nt.Priority,
	}
	sch, err := ComputeSchedule(b, task, base)
	if err != nil {
		return nil, board.Task{}, err
	}
	applySchedule(&task, sch)

	next := b.Clone()
	next.AppendTask(todo.ID, task)
	created, _ := next.Task(id)
	return next, created, nil
}

// DeleteTask removes the task from a copy of b, strips its id from every
// other task's dependencies and reschedules the tasks that depended on it.
func DeleteTask(b *board.Board, id string, base board.Date) (*board.Board, error) {
	if _, ok := b.Task(id); !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	var dependents []string
	for _, t := range b.Dependents(id) {
		dependents = append(dependents, t.ID)
	}

	next := b.Clone()
	next.RemoveTask(id)
	for ci := range next.Columns {
		for ti := range next.Columns[ci].Tasks {
			t := &next.Columns[ci].Tasks[ti]
			t.DependsOn = without(t.DependsOn, id)
		}
	}
	if err := rescheduleFrom(next, dependents, base); err != nil {
		return nil, err
	}
	return next, nil
}

// UpdateDetails changes display fields of a task on a copy of b. Dates and
// dependencies are never touched.
func UpdateDetails(b *board.Board, id string, d Details) (*board.Board, error) {
	if _, ok := b.Task(id); !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if d.Title != nil && strings.TrimSpace(*d.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if d.Progress != nil && (*d.Progress < 0 || *d.Progress > 100) {
		return nil, fmt.Errorf("%w: progress %d, must be 0-100", ErrInvalidTask, *d.Progress)
	}

	next := b.Clone()
	ref := next.TaskRef(id)
	if d.Title != nil {
		ref.Title = *d.Title
	}
	if d.Description != nil {
		ref.Description = *d.Description
	}
	if d.Priority != nil {
		ref.Priority = *d.Priority
	}
	if d.Progress != nil {
		ref.Progress = *d.Progress
	}
	return next, nil
}

func without(ids []string, drop string) []string {
	if len(ids) == 0 {
		return ids
	}
	out := ids[:0:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
