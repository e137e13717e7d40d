// Package board defines the closing-board snapshot: ordered columns holding
// tasks that depend on one another, plus read-only graph lookups over it.
//
// A Board is plain data. Every operation that changes scheduling lives in
// package engine and returns a fresh snapshot built with Clone, so a Board
// handed to a caller is never modified behind its back.
package board

import (
	"fmt"
	"strings"
)

// ColumnType gives workflow meaning to an otherwise generic column.
type ColumnType int

const (
	ColumnGeneric    ColumnType = iota // no workflow role
	ColumnTodo                         // tasks not yet started
	ColumnInProgress                   // tasks being worked on
	ColumnDone                         // finished tasks
)

var columnTypeNames = map[ColumnType]string{
	ColumnGeneric:    "",
	ColumnTodo:       "todo",
	ColumnInProgress: "in-progress",
	ColumnDone:       "done",
}

// String returns the wire name of the column type ("" for generic).
func (c ColumnType) String() string {
	if s, ok := columnTypeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("ColumnType(%d)", int(c))
}

// ParseColumnType maps a wire name to a ColumnType. The empty string and
// "generic" both denote ColumnGeneric.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "generic":
		return ColumnGeneric, nil
	case "todo":
		return ColumnTodo, nil
	case "in-progress", "in_progress", "inprogress":
		return ColumnInProgress, nil
	case "done":
		return ColumnDone, nil
	}
	return ColumnGeneric, fmt.Errorf("unknown column type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c ColumnType) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ColumnType) UnmarshalText(text []byte) error {
	ct, err := ParseColumnType(string(text))
	if err != nil {
		return err
	}
	*c = ct
	return nil
}

// Priority is display-only.
type Priority int

const (
	PriorityMedium Priority = iota
	PriorityLow
	PriorityHigh
)

// String returns "low", "medium" or "high".
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	default:
		return "medium"
	}
}

// ParsePriority maps a wire name to a Priority; "" is medium.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "medium":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	case "high":
		return PriorityHigh, nil
	}
	return PriorityMedium, fmt.Errorf("unknown priority %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	pr, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = pr
	return nil
}

// Task is a schedulable card.
type Task struct {
	ID          string   `toml:"id" json:"id"`
	Title       string   `toml:"title" json:"title"`
	Description string   `toml:"description,omitempty" json:"description,omitempty"`
	ColumnID    string   `toml:"-" json:"column_id"`
	DependsOn   []string `toml:"depends_on,omitempty" json:"depends_on,omitempty"`
	Duration    int      `toml:"duration" json:"duration"` // calendar days
	Progress    int      `toml:"progress,omitempty" json:"progress"`
	Priority    Priority `toml:"priority,omitempty" json:"priority"`

	// Derived by the engine.
	StartDate *Date `toml:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate   *Date `toml:"end_date,omitempty" json:"end_date,omitempty"`

	// Stamped on column moves; authoritative for dependents.
	ActualStartDate *Date `toml:"actual_start_date,omitempty" json:"actual_start_date,omitempty"`
	ActualEndDate   *Date `toml:"actual_end_date,omitempty" json:"actual_end_date,omitempty"`
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	c := t
	if t.DependsOn != nil {
		c.DependsOn = append([]string(nil), t.DependsOn...)
	}
	c.StartDate = cloneDate(t.StartDate)
	c.EndDate = cloneDate(t.EndDate)
	c.ActualStartDate = cloneDate(t.ActualStartDate)
	c.ActualEndDate = cloneDate(t.ActualEndDate)
	return c
}

// DependsOnID reports whether t lists id among its dependencies.
func (t Task) DependsOnID(id string) bool {
	for _, dep := range t.DependsOn {
		if dep == id {
			return true
		}
	}
	return false
}

// Column is an ordered bucket of tasks.
type Column struct {
	ID    string     `toml:"id" json:"id"`
	Title string     `toml:"title" json:"title"`
	Type  ColumnType `toml:"type,omitempty" json:"type"`
	Tasks []Task     `toml:"tasks,omitempty" json:"tasks"`
}

// Board is one closing period: ordered columns whose tasks form a single
// dependency graph. Task IDs are unique across the whole board.
type Board struct {
	ID            string   `toml:"id" json:"id"`
	Name          string   `toml:"name" json:"name"`
	Version       int64    `toml:"version" json:"version"`
	BaseStartDate Date     `toml:"base_start_date" json:"base_start_date"`
	Columns       []Column `toml:"columns" json:"columns"`
}

// Clone returns a deep copy of b sharing no memory with it.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	c := *b
	c.Columns = make([]Column, len(b.Columns))
	for i, col := range b.Columns {
		nc := col
		if col.Tasks != nil {
			nc.Tasks = make([]Task, len(col.Tasks))
			for j, t := range col.Tasks {
				nc.Tasks[j] = t.Clone()
			}
		}
		c.Columns[i] = nc
	}
	return &c
}

// Tasks returns copies of every task on the board in column order, with
// ColumnID set from column membership.
func (b *Board) Tasks() []Task {
	var out []Task
	for _, col := range b.Columns {
		for _, t := range col.Tasks {
			c := t.Clone()
			c.ColumnID = col.ID
			out = append(out, c)
		}
	}
	return out
}

// Task returns a copy of the task with the given id, ColumnID filled in.
func (b *Board) Task(id string) (Task, bool) {
	ci, ti, ok := b.locate(id)
	if !ok {
		return Task{}, false
	}
	t := b.Columns[ci].Tasks[ti].Clone()
	t.ColumnID = b.Columns[ci].ID
	return t, true
}

// TaskRef returns a pointer to the stored task with the given id, or nil.
// Writes through the pointer modify b; callers holding a snapshot they do
// not own must Clone first.
func (b *Board) TaskRef(id string) *Task {
	ci, ti, ok := b.locate(id)
	if !ok {
		return nil
	}
	return &b.Columns[ci].Tasks[ti]
}

func (b *Board) locate(id string) (int, int, bool) {
	for ci := range b.Columns {
		for ti := range b.Columns[ci].Tasks {
			if b.Columns[ci].Tasks[ti].ID == id {
				return ci, ti, true
			}
		}
	}
	return 0, 0, false
}

// Dependencies resolves t.DependsOn to task copies. IDs that no longer
// resolve are dropped; a dependency on a deleted task does not constrain
// anything.
func (b *Board) Dependencies(t Task) []Task {
	var deps []Task
	for _, id := range t.DependsOn {
		if dep, ok := b.Task(id); ok {
			deps = append(deps, dep)
		}
	}
	return deps
}

// Dependents returns copies of the tasks that list id directly in their
// DependsOn, in board order.
func (b *Board) Dependents(id string) []Task {
	var out []Task
	for _, t := range b.Tasks() {
		if t.DependsOnID(id) {
			out = append(out, t)
		}
	}
	return out
}

// Column returns the column with the given id.
func (b *Board) Column(id string) (*Column, bool) {
	for i := range b.Columns {
		if b.Columns[i].ID == id {
			return &b.Columns[i], true
		}
	}
	return nil, false
}

// ColumnOfType returns the first column tagged with ct.
func (b *Board) ColumnOfType(ct ColumnType) (*Column, bool) {
	for i := range b.Columns {
		if b.Columns[i].Type == ct {
			return &b.Columns[i], true
		}
	}
	return nil, false
}

// ColumnTypeOf returns the type of the column currently holding task id.
func (b *Board) ColumnTypeOf(id string) (ColumnType, bool) {
	ci, _, ok := b.locate(id)
	if !ok {
		return ColumnGeneric, false
	}
	return b.Columns[ci].Type, true
}

// RemoveTask detaches the task with the given id from its column and
// returns it. It reports false if no such task exists.
func (b *Board) RemoveTask(id string) (Task, bool) {
	ci, ti, ok := b.locate(id)
	if !ok {
		return Task{}, false
	}
	col := &b.Columns[ci]
	t := col.Tasks[ti]
	col.Tasks = append(col.Tasks[:ti:ti], col.Tasks[ti+1:]...)
	return t, true
}

// AppendTask adds t to the end of the column with the given id.
func (b *Board) AppendTask(columnID string, t Task) bool {
	col, ok := b.Column(columnID)
	if !ok {
		return false
	}
	t.ColumnID = col.ID
	col.Tasks = append(col.Tasks, t)
	return true
}

// TaskCount returns the number of tasks on the board.
func (b *Board) TaskCount() int {
	n := 0
	for _, col := range b.Columns {
		n += len(col.Tasks)
	}
	return n
}
