package board

import (
	"errors"
	"fmt"
)

// Sentinel errors for structural board validation.
var (
	// ErrMissingField indicates a required field (id, title) is empty.
	ErrMissingField = errors.New("required field missing")
	// ErrDuplicateID indicates two columns or two tasks share an ID.
	ErrDuplicateID = errors.New("duplicate ID")
	// ErrClosingColumns indicates the board does not have exactly one column
	// of each closing type.
	ErrClosingColumns = errors.New("closing column layout")
	// ErrOutOfRange indicates a numeric field is outside its valid range.
	ErrOutOfRange = errors.New("value out of range")
)

// ValidationCategory classifies a validation error for programmatic handling.
type ValidationCategory string

const (
	ValCatMissingField   ValidationCategory = "missing_field"
	ValCatDuplicateID    ValidationCategory = "duplicate_id"
	ValCatClosingColumns ValidationCategory = "closing_columns"
	ValCatOutOfRange     ValidationCategory = "out_of_range"
)

// ValidationError records a validation problem with the location it was
// found at.
type ValidationError struct {
	Category ValidationCategory
	ColumnID string
	TaskID   string
	Field    string
	Err      error
}

// Error returns a human-readable string including column and task context.
func (e *ValidationError) Error() string {
	switch {
	case e.TaskID != "":
		return "task " + e.TaskID + ": " + e.Err.Error()
	case e.ColumnID != "":
		return "column " + e.ColumnID + ": " + e.Err.Error()
	}
	return "board: " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks structural invariants: required fields, unique column and
// task IDs, exactly one todo, in-progress and done column, positive
// durations and progress within 0–100. Dependency cycles are checked by the
// engine. All problems found are returned.
func (b *Board) Validate() []error {
	var errs []error
	if b.ID == "" {
		errs = append(errs, &ValidationError{Category: ValCatMissingField, Field: "id",
			Err: fmt.Errorf("%w: board id", ErrMissingField)})
	}

	closing := map[ColumnType]int{}
	columnIDs := map[string]bool{}
	taskIDs := map[string]string{}
	for _, col := range b.Columns {
		if col.ID == "" {
			errs = append(errs, &ValidationError{Category: ValCatMissingField, Field: "id",
				Err: fmt.Errorf("%w: column id (title %q)", ErrMissingField, col.Title)})
		} else if columnIDs[col.ID] {
			errs = append(errs, &ValidationError{Category: ValCatDuplicateID, ColumnID: col.ID,
				Err: fmt.Errorf("%w: column %q", ErrDuplicateID, col.ID)})
		}
		columnIDs[col.ID] = true
		if col.Type != ColumnGeneric {
			closing[col.Type]++
		}

		for _, t := range col.Tasks {
			errs = append(errs, validateTask(col.ID, t)...)
			if t.ID == "" {
				continue
			}
			if prev, dup := taskIDs[t.ID]; dup {
				errs = append(errs, &ValidationError{Category: ValCatDuplicateID, ColumnID: col.ID, TaskID: t.ID,
					Err: fmt.Errorf("%w: task also in column %q", ErrDuplicateID, prev)})
				continue
			}
			taskIDs[t.ID] = col.ID
		}
	}

	for _, ct := range []ColumnType{ColumnTodo, ColumnInProgress, ColumnDone} {
		if n := closing[ct]; n != 1 {
			errs = append(errs, &ValidationError{Category: ValCatClosingColumns, Field: "type",
				Err: fmt.Errorf("%w: want exactly one %q column, found %d", ErrClosingColumns, ct, n)})
		}
	}
	return errs
}

func validateTask(columnID string, t Task) []error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, &ValidationError{Category: ValCatMissingField, ColumnID: columnID, Field: "id",
			Err: fmt.Errorf("%w: task id (title %q)", ErrMissingField, t.Title)})
	}
	if t.Title == "" {
		errs = append(errs, &ValidationError{Category: ValCatMissingField, ColumnID: columnID, TaskID: t.ID, Field: "title",
			Err: fmt.Errorf("%w: title", ErrMissingField)})
	}
	if t.Duration < 1 {
		errs = append(errs, &ValidationError{Category: ValCatOutOfRange, ColumnID: columnID, TaskID: t.ID, Field: "duration",
			Err: fmt.Errorf("%w: duration %d, must be at least 1", ErrOutOfRange, t.Duration)})
	}
	if t.Progress < 0 || t.Progress > 100 {
		errs = append(errs, &ValidationError{Category: ValCatOutOfRange, ColumnID: columnID, TaskID: t.ID, Field: "progress",
			Err: fmt.Errorf("%w: progress %d, must be 0-100", ErrOutOfRange, t.Progress)})
	}
	return errs
}
