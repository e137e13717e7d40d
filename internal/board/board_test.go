package board

import (
	"errors"
	"testing"
)

func sampleBoard() *Board {
	start := MustParseDate("2024-01-01")
	return &Board{
		ID:            "close-2024-01",
		Name:          "January close",
		BaseStartDate: start,
		Columns: []Column{
			{ID: "todo", Title: "To do", Type: ColumnTodo, Tasks: []Task{
				{ID: "b", Title: "Reconcile bank", Duration: 2, DependsOn: []string{"a", "ghost"}},
			}},
			{ID: "doing", Title: "In progress", Type: ColumnInProgress, Tasks: []Task{
				{ID: "a", Title: "Collect statements", Duration: 3, StartDate: start.Ptr()},
			}},
			{ID: "done", Title: "Done", Type: ColumnDone},
			{ID: "parking", Title: "Parking lot"},
		},
	}
}

func TestTasksSetsColumnID(t *testing.T) {
	t.Parallel()
	b := sampleBoard()
	tasks := b.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("Tasks() len = %d, want 2", len(tasks))
	}
	want := map[string]string{"a": "doing", "b": "todo"}
	for _, task := range tasks {
		if task.ColumnID != want[task.ID] {
			t.Errorf("task %s ColumnID = %q, want %q", task.ID, task.ColumnID, want[task.ID])
		}
	}
}

func TestDependenciesDropsDangling(t *testing.T) {
	t.Parallel()
	b := sampleBoard()
	task, ok := b.Task("b")
	if !ok {
		t.Fatal("Task(b) not found")
	}
	deps := b.Dependencies(task)
	if len(deps) != 1 || deps[0].ID != "a" {
		t.Errorf("Dependencies(b) = %v, want [a]", deps)
	}
}

func TestDependents(t *testing.T) {
	t.Parallel()
	b := sampleBoard()
	got := b.Dependents("a")
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("Dependents(a) = %v, want [b]", got)
	}
	if got := b.Dependents("b"); len(got) != 0 {
		t.Errorf("Dependents(b) = %v, want none", got)
	}
}

func TestCloneSharesNothing(t *testing.T) {
	t.Parallel()
	b := sampleBoard()
	c := b.Clone()

	ref := c.TaskRef("a")
	moved := ref.StartDate.AddDays(5)
	*ref.StartDate = moved
	c.TaskRef("b").DependsOn[0] = "changed"
	c.Columns[0].Title = "renamed"

	orig, _ := b.Task("a")
	if !orig.StartDate.Equal(MustParseDate("2024-01-01")) {
		t.Errorf("original start date changed to %s", orig.StartDate)
	}
	origB, _ := b.Task("b")
	if origB.DependsOn[0] != "a" {
		t.Errorf("original DependsOn changed to %v", origB.DependsOn)
	}
	if b.Columns[0].Title != "To do" {
		t.Errorf("original column title changed to %q", b.Columns[0].Title)
	}
}

func TestTaskReturnsCopy(t *testing.T) {
	t.Parallel()
	b := sampleBoard()
	task, _ := b.Task("a")
	task.Title = "mutated"
	*task.StartDate = task.StartDate.AddDays(1)

	again, _ := b.Task("a")
	if again.Title != "Collect statements" {
		t.Errorf("Title = %q, stored task was modified", again.Title)
	}
	if !again.StartDate.Equal(MustParseDate("2024-01-01")) {
		t.Errorf("StartDate = %s, stored task was modified", again.StartDate)
	}
}

func TestRemoveAndAppendTask(t *testing.T) {
	t.Parallel()
	b := sampleBoard()
	task, ok := b.RemoveTask("a")
	if !ok {
		t.Fatal("RemoveTask(a) reported missing")
	}
	if _, ok := b.Task("a"); ok {
		t.Error("task a still present after removal")
	}
	if !b.AppendTask("done", task) {
		t.Fatal("AppendTask(done) failed")
	}
	if ct, _ := b.ColumnTypeOf("a"); ct != ColumnDone {
		t.Errorf("ColumnTypeOf(a) = %v, want done", ct)
	}
	if b.AppendTask("nope", task) {
		t.Error("AppendTask to unknown column succeeded")
	}
	if b.TaskCount() != 2 {
		t.Errorf("TaskCount() = %d, want 2", b.TaskCount())
	}
}

func TestColumnOfType(t *testing.T) {
	t.Parallel()
	b := sampleBoard()
	tests := []struct {
		ct   ColumnType
		want string
	}{
		{ColumnTodo, "todo"},
		{ColumnInProgress, "doing"},
		{ColumnDone, "done"},
		{ColumnGeneric, "parking"},
	}
	for _, tt := range tests {
		col, ok := b.ColumnOfType(tt.ct)
		if !ok || col.ID != tt.want {
			t.Errorf("ColumnOfType(%v) = %v, want %s", tt.ct, col, tt.want)
		}
	}
}

func TestParseColumnType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    ColumnType
		wantErr bool
	}{
		{"", ColumnGeneric, false},
		{"generic", ColumnGeneric, false},
		{"todo", ColumnTodo, false},
		{"In-Progress", ColumnInProgress, false},
		{"in_progress", ColumnInProgress, false},
		{"done", ColumnDone, false},
		{"archived", ColumnGeneric, true},
	}
	for _, tt := range tests {
		got, err := ParseColumnType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColumnType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColumnType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid board", func(t *testing.T) {
		t.Parallel()
		if errs := sampleBoard().Validate(); len(errs) != 0 {
			t.Errorf("Validate() = %v, want none", errs)
		}
	})

	t.Run("missing done column", func(t *testing.T) {
		t.Parallel()
		b := sampleBoard()
		b.Columns[2].Type = ColumnGeneric
		errs := b.Validate()
		if len(errs) != 1 || !errors.Is(errs[0], ErrClosingColumns) {
			t.Fatalf("Validate() = %v, want one ErrClosingColumns", errs)
		}
	})

	t.Run("duplicate task across columns", func(t *testing.T) {
		t.Parallel()
		b := sampleBoard()
		b.Columns[2].Tasks = []Task{{ID: "a", Title: "dup", Duration: 1}}
		errs := b.Validate()
		if len(errs) != 1 || !errors.Is(errs[0], ErrDuplicateID) {
			t.Fatalf("Validate() = %v, want one ErrDuplicateID", errs)
		}
		var ve *ValidationError
		if !errors.As(errs[0], &ve) || ve.TaskID != "a" || ve.Category != ValCatDuplicateID {
			t.Errorf("ValidationError = %+v", ve)
		}
	})

	t.Run("bad ranges", func(t *testing.T) {
		t.Parallel()
		b := sampleBoard()
		b.Columns[0].Tasks[0].Duration = 0
		b.Columns[0].Tasks[0].Progress = 120
		errs := b.Validate()
		if len(errs) != 2 {
			t.Fatalf("Validate() = %v, want 2 errors", errs)
		}
		for _, err := range errs {
			if !errors.Is(err, ErrOutOfRange) {
				t.Errorf("error %v, want ErrOutOfRange", err)
			}
		}
	})
}
