package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/closeboard/internal/board"
)

// testStore opens a temporary store and registers cleanup.
func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "closeboard.db")
	s, err := Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleBoard(id string) *board.Board {
	start := board.MustParseDate("2024-01-01")
	return &board.Board{
		ID:            id,
		Name:          "Close " + id,
		BaseStartDate: start,
		Columns: []board.Column{
			{ID: "todo", Title: "To do", Type: board.ColumnTodo, Tasks: []board.Task{
				{ID: "t1", Title: "Accruals", Duration: 2, StartDate: start.Ptr(), EndDate: start.AddDays(1).Ptr()},
			}},
			{ID: "doing", Title: "Doing", Type: board.ColumnInProgress},
			{ID: "done", Title: "Done", Type: board.ColumnDone},
		},
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	var mode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	// Schema creation is idempotent.
	if _, err := s.db.Exec(schema); err != nil {
		t.Errorf("re-running schema: %v", err)
	}
}

func TestCreateGet(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	ctx := context.Background()

	in := sampleBoard("2024-01")
	created, err := s.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Version != 1 {
		t.Errorf("created version = %d, want 1", created.Version)
	}
	if in.Version != 0 {
		t.Error("Create modified its input")
	}

	got, err := s.Get(ctx, "2024-01")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(created, got); diff != "" {
		t.Errorf("Get differs from Create (-want +got):\n%s", diff)
	}

	if _, err := s.Create(ctx, in); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate Create err = %v, want ErrExists", err)
	}
	if _, err := s.Create(ctx, &board.Board{}); !errors.Is(err, board.ErrMissingField) {
		t.Errorf("Create without id err = %v, want ErrMissingField", err)
	}
	if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing err = %v, want ErrNotFound", err)
	}
}

func TestSaveVersioning(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	ctx := context.Background()

	b, err := s.Create(ctx, sampleBoard("b"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b.Name = "Renamed"
	saved, err := s.Save(ctx, b, b.Version)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Version != 2 {
		t.Errorf("saved version = %d, want 2", saved.Version)
	}

	// A writer holding version 1 is now stale.
	if _, err := s.Save(ctx, b, 1); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("stale Save err = %v, want ErrVersionConflict", err)
	}
	got, err := s.Get(ctx, "b")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Renamed" || got.Version != 2 {
		t.Errorf("stored board = %s v%d", got.Name, got.Version)
	}

	if _, err := s.Save(ctx, sampleBoard("ghost"), 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Save missing err = %v, want ErrNotFound", err)
	}
}

func TestSaveConcurrentWritersOneWins(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	ctx := context.Background()
	b, err := s.Create(ctx, sampleBoard("race"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Save(ctx, b, b.Version)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrVersionConflict):
				conflicts++
			default:
				t.Errorf("Save: %v", err)
			}
		}()
	}
	wg.Wait()
	if wins != 1 || conflicts != writers-1 {
		t.Errorf("wins=%d conflicts=%d, want 1 and %d", wins, conflicts, writers-1)
	}
}

func TestListDelete(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	ctx := context.Background()

	for _, id := range []string{"b", "a"} {
		if _, err := s.Create(ctx, sampleBoard(id)); err != nil {
			t.Fatalf("Create(%s): %v", id, err)
		}
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("List = %+v", list)
	}
	if list[0].Name != "Close a" || list[0].UpdatedAt.IsZero() {
		t.Errorf("summary = %+v", list[0])
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
	list, err = s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List after delete = %+v", list)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"2024-01-02T03:04:05Z", "2024-01-02 03:04:05"} {
		if _, err := parseTimestamp(in); err != nil {
			t.Errorf("parseTimestamp(%q): %v", in, err)
		}
	}
	if _, err := parseTimestamp("yesterday"); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}
