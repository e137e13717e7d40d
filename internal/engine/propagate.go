package engine

import (
	"fmt"

	"github.com/papapumpkin/closeboard/internal/board"
)

// RecalculateDates returns a new board in which every task downstream of
// completedID (its direct and transitive dependents) has its planned dates
// recomputed, dependencies before dependents. Tasks that are not downstream
// keep their dates, and completedID itself is not touched. The input board
// is not modified, and calling it again on the result changes nothing.
func RecalculateDates(b *board.Board, completedID string, base board.Date) (*board.Board, error) {
	if _, ok := b.Task(completedID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, completedID)
	}
	next := b.Clone()
	g := buildGraph(next.Tasks())
	if err := recompute(next, g.Descendants(completedID), base); err != nil {
		return nil, err
	}
	return next, nil
}

// Reschedule returns a new board with the planned dates of every task
// recomputed from base.
func Reschedule(b *board.Board, base board.Date) (*board.Board, error) {
	next := b.Clone()
	g := buildGraph(next.Tasks())
	if err := recompute(next, g.Nodes(), base); err != nil {
		return nil, err
	}
	return next, nil
}

// rescheduleFrom recomputes roots and all their dependents in place on a
// board the caller owns.
func rescheduleFrom(b *board.Board, roots []string, base board.Date) error {
	g := buildGraph(b.Tasks())
	seen := make(map[string]bool)
	var ids []string
	for _, root := range roots {
		for _, id := range append([]string{root}, g.Descendants(root)...) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return recompute(b, ids, base)
}

// recompute orders ids topologically and rewrites their planned dates in
// that order on b, which must be owned by the caller.
func recompute(b *board.Board, ids []string, base board.Date) error {
	if len(ids) == 0 {
		return nil
	}
	g := buildGraph(b.Tasks())
	order, err := g.SortSubset(ids, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedGraph, err)
	}
	s := newScheduler(b, base)
	for _, id := range order {
		sch, err := s.schedule(id)
		if err != nil {
			return err
		}
		applySchedule(b.TaskRef(id), sch)
	}
	return nil
}
