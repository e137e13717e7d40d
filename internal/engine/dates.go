package engine

import (
	"fmt"

	"github.com/papapumpkin/closeboard/internal/board"
	"github.com/papapumpkin/closeboard/internal/dag"
)

// Schedule is a task's planned date range. Both ends are inclusive.
type Schedule struct {
	Start board.Date `json:"start_date"`
	End   board.Date `json:"end_date"`
}

// effectiveDuration clamps durations below one day to one day.
func effectiveDuration(days int) int {
	if days < 1 {
		return 1
	}
	return days
}

// CalculateEndDate returns the last day of a task that starts on start and
// lasts duration calendar days, counting the start day:
// end = start + (duration - 1). A zero start yields a zero end.
func CalculateEndDate(start board.Date, duration int) board.Date {
	return start.AddDays(effectiveDuration(duration) - 1)
}

// CalculateStartDate returns the earliest day task can start on b. Without
// dependencies that is base. Otherwise it is the day after the latest
// finish among the task's dependencies, and never earlier than base. A
// dependency finishes on its ActualEndDate when set. A started one finishes
// on CalculateEndDate(ActualStartDate, Duration), early or late, and an
// unstarted one on its computed end.
// Dependencies that no longer exist are ignored. Returns ErrMalformedGraph
// if resolving the dependencies runs into a cycle.
func CalculateStartDate(b *board.Board, task board.Task, base board.Date) (board.Date, error) {
	return newScheduler(b, base).startOf(task)
}

// ComputeSchedule returns the planned start and end of task on b.
func ComputeSchedule(b *board.Board, task board.Task, base board.Date) (Schedule, error) {
	start, err := CalculateStartDate(b, task, base)
	if err != nil {
		return Schedule{}, err
	}
	return Schedule{Start: start, End: CalculateEndDate(start, task.Duration)}, nil
}

// scheduler memoizes dependency finish dates for one board snapshot. It
// reads only durations, dependencies and actual dates, never the stored
// planned dates, so results do not depend on the order tasks are visited.
type scheduler struct {
	tasks    map[string]board.Task
	base     board.Date
	finishes map[string]board.Date
	visiting map[string]bool
}

func newScheduler(b *board.Board, base board.Date) *scheduler {
	tasks := make(map[string]board.Task)
	for _, t := range b.Tasks() {
		if _, dup := tasks[t.ID]; !dup {
			tasks[t.ID] = t
		}
	}
	return &scheduler{
		tasks:    tasks,
		base:     base,
		finishes: make(map[string]board.Date),
		visiting: make(map[string]bool),
	}
}

// schedule computes the planned dates of the task with the given id.
func (s *scheduler) schedule(id string) (Schedule, error) {
	t, ok := s.tasks[id]
	if !ok {
		return Schedule{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	start, err := s.startOf(t)
	if err != nil {
		return Schedule{}, err
	}
	return Schedule{Start: start, End: CalculateEndDate(start, t.Duration)}, nil
}

func (s *scheduler) startOf(t board.Task) (board.Date, error) {
	if t.ID != "" {
		s.visiting[t.ID] = true
		defer delete(s.visiting, t.ID)
	}
	start := s.base
	for _, depID := range t.DependsOn {
		if _, ok := s.tasks[depID]; !ok {
			continue
		}
		finish, err := s.finishOf(depID)
		if err != nil {
			return board.Date{}, err
		}
		if finish.IsZero() {
			// Undated dependency: it imposes nothing beyond base.
			continue
		}
		start = board.MaxDate(start, finish.AddDays(1))
	}
	return start, nil
}

func (s *scheduler) finishOf(id string) (board.Date, error) {
	if f, ok := s.finishes[id]; ok {
		return f, nil
	}
	t := s.tasks[id]
	if t.ActualEndDate != nil {
		s.finishes[id] = *t.ActualEndDate
		return *t.ActualEndDate, nil
	}
	if t.ActualStartDate != nil {
		finish := CalculateEndDate(*t.ActualStartDate, t.Duration)
		s.finishes[id] = finish
		return finish, nil
	}
	if s.visiting[id] {
		return board.Date{}, fmt.Errorf("%w: %w at task %s", ErrMalformedGraph, dag.ErrCycle, id)
	}

	start, err := s.startOf(t)
	if err != nil {
		return board.Date{}, err
	}
	finish := CalculateEndDate(start, t.Duration)
	s.finishes[id] = finish
	return finish, nil
}

// applySchedule writes sch into the stored task, clearing dates that are
// undefined.
func applySchedule(t *board.Task, sch Schedule) {
	t.StartDate, t.EndDate = nil, nil
	if !sch.Start.IsZero() {
		t.StartDate = sch.Start.Ptr()
	}
	if !sch.End.IsZero() {
		t.EndDate = sch.End.Ptr()
	}
}
