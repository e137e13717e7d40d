package engine

import (
	"fmt"
	"sort"

	"github.com/papapumpkin/closeboard/internal/board"
)

// Sequenced is a task paired with its dependency level.
type Sequenced struct {
	Task  board.Task `json:"task"`
	Level int        `json:"level"`
}

// DependencyLevels returns the dependency level of every task in tasks: 0
// for a task with no dependencies among tasks, otherwise one more than the
// highest level among its dependencies. Returns ErrMalformedGraph on a cycle.
func DependencyLevels(tasks []board.Task) (map[string]int, error) {
	levels, err := buildGraph(tasks).Levels()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedGraph, err)
	}
	return levels, nil
}

// DependencyLevel returns the dependency level of the task with the given id.
func DependencyLevel(tasks []board.Task, id string) (int, error) {
	levels, err := DependencyLevels(tasks)
	if err != nil {
		return 0, err
	}
	lvl, ok := levels[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return lvl, nil
}

// TopologicalOrder returns tasks ordered so that every dependency precedes
// its dependents. Tasks are grouped by ascending level; within a level they
// are ordered by planned start date, undated tasks last, then by input
// order. Returns ErrMalformedGraph on a cycle.
func TopologicalOrder(tasks []board.Task) ([]Sequenced, error) {
	levels, err := DependencyLevels(tasks)
	if err != nil {
		return nil, err
	}
	out := make([]Sequenced, len(tasks))
	for i, t := range tasks {
		out[i] = Sequenced{Task: t, Level: levels[t.ID]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		return startsBefore(out[i].Task, out[j].Task)
	})
	return out, nil
}

// startsBefore orders by planned start with undated tasks after dated ones.
func startsBefore(a, b board.Task) bool {
	as, bs := board.Deref(a.StartDate), board.Deref(b.StartDate)
	switch {
	case as.IsZero():
		return false
	case bs.IsZero():
		return true
	}
	return as.Before(bs)
}
