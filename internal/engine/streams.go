package engine

import (
	"fmt"

	"github.com/papapumpkin/closeboard/internal/board"
)

// Stream is a group of tasks connected through dependencies. Tasks in
// different streams never wait on each other.
type Stream struct {
	Tasks []board.Task `json:"tasks"`
	Start board.Date   `json:"start_date"`
	End   board.Date   `json:"end_date"`
}

// IndependentStreams partitions tasks into streams, each in dependency
// order with planned start as tiebreaker. Start and End span the dated
// tasks of the stream and stay zero when none is dated. Returns
// ErrMalformedGraph on a cycle.
func IndependentStreams(tasks []board.Task) ([]Stream, error) {
	byID := make(map[string]board.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	less := func(a, b string) bool { return startsBefore(byID[a], byID[b]) }

	groups, err := buildGraph(tasks).Components(less)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedGraph, err)
	}

	streams := make([]Stream, 0, len(groups))
	for _, ids := range groups {
		s := Stream{Tasks: make([]board.Task, 0, len(ids))}
		for _, id := range ids {
			t := byID[id]
			s.Tasks = append(s.Tasks, t)
			if start := board.Deref(t.StartDate); !start.IsZero() && (s.Start.IsZero() || start.Before(s.Start)) {
				s.Start = start
			}
			if end := board.Deref(t.EndDate); end.After(s.End) {
				s.End = end
			}
		}
		streams = append(streams, s)
	}
	return streams, nil
}
