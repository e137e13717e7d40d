// Package engine is the scheduling core of a closing board. It validates
// dependency edits, computes task dates, guards workflow transitions,
// propagates actual completion dates downstream, sequences tasks and
// classifies their status.
//
// Every function is a synchronous computation over a *board.Board. Inputs
// are never modified; operations that change scheduling return a new
// snapshot, so callers may share one snapshot across goroutines freely.
package engine

import (
	"fmt"

	"github.com/papapumpkin/closeboard/internal/board"
	"github.com/papapumpkin/closeboard/internal/dag"
)

// buildGraph loads the dependency edges of tasks into a DAG exactly as they
// are, cycles included. Dangling dependency ids are skipped.
func buildGraph(tasks []board.Task) *dag.DAG {
	g := dag.New()
	for _, t := range tasks {
		// Duplicate ids are a structural error reported by Validate; the
		// first occurrence wins here.
		_ = g.AddNode(t.ID)
	}
	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			if g.Node(dep) == nil {
				continue
			}
			_ = g.Link(t.ID, dep)
		}
	}
	return g
}

// ValidateBoard runs the structural checks of board.Validate and adds a
// cycle check over the dependency graph.
func ValidateBoard(b *board.Board) []error {
	errs := b.Validate()
	if cycle := buildGraph(b.Tasks()).FindCycle(); cycle != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrMalformedGraph, cycle))
	}
	return errs
}

func closingColumn(b *board.Board, ct board.ColumnType) (*board.Column, error) {
	col, ok := b.ColumnOfType(ct)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoClosingColumn, ct)
	}
	return col, nil
}
