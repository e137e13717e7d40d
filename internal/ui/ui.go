// Package ui renders closeboard results for the terminal. Diagnostics go to
// stderr; reports meant for piping go to stdout.
package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/papapumpkin/closeboard/internal/board"
	"github.com/papapumpkin/closeboard/internal/engine"
)

// Printer writes styled output.
type Printer struct {
	out io.Writer
	err io.Writer
}

// New returns a Printer on stdout and stderr.
func New() *Printer {
	return &Printer{out: os.Stdout, err: os.Stderr}
}

// NewWithWriters returns a Printer on the given writers.
func NewWithWriters(out, err io.Writer) *Printer {
	return &Printer{out: out, err: err}
}

func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.err, "%s %s\n", styleError.Render("error:"), msg)
}

func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.err, styleDim.Render(msg))
}

func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.err, styleSuccess.Render(iconDone+" "+msg))
}

func (p *Printer) Warn(msg string) {
	fmt.Fprintln(p.err, styleWarning.Render(iconWarning+" "+msg))
}

// ValidateResult reports the outcome of board validation.
func (p *Printer) ValidateResult(b *board.Board, errs []error) {
	if len(errs) == 0 {
		fmt.Fprintf(p.err, "%s — %d task(s) in %d column(s), no errors\n",
			styleSuccess.Render(fmt.Sprintf("%s board %q", iconDone, b.ID)), b.TaskCount(), len(b.Columns))
		return
	}
	fmt.Fprintf(p.err, "%s\n", styleError.Render(fmt.Sprintf("%s board %q — %d error(s)", iconBlocked, b.ID, len(errs))))
	for _, err := range errs {
		var verr *board.ValidationError
		if errors.As(err, &verr) && verr.TaskID != "" {
			fmt.Fprintf(p.err, "  %s %s\n", styleID.Render(verr.TaskID), err)
			continue
		}
		fmt.Fprintf(p.err, "  %s\n", err)
	}
}

// Schedule prints a task's computed date range.
func (p *Printer) Schedule(t board.Task, sch engine.Schedule) {
	fmt.Fprintf(p.out, "%s  %s → %s  (%d day(s))\n", styleID.Render(t.ID), orDash(sch.Start), orDash(sch.End), max(t.Duration, 1))
}

// DependencyCheck reports whether taskID may depend on depID.
func (p *Printer) DependencyCheck(taskID, depID string, cycle bool) {
	if cycle {
		fmt.Fprintf(p.out, "%s %s → %s would create a cycle\n", styleError.Render(iconBlocked), taskID, depID)
		return
	}
	fmt.Fprintf(p.out, "%s %s may depend on %s\n", styleSuccess.Render(iconDone), taskID, depID)
}

// Decision reports a guard decision for moving taskID into column.
func (p *Printer) Decision(taskID, column string, d engine.Decision) {
	if d.CanMove {
		fmt.Fprintf(p.out, "%s %s may move to %s\n", styleSuccess.Render(iconDone), taskID, column)
		return
	}
	fmt.Fprintf(p.out, "%s %s cannot move to %s, blocked by:\n", styleError.Render(iconBlocked), taskID, column)
	p.taskList(d.BlockingTasks)
}

// Blocking lists the dependencies keeping a task out of done.
func (p *Printer) Blocking(t board.Task, blocking []board.Task) {
	if len(blocking) == 0 {
		fmt.Fprintf(p.out, "%s %s has no open dependencies\n", styleSuccess.Render(iconDone), t.ID)
		return
	}
	fmt.Fprintf(p.out, "%s waits on %d task(s):\n", styleID.Render(t.ID), len(blocking))
	p.taskList(blocking)
}

// Changed lists tasks whose planned dates differ between before and after.
func (p *Printer) Changed(before, after *board.Board) int {
	n := 0
	for _, t := range after.Tasks() {
		old, ok := before.Task(t.ID)
		if ok && board.Deref(old.StartDate).Equal(board.Deref(t.StartDate)) &&
			board.Deref(old.EndDate).Equal(board.Deref(t.EndDate)) {
			continue
		}
		n++
		fmt.Fprintf(p.out, "  %s  %s..%s → %s..%s\n", styleID.Render(t.ID),
			orDash(board.Deref(old.StartDate)), orDash(board.Deref(old.EndDate)),
			orDash(board.Deref(t.StartDate)), orDash(board.Deref(t.EndDate)))
	}
	if n == 0 {
		fmt.Fprintln(p.out, styleDim.Render("  no dates changed"))
	}
	return n
}

// Sequence prints tasks in execution order grouped by dependency level.
func (p *Printer) Sequence(seq []engine.Sequenced) {
	level := -1
	for _, s := range seq {
		if s.Level != level {
			level = s.Level
			fmt.Fprintln(p.out, styleHeading.Render(fmt.Sprintf("Level %d", level)))
		}
		fmt.Fprintf(p.out, "  %-12s %-32s %s → %s\n", s.Task.ID, truncate(s.Task.Title, 32),
			orDash(board.Deref(s.Task.StartDate)), orDash(board.Deref(s.Task.EndDate)))
	}
}

// Streams prints each independent stream with its date span.
func (p *Printer) Streams(streams []engine.Stream) {
	for i, s := range streams {
		fmt.Fprintln(p.out, styleHeading.Render(fmt.Sprintf("Stream %d", i+1))+
			styleDim.Render(fmt.Sprintf("  %s → %s, %d task(s)", orDash(s.Start), orDash(s.End), len(s.Tasks))))
		p.taskList(s.Tasks)
	}
}

// StatusTable prints every task with its status on today.
func (p *Printer) StatusTable(tasks []board.Task, statuses map[string]engine.Status, today board.Date) {
	fmt.Fprintln(p.out, styleHeading.Render("Status on "+today.String()))
	counts := make(map[engine.Status]int)
	for _, t := range tasks {
		st := statuses[t.ID]
		counts[st]++
		fmt.Fprintf(p.out, "  %-12s %-32s %-10s %3d%%  %s\n", t.ID, truncate(t.Title, 32), t.ColumnID, t.Progress, StatusLabel(st))
	}
	var parts []string
	for _, st := range []engine.Status{engine.StatusOverdue, engine.StatusWarning, engine.StatusOnTime, engine.StatusNotStarted, engine.StatusCompleted} {
		if counts[st] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[st], st))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintln(p.out, styleDim.Render("  "+strings.Join(parts, ", ")))
	}
}

func (p *Printer) taskList(tasks []board.Task) {
	for _, t := range tasks {
		fmt.Fprintf(p.out, "  - %s %s\n", styleID.Render(t.ID), styleDim.Render(t.Title))
	}
}

func orDash(d board.Date) string {
	if d.IsZero() {
		return "—"
	}
	return d.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
