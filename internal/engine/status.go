package engine

import "github.com/papapumpkin/closeboard/internal/board"

// Status is a task's display status relative to a given day.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusOnTime     Status = "on-time"
	StatusWarning    Status = "warning"
	StatusOverdue    Status = "overdue"
	StatusCompleted  Status = "completed"
)

// DefaultWarningDays is how many days before its end date a task turns to
// warning.
const DefaultWarningDays = 2

// Classifier derives task status. The zero Classifier warns only on the
// end date itself.
type Classifier struct {
	WarningDays int
}

// Classify returns the status of t on today. Rules apply in order:
// progress 100 is completed; past the end date is overdue; within
// WarningDays of the end date is warning; without a start date or before
// it is not-started; anything else is on-time.
func (c Classifier) Classify(t board.Task, today board.Date) Status {
	if t.Progress >= 100 {
		return StatusCompleted
	}
	if t.EndDate != nil {
		if today.After(*t.EndDate) {
			return StatusOverdue
		}
		if today.DaysUntil(*t.EndDate) <= c.WarningDays {
			return StatusWarning
		}
	}
	if t.StartDate == nil || today.Before(*t.StartDate) {
		return StatusNotStarted
	}
	return StatusOnTime
}

// ClassifyAll returns the status of every task keyed by id.
func (c Classifier) ClassifyAll(tasks []board.Task, today board.Date) map[string]Status {
	out := make(map[string]Status, len(tasks))
	for _, t := range tasks {
		out[t.ID] = c.Classify(t, today)
	}
	return out
}

// TaskStatus classifies t with the default warning window.
func TaskStatus(t board.Task, today board.Date) Status {
	return Classifier{WarningDays: DefaultWarningDays}.Classify(t, today)
}
