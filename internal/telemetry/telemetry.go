// Package telemetry records board changes as a JSONL event stream. Every
// task creation, column move, refused move, dependency edit and date
// propagation is written as one JSON object per line, making the history
// of a closing period auditable and replayable.
package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Event kinds identify the type of telemetry event.
const (
	KindBoardCreated       = "board_created"
	KindBoardDeleted       = "board_deleted"
	KindTaskCreated        = "task_created"
	KindTaskUpdated        = "task_updated"
	KindTaskDeleted        = "task_deleted"
	KindTaskMoved          = "task_moved"
	KindMoveBlocked        = "move_blocked"
	KindDependencyAdded    = "dependency_added"
	KindDependencyRejected = "dependency_rejected"
	KindDatesPropagated    = "dates_propagated"
)

// Event is a single telemetry record.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	BoardID   string    `json:"board,omitempty"`
	TaskID    string    `json:"task,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes telemetry events as JSONL. It is safe for concurrent use
// by multiple goroutines. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	w   io.Writer
	enc *json.Encoder
	mu  sync.Mutex
	now func() time.Time
}

// NewEmitter creates an Emitter appending to the file at path, creating it
// if needed.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return New(f), nil
}

// New creates an Emitter writing to w. Close closes w if it is an
// io.Closer.
func New(w io.Writer) *Emitter {
	return &Emitter{w: w, enc: json.NewEncoder(w), now: time.Now}
}

// Emit writes a single event. A zero Timestamp is filled with the current
// time. Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.now().UTC()
	}
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// Record is shorthand for emitting an event of the given kind now.
func (e *Emitter) Record(kind, boardID, taskID string, data any) error {
	return e.Emit(Event{Kind: kind, BoardID: boardID, TaskID: taskID, Data: data})
}

// Close closes the underlying writer. Calling Close on a nil Emitter is a
// no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.w.(io.Closer)
	if !ok {
		return nil
	}
	if err := c.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}
