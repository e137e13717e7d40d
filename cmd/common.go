package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/closeboard/internal/board"
	"github.com/papapumpkin/closeboard/internal/boardfile"
	"github.com/papapumpkin/closeboard/internal/config"
	"github.com/papapumpkin/closeboard/internal/engine"
	"github.com/papapumpkin/closeboard/internal/telemetry"
	"github.com/papapumpkin/closeboard/internal/ui"
)

// env bundles what most commands need: config, printer and event sink.
type env struct {
	cfg     config.Config
	printer *ui.Printer
	events  *telemetry.Emitter
}

func newEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	e := &env{
		cfg:     cfg,
		printer: ui.NewWithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr()),
	}
	if cfg.TelemetryPath != "" {
		em, err := telemetry.NewEmitter(cfg.TelemetryPath)
		if err != nil {
			return nil, err
		}
		e.events = em
	}
	return e, nil
}

func (e *env) close() {
	e.events.Close()
}

func (e *env) policy() engine.Policy {
	return engine.Policy{RequireStartedDependencies: e.cfg.Guard.RequireStartedDependencies}
}

func (e *env) classifier() engine.Classifier {
	return engine.Classifier{WarningDays: e.cfg.WarningDays}
}

// record emits a telemetry event; failures are reported but not fatal.
func (e *env) record(kind, boardID, taskID string, data any) {
	if err := e.events.Record(kind, boardID, taskID, data); err != nil {
		e.printer.Warn(err.Error())
	}
}

// loadBoard reads a board file, reporting the error through the printer.
func (e *env) loadBoard(path string) (*board.Board, error) {
	b, err := boardfile.Load(path)
	if err != nil {
		e.printer.Error(err.Error())
		return nil, err
	}
	return b, nil
}

// writeBack saves b to path when write is set and otherwise notes that the
// change was not persisted.
func (e *env) writeBack(path string, b *board.Board, write bool) error {
	if !write {
		if e.cfg.Verbose {
			e.printer.Info("dry run; pass --write to save " + path)
		}
		return nil
	}
	if err := boardfile.Save(path, b); err != nil {
		return err
	}
	e.printer.Success("saved " + path)
	return nil
}

// parseDay reads a YYYY-MM-DD flag value, defaulting to the day of now.
func parseDay(raw string, now time.Time) (board.Date, error) {
	if raw == "" {
		return board.DateOf(now), nil
	}
	d, err := board.ParseDate(raw)
	if err != nil {
		return board.Date{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return d, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// timeNow is replaced in tests.
var timeNow = time.Now
