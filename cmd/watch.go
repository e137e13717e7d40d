package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/closeboard/internal/board"
	"github.com/papapumpkin/closeboard/internal/boardfile"
	"github.com/papapumpkin/closeboard/internal/engine"
)

var watchCmd = &cobra.Command{
	Use:   "watch <board.toml>",
	Short: "Reprint task statuses whenever the board file changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().String("today", "", "evaluate statuses on this day (default: today)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	rawToday, _ := cmd.Flags().GetString("today")
	if _, err := parseDay(rawToday, timeNow()); err != nil {
		return err
	}

	b, err := e.loadBoard(args[0])
	if err != nil {
		return err
	}
	e.showStatus(b, rawToday)

	w, err := boardfile.NewWatcher(args[0])
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case r, ok := <-w.Changes:
			if !ok {
				return nil
			}
			if r.Err != nil {
				e.printer.Warn("reload failed: " + r.Err.Error())
				continue
			}
			e.showStatus(r.Board, rawToday)
		}
	}
}

// showStatus prints the status table of b. The day is re-read on every
// call so a long-running watch rolls over at midnight.
func (e *env) showStatus(b *board.Board, rawToday string) {
	today, _ := parseDay(rawToday, timeNow())
	if errs := engine.ValidateBoard(b); len(errs) > 0 {
		e.printer.ValidateResult(b, errs)
		return
	}
	tasks := b.Tasks()
	e.printer.StatusTable(tasks, e.classifier().ClassifyAll(tasks, today), today)
}
