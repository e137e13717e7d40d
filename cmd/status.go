package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/closeboard/internal/board"
	"github.com/papapumpkin/closeboard/internal/engine"
)

var statusCmd = &cobra.Command{
	Use:   "status <board.toml>",
	Short: "Classify every task as completed, overdue, warning, on-time or not-started",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().String("today", "", "classify as of this date (YYYY-MM-DD)")
	statusCmd.Flags().Bool("json", false, "print statuses as JSON")
	rootCmd.AddCommand(statusCmd)
}

// statusJSON is the --json output of status.
type statusJSON struct {
	Board  string         `json:"board"`
	Today  board.Date     `json:"today"`
	Tasks  []taskStatus   `json:"tasks"`
	Counts map[string]int `json:"counts"`
}

type taskStatus struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Column   string        `json:"column"`
	Progress int           `json:"progress"`
	Status   engine.Status `json:"status"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	b, err := e.loadBoard(args[0])
	if err != nil {
		return err
	}
	raw, _ := cmd.Flags().GetString("today")
	today, err := parseDay(raw, timeNow())
	if err != nil {
		return err
	}

	tasks := b.Tasks()
	statuses := e.classifier().ClassifyAll(tasks, today)
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeStatusJSON(cmd.OutOrStdout(), b, tasks, statuses, today)
	}
	e.printer.StatusTable(tasks, statuses, today)
	return nil
}

func writeStatusJSON(w io.Writer, b *board.Board, tasks []board.Task, statuses map[string]engine.Status, today board.Date) error {
	out := statusJSON{
		Board:  b.ID,
		Today:  today,
		Tasks:  make([]taskStatus, 0, len(tasks)),
		Counts: make(map[string]int),
	}
	for _, t := range tasks {
		st := statuses[t.ID]
		out.Tasks = append(out.Tasks, taskStatus{
			ID:       t.ID,
			Title:    t.Title,
			Column:   t.ColumnID,
			Progress: t.Progress,
			Status:   st,
		})
		out.Counts[string(st)]++
	}
	return writeJSON(w, out)
}
