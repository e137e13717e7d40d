package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/closeboard/internal/engine"
	"github.com/papapumpkin/closeboard/internal/telemetry"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <board.toml> <task>",
	Short: "Compute a task's planned start and end dates",
	Args:  cobra.ExactArgs(2),
	RunE:  runSchedule,
}

var propagateCmd = &cobra.Command{
	Use:   "propagate <board.toml> <task>",
	Short: "Recompute the dates of every task downstream of a task",
	Args:  cobra.ExactArgs(2),
	RunE:  runPropagate,
}

func init() {
	scheduleCmd.Flags().Bool("json", false, "print the schedule as JSON")
	propagateCmd.Flags().Bool("write", false, "save the updated board")
	rootCmd.AddCommand(scheduleCmd, propagateCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	b, err := e.loadBoard(args[0])
	if err != nil {
		return err
	}
	t, ok := b.Task(args[1])
	if !ok {
		return fmt.Errorf("%w: %s", engine.ErrTaskNotFound, args[1])
	}
	sch, err := engine.ComputeSchedule(b, t, b.BaseStartDate)
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), sch)
	}
	e.printer.Schedule(t, sch)
	return nil
}

func runPropagate(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	path := args[0]
	b, err := e.loadBoard(path)
	if err != nil {
		return err
	}
	next, err := engine.RecalculateDates(b, args[1], b.BaseStartDate)
	if err != nil {
		return err
	}
	changed := e.printer.Changed(b, next)
	e.record(telemetry.KindDatesPropagated, b.ID, args[1], map[string]int{"changed": changed})
	write, _ := cmd.Flags().GetBool("write")
	return e.writeBack(path, next, write)
}
