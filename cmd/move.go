package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/closeboard/internal/engine"
	"github.com/papapumpkin/closeboard/internal/telemetry"
)

var moveCmd = &cobra.Command{
	Use:   "move <board.toml> <task> <column>",
	Short: "Move a task to another column if its dependencies allow it",
	Long: `Moves a task into the named column. Moving into the done column
requires every dependency to be done already. Entering in-progress stamps
the actual start date and entering done stamps the actual end date; both
reschedule the tasks downstream.`,
	Args: cobra.ExactArgs(3),
	RunE: runMove,
}

var blockingCmd = &cobra.Command{
	Use:   "blocking <board.toml> <task>",
	Short: "List the dependencies keeping a task out of done",
	Args:  cobra.ExactArgs(2),
	RunE:  runBlocking,
}

func init() {
	moveCmd.Flags().Bool("write", false, "save the updated board")
	moveCmd.Flags().Bool("check", false, "only report whether the move is allowed")
	moveCmd.Flags().String("now", "", "date to stamp instead of today (YYYY-MM-DD)")
	rootCmd.AddCommand(moveCmd, blockingCmd)
}

func runMove(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	path, taskID, column := args[0], args[1], args[2]
	b, err := e.loadBoard(path)
	if err != nil {
		return err
	}

	if check, _ := cmd.Flags().GetBool("check"); check {
		decision, err := engine.CanMoveToColumn(b, taskID, column, e.policy())
		if err != nil {
			return err
		}
		e.printer.Decision(taskID, column, decision)
		if !decision.CanMove {
			return fmt.Errorf("%w: %s → %s", engine.ErrBlockedTransition, taskID, column)
		}
		return nil
	}

	rawNow, _ := cmd.Flags().GetString("now")
	day, err := parseDay(rawNow, timeNow())
	if err != nil {
		return err
	}
	from, _ := b.Task(taskID)

	next, decision, err := engine.MoveTask(b, taskID, column, day.Time(), b.BaseStartDate, e.policy())
	var blocked *engine.BlockedError
	if errors.As(err, &blocked) {
		e.printer.Decision(taskID, column, decision)
		e.record(telemetry.KindMoveBlocked, b.ID, taskID, map[string]any{"to": column, "blocking": len(blocked.BlockingTasks)})
		return err
	}
	if err != nil {
		return err
	}

	e.printer.Success(fmt.Sprintf("%s moved %s → %s", taskID, from.ColumnID, column))
	e.printer.Changed(b, next)
	e.record(telemetry.KindTaskMoved, b.ID, taskID, map[string]string{"from": from.ColumnID, "to": column})
	write, _ := cmd.Flags().GetBool("write")
	return e.writeBack(path, next, write)
}

func runBlocking(cmd *cobra.Command, args []string) error {
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
	e.printer.Blocking(t, engine.BlockingDependencies(b, t))
	return nil
}
