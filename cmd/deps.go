package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/closeboard/internal/engine"
	"github.com/papapumpkin/closeboard/internal/telemetry"
)

var checkDepCmd = &cobra.Command{
	Use:   "check-dep <board.toml> <task> <dependency>",
	Short: "Report whether a task may depend on another without a cycle",
	Args:  cobra.ExactArgs(3),
	RunE:  runCheckDep,
}

var dependCmd = &cobra.Command{
	Use:   "depend <board.toml> <task> <dependency>",
	Short: "Add a dependency and reschedule everything downstream",
	Args:  cobra.ExactArgs(3),
	RunE:  runDepend,
}

var availableCmd = &cobra.Command{
	Use:   "available <board.toml> <task>",
	Short: "List tasks a task could additionally depend on",
	Args:  cobra.ExactArgs(2),
	RunE:  runAvailable,
}

func init() {
	dependCmd.Flags().Bool("write", false, "save the updated board")
	rootCmd.AddCommand(checkDepCmd, dependCmd, availableCmd)
}

func runCheckDep(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	b, err := e.loadBoard(args[0])
	if err != nil {
		return err
	}
	taskID, depID := args[1], args[2]
	for _, id := range []string{taskID, depID} {
		if _, ok := b.Task(id); !ok {
			return fmt.Errorf("%w: %s", engine.ErrTaskNotFound, id)
		}
	}
	cycle := engine.HasCircularDependency(b, taskID, depID)
	e.printer.DependencyCheck(taskID, depID, cycle)
	if cycle {
		return fmt.Errorf("%w: %s → %s", engine.ErrCircularDependency, taskID, depID)
	}
	return nil
}

func runDepend(cmd *cobra.Command, args []string) error {
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
	taskID, depID := args[1], args[2]
	next, err := engine.AddDependency(b, taskID, depID, b.BaseStartDate)
	if errors.Is(err, engine.ErrCircularDependency) || errors.Is(err, engine.ErrBlockedTransition) {
		e.record(telemetry.KindDependencyRejected, b.ID, taskID, map[string]string{"depends_on": depID})
	}
	if err != nil {
		return err
	}
	e.printer.Changed(b, next)
	e.record(telemetry.KindDependencyAdded, b.ID, taskID, map[string]string{"depends_on": depID})
	write, _ := cmd.Flags().GetBool("write")
	return e.writeBack(path, next, write)
}

func runAvailable(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	b, err := e.loadBoard(args[0])
	if err != nil {
		return err
	}
	tasks, err := engine.AvailableDependencies(b, args[1])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, t := range tasks {
		fmt.Fprintf(out, "%s\t%s\n", t.ID, t.Title)
	}
	return nil
}
