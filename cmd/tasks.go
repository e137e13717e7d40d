package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/closeboard/internal/board"
	"github.com/papapumpkin/closeboard/internal/engine"
	"github.com/papapumpkin/closeboard/internal/telemetry"
)

var addCmd = &cobra.Command{
	Use:   "add <board.toml>",
	Short: "Add a task to the todo column",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var rmCmd = &cobra.Command{
	Use:   "rm <board.toml> <task>",
	Short: "Delete a task and drop it from every dependency list",
	Args:  cobra.ExactArgs(2),
	RunE:  runRm,
}

var editCmd = &cobra.Command{
	Use:   "edit <board.toml> <task>",
	Short: "Change a task's title, description, priority or progress",
	Args:  cobra.ExactArgs(2),
	RunE:  runEdit,
}

func init() {
	addCmd.Flags().String("id", "", "task id (default: generated UUIDv7)")
	addCmd.Flags().String("title", "", "task title")
	addCmd.Flags().String("description", "", "task description")
	addCmd.Flags().Int("duration", 1, "duration in calendar days")
	addCmd.Flags().StringSlice("dep", nil, "dependency task id (repeatable)")
	addCmd.Flags().String("priority", "medium", "low, medium or high")
	addCmd.Flags().Bool("write", false, "save the updated board")
	_ = addCmd.MarkFlagRequired("title")

	rmCmd.Flags().Bool("write", false, "save the updated board")

	editCmd.Flags().String("title", "", "new title")
	editCmd.Flags().String("description", "", "new description")
	editCmd.Flags().String("priority", "", "low, medium or high")
	editCmd.Flags().Int("progress", 0, "percent complete, 0-100")
	editCmd.Flags().Bool("write", false, "save the updated board")

	rootCmd.AddCommand(addCmd, rmCmd, editCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
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

	title, _ := cmd.Flags().GetString("title")
	desc, _ := cmd.Flags().GetString("description")
	duration, _ := cmd.Flags().GetInt("duration")
	deps, _ := cmd.Flags().GetStringSlice("dep")
	rawPrio, _ := cmd.Flags().GetString("priority")
	prio, err := board.ParsePriority(rawPrio)
	if err != nil {
		return err
	}
	newID := func() string { return uuid.Must(uuid.NewV7()).String() }
	if id, _ := cmd.Flags().GetString("id"); id != "" {
		newID = func() string { return id }
	}

	next, created, err := engine.CreateTask(b, engine.NewTask{
		Title:       title,
		Description: desc,
		DependsOn:   deps,
		Duration:    duration,
		Priority:    prio,
	}, b.BaseStartDate, newID)
	if err != nil {
		return err
	}
	e.printer.Success(fmt.Sprintf("added %s to %s", created.ID, created.ColumnID))
	e.printer.Schedule(created, engine.Schedule{Start: board.Deref(created.StartDate), End: board.Deref(created.EndDate)})
	e.record(telemetry.KindTaskCreated, b.ID, created.ID, map[string]any{"depends_on": created.DependsOn})
	write, _ := cmd.Flags().GetBool("write")
	return e.writeBack(path, next, write)
}

func runRm(cmd *cobra.Command, args []string) error {
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
	next, err := engine.DeleteTask(b, args[1], b.BaseStartDate)
	if err != nil {
		return err
	}
	e.printer.Success("removed " + args[1])
	e.printer.Changed(b, next)
	e.record(telemetry.KindTaskDeleted, b.ID, args[1], nil)
	write, _ := cmd.Flags().GetBool("write")
	return e.writeBack(path, next, write)
}

func runEdit(cmd *cobra.Command, args []string) error {
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

	var d engine.Details
	flags := cmd.Flags()
	if flags.Changed("title") {
		v, _ := flags.GetString("title")
		d.Title = &v
	}
	if flags.Changed("description") {
		v, _ := flags.GetString("description")
		d.Description = &v
	}
	if flags.Changed("priority") {
		raw, _ := flags.GetString("priority")
		p, err := board.ParsePriority(raw)
		if err != nil {
			return err
		}
		d.Priority = &p
	}
	if flags.Changed("progress") {
		v, _ := flags.GetInt("progress")
		d.Progress = &v
	}

	next, err := engine.UpdateDetails(b, args[1], d)
	if err != nil {
		return err
	}
	e.printer.Success("updated " + args[1])
	e.record(telemetry.KindTaskUpdated, b.ID, args[1], d)
	write, _ := cmd.Flags().GetBool("write")
	return e.writeBack(path, next, write)
}
