package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/closeboard/internal/board"
	"github.com/papapumpkin/closeboard/internal/engine"
	"github.com/papapumpkin/closeboard/internal/ui"
)

var sequenceCmd = &cobra.Command{
	Use:   "sequence <board.toml>",
	Short: "List tasks in dependency order, grouped by level",
	Args:  cobra.ExactArgs(1),
	RunE:  runSequence,
}

func init() {
	sequenceCmd.Flags().Bool("json", false, "print the sequence as JSON")
	sequenceCmd.Flags().Bool("graph", false, "draw each level with arrows to dependent tasks")
	sequenceCmd.Flags().Bool("streams", false, "group tasks into independent dependency streams")
	rootCmd.AddCommand(sequenceCmd)
}

func runSequence(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	b, err := e.loadBoard(args[0])
	if err != nil {
		return err
	}
	if streams, _ := cmd.Flags().GetBool("streams"); streams {
		groups, err := engine.IndependentStreams(b.Tasks())
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), groups)
		}
		e.printer.Streams(groups)
		return nil
	}

	seq, err := engine.TopologicalOrder(b.Tasks())
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), seq)
	}
	if graph, _ := cmd.Flags().GetBool("graph"); graph {
		today := board.DateOf(timeNow())
		c := e.classifier()
		r := &ui.GraphRenderer{StatusFunc: func(id string) engine.Status {
			t, _ := b.Task(id)
			return c.Classify(t, today)
		}}
		fmt.Fprint(cmd.OutOrStdout(), r.Render(seq))
		return nil
	}
	e.printer.Sequence(seq)
	return nil
}
