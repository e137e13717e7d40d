package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/closeboard/internal/engine"
	"github.com/papapumpkin/closeboard/internal/telemetry"
)

var validateCmd = &cobra.Command{
	Use:   "validate <board.toml>",
	Short: "Check a board's structure and dependency graph",
	Long: `Checks ids, closing columns, durations and progress, and that the
dependency graph has no cycles. With --fix, rewrites every planned date
from the board's base start date.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("fix", false, "recompute and save planned dates")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	errs := engine.ValidateBoard(b)
	e.printer.ValidateResult(b, errs)
	if len(errs) > 0 {
		return fmt.Errorf("validation failed with %d error(s)", len(errs))
	}

	if fix, _ := cmd.Flags().GetBool("fix"); fix {
		next, err := engine.Reschedule(b, b.BaseStartDate)
		if err != nil {
			return err
		}
		if e.printer.Changed(b, next) > 0 {
			e.record(telemetry.KindDatesPropagated, b.ID, "", map[string]bool{"full": true})
		}
		return e.writeBack(path, next, true)
	}
	return nil
}
