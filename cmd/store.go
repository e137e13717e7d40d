package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/closeboard/internal/boardfile"
	"github.com/papapumpkin/closeboard/internal/engine"
	"github.com/papapumpkin/closeboard/internal/store"
	"github.com/papapumpkin/closeboard/internal/telemetry"
)

var importCmd = &cobra.Command{
	Use:   "import <board.toml>",
	Short: "Validate, schedule and store a board file in the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export <board-id> <board.toml>",
	Short: "Write a stored board to a file",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List boards in the database",
	Args:  cobra.NoArgs,
	RunE:  runBoards,
}

func init() {
	importCmd.Flags().Bool("replace", false, "overwrite a stored board with the same id")
	for _, c := range []*cobra.Command{importCmd, exportCmd, boardsCmd} {
		c.Flags().String("db", "closeboard.db", "path to the SQLite board store")
		rootCmd.AddCommand(c)
	}
}

// openStore binds the command's --db flag and opens the store.
func openStore(cmd *cobra.Command, e *env) (*store.SQLiteStore, error) {
	if f := cmd.Flags().Lookup("db"); f != nil && f.Changed {
		e.cfg.DBPath = f.Value.String()
	}
	return store.Open(cmd.Context(), e.cfg.DBPath)
}

func runImport(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	b, err := e.loadBoard(args[0])
	if err != nil {
		return err
	}
	if errs := engine.ValidateBoard(b); len(errs) > 0 {
		e.printer.ValidateResult(b, errs)
		return fmt.Errorf("import: %s has %d problem(s)", args[0], len(errs))
	}
	scheduled, err := engine.Reschedule(b, b.BaseStartDate)
	if err != nil {
		return err
	}

	st, err := openStore(cmd, e)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	saved, err := st.Create(ctx, scheduled)
	if errors.Is(err, store.ErrExists) {
		replace, _ := cmd.Flags().GetBool("replace")
		if !replace {
			return fmt.Errorf("%w; pass --replace to overwrite", err)
		}
		var current int64
		if existing, getErr := st.Get(ctx, scheduled.ID); getErr == nil {
			current = existing.Version
		}
		saved, err = st.Save(ctx, scheduled, current)
	}
	if err != nil {
		return err
	}
	e.printer.Success(fmt.Sprintf("imported %s (version %d, %d tasks)", saved.ID, saved.Version, saved.TaskCount()))
	e.record(telemetry.KindBoardCreated, saved.ID, "", map[string]any{"source": args[0]})
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	st, err := openStore(cmd, e)
	if err != nil {
		return err
	}
	defer st.Close()

	b, err := st.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := boardfile.Save(args[1], b); err != nil {
		return err
	}
	e.printer.Success(fmt.Sprintf("exported %s to %s", b.ID, args[1]))
	return nil
}

func runBoards(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	st, err := openStore(cmd, e)
	if err != nil {
		return err
	}
	defer st.Close()

	summaries, err := st.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		e.printer.Info("no boards stored in " + e.cfg.DBPath)
		return nil
	}
	out := cmd.OutOrStdout()
	for _, s := range summaries {
		fmt.Fprintf(out, "%-24s v%-4d %-32s %s\n", s.ID, s.Version, s.Name, s.UpdatedAt.Local().Format(time.DateTime))
	}
	return nil
}
