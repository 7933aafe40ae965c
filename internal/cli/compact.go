package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CompactOptions holds flags for the compact command.
type CompactOptions struct {
	*RootOptions
	BoardFlags
}

// CompactResult is the compact command's output payload.
type CompactResult struct {
	Board           string `json:"board"`
	SnapshotID      int64  `json:"snapshot_id"`
	Objects         int    `json:"objects"`
	PrunedUpdates   int    `json:"pruned_updates"`
	PrunedSnapshots int    `json:"pruned_snapshots"`
}

// NewCompactCommand creates the compact command.
func NewCompactCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompactOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Fold a board's update log into a fresh snapshot",
		Long: `Restore a board, write a fresh snapshot, and prune the update log
entries and earlier snapshots the new one supersedes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompact(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to board database (overrides config)")
	cmd.Flags().StringVar(&opts.Board, "board", "", "board id (overrides config)")

	return cmd
}

func runCompact(opts *CompactOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := resolveConfig(opts.RootOptions, opts.BoardFlags)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	before, err := st.BoardStats(ctx, cfg.Board.ID)
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("stat board %q", cfg.Board.ID), err)
	}

	rep, err := loadBoard(ctx, st, cfg.Board.ID)
	if err != nil {
		return err
	}
	formatter.VerboseLog("restored board %q with %d object(s)", cfg.Board.ID, rep.Len())

	id, err := st.Compact(ctx, cfg.Board.ID, rep)
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("compact board %q", cfg.Board.ID), err)
	}

	after, err := st.BoardStats(ctx, cfg.Board.ID)
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("stat board %q", cfg.Board.ID), err)
	}

	result := CompactResult{
		Board:           cfg.Board.ID,
		SnapshotID:      id,
		Objects:         rep.Len(),
		PrunedUpdates:   before.Updates - after.Updates,
		PrunedSnapshots: before.Snapshots - (after.Snapshots - 1),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Board %q compacted into snapshot %d (%d objects, pruned %d update(s), %d snapshot(s))\n",
		result.Board, result.SnapshotID, result.Objects, result.PrunedUpdates, result.PrunedSnapshots)
	return nil
}
