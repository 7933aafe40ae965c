package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/mwhite-io/easel/internal/config"
	"github.com/mwhite-io/easel/internal/doc"
	"github.com/mwhite-io/easel/internal/snapshot"
)

// BoardFlags are the per-command overrides for where a board lives.
// Empty values fall back to the loaded config.
type BoardFlags struct {
	Database string
	Board    string
}

// resolveConfig loads the config file and applies flag overrides.
func resolveConfig(opts *RootOptions, flags BoardFlags) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if flags.Database != "" {
		cfg.SQLite.Path = flags.Database
	}
	if flags.Board != "" {
		cfg.Board.ID = flags.Board
	}
	return cfg, nil
}

// openStore opens the snapshot database named by the config.
func openStore(cfg *config.Config) (*snapshot.Store, error) {
	st, err := snapshot.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("open database %s", cfg.SQLite.Path), err)
	}
	return st, nil
}

// loadBoard restores a stored board. A board the store has never seen is
// an operation failure, not a command error.
func loadBoard(ctx context.Context, st *snapshot.Store, boardID string) (*doc.Replica, error) {
	rep, err := st.LoadLatest(ctx, boardID)
	if errors.Is(err, snapshot.ErrNotFound) {
		return nil, NewExitError(ExitFailure, fmt.Sprintf("board %q not found", boardID))
	}
	if err != nil {
		return nil, WrapExitError(ExitFailure, fmt.Sprintf("load board %q", boardID), err)
	}
	return rep, nil
}

// loadOrCreateBoard restores a stored board, or starts an empty one for a
// board id the store has never seen.
func loadOrCreateBoard(ctx context.Context, st *snapshot.Store, boardID string) (*doc.Replica, error) {
	rep, err := st.LoadLatest(ctx, boardID)
	if errors.Is(err, snapshot.ErrNotFound) {
		return doc.NewReplica(), nil
	}
	if err != nil {
		return nil, WrapExitError(ExitFailure, fmt.Sprintf("load board %q", boardID), err)
	}
	return rep, nil
}
