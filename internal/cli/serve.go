package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mwhite-io/easel/internal/agent"
	"github.com/mwhite-io/easel/internal/mcpserver"
)

// ServeOptions holds flags for the serve-mcp command.
type ServeOptions struct {
	*RootOptions
	BoardFlags
}

// NewServeCommand creates the serve-mcp command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve board tools over MCP stdio",
		Long: `Serve the board's agent tools as an MCP server on stdin/stdout.

The board is restored from the database (or started empty), every commit
is appended to its update log, and a full snapshot is written when the
session ends. Logs go to stderr; stdout carries only the protocol.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to board database (overrides config)")
	cmd.Flags().StringVar(&opts.Board, "board", "", "board id (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := resolveConfig(opts.RootOptions, opts.BoardFlags)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	rep, err := loadOrCreateBoard(ctx, st, cfg.Board.ID)
	if err != nil {
		return err
	}
	st.Record(cfg.Board.ID, rep, logger)

	logger.Info("serving board over MCP stdio",
		"board", cfg.Board.ID,
		"db", cfg.SQLite.Path,
		"objects", rep.Len())

	srv := mcpserver.New(rep,
		mcpserver.WithLogger(logger),
		mcpserver.WithRunnerFactory(func() (*agent.Runner, error) {
			return agent.New(rep,
				agent.WithLogger(logger),
				agent.WithActor(cfg.Agent.Actor))
		}),
	)

	serveErr := srv.ServeStdio()

	// Fold the session into a snapshot even when the transport failed;
	// the update log already holds every commit either way.
	if rep.Len() > 0 {
		if _, err := st.WriteSnapshot(ctx, cfg.Board.ID, rep); err != nil {
			logger.Error("snapshot on shutdown", "board", cfg.Board.ID, "error", err)
		}
	}

	if serveErr != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("serve board %q", cfg.Board.ID), serveErr)
	}
	return nil
}
