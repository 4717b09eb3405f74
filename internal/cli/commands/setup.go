package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/leapstack-labs/phonebook/internal/book"
	"github.com/leapstack-labs/phonebook/internal/cli/config"
	"github.com/leapstack-labs/phonebook/internal/cli/output"
	"github.com/leapstack-labs/phonebook/internal/state"
	"github.com/leapstack-labs/phonebook/pkg/core"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    *state.SQLiteStore
	Book     *book.Book
	Renderer *output.Renderer
}

// NewCommandContext opens the phone book and creates a renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutStore(cmd)

	store, err := openStore(cmd.Context(), cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}

	cmdCtx.Store = store
	cmdCtx.Book = book.New(store, book.Options{
		Logger:   cmdCtx.Logger,
		Location: cmdCtx.Cfg.Location(),
	})

	cleanup := func() {
		if err := store.Close(); err != nil {
			cmdCtx.Logger.Warn("failed to close database", slog.Any("error", err))
		}
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext without opening the database.
// Useful for commands that don't need database access.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	mode, err := output.ParseMode(cfg.OutputFormat)
	if err != nil {
		logger.Warn("falling back to auto output", slog.String("output", cfg.OutputFormat))
		mode = output.ModeAuto
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
	r.SetLocation(cfg.Location())

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// openStore opens the database file and brings its schema up to date.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*state.SQLiteStore, error) {
	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.DatabasePath); err != nil {
		return nil, fmt.Errorf("failed to open phone book %s: %w", cfg.DatabasePath, err)
	}
	if err := store.InitSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to prepare phone book %s: %w", cfg.DatabasePath, err)
	}
	return store, nil
}

// parseID converts a command argument or prompt answer to a record id.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, &core.ValidationError{Field: "id", Reason: fmt.Sprintf("must be a positive number (got %q)", s)}
	}
	return id, nil
}
