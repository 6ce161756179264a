package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/tada/internal/syncer"
	"github.com/idilsaglam/tada/internal/tui"
	"github.com/idilsaglam/tada/internal/ui"
)

// withCore opens the gateway, runs fn against a fresh Core and closes the
// gateway afterwards.
func (a *app) withCore(ctx context.Context, load bool, fn func(*syncer.Core) error) error {
	gw, closer, err := a.openGateway()
	if err != nil {
		return err
	}
	defer a.release(closer)

	core := syncer.New(gw, syncer.WithLogger(a.logger))
	if load {
		if err := core.InitialLoad(ctx); err != nil {
			return fmt.Errorf("load: %w", err)
		}
	}
	return fn(core)
}

func (a *app) lsCmd() *cobra.Command {
	var group bool
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List items",
		Args:  exactArgs(0, "ls"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCore(cmd.Context(), true, func(core *syncer.Core) error {
				renderList(a.out, core.Items(), group)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done")
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a new item (text can be multiple words)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usagef("usage: todo add <text...>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return a.withCore(cmd.Context(), false, func(core *syncer.Core) error {
				it, err := core.Add(cmd.Context(), text)
				if errors.Is(err, syncer.ErrEmptyText) {
					return usagef("add: empty text")
				}
				if err != nil {
					return err
				}
				ui.OK(a.out, fmt.Sprintf("added #%d", it.ID))
				return nil
			})
		},
	}
}

func (a *app) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle done for the item with id",
		Args:  exactArgs(1, "done <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withCore(cmd.Context(), true, func(core *syncer.Core) error {
				if err := core.Toggle(cmd.Context(), id); err != nil {
					return withHint(err)
				}
				it, _ := core.Get(id)
				state := "pending"
				if it.Completed {
					state = "done"
				}
				ui.OK(a.out, fmt.Sprintf("toggled #%d (%s)", id, state))
				return nil
			})
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove the item with id",
		Args:  exactArgs(1, "rm <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withCore(cmd.Context(), true, func(core *syncer.Core) error {
				if err := core.Remove(cmd.Context(), id); err != nil {
					return withHint(err)
				}
				ui.OK(a.out, fmt.Sprintf("removed #%d", id))
				return nil
			})
		},
	}
}

func (a *app) uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Interactive list",
		Args:  exactArgs(0, "ui"),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, closer, err := a.openGateway()
			if err != nil {
				return err
			}
			defer a.release(closer)
			// stderr would garble the alt screen
			logger := a.logger
			if a.cfg.Log.File == "" {
				logger = slog.New(slog.NewTextHandler(io.Discard, nil))
			}
			return tui.Run(cmd.Context(), gw, logger)
		},
	}
}

// withHint turns an unknown id into a usage error with a pointer to ls.
func withHint(err error) error {
	if errors.Is(err, syncer.ErrNotFound) {
		return usagef("%v (run `todo ls` to see valid ids)", err)
	}
	return err
}
