// Package cli is the `todo` command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/ui"
)

// Exit codes: 0 ok, 1 error, 2 usage.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// usageError marks bad invocations so Execute can exit with ExitUsage.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, a ...any) error { return usageError{fmt.Sprintf(format, a...)} }

// app is the state shared by every command of one invocation.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer

	in          io.Reader
	out, errOut io.Writer
}

// Execute runs the CLI with args and returns an exit code.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	a := &app{v: config.New(), in: in, out: out, errOut: errOut}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if a.closer != nil {
		_ = a.closer.Close()
	}
	if err == nil {
		return ExitOK
	}
	ui.Fail(errOut, err.Error())
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(errOut)
		fmt.Fprintln(errOut, root.UsageString())
		return ExitUsage
	}
	return ExitError
}

func (a *app) rootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:           "todo",
		Short:         "todo - a tiny list client kept in sync with a todo service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cfgFile)
		},
		Example: `  todo add "Buy milk"
  todo ls
  todo done 2
  todo rm 3
  todo serve --listen :8080
  TADA_SERVER=http://localhost:8080 todo ui`,
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ~/.tada/config.{yaml,toml,json})")
	pf.String("server", "", "remote service URL; empty uses the local store")
	pf.String("backend", config.BackendJSON, "local store backend: json or sqlite")
	pf.String("data-dir", "", "directory of the local store (default ~/.tada)")
	pf.Duration("timeout", 0, "per-request timeout for the remote service")
	pf.String("theme", "", "color theme: classic, neon or mono")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	for key, flag := range map[string]string{
		"server":    "server",
		"backend":   "backend",
		"data_dir":  "data-dir",
		"timeout":   "timeout",
		"theme":     "theme",
		"log.level": "log-level",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		a.lsCmd(),
		a.addCmd(),
		a.doneCmd(),
		a.rmCmd(),
		a.uiCmd(),
		a.serveCmd(),
		a.authCmd(),
	)
	return root
}

func (a *app) setup(cfgFile string) error {
	cfg, err := config.Load(a.v, cfgFile)
	if err != nil {
		return err
	}
	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg, a.logger, a.closer = cfg, logger, closer
	ui.SetTheme(cfg.Theme)
	return nil
}

// parseID accepts "3" or "#3".
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, usagef("not an item id: %s", s)
	}
	return id, nil
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: todo %s", usage)
		}
		return nil
	}
}
