package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/tada/internal/auth"
	"github.com/idilsaglam/tada/internal/ui"
)

func (a *app) authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Token authentication for a remote service",
		Args: func(cmd *cobra.Command, args []string) error {
			return usagef("usage: todo auth <login|logout|status|whoami>")
		},
		RunE: func(cmd *cobra.Command, args []string) error { return nil },
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "login",
			Short: "Save a token",
			Args:  exactArgs(0, "auth login"),
			RunE:  func(cmd *cobra.Command, args []string) error { return a.authLogin() },
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Delete the saved token",
			Args:  exactArgs(0, "auth logout"),
			RunE:  func(cmd *cobra.Command, args []string) error { return a.authLogout() },
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show where the token comes from",
			Args:  exactArgs(0, "auth status"),
			RunE:  func(cmd *cobra.Command, args []string) error { return a.authStatus() },
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Decode the token payload when it is a JWT",
			Args:  exactArgs(0, "auth whoami"),
			RunE:  func(cmd *cobra.Command, args []string) error { return a.authWhoAmI() },
		},
	)
	return cmd
}

func (a *app) authLogin() error {
	fmt.Fprint(a.out, "Paste your token: ")
	line, err := bufio.NewReader(a.in).ReadString('\n')
	token := strings.TrimSpace(line)
	if token == "" {
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		return usagef("login: empty token")
	}
	if err := a.authStore().Set(token, nil); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	ui.OK(a.out, "logged in")
	return nil
}

func (a *app) authLogout() error {
	ti, _ := a.authStore().Get()
	if ti != nil && ti.Source == "env" {
		ui.OK(a.out, "token is provided by "+auth.EnvToken+" env var (nothing to delete)")
		return nil
	}
	if err := a.authStore().Delete(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	ui.OK(a.out, "logged out")
	return nil
}

func (a *app) authStatus() error {
	ti, err := a.authStore().Get()
	if err != nil {
		return err
	}
	if ti == nil {
		fmt.Fprintln(a.out, ui.Current().Muted.Render("not logged in"))
		fmt.Fprintln(a.out, "Run: todo auth login")
		return nil
	}
	fmt.Fprintf(a.out, "source: %s\n", ti.Source)
	if ti.ExpiresAt != nil {
		fmt.Fprintf(a.out, "expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
	} else {
		fmt.Fprintln(a.out, "expires: (unknown)")
	}
	fmt.Fprintln(a.out, "env override: "+auth.EnvToken)
	return nil
}

// whoami decodes a JWT locally (unsigned); opaque tokens print basic info.
func (a *app) authWhoAmI() error {
	ti, err := a.authStore().Get()
	if err != nil {
		return err
	}
	if ti == nil {
		return usagef("not logged in. Run: todo auth login")
	}
	if p, ok := auth.Payload(ti.Token); ok {
		fmt.Fprintln(a.out, "JWT payload:")
		fmt.Fprintln(a.out, p)
		return nil
	}
	fmt.Fprintln(a.out, "Opaque token (cannot introspect locally).")
	fmt.Fprintln(a.out, "source:", ti.Source)
	return nil
}
