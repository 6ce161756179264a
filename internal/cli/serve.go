package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/tada/internal/server"
	"github.com/idilsaglam/tada/internal/ui"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the todo service over the local store",
		Long: `Serve the local store over HTTP so other clients can use it with
--server or TADA_SERVER.

Endpoints:
  GET    /todos              list items
  POST   /todos              create {"text": "..."}
  PUT    /todos              replace the whole list
  POST   /todos/{id}/toggle  flip completion
  DELETE /todos/{id}         delete
  GET    /health             health check

Set serve_token (TADA_SERVE_TOKEN) to require a bearer token.`,
		Args: exactArgs(0, "serve"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer a.release(s)

			srv := server.New(s, server.Config{
				Addr:   a.cfg.Listen,
				Token:  a.cfg.ServeToken,
				Logger: a.logger,
			})

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			ui.OK(a.out, fmt.Sprintf("serving %s store on http://%s", a.cfg.Backend, a.cfg.Listen))
			if err := srv.ListenAndServe(ctx); err != nil {
				return err
			}
			ui.OK(a.out, "stopped")
			return nil
		},
	}
	cmd.Flags().String("listen", "", "address to listen on (default localhost:8080)")
	cmd.Flags().String("token", "", "require this bearer token from clients")
	_ = a.v.BindPFlag("listen", cmd.Flags().Lookup("listen"))
	_ = a.v.BindPFlag("serve_token", cmd.Flags().Lookup("token"))
	return cmd
}
