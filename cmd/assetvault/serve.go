package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"assetvault/internal/app"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.RequireServe(); err != nil {
				return err
			}
			if addr == "" {
				addr = c.cfg.HTTP.Addr
			}
			return c.serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default HTTP_ADDR)")
	return cmd
}

func (c *cli) serve(ctx context.Context, addr string) error {
	application, err := app.New(ctx, c.log, c.cfg)
	if err != nil {
		c.log.Error("failed to initialize app", slog.String("error", err.Error()))
		return err
	}
	defer application.Close()

	application.StartSessionJanitor(ctx)
	srv, err := application.HTTPServer(addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		c.log.Info("listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		c.log.Error("http server failed", slog.String("error", err.Error()))
		return err
	}

	c.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
