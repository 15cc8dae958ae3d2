package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/vale981/klayout-converter/internal/server"
	"github.com/vale981/klayout-converter/pkg/convert"
)

// serveCommand creates the serve command, which runs the conversion HTTP
// server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the conversion HTTP server",
		Long: `Run an HTTP server exposing the conversion pipeline.

POST a raw layout file to /convert to receive the JSON polygon data.
The top_cell, name_property and length_unit query parameters override
the configured defaults per request.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the result cache")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, addr string, noCache bool) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	var opts convert.Options
	cfg.ApplyTo(&opts)

	runner, err := c.newRunner(cmd, noCache, cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(runner, c.Logger, opts).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Infof("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
		c.Logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
