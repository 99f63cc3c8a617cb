package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/ipquiz/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bank over HTTP",
	Long: `Serve exposes the question bank, topic hints and PIN over a JSON API so
that remote clients (IPQUIZ_BACKEND=remote) can share one bank.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides IPQUIZ_HTTP_ADDR)")
	serveCmd.Flags().Bool("request-log", true, "Log every request")
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	addr := rt.cfg.HTTPAddr
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}
	requestLog, _ := cmd.Flags().GetBool("request-log")

	srv := &http.Server{
		Addr: addr,
		Handler: api.NewRouter(api.Options{
			Catalog:     rt.catalog,
			Gate:        rt.gate,
			PINs:        rt.repo,
			Log:         rt.log,
			CORSOrigins: rt.cfg.CORSOrigins,
			RequestLog:  requestLog,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.log.WithField("addr", addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case sig := <-quit:
		rt.log.WithField("signal", sig.String()).Info("Shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	rt.log.Info("Server stopped")
	return nil
}
