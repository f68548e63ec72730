package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the match API server",
	Long: `Start the HTTP API server.

Endpoints:
  GET    /albums                            list albums
  GET    /albums/:album/images              list album photos
  GET    /albums/:album/images/:id/content  photo bytes or thumbnail (?size=)
  POST   /albums/:album/match               match a selfie (multipart "image")
  POST   /albums/:album/match-jobs          start a background match
  GET    /match-jobs/:jobId                 poll a background match
  DELETE /match-jobs/:jobId                 forget a background match
  POST   /albums/:album/download            zip the listed photos
  GET    /healthz                           liveness`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a := newApp(cfg)
	defer a.Close()

	port := a.cfg.Server.Port
	if p := mustGetInt(cmd, "port"); p > 0 {
		port = p
	}

	e := a.newServer()

	go func() {
		slog.Info("starting all me match server", "port", port)
		if err := e.Start(fmt.Sprintf(":%d", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
