package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"all-me-match/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "all-me-match",
	Short: "Find every photo of you in an event album",
	Long: `All Me Match compares a selfie against the photos of an event album
stored in Google Drive and returns every photo that contains a matching face.

It runs as an HTTP API (serve) or directly from the command line (match).`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// Load .env file for local development (ignored in Docker)
	if os.Getenv("DOCKER_ENV") == "" {
		_ = godotenv.Load()
	}

	cfg := config.Load()
	slog.SetDefault(newLogger(cfg.Log, os.Stderr))
}

// newLogger builds a text or JSON slog logger at the configured level.
// Unknown levels fall back to info.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
