package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"all-me-match/internal/match"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match <album> <selfie-path>",
	Short: "Find the photos of an album that contain the selfie's face",
	Long: `Match a selfie against every photo of an album and print the matches.

Press Ctrl+C to stop early; matches found so far are still printed.

Examples:
  all-me-match match "Summer Party" me.jpg
  all-me-match match "Summer Party" me.jpg --threshold 0.7 --workers 16
  all-me-match match "Summer Party" me.jpg --json`,
	Args: cobra.ExactArgs(2),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().Bool("json", false, "Output as JSON")
	matchCmd.Flags().Float64("threshold", 0, "Similarity threshold (overrides MATCH_THRESHOLD)")
	matchCmd.Flags().Int("workers", 0, "Parallel workers (overrides MATCH_WORKERS)")
	matchCmd.Flags().Bool("store-selfie", false, "Upload the selfie to Drive before matching")
}

func runMatch(cmd *cobra.Command, args []string) error {
	albumName, selfiePath := args[0], args[1]
	jsonOutput := mustGetBool(cmd, "json")

	selfie, err := os.ReadFile(selfiePath)
	if err != nil {
		return fmt.Errorf("failed to read selfie: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Match.Threshold = mustGetFloat64(cmd, "threshold")
	}
	if w := mustGetInt(cmd, "workers"); w > 0 {
		cfg.Match.Workers = w
	}
	cfg.Server.UploadSelfies = mustGetBool(cmd, "store-selfie")

	a := newApp(cfg)
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var bar *progressbar.ProgressBar
	progress := func(p match.Progress) {
		if jsonOutput {
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(p.Total,
				progressbar.OptionSetDescription("Matching"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("photos"),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionFullWidth(),
			)
		}
		_ = bar.Set(p.Processed)
	}

	result, err := a.match.MatchSelfie(ctx, albumName, selfie, progress)
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}
	if err != nil {
		if errors.Is(err, match.ErrCanceled) {
			fmt.Fprintln(os.Stderr, "Stopped before any match was found.")
		}
		return err
	}

	if jsonOutput {
		return outputJSON(match.NewMatchResponse(result))
	}

	return printMatchResult(result)
}

func printMatchResult(result *match.Result) error {
	if result.Empty {
		fmt.Printf("Album %s has no photos.\n", result.Album.Name)
		return nil
	}

	if len(result.Matches) == 0 {
		fmt.Printf("No matches in %s (%d photos, %d skipped).\n", result.Album.Name, result.Total, result.Skipped)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSCORE\tID")
	fmt.Fprintln(w, "----\t-----\t--")
	for _, m := range result.Matches {
		fmt.Fprintf(w, "%s\t%.3f\t%s\n", m.Name, m.Score, m.ImageID)
	}
	w.Flush()

	fmt.Printf("\n%d matches in %s (%d photos, %d skipped)\n", len(result.Matches), result.Album.Name, result.Total, result.Skipped)
	if result.Canceled {
		fmt.Println("Stopped early: not every photo was compared.")
	}
	return nil
}
