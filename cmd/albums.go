package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"all-me-match/internal/storage"

	"github.com/spf13/cobra"
)

var albumsCmd = &cobra.Command{
	Use:   "albums",
	Short: "List event albums",
	RunE:  runAlbums,
}

var imagesCmd = &cobra.Command{
	Use:   "images <album>",
	Short: "List the photos of an album",
	Args:  cobra.ExactArgs(1),
	RunE:  runImages,
}

func init() {
	rootCmd.AddCommand(albumsCmd)
	rootCmd.AddCommand(imagesCmd)

	albumsCmd.Flags().Bool("json", false, "Output as JSON")
	imagesCmd.Flags().Bool("json", false, "Output as JSON")
}

func runAlbums(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	jsonOutput := mustGetBool(cmd, "json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a := newApp(cfg)
	defer a.Close()

	albums, err := a.storage.ListAlbums(ctx)
	if err != nil {
		return fmt.Errorf("failed to list albums: %w", err)
	}

	if jsonOutput {
		return outputJSON(storage.ListAlbumsResponse{
			TotalAlbums: len(albums),
			Albums:      albums,
		})
	}

	if len(albums) == 0 {
		fmt.Println("No albums found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tID")
	fmt.Fprintln(w, "----\t--")
	for _, album := range albums {
		fmt.Fprintf(w, "%s\t%s\n", album.Name, album.ID)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d albums\n", len(albums))
	return nil
}

func runImages(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	jsonOutput := mustGetBool(cmd, "json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a := newApp(cfg)
	defer a.Close()

	album, err := a.storage.ResolveAlbum(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve album %q: %w", args[0], err)
	}

	images, err := a.storage.ListImages(ctx, album)
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}

	if jsonOutput {
		return outputJSON(storage.ListImagesResponse{
			Album:  album,
			Images: images,
		})
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tID")
	fmt.Fprintln(w, "----\t--")
	for _, image := range images {
		fmt.Fprintf(w, "%s\t%s\n", image.Name, image.ID)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d photos in %s\n", len(images), album.Name)
	return nil
}
