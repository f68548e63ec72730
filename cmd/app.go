package cmd

import (
	"fmt"

	"all-me-match/internal/config"
	"all-me-match/internal/download"
	"all-me-match/internal/face"
	"all-me-match/internal/match"
	"all-me-match/internal/middleware"
	"all-me-match/internal/providers/googledrive"
	"all-me-match/internal/storage"
	"all-me-match/internal/thumbnail"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// app holds the services shared by every command
type app struct {
	cfg     *config.Config
	storage *storage.Service
	match   *match.Service
}

func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newApp wires the Google Drive store and the HTTP face embedder
func newApp(cfg *config.Config) *app {
	drive := googledrive.NewGoogleDriveService(cfg.GoogleDrive)
	embedder := face.NewHTTPEmbedder(cfg.Face.ServiceURL, cfg.Match.ImageTimeout)
	return newAppWithStore(cfg, drive, embedder)
}

func newAppWithStore(cfg *config.Config, store storage.RemoteStore, embedder face.Embedder) *app {
	storageService := storage.NewService(store, storage.NewDirectoryCache(store), cfg.GoogleDrive.RootFolderID)
	provider := face.NewProvider(embedder, cfg.Face.Dim)

	matchService := match.NewService(storageService, provider, match.Options{
		Threshold:      cfg.Match.Threshold,
		Workers:        cfg.Match.Workers,
		ImageTimeout:   cfg.Match.ImageTimeout,
		UploadSelfies:  cfg.Server.UploadSelfies,
		SelfieFolderID: cfg.Server.SelfieFolderID,
	})

	return &app{
		cfg:     cfg,
		storage: storageService,
		match:   matchService,
	}
}

func (a *app) Close() {
	a.match.Close()
}

// newServer registers every route and middleware on a new Echo instance
func (a *app) newServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.SecurityHeaders(a.cfg.Server.Domain))
	e.Use(middleware.CORSConfig(a.cfg.Server.Domain))
	// Leave room for multipart framing around the selfie
	e.Use(echoMiddleware.BodyLimit(fmt.Sprintf("%dM", a.cfg.Server.MaxFileSizeMB+1)))

	storage.NewHandler(a.storage).RegisterRoutes(e)
	match.NewHandler(a.match, a.cfg.Server.MaxFileSizeBytes()).RegisterRoutes(e)
	download.NewHandler(download.NewService(a.storage)).RegisterRoutes(e)
	thumbnail.NewHandler(a.storage).RegisterRoutes(e)

	return e
}
