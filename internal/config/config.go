package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server      ServerConfig
	GoogleDrive GoogleDriveConfig
	Face        FaceConfig
	Match       MatchConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port           int
	Domain         string // public domain used for CORS and CSP, empty for local development
	MaxFileSizeMB  int    // maximum selfie upload size
	UploadSelfies  bool   // store submitted selfies in the album before matching
	SelfieFolderID string // optional dedicated folder for stored selfies, defaults to the album itself
}

// MaxFileSizeBytes returns the upload limit in bytes
func (c *ServerConfig) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

type GoogleDriveConfig struct {
	AccessToken  string
	RootFolderID string  // folder whose direct subfolders are the albums, empty for My Drive top level
	BaseURL      string  // defaults to https://www.googleapis.com/drive/v3
	UploadURL    string  // defaults to https://www.googleapis.com/upload/drive/v3
	RateLimit    float64 // requests per second across all requests
	RateBurst    int
	Timeout      time.Duration
}

type FaceConfig struct {
	ServiceURL string
	Dim        int // embedding dimensionality produced by the face model
}

type MatchConfig struct {
	Threshold    float64
	Workers      int
	ImageTimeout time.Duration
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads a non-negative float, falling back to defaultVal.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return f
	}
	return defaultVal
}

// envDuration accepts Go duration strings ("30s") or plain seconds ("30").
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return defaultVal
	}
	return b
}

func envString(key, defaultVal string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           envInt("PORT", 8080),
			Domain:         os.Getenv("DOMAIN"),
			MaxFileSizeMB:  envInt("MAX_FILE_SIZE_MB", 5),
			UploadSelfies:  envBool("UPLOAD_SELFIES", false),
			SelfieFolderID: os.Getenv("SELFIE_FOLDER_ID"),
		},
		GoogleDrive: GoogleDriveConfig{
			AccessToken:  os.Getenv("GOOGLEDRIVE_ACCESS_TOKEN"),
			RootFolderID: os.Getenv("ALBUMS_ROOT_FOLDER_ID"),
			BaseURL:      envString("GOOGLEDRIVE_BASE_URL", "https://www.googleapis.com/drive/v3"),
			UploadURL:    envString("GOOGLEDRIVE_UPLOAD_URL", "https://www.googleapis.com/upload/drive/v3"),
			RateLimit:    envFloat("DRIVE_RATE_LIMIT", 10),
			RateBurst:    envInt("DRIVE_RATE_BURST", 10),
			Timeout:      envDuration("DRIVE_TIMEOUT", 30*time.Second),
		},
		Face: FaceConfig{
			ServiceURL: os.Getenv("FACE_SERVICE_URL"),
			Dim:        envInt("EMBEDDING_DIM", 128),
		},
		Match: MatchConfig{
			Threshold:    envFloat("MATCH_THRESHOLD", 0.6),
			Workers:      envInt("MATCH_WORKERS", 8),
			ImageTimeout: envDuration("MATCH_IMAGE_TIMEOUT", 30*time.Second),
		},
		Log: LogConfig{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "text"),
		},
	}
}

// Validate reports every required setting that is missing
func (c *Config) Validate() error {
	var errs []error
	if c.GoogleDrive.AccessToken == "" {
		errs = append(errs, errors.New("GOOGLEDRIVE_ACCESS_TOKEN environment variable is required"))
	}
	if c.Face.ServiceURL == "" {
		errs = append(errs, errors.New("FACE_SERVICE_URL environment variable is required"))
	}
	if c.Match.Threshold > 1 {
		errs = append(errs, errors.New("MATCH_THRESHOLD must be between 0 and 1"))
	}
	return errors.Join(errs...)
}
