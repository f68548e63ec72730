package googledrive

import (
	"all-me-match/internal/config"
	"all-me-match/internal/storage"
	"all-me-match/pkg/models"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"
	"golang.org/x/time/rate"
)

const (
	listPageSize  = 1000
	maxImageBytes = 50 * 1024 * 1024
	listFields    = "nextPageToken,files(id,name,mimeType,webContentLink)"
)

// Service is a Google Drive implementation of storage.RemoteStore.
// It is safe for concurrent use; the access token and HTTP client are shared read-only.
type Service struct {
	httpClient  *http.Client
	baseURL     string
	uploadURL   string
	accessToken string
	limiter     *rate.Limiter
}

// NewGoogleDriveService creates a new Google Drive service
func NewGoogleDriveService(cfg config.GoogleDriveConfig) *Service {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Service{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		uploadURL:   strings.TrimSuffix(cfg.UploadURL, "/"),
		accessToken: cfg.AccessToken,
		limiter:     rate.NewLimiter(limit, burst),
	}
}

// ListTopLevelFolders lists the folders at the top of My Drive
func (s *Service) ListTopLevelFolders(ctx context.Context) ([]models.Folder, error) {
	return s.ListSubfolders(ctx, rootFolderID)
}

// ListSubfolders lists the folders directly inside parentID
func (s *Service) ListSubfolders(ctx context.Context, parentID string) ([]models.Folder, error) {
	q, err := NewQuery().
		MimeTypeEquals(folderMimeType).
		NotTrashed().
		InParents(parentOrRoot(parentID)).
		Build()
	if err != nil {
		return nil, err
	}

	files, err := s.listFiles(ctx, q)
	if err != nil {
		return nil, err
	}

	folders := make([]models.Folder, 0, len(files))
	for _, file := range files {
		folders = append(folders, models.Folder{ID: file.ID, Name: file.Name})
	}
	slog.Info("listed folders", "parent_id", parentOrRoot(parentID), "folders", len(folders))
	return folders, nil
}

// FindFolder returns the first folder called name directly inside parentID
func (s *Service) FindFolder(ctx context.Context, name, parentID string) (*models.Folder, error) {
	q, err := NewQuery().
		NameEquals(name).
		MimeTypeEquals(folderMimeType).
		NotTrashed().
		InParents(parentOrRoot(parentID)).
		Build()
	if err != nil {
		if errors.Is(err, ErrInvalidName) {
			return nil, fmt.Errorf("%w: %v", storage.ErrFolderNotFound, err)
		}
		return nil, err
	}

	files, err := s.listFiles(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		slog.Warn("folder not found", "name", name, "parent_id", parentOrRoot(parentID))
		return nil, storage.ErrFolderNotFound
	}

	slog.Info("folder found", "name", name, "folder_id", files[0].ID)
	return &models.Folder{ID: files[0].ID, Name: files[0].Name}, nil
}

// ListImages lists every image directly inside folderID, oldest first
func (s *Service) ListImages(ctx context.Context, folderID string) ([]models.ImageRef, error) {
	q, err := NewQuery().
		MimeTypeContains("image/").
		NotTrashed().
		InParents(folderID).
		Build()
	if err != nil {
		return nil, err
	}

	files, err := s.listFiles(ctx, q)
	if err != nil {
		return nil, err
	}

	images := make([]models.ImageRef, 0, len(files))
	for _, file := range files {
		images = append(images, models.ImageRef{
			ID:         file.ID,
			Name:       file.Name,
			ContentURL: s.contentURL(file.ID),
		})
	}
	slog.Info("listed images", "folder_id", folderID, "images", len(images))
	return images, nil
}

// FetchBytes downloads the content behind url. The access token is only sent to
// the configured Drive API host.
func (s *Service) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	if s.isDriveURL(rawURL) {
		req.Header.Set("Authorization", "Bearer "+s.accessToken)
	}

	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, oops.In("googledrive").Code("download_failed").With("url", rawURL).Wrapf(err, "failed to read download")
	}
	if len(data) > maxImageBytes {
		return nil, oops.In("googledrive").Code("download_too_large").With("url", rawURL).Errorf("file exceeds %d bytes", maxImageBytes)
	}
	return data, nil
}

// Upload stores data as filename inside folderID using a multipart upload
func (s *Service) Upload(ctx context.Context, folderID string, data []byte, filename string) (*models.UploadedFile, error) {
	if err := ValidateFolderID(folderID); err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(map[string]any{
		"name":    filename,
		"parents": []string{folderID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upload metadata: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	metaHeader := make(textproto.MIMEHeader)
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata part: %w", err)
	}
	if _, err := metaPart.Write(metadata); err != nil {
		return nil, fmt.Errorf("failed to write metadata part: %w", err)
	}

	mediaHeader := make(textproto.MIMEHeader)
	mediaHeader.Set("Content-Type", http.DetectContentType(data))
	mediaPart, err := writer.CreatePart(mediaHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create media part: %w", err)
	}
	if _, err := mediaPart.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write media part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	params := url.Values{}
	params.Set("uploadType", "multipart")
	params.Set("fields", "id,webViewLink")
	params.Set("supportsAllDrives", "true")
	apiURL := fmt.Sprintf("%s/files?%s", s.uploadURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())

	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var file File
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	slog.Info("uploaded file", "folder_id", folderID, "file_id", file.ID, "name", filename)
	return &models.UploadedFile{ID: file.ID, ViewLink: file.WebViewLink}, nil
}

// listFiles runs a files.list query and follows every page
func (s *Service) listFiles(ctx context.Context, q string) ([]File, error) {
	var allFiles []File
	var pageToken string

	for {
		params := url.Values{}
		params.Set("q", q)
		params.Set("fields", listFields)
		params.Set("orderBy", "createdTime")
		params.Set("pageSize", fmt.Sprintf("%d", listPageSize))
		params.Set("supportsAllDrives", "true")
		params.Set("includeItemsFromAllDrives", "true")
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		apiURL := fmt.Sprintf("%s/files?%s", s.baseURL, params.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+s.accessToken)

		resp, err := s.do(req)
		if err != nil {
			return nil, err
		}

		var driveResp APIResponse
		err = json.NewDecoder(resp.Body).Decode(&driveResp)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		allFiles = append(allFiles, driveResp.Files...)

		if driveResp.NextPageToken == "" {
			break
		}
		pageToken = driveResp.NextPageToken
	}

	return allFiles, nil
}

// do waits for the rate limiter, executes req and turns non-200 responses into errors
func (s *Service) do(req *http.Request) (*http.Response, error) {
	if err := s.limiter.Wait(req.Context()); err != nil {
		return nil, oops.In("googledrive").Code("rate_limited").Wrapf(err, "rate limiter wait")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, oops.In("googledrive").
			Code("request_failed").
			With("method", req.Method, "path", req.URL.Path).
			Wrapf(err, "failed to execute request")
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, s.handleAPIError(req, resp)
	}

	return resp, nil
}

// handleAPIError processes Google Drive API error responses
func (s *Service) handleAPIError(req *http.Request, resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil {
		var errorResponse struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
				Status  string `json:"status"`
			} `json:"error"`
		}
		if jsonErr := json.Unmarshal(body, &errorResponse); jsonErr == nil {
			apiErr.Status = errorResponse.Error.Status
			apiErr.Message = errorResponse.Error.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(body))
		}
	}

	return oops.In("googledrive").
		Code("api_error").
		With("status_code", resp.StatusCode, "method", req.Method, "path", req.URL.Path).
		Wrap(apiErr)
}

func (s *Service) contentURL(fileID string) string {
	return fmt.Sprintf("%s/files/%s?alt=media", s.baseURL, url.PathEscape(fileID))
}

func (s *Service) isDriveURL(rawURL string) bool {
	return strings.HasPrefix(rawURL, s.baseURL+"/")
}

func parentOrRoot(parentID string) string {
	if parentID == "" {
		return rootFolderID
	}
	return parentID
}

var _ storage.RemoteStore = (*Service)(nil)
