package googledrive

import "fmt"

const (
	folderMimeType = "application/vnd.google-apps.folder"
	rootFolderID   = "root"
)

type File struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	MimeType       string `json:"mimeType"`
	WebViewLink    string `json:"webViewLink"`
	WebContentLink string `json:"webContentLink"`
}

type APIResponse struct {
	Files         []File `json:"files"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

// APIError is a non-2xx response from the Google Drive API
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status == "" && e.Message == "" {
		return fmt.Sprintf("google Drive API request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("google Drive API error (%d): %s - %s", e.StatusCode, e.Status, e.Message)
}
