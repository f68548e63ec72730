package face

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// HTTPEmbedder calls the face embedding service over HTTP
type HTTPEmbedder struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPEmbedder(baseURL string, timeout time.Duration) *HTTPEmbedder {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPEmbedder{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type faceDetection struct {
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

type faceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
}

// Embed posts imageData to /embed/face and returns the embedding of the
// largest detected face
func (e *HTTPEmbedder) Embed(ctx context.Context, imageData []byte) ([]float32, error) {
	body, err := e.postImage(ctx, "/embed/face", imageData)
	if err != nil {
		return nil, err
	}

	var resp faceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response from face embedding service: %w", err)
	}

	face, ok := largestFace(resp.Faces)
	if !ok {
		return nil, ErrNoFace
	}
	if len(face.Embedding) == 0 {
		return nil, errors.New("empty embedding returned")
	}

	return face.Embedding, nil
}

// largestFace picks the face with the biggest bounding box, falling back to
// the first face when boxes are missing
func largestFace(faces []faceDetection) (faceDetection, bool) {
	if len(faces) == 0 {
		return faceDetection{}, false
	}

	best := 0
	bestArea := -1.0
	for i, f := range faces {
		if len(f.BBox) != 4 {
			continue
		}
		area := (f.BBox[2] - f.BBox[0]) * (f.BBox[3] - f.BBox[1])
		if area > bestArea {
			best = i
			bestArea = area
		}
	}
	return faces[best], true
}

// postImage sends imageData as the multipart "file" field and returns the response body
func (e *HTTPEmbedder) postImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image"`)
	h.Set("Content-Type", http.DetectContentType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	url := e.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, handleNetworkError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from face embedding service: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, handleServiceError(resp.StatusCode, body)
	}

	return body, nil
}

// handleNetworkError maps transport failures to package errors. Cancellation
// of ctx is returned as is.
func handleNetworkError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
}

// handleServiceError handles non-200 responses from the face embedding service
func handleServiceError(statusCode int, body []byte) error {
	// FastAPI error format ({"detail": "message"})
	var apiErr struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Detail != "" {
		if strings.Contains(strings.ToLower(apiErr.Detail), "no face") {
			return ErrNoFace
		}
		if statusCode == http.StatusBadRequest || statusCode == http.StatusUnprocessableEntity {
			return fmt.Errorf("%w: %s", ErrDecode, apiErr.Detail)
		}
		return fmt.Errorf("%w: %s", ErrServiceUnavailable, apiErr.Detail)
	}

	switch statusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrDecode
	default:
		return fmt.Errorf("%w: service returned status %d", ErrServiceUnavailable, statusCode)
	}
}
