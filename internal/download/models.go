package download

// ZipRequest represents the request body for ZIP download
type ZipRequest struct {
	ImageIDs []string `json:"image_ids"`
}
