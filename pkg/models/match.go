package models

// MatchResult is a photo whose face matched the user's selfie
type MatchResult struct {
	ImageID      string  `json:"image_id"`
	Name         string  `json:"name"`
	DownloadLink string  `json:"download_link"`
	Score        float64 `json:"score"` // Cosine similarity, higher is better
}
