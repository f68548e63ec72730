package match

import (
	"all-me-match/internal/face"
	"all-me-match/pkg/models"
)

// Request describes one match run
type Request struct {
	Album     string
	Embedding face.Vector
	// Progress, when set, is called after each image is compared. Calls are serialized.
	Progress func(Progress)
}

type Progress struct {
	Processed int
	Total     int
	Matches   int
	Skipped   int
}

// Result of a match run. Matches follow the album listing order.
type Result struct {
	Album    models.Album
	Matches  []models.MatchResult
	Skipped  int
	Total    int
	Empty    bool
	Canceled bool
}

type MatchResponse struct {
	MatchingImages []models.MatchResult `json:"matching_images"`
	Skipped        int                  `json:"skipped"`
	TotalImages    int                  `json:"total_images"`
	Canceled       bool                 `json:"canceled"`
}

type StartJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

type JobStatusResponse struct {
	JobID        string               `json:"job_id"`
	Album        string               `json:"album"`
	Status       string               `json:"status"`
	Progress     int                  `json:"progress"`
	CurrentImage int                  `json:"current_image"`
	TotalImages  int                  `json:"total_images"`
	MatchesFound int                  `json:"matches_found"`
	Skipped      int                  `json:"skipped"`
	Message      string               `json:"message"`
	Matches      []models.MatchResult `json:"matches,omitempty"`
	Error        string               `json:"error,omitempty"`
}

func NewMatchResponse(result *Result) MatchResponse {
	matches := result.Matches
	if matches == nil {
		matches = []models.MatchResult{}
	}
	return MatchResponse{
		MatchingImages: matches,
		Skipped:        result.Skipped,
		TotalImages:    result.Total,
		Canceled:       result.Canceled,
	}
}
