package match

import (
	"all-me-match/pkg/models"
	"fmt"
	"slices"
	"sync"
	"time"
)

const (
	jobStatusProcessing = "processing"
	jobStatusCompleted  = "completed"
	jobStatusFailed     = "failed"

	jobTTL = 24 * time.Hour
)

type jobState struct {
	album        string
	createdAt    time.Time
	status       string
	currentImage int
	totalImages  int
	matchesFound int
	skipped      int
	canceled     bool
	matches      []models.MatchResult
	errorMessage string
}

// JobManager keeps the state of background match jobs.
// Jobs are dropped 24 hours after they were created.
type JobManager struct {
	jobs map[string]*jobState
	mu   sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once
}

func NewJobManager() *JobManager {
	jm := &JobManager{
		jobs: make(map[string]*jobState),
		stop: make(chan struct{}),
	}

	go jm.cleanupExpiredJobs()

	return jm
}

// Stop ends the cleanup loop
func (jm *JobManager) Stop() {
	jm.stopOnce.Do(func() { close(jm.stop) })
}

func (jm *JobManager) cleanupExpiredJobs() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-jm.stop:
			return
		case now := <-ticker.C:
			jm.removeExpired(now)
		}
	}
}

func (jm *JobManager) removeExpired(now time.Time) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	for jobID, job := range jm.jobs {
		if now.Sub(job.createdAt) > jobTTL {
			delete(jm.jobs, jobID)
		}
	}
}

func (jm *JobManager) Store(jobID, album string) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	jm.jobs[jobID] = &jobState{
		album:     album,
		createdAt: time.Now(),
		status:    jobStatusProcessing,
	}
}

func (jm *JobManager) UpdateProgress(jobID string, p Progress) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if job, exists := jm.jobs[jobID]; exists {
		job.currentImage = p.Processed
		job.totalImages = p.Total
		job.matchesFound = p.Matches
		job.skipped = p.Skipped
	}
}

func (jm *JobManager) MarkCompleted(jobID string, result *Result) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if job, exists := jm.jobs[jobID]; exists {
		job.status = jobStatusCompleted
		job.matches = result.Matches
		job.matchesFound = len(result.Matches)
		job.skipped = result.Skipped
		job.totalImages = result.Total
		job.canceled = result.Canceled
		if !result.Canceled {
			job.currentImage = result.Total
		}
	}
}

func (jm *JobManager) MarkFailed(jobID string, errorMessage string) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if job, exists := jm.jobs[jobID]; exists {
		job.status = jobStatusFailed
		job.errorMessage = errorMessage
	}
}

// Get returns a snapshot of the job's status
func (jm *JobManager) Get(jobID string) (*JobStatusResponse, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[jobID]
	if !exists {
		return nil, false
	}

	response := &JobStatusResponse{
		JobID:        jobID,
		Album:        job.album,
		Status:       job.status,
		CurrentImage: job.currentImage,
		TotalImages:  job.totalImages,
		MatchesFound: job.matchesFound,
		Skipped:      job.skipped,
		Error:        job.errorMessage,
	}

	if job.totalImages > 0 {
		response.Progress = (job.currentImage * 100) / job.totalImages
	}

	switch job.status {
	case jobStatusProcessing:
		response.Message = fmt.Sprintf("Processing image %d of %d", job.currentImage, job.totalImages)
	case jobStatusCompleted:
		response.Matches = slices.Clone(job.matches)
		if response.Matches == nil {
			response.Matches = []models.MatchResult{}
		}
		if job.canceled {
			response.Message = fmt.Sprintf("Stopped early. Found %d matches", job.matchesFound)
		} else {
			response.Message = fmt.Sprintf("Completed! Found %d matches", job.matchesFound)
		}
	case jobStatusFailed:
		response.Message = fmt.Sprintf("Failed: %s", job.errorMessage)
	}

	return response, true
}

func (jm *JobManager) Delete(jobID string) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	delete(jm.jobs, jobID)
}
