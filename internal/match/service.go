package match

import (
	"all-me-match/internal/face"
	"all-me-match/internal/storage"
	"all-me-match/pkg/models"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultWorkers      = 8
	defaultImageTimeout = 30 * time.Second
	jobTimeout          = 60 * time.Minute
)

type Options struct {
	Threshold    float64
	Workers      int
	ImageTimeout time.Duration
	// UploadSelfies stores every submitted selfie before matching, in
	// SelfieFolderID or the album itself when empty
	UploadSelfies  bool
	SelfieFolderID string
}

type Service struct {
	store      AlbumStore
	provider   FaceProvider
	opts       Options
	jobManager *JobManager
}

func NewService(store AlbumStore, provider FaceProvider, opts Options) *Service {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.ImageTimeout <= 0 {
		opts.ImageTimeout = defaultImageTimeout
	}
	return &Service{
		store:      store,
		provider:   provider,
		opts:       opts,
		jobManager: NewJobManager(),
	}
}

// Close stops background job cleanup
func (s *Service) Close() {
	s.jobManager.Stop()
}

// MatchAlbum returns the photos of album whose face matches userEmbedding,
// in album order, and how many photos had to be skipped
func (s *Service) MatchAlbum(ctx context.Context, album string, userEmbedding face.Vector) ([]models.MatchResult, int, error) {
	result, err := s.Match(ctx, Request{Album: album, Embedding: userEmbedding})
	if err != nil {
		return nil, 0, err
	}
	return result.Matches, result.Skipped, nil
}

// Match runs the match pipeline: resolve the album, list its photos, then
// compare every photo against the query embedding with a bounded worker pool.
// Photos that cannot be fetched, decoded or embedded are skipped. When ctx is
// canceled the matches confirmed so far are returned with Canceled set, or
// ErrCanceled when there are none.
func (s *Service) Match(ctx context.Context, req Request) (*Result, error) {
	if len(req.Embedding) == 0 {
		return nil, ErrNoFaceInQuery
	}
	if len(req.Embedding) != s.provider.Dim() {
		return nil, fmt.Errorf("%w: query has %d values, expected %d", face.ErrDimensionMismatch, len(req.Embedding), s.provider.Dim())
	}

	album, err := s.store.ResolveAlbum(ctx, req.Album)
	if err != nil {
		return nil, s.wrapLookupError(ctx, req.Album, err)
	}

	images, err := s.store.ListImages(ctx, album)
	if err != nil {
		return nil, s.wrapLookupError(ctx, req.Album, err)
	}

	result := &Result{
		Album:   album,
		Matches: []models.MatchResult{},
		Total:   len(images),
	}
	if len(images) == 0 {
		result.Empty = true
		slog.Info("album is empty", "album", album.Name)
		return result, nil
	}

	start := time.Now()
	outcomes := s.compareAll(ctx, images, req)

	for _, out := range outcomes {
		switch out.kind {
		case outcomeMatched:
			result.Matches = append(result.Matches, out.match)
		case outcomeSkipped:
			result.Skipped++
		case outcomePending, outcomeCanceled:
			result.Canceled = true
		}
	}

	slog.Info("album matched",
		"album", album.Name,
		"images", result.Total,
		"matches", len(result.Matches),
		"skipped", result.Skipped,
		"canceled", result.Canceled,
		"duration", time.Since(start),
	)

	if result.Canceled && len(result.Matches) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrCanceled, context.Cause(ctx))
	}
	return result, nil
}

// MatchSelfie extracts the face from selfie, optionally stores the selfie in
// the album, and matches it against the album
func (s *Service) MatchSelfie(ctx context.Context, album string, selfie []byte, progress func(Progress)) (*Result, error) {
	embedding, err := s.prepareSelfie(ctx, album, selfie)
	if err != nil {
		return nil, err
	}
	return s.Match(ctx, Request{Album: album, Embedding: embedding, Progress: progress})
}

// StartMatchJob validates selfie and runs the match in the background.
// The returned job ID is polled with GetJobStatus.
func (s *Service) StartMatchJob(ctx context.Context, album string, selfie []byte) (string, error) {
	embedding, err := s.prepareSelfie(ctx, album, selfie)
	if err != nil {
		return "", err
	}

	jobID := uuid.NewString()
	s.jobManager.Store(jobID, album)

	go func() {
		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), jobTimeout)
		defer cancel()

		result, err := s.Match(jobCtx, Request{
			Album:     album,
			Embedding: embedding,
			Progress: func(p Progress) {
				s.jobManager.UpdateProgress(jobID, p)
			},
		})
		if err != nil {
			slog.Error("match job failed", "job_id", jobID, "album", album, "error", err)
			s.jobManager.MarkFailed(jobID, GetErrorResponse(err).Message)
			return
		}
		s.jobManager.MarkCompleted(jobID, result)
	}()

	slog.Info("match job started", "job_id", jobID, "album", album)
	return jobID, nil
}

// GetJobStatus returns the progress or result of a match job
func (s *Service) GetJobStatus(jobID string) (*JobStatusResponse, error) {
	status, ok := s.jobManager.Get(jobID)
	if !ok {
		return nil, ErrJobNotFound
	}
	return status, nil
}

// prepareSelfie returns the selfie embedding and stores the selfie when enabled
func (s *Service) prepareSelfie(ctx context.Context, album string, selfie []byte) (face.Vector, error) {
	ext, err := s.provider.Extract(ctx, selfie)
	if err != nil {
		return nil, err
	}

	switch ext.Status {
	case face.StatusDecodeError:
		return nil, fmt.Errorf("%w: %s", ErrInvalidSelfie, ext.Reason)
	case face.StatusNoFace:
		return nil, ErrNoFaceInQuery
	}

	if s.opts.UploadSelfies {
		if err := s.uploadSelfie(ctx, album, selfie); err != nil {
			return nil, err
		}
	}

	return ext.Vector, nil
}

// uploadSelfie stores selfie in the configured selfie folder or the album.
// Upload failures are logged and do not stop matching.
func (s *Service) uploadSelfie(ctx context.Context, album string, selfie []byte) error {
	folderID := s.opts.SelfieFolderID
	if folderID == "" {
		resolved, err := s.store.ResolveAlbum(ctx, album)
		if err != nil {
			return s.wrapLookupError(ctx, album, err)
		}
		folderID = resolved.ID
	}

	filename := "selfie-" + uuid.NewString() + selfieExtension(selfie)
	uploaded, err := s.store.Upload(ctx, folderID, selfie, filename)
	if err != nil {
		slog.Warn("failed to store selfie", "album", album, "folder_id", folderID, "error", err)
		return nil
	}

	slog.Info("stored selfie", "album", album, "file_id", uploaded.ID)
	return nil
}

type outcomeKind int

const (
	outcomePending outcomeKind = iota
	outcomeMatched
	outcomeRejected
	outcomeSkipped
	outcomeCanceled
)

type outcome struct {
	kind  outcomeKind
	match models.MatchResult
}

// compareAll compares every image against the query with a bounded worker
// pool. Outcomes are index-aligned with images; images never handed to a
// worker stay outcomePending.
func (s *Service) compareAll(ctx context.Context, images []models.ImageRef, req Request) []outcome {
	outcomes := make([]outcome, len(images))

	type job struct {
		index int
		image models.ImageRef
	}
	jobs := make(chan job)

	var (
		progressMu sync.Mutex
		progress   = Progress{Total: len(images)}
	)
	report := func(out outcome) {
		if req.Progress == nil {
			return
		}
		progressMu.Lock()
		defer progressMu.Unlock()
		progress.Processed++
		switch out.kind {
		case outcomeMatched:
			progress.Matches++
		case outcomeSkipped:
			progress.Skipped++
		}
		req.Progress(progress)
	}

	workers := min(s.opts.Workers, len(images))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					outcomes[j.index] = outcome{kind: outcomeCanceled}
					continue
				}
				out := s.compareImage(ctx, j.image, req.Embedding)
				outcomes[j.index] = out
				if out.kind != outcomeCanceled {
					report(out)
				}
			}
		}()
	}

	// Stop handing out work once ctx is done
	func() {
		defer close(jobs)
		for i, image := range images {
			select {
			case jobs <- job{index: i, image: image}:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	return outcomes
}

// compareImage fetches one image, extracts its face and scores it against
// query, all under the per-image timeout
func (s *Service) compareImage(ctx context.Context, image models.ImageRef, query face.Vector) outcome {
	imageCtx, cancel := context.WithTimeout(ctx, s.opts.ImageTimeout)
	defer cancel()

	data, err := s.store.FetchImage(imageCtx, image)
	if err != nil {
		if ctx.Err() != nil {
			return outcome{kind: outcomeCanceled}
		}
		slog.Warn("skipping image: fetch failed", "image_id", image.ID, "name", image.Name, "error", err)
		return outcome{kind: outcomeSkipped}
	}

	ext, err := s.provider.Extract(imageCtx, data)
	if err != nil {
		if ctx.Err() != nil {
			return outcome{kind: outcomeCanceled}
		}
		if errors.Is(err, face.ErrDimensionMismatch) {
			slog.Error("skipping image: embedding dimension mismatch", "image_id", image.ID, "name", image.Name, "error", err)
		} else {
			slog.Warn("skipping image: embedding failed", "image_id", image.ID, "name", image.Name, "error", err)
		}
		return outcome{kind: outcomeSkipped}
	}

	switch ext.Status {
	case face.StatusDecodeError:
		slog.Warn("skipping image: decode failed", "image_id", image.ID, "name", image.Name, "reason", ext.Reason)
		return outcome{kind: outcomeSkipped}
	case face.StatusNoFace:
		slog.Debug("skipping image: no face", "image_id", image.ID, "name", image.Name)
		return outcome{kind: outcomeSkipped}
	}

	score, err := face.Score(query, ext.Vector)
	if err != nil {
		slog.Error("skipping image: cannot score", "image_id", image.ID, "name", image.Name, "error", err)
		return outcome{kind: outcomeSkipped}
	}

	if !face.IsMatch(score, s.opts.Threshold) {
		return outcome{kind: outcomeRejected}
	}

	return outcome{
		kind: outcomeMatched,
		match: models.MatchResult{
			ImageID:      image.ID,
			Name:         image.Name,
			DownloadLink: image.ContentURL,
			Score:        score,
		},
	}
}

// wrapLookupError maps album resolution and listing failures to match errors
func (s *Service) wrapLookupError(ctx context.Context, album string, err error) error {
	switch {
	case errors.Is(err, storage.ErrFolderNotFound):
		return fmt.Errorf("%w: %s", ErrAlbumNotFound, album)
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %w", ErrCanceled, context.Cause(ctx))
	default:
		return err
	}
}

func selfieExtension(data []byte) string {
	info, err := face.Inspect(data)
	if err != nil {
		return ""
	}
	if info.Format == "jpeg" {
		return ".jpg"
	}
	return "." + info.Format
}

// DeleteJob forgets a match job
func (s *Service) DeleteJob(jobID string) error {
	if _, ok := s.jobManager.Get(jobID); !ok {
		return ErrJobNotFound
	}
	s.jobManager.Delete(jobID)
	return nil
}
