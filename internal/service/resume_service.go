package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jiffyapply/internal/cache"
	"jiffyapply/internal/errors"
	"jiffyapply/internal/lib/sl"
	"jiffyapply/internal/metrics"
	"jiffyapply/internal/model"
	"jiffyapply/internal/repository"
	"jiffyapply/internal/resume"
)

// Upload is a received resume file.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// ResumeService runs the resume ingestion pipeline.
type ResumeService interface {
	Upload(ctx context.Context, userID uuid.UUID, up Upload) (*model.Resume, error)
}

type resumeService struct {
	repo   repository.UserRepository
	parser resume.Parser
	cache  *cache.Client
	log    *slog.Logger
	now    func() time.Time
}

// NewResumeService creates a new resume service.
func NewResumeService(repo repository.UserRepository, parser resume.Parser, cache *cache.Client, log *slog.Logger) ResumeService {
	return &resumeService{
		repo:   repo,
		parser: parser,
		cache:  cache,
		log:    log,
		now:    time.Now,
	}
}

// Upload validates, extracts and parses the document, then replaces the
// user's stored resume. Nothing is stored unless every step succeeds.
func (s *resumeService) Upload(ctx context.Context, userID uuid.UUID, up Upload) (*model.Resume, error) {
	const op = "service.resume.Upload"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID.String()))

	if len(up.Data) == 0 {
		return nil, errors.New(errors.ErrValidation, "no file uploaded")
	}
	size := up.Size
	if size < int64(len(up.Data)) {
		size = int64(len(up.Data))
	}
	if err := resume.CheckSize(size); err != nil {
		metrics.ResumeParses.WithLabelValues("rejected").Inc()
		return nil, err
	}

	mime, err := resume.ResolveMIME(up.ContentType, up.Data)
	if err != nil {
		metrics.ResumeParses.WithLabelValues("rejected").Inc()
		return nil, err
	}

	text, err := resume.ExtractText(mime, up.Data)
	if err != nil {
		metrics.ResumeParses.WithLabelValues("extraction_failed").Inc()
		log.Info("resume extraction failed", slog.String("mime", mime), sl.Err(err))
		return nil, err
	}

	res, err := s.parser.Parse(ctx, text)
	if err != nil {
		outcome := "parse_failed"
		if stderrors.Is(err, errors.ErrUpstream) {
			outcome = "upstream_failed"
		}
		metrics.ResumeParses.WithLabelValues(outcome).Inc()
		log.Error("resume parse failed", sl.Err(err))
		return nil, err
	}

	stored := &model.Resume{
		OriginalText: text,
		Parsed:       res.Parsed,
		UploadedAt:   s.now(),
	}
	if err := s.repo.UpdateResume(ctx, userID, stored); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("store resume: %w", err)
	}
	invalidateUser(ctx, s.cache, userID)

	outcome := "ok"
	if res.UsedFallback {
		outcome = "fallback"
	}
	metrics.ResumeParses.WithLabelValues(outcome).Inc()
	log.Info("resume stored", slog.String("file", up.Filename), slog.Bool("fallback", res.UsedFallback))

	return stored, nil
}
