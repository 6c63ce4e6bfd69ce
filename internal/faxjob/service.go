package faxjob

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ahmethakanbesel/fax-api/internal/apperror"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, req CreateJobRequest) (*Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	j := &Job{
		ID:               id,
		FileURL:          req.FileURL,
		FaxNumber:        req.FaxNumber,
		Status:           StatusPending,
		RequestUser:      req.RequestUser,
		FileName:         req.FileName,
		CallbackURL:      req.CallbackURL,
		OrderDestination: req.OrderDestination,
	}
	if err := s.repo.Create(ctx, j); err != nil {
		return nil, err
	}
	slog.Info("fax job queued", "job", j.ID, "fax", j.FaxNumber, "user", j.RequestUser)
	return j, nil
}

func (s *Service) Get(ctx context.Context, req GetJobRequest) (*Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, req.ID)
}

func (s *Service) Search(ctx context.Context, f Filter) ([]Job, error) {
	return s.repo.Search(ctx, f)
}

func (s *Service) MarkPending(ctx context.Context, j *Job) error {
	return s.transition(ctx, j, StatusPending, nil)
}

func (s *Service) MarkProcessing(ctx context.Context, j *Job) error {
	return s.transition(ctx, j, StatusProcessing, nil)
}

func (s *Service) MarkCompleted(ctx context.Context, j *Job) error {
	return s.transition(ctx, j, StatusCompleted, nil)
}

// MarkError moves j to StatusError. An empty message keeps whatever error
// message the job already had.
func (s *Service) MarkError(ctx context.Context, j *Job, message string) error {
	var msg *string
	if message != "" {
		msg = &message
	}
	return s.transition(ctx, j, StatusError, msg)
}

// Mark applies the transition selected by status.
func (s *Service) Mark(ctx context.Context, j *Job, status Status, message string) error {
	if !status.Valid() {
		return apperror.New(apperror.BadRequest, "unknown status")
	}
	switch status {
	case StatusPending:
		return s.MarkPending(ctx, j)
	case StatusProcessing:
		return s.MarkProcessing(ctx, j)
	case StatusCompleted:
		return s.MarkCompleted(ctx, j)
	}
	return s.MarkError(ctx, j, message)
}

func (s *Service) transition(ctx context.Context, j *Job, status Status, msg *string) error {
	updatedAt, err := s.repo.UpdateStatus(ctx, j.ID, status, msg)
	if err != nil {
		slog.Error("fax job status update failed", "job", j.ID, "status", status.Label(), "error", err)
		return err
	}
	from := j.Status
	j.Status = status
	if msg != nil {
		j.ErrorMessage = *msg
	}
	j.UpdatedAt = updatedAt
	slog.Info("fax job status changed", "job", j.ID, "from", from.Label(), "to", status.Label())
	return nil
}

func (s *Service) SetConvertedPDF(ctx context.Context, j *Job, req SetConvertedPDFRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	updatedAt, err := s.repo.SetConvertedPDF(ctx, j.ID, req.Path)
	if err != nil {
		return err
	}
	j.ConvertedPDFPath = req.Path
	j.UpdatedAt = updatedAt
	return nil
}

// ClaimNext hands the oldest pending job to an external sender, already
// marked processing. It returns nil when nothing is pending.
func (s *Service) ClaimNext(ctx context.Context) (*Job, error) {
	j, err := s.repo.ClaimPending(ctx)
	if err != nil {
		return nil, err
	}
	if j != nil {
		slog.Info("fax job claimed", "job", j.ID, "fax", j.FaxNumber)
	}
	return j, nil
}

func (s *Service) RecoverStaleJobs(ctx context.Context) error {
	n, err := s.repo.RecoverStale(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("re-queued interrupted fax jobs", "count", n)
	}
	return nil
}

func (s *Service) RetryErrored(ctx context.Context) (int64, error) {
	n, err := s.repo.RequeueErrored(ctx)
	if err != nil {
		return 0, err
	}
	slog.Info("re-queued errored fax jobs", "count", n)
	return n, nil
}

// Retry requeues a single errored job. Jobs in any other status are left
// alone and reported as a conflict.
func (s *Service) Retry(ctx context.Context, req GetJobRequest) (*Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	n, err := s.repo.RequeueErrored(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	j, err := s.repo.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperror.New(apperror.Conflict, "only errored jobs can be retried")
	}
	slog.Info("fax job re-queued", "job", j.ID)
	return j, nil
}

func (s *Service) ClearCompleted(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteByStatus(ctx, StatusCompleted)
	if err != nil {
		return 0, err
	}
	slog.Info("cleared completed fax jobs", "count", n)
	return n, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.repo.Stats(ctx, startOfDay)
}
