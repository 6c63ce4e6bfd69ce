package faxjob

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, j *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	// UpdateStatus overwrites the status and, when errMsg is non-nil, the
	// error message. It returns the refreshed updated_at.
	UpdateStatus(ctx context.Context, id string, status Status, errMsg *string) (time.Time, error)
	SetConvertedPDF(ctx context.Context, id, path string) (time.Time, error)
	Search(ctx context.Context, f Filter) ([]Job, error)
	ClaimPending(ctx context.Context) (*Job, error)
	RecoverStale(ctx context.Context) (int64, error)
	// RequeueErrored moves errored jobs back to pending and clears their
	// error message. With no ids every errored job is requeued.
	RequeueErrored(ctx context.Context, ids ...string) (int64, error)
	DeleteByStatus(ctx context.Context, status Status) (int64, error)
	Stats(ctx context.Context, since time.Time) (*Stats, error)
}
