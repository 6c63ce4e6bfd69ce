package faxjob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ahmethakanbesel/fax-api/internal/apperror"
	domain "github.com/ahmethakanbesel/fax-api/internal/faxjob"
)

const pgUniqueViolation = "23505"

// RepositoryPG stores fax jobs in PostgreSQL.
type RepositoryPG struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewRepositoryPG(pool *pgxpool.Pool, opts ...Option) *RepositoryPG {
	o := buildOptions(opts)
	return &RepositoryPG{pool: pool, now: o.now}
}

func (r *RepositoryPG) Create(ctx context.Context, j *domain.Job) error {
	const query = `
INSERT INTO fax_parameters (id, file_url, fax_number, status, error_message,
    converted_pdf_path, request_user, file_name, callback_url, order_destination,
    created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11);
`
	now := r.now().UTC()
	_, err := r.pool.Exec(ctx, query,
		j.ID, nullable(j.FileURL), nullable(j.FaxNumber), int(j.Status),
		nullable(j.ErrorMessage), nullable(j.ConvertedPDFPath),
		nullable(j.RequestUser), nullable(j.FileName),
		nullable(j.CallbackURL), nullable(j.OrderDestination),
		now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.New(apperror.Conflict, "fax job already exists")
		}
		return fmt.Errorf("create fax job: %w", err)
	}

	j.CreatedAt = now
	j.UpdatedAt = now
	return nil
}

func (r *RepositoryPG) Get(ctx context.Context, id string) (*domain.Job, error) {
	query := `SELECT ` + columns + ` FROM fax_parameters WHERE id = $1`

	j, err := scanPG(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.New(apperror.NotFound, "fax job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get fax job: %w", err)
	}
	return j, nil
}

func (r *RepositoryPG) UpdateStatus(ctx context.Context, id string, status domain.Status, errMsg *string) (time.Time, error) {
	const query = `
UPDATE fax_parameters
SET status = $2,
    error_message = COALESCE($3, error_message),
    updated_at = $4
WHERE id = $1;
`
	now := r.now().UTC()
	tag, err := r.pool.Exec(ctx, query, id, int(status), errMsg, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("update fax job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return time.Time{}, apperror.New(apperror.NotFound, "fax job not found")
	}
	return now, nil
}

func (r *RepositoryPG) SetConvertedPDF(ctx context.Context, id, path string) (time.Time, error) {
	const query = `UPDATE fax_parameters SET converted_pdf_path = $2, updated_at = $3 WHERE id = $1`

	now := r.now().UTC()
	tag, err := r.pool.Exec(ctx, query, id, nullable(path), now)
	if err != nil {
		return time.Time{}, fmt.Errorf("set converted pdf: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return time.Time{}, apperror.New(apperror.NotFound, "fax job not found")
	}
	return now, nil
}

func (r *RepositoryPG) Search(ctx context.Context, f domain.Filter) ([]domain.Job, error) {
	query, args := buildSearch(postgresDialect, f)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search fax jobs: %w", err)
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		j, err := scanPG(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fax job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// ClaimPending skips rows locked by concurrent claimers so two workers never
// receive the same job.
func (r *RepositoryPG) ClaimPending(ctx context.Context) (*domain.Job, error) {
	query := `
UPDATE fax_parameters SET status = $1, updated_at = $2
WHERE id = (
    SELECT id FROM fax_parameters WHERE status = $3
    ORDER BY created_at ASC, id ASC
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
RETURNING ` + columns

	j, err := scanPG(r.pool.QueryRow(ctx, query,
		int(domain.StatusProcessing), r.now().UTC(), int(domain.StatusPending),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim pending: %w", err)
	}
	return j, nil
}

func (r *RepositoryPG) RecoverStale(ctx context.Context) (int64, error) {
	const query = `UPDATE fax_parameters SET status = $1, error_message = NULL, updated_at = $2
		WHERE status = $3`

	tag, err := r.pool.Exec(ctx, query,
		int(domain.StatusPending), r.now().UTC(), int(domain.StatusProcessing),
	)
	if err != nil {
		return 0, fmt.Errorf("recover stale fax jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *RepositoryPG) RequeueErrored(ctx context.Context, ids ...string) (int64, error) {
	query, args := buildRequeue(postgresDialect, r.now(), ids)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("requeue errored fax jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *RepositoryPG) DeleteByStatus(ctx context.Context, status domain.Status) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM fax_parameters WHERE status = $1`, int(status))
	if err != nil {
		return 0, fmt.Errorf("delete fax jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *RepositoryPG) Stats(ctx context.Context, since time.Time) (*domain.Stats, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM fax_parameters GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count fax jobs: %w", err)
	}
	defer rows.Close()

	st := &domain.Stats{ByStatus: make(map[domain.Status]int64)}
	for rows.Next() {
		var status int32
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		st.ByStatus[domain.Status(status)] = n
		st.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM fax_parameters WHERE created_at >= $1`, since.UTC(),
	).Scan(&st.Today)
	if err != nil {
		return nil, fmt.Errorf("count today: %w", err)
	}
	return st, nil
}

func scanPG(row rowScanner) (*domain.Job, error) {
	var j domain.Job
	var status int32
	var fileURL, faxNumber, errMsg, pdfPath, user, fileName, callback, dest *string

	if err := row.Scan(
		&j.ID, &fileURL, &faxNumber, &status, &errMsg, &pdfPath,
		&user, &fileName, &callback, &dest, &j.CreatedAt, &j.UpdatedAt,
	); err != nil {
		return nil, err
	}

	j.Status = domain.Status(status)
	j.FileURL = deref(fileURL)
	j.FaxNumber = deref(faxNumber)
	j.ErrorMessage = deref(errMsg)
	j.ConvertedPDFPath = deref(pdfPath)
	j.RequestUser = deref(user)
	j.FileName = deref(fileName)
	j.CallbackURL = deref(callback)
	j.OrderDestination = deref(dest)
	j.CreatedAt = j.CreatedAt.UTC()
	j.UpdatedAt = j.UpdatedAt.UTC()
	return &j, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
