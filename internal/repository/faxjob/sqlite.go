package faxjob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ahmethakanbesel/fax-api/internal/apperror"
	domain "github.com/ahmethakanbesel/fax-api/internal/faxjob"
)

// Repository stores fax jobs in SQLite.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB, opts ...Option) *Repository {
	o := buildOptions(opts)
	return &Repository{db: db, now: o.now}
}

func (r *Repository) Create(ctx context.Context, j *domain.Job) error {
	const query = `INSERT INTO fax_parameters (id, file_url, fax_number, status, error_message,
		converted_pdf_path, request_user, file_name, callback_url, order_destination,
		created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := r.now().UTC()
	_, err := r.db.ExecContext(ctx, query,
		j.ID, nullable(j.FileURL), nullable(j.FaxNumber), int(j.Status),
		nullable(j.ErrorMessage), nullable(j.ConvertedPDFPath),
		nullable(j.RequestUser), nullable(j.FileName),
		nullable(j.CallbackURL), nullable(j.OrderDestination),
		formatTime(now), formatTime(now),
	)
	if err != nil {
		var se *sqlite.Error
		if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			return apperror.New(apperror.Conflict, "fax job already exists")
		}
		return fmt.Errorf("create fax job: %w", err)
	}

	j.CreatedAt = now
	j.UpdatedAt = now
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*domain.Job, error) {
	query := `SELECT ` + columns + ` FROM fax_parameters WHERE id = ?`

	j, err := scanSQLite(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.New(apperror.NotFound, "fax job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get fax job: %w", err)
	}
	return j, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status, errMsg *string) (time.Time, error) {
	const query = `UPDATE fax_parameters
		SET status = ?, error_message = COALESCE(?, error_message), updated_at = ?
		WHERE id = ?`

	var msg any
	if errMsg != nil {
		msg = *errMsg
	}
	now := r.now().UTC()
	res, err := r.db.ExecContext(ctx, query, int(status), msg, formatTime(now), id)
	if err != nil {
		return time.Time{}, fmt.Errorf("update fax job status: %w", err)
	}
	if err := requireRow(res); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

func (r *Repository) SetConvertedPDF(ctx context.Context, id, path string) (time.Time, error) {
	const query = `UPDATE fax_parameters SET converted_pdf_path = ?, updated_at = ? WHERE id = ?`

	now := r.now().UTC()
	res, err := r.db.ExecContext(ctx, query, nullable(path), formatTime(now), id)
	if err != nil {
		return time.Time{}, fmt.Errorf("set converted pdf: %w", err)
	}
	if err := requireRow(res); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

func (r *Repository) Search(ctx context.Context, f domain.Filter) ([]domain.Job, error) {
	query, args := buildSearch(sqliteDialect, f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search fax jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	jobs := []domain.Job{}
	for rows.Next() {
		j, err := scanSQLite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fax job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (r *Repository) ClaimPending(ctx context.Context) (*domain.Job, error) {
	query := `UPDATE fax_parameters SET status = ?, updated_at = ?
		WHERE id = (
			SELECT id FROM fax_parameters WHERE status = ?
			ORDER BY created_at ASC, id ASC LIMIT 1
		)
		RETURNING ` + columns

	now := r.now().UTC()
	j, err := scanSQLite(r.db.QueryRowContext(ctx, query,
		int(domain.StatusProcessing), formatTime(now), int(domain.StatusPending),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim pending: %w", err)
	}
	return j, nil
}

func (r *Repository) RecoverStale(ctx context.Context) (int64, error) {
	const query = `UPDATE fax_parameters SET status = ?, error_message = NULL, updated_at = ?
		WHERE status = ?`

	res, err := r.db.ExecContext(ctx, query,
		int(domain.StatusPending), formatTime(r.now()), int(domain.StatusProcessing),
	)
	if err != nil {
		return 0, fmt.Errorf("recover stale fax jobs: %w", err)
	}
	return res.RowsAffected()
}

func (r *Repository) RequeueErrored(ctx context.Context, ids ...string) (int64, error) {
	query, args := buildRequeue(sqliteDialect, r.now(), ids)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("requeue errored fax jobs: %w", err)
	}
	return res.RowsAffected()
}

func (r *Repository) DeleteByStatus(ctx context.Context, status domain.Status) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fax_parameters WHERE status = ?`, int(status))
	if err != nil {
		return 0, fmt.Errorf("delete fax jobs: %w", err)
	}
	return res.RowsAffected()
}

func (r *Repository) Stats(ctx context.Context, since time.Time) (*domain.Stats, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM fax_parameters GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count fax jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	st := &domain.Stats{ByStatus: make(map[domain.Status]int64)}
	for rows.Next() {
		var status int
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

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fax_parameters WHERE created_at >= ?`, formatTime(since),
	).Scan(&st.Today)
	if err != nil {
		return nil, fmt.Errorf("count today: %w", err)
	}
	return st, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (*domain.Job, error) {
	var j domain.Job
	var status int
	var fileURL, faxNumber, errMsg, pdfPath, user, fileName, callback, dest sql.NullString
	var createdStr, updatedStr string

	if err := row.Scan(
		&j.ID, &fileURL, &faxNumber, &status, &errMsg, &pdfPath,
		&user, &fileName, &callback, &dest, &createdStr, &updatedStr,
	); err != nil {
		return nil, err
	}

	j.Status = domain.Status(status)
	j.FileURL = fileURL.String
	j.FaxNumber = faxNumber.String
	j.ErrorMessage = errMsg.String
	j.ConvertedPDFPath = pdfPath.String
	j.RequestUser = user.String
	j.FileName = fileName.String
	j.CallbackURL = callback.String
	j.OrderDestination = dest.String
	j.CreatedAt = parseTime(createdStr)
	j.UpdatedAt = parseTime(updatedStr)
	return &j, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return apperror.New(apperror.NotFound, "fax job not found")
	}
	return nil
}
