package faxjob

import (
	"strconv"
	"strings"
	"time"

	domain "github.com/ahmethakanbesel/fax-api/internal/faxjob"
)

const columns = `id, file_url, fax_number, status, error_message, converted_pdf_path,
	request_user, file_name, callback_url, order_destination, created_at, updated_at`

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// dialect captures what differs between the SQLite and PostgreSQL queries.
type dialect struct {
	placeholder func(n int) string
	timeArg     func(t time.Time) any
	// offsetOnly is emitted before OFFSET when no LIMIT was requested.
	offsetOnly string
}

var sqliteDialect = dialect{
	placeholder: func(int) string { return "?" },
	timeArg:     func(t time.Time) any { return formatTime(t) },
	offsetOnly:  " LIMIT -1",
}

var postgresDialect = dialect{
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	timeArg:     func(t time.Time) any { return t.UTC() },
}

type queryBuilder struct {
	d    dialect
	sb   strings.Builder
	args []any
}

func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return b.d.placeholder(len(b.args))
}

func (b *queryBuilder) like(column, value string) {
	b.sb.WriteString(" AND " + column + " LIKE " + b.arg(likePattern(value)) + ` ESCAPE '\'`)
}

// buildSearch composes the SELECT for f. Every set field adds one AND
// condition; nothing set returns the whole table.
func buildSearch(d dialect, f domain.Filter) (string, []any) {
	b := &queryBuilder{d: d}
	b.sb.WriteString("SELECT " + columns + " FROM fax_parameters WHERE 1=1")

	if f.Status != nil {
		b.sb.WriteString(" AND status = " + b.arg(int(*f.Status)))
	}
	if f.FaxNumber != "" {
		b.like("fax_number", f.FaxNumber)
	}
	if f.RequestUser != "" {
		b.like("request_user", f.RequestUser)
	}
	if f.FileName != "" {
		b.like("file_name", f.FileName)
	}
	if f.OrderDestination != "" {
		b.like("order_destination", f.OrderDestination)
	}
	if f.CreatedFrom != nil {
		b.sb.WriteString(" AND created_at >= " + b.arg(d.timeArg(*f.CreatedFrom)))
	}
	if f.CreatedTo != nil {
		b.sb.WriteString(" AND created_at <= " + b.arg(d.timeArg(*f.CreatedTo)))
	}

	if f.Descending() {
		b.sb.WriteString(" ORDER BY created_at DESC, id DESC")
	} else {
		b.sb.WriteString(" ORDER BY created_at ASC, id ASC")
	}

	if f.Limit > 0 {
		b.sb.WriteString(" LIMIT " + b.arg(f.Limit))
	}
	if f.Offset > 0 {
		if f.Limit <= 0 {
			b.sb.WriteString(d.offsetOnly)
		}
		b.sb.WriteString(" OFFSET " + b.arg(f.Offset))
	}

	return b.sb.String(), b.args
}

func buildRequeue(d dialect, now time.Time, ids []string) (string, []any) {
	b := &queryBuilder{d: d}
	b.sb.WriteString("UPDATE fax_parameters SET status = " + b.arg(int(domain.StatusPending)))
	b.sb.WriteString(", error_message = NULL, updated_at = " + b.arg(d.timeArg(now)))
	b.sb.WriteString(" WHERE status = " + b.arg(int(domain.StatusError)))
	if len(ids) > 0 {
		ph := make([]string, len(ids))
		for i, id := range ids {
			ph[i] = b.arg(id)
		}
		b.sb.WriteString(" AND id IN (" + strings.Join(ph, ", ") + ")")
	}
	return b.sb.String(), b.args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(v string) string {
	return "%" + likeEscaper.Replace(v) + "%"
}

// timeLayout is fixed width so text comparison in SQLite orders correctly.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t.UTC()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
