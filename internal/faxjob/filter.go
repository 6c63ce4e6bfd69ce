package faxjob

import (
	"strconv"
	"strings"
	"time"

	"github.com/ahmethakanbesel/fax-api/internal/apperror"
)

type Order string

const (
	OrderDesc Order = "desc"
	OrderAsc  Order = "asc"
)

// Filter selects jobs for Search. Zero-valued fields do not narrow the
// result; all set fields are ANDed together.
type Filter struct {
	Status           *Status
	FaxNumber        string
	RequestUser      string
	FileName         string
	OrderDestination string
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
	Order            Order
	Limit            int
	Offset           int
}

// WithStatus returns a copy of f narrowed to one status.
func (f Filter) WithStatus(s Status) Filter {
	f.Status = &s
	return f
}

// Descending reports whether results are newest first. Anything other than
// an explicit ascending order is descending.
func (f Filter) Descending() bool {
	return !strings.EqualFold(string(f.Order), string(OrderAsc))
}

const dateFormat = "2006-01-02"

// ParseFilter builds a Filter from sparse string parameters such as URL query
// values. Empty values are ignored, except that status "0" selects pending
// jobs.
func ParseFilter(params map[string]string) (Filter, error) {
	var f Filter

	if v := strings.TrimSpace(params["status"]); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Filter{}, apperror.New(apperror.BadRequest, "status must be an integer")
		}
		s := Status(n)
		f.Status = &s
	}

	f.FaxNumber = params["fax_number"]
	f.RequestUser = params["request_user"]
	f.FileName = params["file_name"]
	f.OrderDestination = params["order_destination"]

	if v := params["date_from"]; v != "" {
		t, err := parseDate(v)
		if err != nil {
			return Filter{}, apperror.New(apperror.BadRequest, "invalid date_from, expected YYYY-MM-DD or RFC3339")
		}
		f.CreatedFrom = &t
	}
	if v := params["date_to"]; v != "" {
		t, err := parseDate(v)
		if err != nil {
			return Filter{}, apperror.New(apperror.BadRequest, "invalid date_to, expected YYYY-MM-DD or RFC3339")
		}
		f.CreatedTo = &t
	}

	switch strings.ToLower(params["order"]) {
	case "":
		f.Order = OrderDesc
	case string(OrderAsc):
		f.Order = OrderAsc
	case string(OrderDesc):
		f.Order = OrderDesc
	default:
		return Filter{}, apperror.New(apperror.BadRequest, "order must be asc or desc")
	}

	var err error
	if f.Limit, err = parseNonNegative(params["limit"]); err != nil {
		return Filter{}, apperror.New(apperror.BadRequest, "limit must be a non-negative integer")
	}
	if f.Offset, err = parseNonNegative(params["offset"]); err != nil {
		return Filter{}, apperror.New(apperror.BadRequest, "offset must be a non-negative integer")
	}

	return f, nil
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(dateFormat, v)
}

func parseNonNegative(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
