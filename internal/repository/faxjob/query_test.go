package faxjob

import (
	"reflect"
	"testing"
	"time"

	domain "github.com/ahmethakanbesel/fax-api/internal/faxjob"
)

func TestBuildSearch_Empty(t *testing.T) {
	query, args := buildSearch(sqliteDialect, domain.Filter{})

	want := "SELECT " + columns + " FROM fax_parameters WHERE 1=1 ORDER BY created_at DESC, id DESC"
	if query != want {
		t.Errorf("unexpected query:\n got: %s\nwant: %s", query, want)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %v", args)
	}
}

func TestBuildSearch_Dialects(t *testing.T) {
	from := time.Date(2024, 1, 1, 9, 0, 0, 0, time.FixedZone("JST", 9*3600))
	f := domain.Filter{FaxNumber: "555", CreatedFrom: &from, Limit: 10}.WithStatus(domain.StatusPending)

	tests := []struct {
		name  string
		d     dialect
		query string
		args  []any
	}{
		{
			name: "sqlite",
			d:    sqliteDialect,
			query: "SELECT " + columns + " FROM fax_parameters WHERE 1=1" +
				" AND status = ? AND fax_number LIKE ? ESCAPE '\\' AND created_at >= ?" +
				" ORDER BY created_at DESC, id DESC LIMIT ?",
			args: []any{0, "%555%", "2024-01-01T00:00:00.000000000Z", 10},
		},
		{
			name: "postgres",
			d:    postgresDialect,
			query: "SELECT " + columns + " FROM fax_parameters WHERE 1=1" +
				" AND status = $1 AND fax_number LIKE $2 ESCAPE '\\' AND created_at >= $3" +
				" ORDER BY created_at DESC, id DESC LIMIT $4",
			args: []any{0, "%555%", from.UTC(), 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildSearch(tt.d, f)
			if query != tt.query {
				t.Errorf("unexpected query:\n got: %s\nwant: %s", query, tt.query)
			}
			if !reflect.DeepEqual(args, tt.args) {
				t.Errorf("unexpected args: got %#v want %#v", args, tt.args)
			}
		})
	}
}

func TestBuildSearch_OffsetWithoutLimit(t *testing.T) {
	query, _ := buildSearch(sqliteDialect, domain.Filter{Offset: 5, Order: domain.OrderAsc})
	want := "SELECT " + columns + " FROM fax_parameters WHERE 1=1 ORDER BY created_at ASC, id ASC LIMIT -1 OFFSET ?"
	if query != want {
		t.Errorf("unexpected query:\n got: %s\nwant: %s", query, want)
	}

	query, _ = buildSearch(postgresDialect, domain.Filter{Offset: 5})
	want = "SELECT " + columns + " FROM fax_parameters WHERE 1=1 ORDER BY created_at DESC, id DESC OFFSET $1"
	if query != want {
		t.Errorf("unexpected query:\n got: %s\nwant: %s", query, want)
	}
}

func TestBuildRequeue(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	query, args := buildRequeue(postgresDialect, now, []string{"a", "b"})
	want := "UPDATE fax_parameters SET status = $1, error_message = NULL, updated_at = $2" +
		" WHERE status = $3 AND id IN ($4, $5)"
	if query != want {
		t.Errorf("unexpected query:\n got: %s\nwant: %s", query, want)
	}
	if !reflect.DeepEqual(args, []any{0, now, -1, "a", "b"}) {
		t.Errorf("unexpected args: %#v", args)
	}

	query, _ = buildRequeue(sqliteDialect, now, nil)
	if want := "UPDATE fax_parameters SET status = ?, error_message = NULL, updated_at = ? WHERE status = ?"; query != want {
		t.Errorf("unexpected query:\n got: %s\nwant: %s", query, want)
	}
}

func TestLikePattern(t *testing.T) {
	tests := map[string]string{
		"555":    "%555%",
		"100%":   `%100\%%`,
		"a_b":    `%a\_b%`,
		`C:\fax`: `%C:\\fax%`,
	}
	for in, want := range tests {
		if got := likePattern(in); got != want {
			t.Errorf("likePattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseTime_Formats(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC)
	for _, s := range []string{
		"2024-01-02T03:04:05.000006000Z",
		"2024-01-02T12:04:05.000006+09:00",
	} {
		if got := parseTime(s); !got.Equal(want) {
			t.Errorf("parseTime(%q) = %v, want %v", s, got, want)
		}
	}
}
