package faxjob

import (
	"testing"
	"time"

	"github.com/ahmethakanbesel/fax-api/internal/apperror"
)

func TestParseFilter_Empty(t *testing.T) {
	f, err := ParseFilter(map[string]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Status != nil {
		t.Error("expected no status filter")
	}
	if f.CreatedFrom != nil || f.CreatedTo != nil {
		t.Error("expected no date bounds")
	}
	if !f.Descending() {
		t.Error("expected descending order by default")
	}
}

func TestParseFilter_StatusZeroIsPending(t *testing.T) {
	f, err := ParseFilter(map[string]string{"status": "0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Status == nil {
		t.Fatal("status \"0\" must produce a filter")
	}
	if *f.Status != StatusPending {
		t.Errorf("expected pending, got %d", *f.Status)
	}
}

func TestParseFilter_Status(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"1", StatusCompleted},
		{"2", StatusProcessing},
		{"-1", StatusError},
		{" 2 ", StatusProcessing},
		{"42", Status(42)},
	}
	for _, tt := range tests {
		f, err := ParseFilter(map[string]string{"status": tt.in})
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.in, err)
		}
		if f.Status == nil || *f.Status != tt.want {
			t.Errorf("%q: expected %d, got %v", tt.in, tt.want, f.Status)
		}
	}
}

func TestParseFilter_InvalidValues(t *testing.T) {
	tests := []map[string]string{
		{"status": "pending"},
		{"date_from": "yesterday"},
		{"date_to": "2024-13-01"},
		{"order": "sideways"},
		{"limit": "-1"},
		{"offset": "x"},
	}
	for _, params := range tests {
		_, err := ParseFilter(params)
		if err == nil {
			t.Errorf("%v: expected error", params)
			continue
		}
		if !apperror.HasCode(err, apperror.BadRequest) {
			t.Errorf("%v: expected bad request, got %v", params, err)
		}
	}
}

func TestParseFilter_AllKeys(t *testing.T) {
	f, err := ParseFilter(map[string]string{
		"fax_number":        "555",
		"request_user":      "tanaka",
		"file_name":         "order",
		"order_destination": "Osaka",
		"date_from":         "2024-01-01",
		"date_to":           "2024-01-31T23:59:59Z",
		"order":             "ASC",
		"limit":             "20",
		"offset":            "40",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.FaxNumber != "555" || f.RequestUser != "tanaka" || f.FileName != "order" || f.OrderDestination != "Osaka" {
		t.Errorf("unexpected text filters: %+v", f)
	}
	wantFrom := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if f.CreatedFrom == nil || !f.CreatedFrom.Equal(wantFrom) {
		t.Errorf("expected date_from %v, got %v", wantFrom, f.CreatedFrom)
	}
	wantTo := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	if f.CreatedTo == nil || !f.CreatedTo.Equal(wantTo) {
		t.Errorf("expected date_to %v, got %v", wantTo, f.CreatedTo)
	}
	if f.Descending() {
		t.Error("expected ascending order")
	}
	if f.Limit != 20 || f.Offset != 40 {
		t.Errorf("expected limit 20 offset 40, got %d %d", f.Limit, f.Offset)
	}
}

func TestFilter_WithStatusDoesNotAlias(t *testing.T) {
	base := Filter{FaxNumber: "555"}
	pending := base.WithStatus(StatusPending)
	errored := base.WithStatus(StatusError)

	if base.Status != nil {
		t.Error("expected base filter to be unchanged")
	}
	if *pending.Status != StatusPending || *errored.Status != StatusError {
		t.Errorf("unexpected statuses: %d %d", *pending.Status, *errored.Status)
	}
}
