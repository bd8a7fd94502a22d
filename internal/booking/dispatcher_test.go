package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"
)

var confirmationCodePattern = regexp.MustCompile(`^CONF-\d{3}$`)

func newTestDispatcher(t *testing.T, status int, captured *bookingPayload) *HTTPDispatcher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/book-service" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %q", r.Method)
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("decode payload: %v", err)
			}
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	d := NewHTTPDispatcher(srv.URL, 10, 5*time.Second, nil)
	d.now = func() time.Time {
		return time.Date(2026, 8, 28, 17, 30, 0, 0, time.UTC)
	}
	return d
}

func TestBookSuccess(t *testing.T) {
	var payload bookingPayload
	d := newTestDispatcher(t, http.StatusCreated, &payload)

	result := d.Book(context.Background(), Request{
		VehicleID:   "Tata_V11",
		UserID:      "user-1",
		CenterID:    "center-a",
		DisplayTime: "Tomorrow at 10",
	})

	if !result.Confirmed {
		t.Fatal("expected confirmed result")
	}
	if !confirmationCodePattern.MatchString(result.ConfirmationCode) {
		t.Fatalf("unexpected confirmation code %q", result.ConfirmationCode)
	}

	if payload.VehicleID != "Tata_V11" || payload.UserID != "user-1" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.Status != "CONFIRMED" {
		t.Fatalf("unexpected status %q", payload.Status)
	}
	if !payload.ScheduledService.IsScheduled {
		t.Fatal("expected isScheduled true")
	}
	if payload.ScheduledService.ServiceCenterID != "center-a" {
		t.Fatalf("unexpected center %q", payload.ScheduledService.ServiceCenterID)
	}
	// Next calendar day at the configured hour, UTC.
	if payload.ScheduledService.DateTime != "2026-08-29T10:00:00Z" {
		t.Fatalf("unexpected dateTime %q", payload.ScheduledService.DateTime)
	}
	if payload.ConfirmationCode != result.ConfirmationCode {
		t.Fatalf("payload code %q != result code %q", payload.ConfirmationCode, result.ConfirmationCode)
	}
}

func TestBookAcceptsPlainOK(t *testing.T) {
	d := newTestDispatcher(t, http.StatusOK, nil)
	result := d.Book(context.Background(), Request{VehicleID: "v", UserID: "u", CenterID: "c", DisplayTime: "soon"})
	if !result.Confirmed {
		t.Fatal("expected confirmed result")
	}
}

func TestBookServerErrorIsUnconfirmed(t *testing.T) {
	d := newTestDispatcher(t, http.StatusInternalServerError, nil)

	result := d.Book(context.Background(), Request{VehicleID: "v", UserID: "u", CenterID: "c", DisplayTime: "soon"})
	if result.Confirmed {
		t.Fatal("expected unconfirmed result")
	}
	if !confirmationCodePattern.MatchString(result.ConfirmationCode) {
		t.Fatalf("unexpected confirmation code %q", result.ConfirmationCode)
	}
}

func TestBookTransportErrorIsUnconfirmed(t *testing.T) {
	d := NewHTTPDispatcher("http://127.0.0.1:1", 10, time.Second, nil)

	result := d.Book(context.Background(), Request{VehicleID: "v", UserID: "u", CenterID: "c", DisplayTime: "soon"})
	if result.Confirmed {
		t.Fatal("expected unconfirmed result")
	}
}

func TestScheduleForRollsOverMonthEnd(t *testing.T) {
	d := NewHTTPDispatcher("http://unused", 10, time.Second, nil)
	d.now = func() time.Time {
		return time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)
	}

	got := d.scheduleFor()
	want := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("scheduleFor() = %v, want %v", got, want)
	}
}
