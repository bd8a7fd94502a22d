// Package booking performs the single external call that commits a booking
// once a conversation completes.
package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/fleetassist/fleetassist/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var dispatchTracer = otel.Tracer("fleetassist.internal.booking.dispatch")

// Request carries everything needed to commit a booking downstream.
type Request struct {
	VehicleID   string
	UserID      string
	CenterID    string
	DisplayTime string // verbatim user text, never parsed
}

// Result is the outcome of a dispatch attempt. A failed attempt is a normal
// result, not an error: the caller picks the user-facing message from it.
type Result struct {
	Confirmed        bool
	ConfirmationCode string
	ScheduledAt      time.Time
}

// Dispatcher commits a completed conversation to the external booking system.
type Dispatcher interface {
	Book(ctx context.Context, req Request) Result
}

// HTTPDispatcher posts bookings to the external booking service.
type HTTPDispatcher struct {
	baseURL    string
	hour       int
	httpClient *http.Client
	logger     *logging.Logger
	now        func() time.Time
}

// NewHTTPDispatcher builds a dispatcher with a bounded request timeout.
// hour is the UTC hour used for the synthesized next-day timestamp.
func NewHTTPDispatcher(baseURL string, hour int, timeout time.Duration, logger *logging.Logger) *HTTPDispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if hour < 0 || hour > 23 {
		hour = 10
	}
	return &HTTPDispatcher{
		baseURL:    baseURL,
		hour:       hour,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		now:        time.Now,
	}
}

var _ Dispatcher = (*HTTPDispatcher)(nil)

type scheduledService struct {
	IsScheduled     bool   `json:"isScheduled"`
	ServiceCenterID string `json:"serviceCenterId"`
	DateTime        string `json:"dateTime"`
}

type bookingPayload struct {
	VehicleID        string           `json:"vehicleId"`
	ConfirmationCode string           `json:"confirmationCode"`
	Status           string           `json:"status"`
	ScheduledService scheduledService `json:"scheduledService"`
	UserID           string           `json:"userId"`
}

// Book performs exactly one POST /book-service call. Non-2xx responses,
// timeouts and transport errors all fold into an unconfirmed Result; the
// call is never retried.
func (d *HTTPDispatcher) Book(ctx context.Context, req Request) Result {
	ctx, span := dispatchTracer.Start(ctx, "booking.dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("fleetassist.vehicle_id", req.VehicleID),
		attribute.String("fleetassist.center_id", req.CenterID),
	)

	result := Result{
		ConfirmationCode: newConfirmationCode(),
		ScheduledAt:      d.scheduleFor(),
	}

	payload := bookingPayload{
		VehicleID:        req.VehicleID,
		ConfirmationCode: result.ConfirmationCode,
		Status:           "CONFIRMED",
		ScheduledService: scheduledService{
			IsScheduled:     true,
			ServiceCenterID: req.CenterID,
			DateTime:        result.ScheduledAt.Format(time.RFC3339),
		},
		UserID: req.UserID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		d.logger.Error("booking payload marshal failed", "error", err)
		return result
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/book-service", bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		d.logger.Error("booking request build failed", "error", err)
		return result
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		d.logger.Warn("booking dispatch failed",
			"vehicle_id", req.VehicleID,
			"center_id", req.CenterID,
			"error", err,
		)
		return result
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		result.Confirmed = true
		d.logger.Info("booking dispatched",
			"vehicle_id", req.VehicleID,
			"center_id", req.CenterID,
			"confirmation_code", result.ConfirmationCode,
			"requested_time", req.DisplayTime,
		)
		return result
	}

	d.logger.Warn("booking service rejected dispatch",
		"status", resp.StatusCode,
		"vehicle_id", req.VehicleID,
		"body", string(respBody),
	)
	return result
}

// scheduleFor synthesizes the canonical timestamp: next calendar day at the
// configured hour, UTC. The user's literal text never reaches the wire.
func (d *HTTPDispatcher) scheduleFor() time.Time {
	next := d.now().UTC().AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), d.hour, 0, 0, 0, time.UTC)
}

func newConfirmationCode() string {
	return fmt.Sprintf("CONF-%03d", rand.Intn(1000))
}
