package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fleetassist/fleetassist/internal/booking"
	"github.com/fleetassist/fleetassist/internal/directory"
	"github.com/fleetassist/fleetassist/internal/observability/metrics"
	"github.com/fleetassist/fleetassist/pkg/logging"
)

// Interpreter is the conversation state machine. Given an inbound reply it
// computes the next state, the outbound message, and any side effects.
type Interpreter struct {
	sessions   SessionStore
	centers    directory.CenterDirectory
	dispatcher booking.Dispatcher
	logger     *logging.Logger
	metrics    *metrics.ConversationMetrics
	now        func() time.Time
}

// NewInterpreter wires the state machine with its collaborators.
func NewInterpreter(
	sessions SessionStore,
	centers directory.CenterDirectory,
	dispatcher booking.Dispatcher,
	logger *logging.Logger,
	m *metrics.ConversationMetrics,
) *Interpreter {
	if logger == nil {
		logger = logging.Default()
	}
	return &Interpreter{
		sessions:   sessions,
		centers:    centers,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
	}
}

// HandleReply interprets raw reply text against the phone's current session
// and returns the message to send back. Every reply yields exactly one
// outbound message; a returned error means the store itself failed.
func (i *Interpreter) HandleReply(ctx context.Context, phone, body string) (string, error) {
	reply := strings.TrimSpace(body)

	session, err := i.sessions.Get(ctx, phone)
	if err != nil {
		i.metrics.ObserveReply("store_error")
		return "", err
	}
	if session == nil {
		// Stray or late reply; designed behavior, not an error.
		i.logger.Info("reply without active session", "phone", phone)
		i.metrics.ObserveReply("no_session")
		return NoActiveRequestMessage(), nil
	}

	switch session.State {
	case StateAwaitingCenterChoice:
		return i.handleCenterChoice(ctx, session, reply)
	case StateAwaitingTimeChoice:
		return i.handleTimeChoice(ctx, session, reply)
	default:
		i.metrics.ObserveReply("invalid_state")
		return "", fmt.Errorf("conversation: session for %s in unknown state %q", phone, session.State)
	}
}

func (i *Interpreter) handleCenterChoice(ctx context.Context, session *Session, reply string) (string, error) {
	centerID, ok := session.CenterOptions[reply]
	if !ok {
		// Session untouched; the owner may retry.
		i.metrics.ObserveReply("invalid_option")
		return InvalidOptionMessage(), nil
	}

	session.State = StateAwaitingTimeChoice
	session.SelectedCenterID = centerID
	session.CenterOptions = nil
	session.LastUpdatedAt = i.now().UTC()
	if err := i.sessions.Upsert(ctx, session); err != nil {
		i.metrics.ObserveReply("store_error")
		return "", err
	}

	i.logger.Info("center selected",
		"phone", session.Phone,
		"vehicle_id", session.VehicleID,
		"center_id", centerID,
	)
	i.metrics.ObserveReply("center_selected")
	return CenterConfirmedMessage(i.centerName(ctx, centerID)), nil
}

func (i *Interpreter) handleTimeChoice(ctx context.Context, session *Session, reply string) (string, error) {
	if reply == "" {
		i.metrics.ObserveReply("empty_time")
		return CenterConfirmedMessage(i.centerName(ctx, session.SelectedCenterID)), nil
	}

	// Terminal transition: exactly one booking attempt, then the session is
	// gone no matter how the attempt went.
	result := i.dispatcher.Book(ctx, booking.Request{
		VehicleID:   session.VehicleID,
		UserID:      session.UserID,
		CenterID:    session.SelectedCenterID,
		DisplayTime: reply,
	})

	if err := i.sessions.Delete(ctx, session.Phone); err != nil {
		// The owner still gets a terminal answer; the expiring TTL covers
		// the leftover record.
		i.logger.Error("failed to delete completed session", "phone", session.Phone, "error", err)
	}

	centerName := i.centerName(ctx, session.SelectedCenterID)
	if result.Confirmed {
		i.metrics.ObserveReply("booked")
		i.metrics.ObserveBooking("confirmed")
		return BookingConfirmedMessage(centerName, reply, result.ConfirmationCode), nil
	}

	i.metrics.ObserveReply("booked_degraded")
	i.metrics.ObserveBooking("failed")
	return BookingPendingMessage(centerName, reply), nil
}

// centerName resolves a display name, falling back to a generic label when
// the directory cannot serve the lookup.
func (i *Interpreter) centerName(ctx context.Context, centerID string) string {
	center, err := i.centers.FindCenterByID(ctx, centerID)
	if err != nil || center == nil {
		if err != nil && err != directory.ErrCenterNotFound {
			i.logger.Warn("center lookup failed", "center_id", centerID, "error", err)
		}
		return "the service center"
	}
	return center.Name
}
