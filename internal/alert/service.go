// Package alert turns an inbound sensor anomaly into an opened conversation:
// it resolves the owner and candidate service centers, persists the session,
// and sends the first prompt.
package alert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fleetassist/fleetassist/internal/conversation"
	"github.com/fleetassist/fleetassist/internal/directory"
	"github.com/fleetassist/fleetassist/internal/messaging"
	"github.com/fleetassist/fleetassist/internal/observability/metrics"
	"github.com/fleetassist/fleetassist/pkg/logging"
)

// Mode selects how a service center is chosen.
type Mode string

const (
	// ModeManual presents the owner a numbered list of matching centers.
	ModeManual Mode = "manual"
	// ModeAuto pre-selects the first matching center on the owner's behalf.
	ModeAuto Mode = "auto"
)

const (
	manualCenterLimit = 5
	autoCenterLimit   = 1
)

// brandSeparator splits "Company_Model" vehicle identifiers.
const brandSeparator = "_"

// Outcome codes surfaced to the alert caller.
const (
	CodeVehicleNotRegistered = "VEHICLE_NOT_REGISTERED"
	CodeOwnerNotFound        = "OWNER_NOT_FOUND"
	CodeNoContactChannel     = "NO_CONTACT_CHANNEL"
	CodeUnresolvedBrand      = "UNRESOLVED_BRAND"
	CodeNoCentersFound       = "NO_CENTERS_FOUND"
)

// ErrDeliveryFailed marks a messaging-channel failure. The session is already
// persisted at that point and is deliberately left in place.
var ErrDeliveryFailed = errors.New("alert: notification delivery failed")

// Request is one inbound sensor anomaly.
type Request struct {
	VehicleID string
	Issue     string
	Mode      Mode
}

// Outcome is the structured, non-exceptional result of processing an alert.
type Outcome struct {
	Status       string `json:"status"` // "success", "warning" or "error"
	Code         string `json:"code,omitempty"`
	Message      string `json:"message"`
	CentersFound int    `json:"centers_found,omitempty"`
	DeliveryID   string `json:"delivery_id,omitempty"`
}

// Service processes sensor anomaly alerts.
type Service struct {
	vehicles  directory.VehicleDirectory
	users     directory.UserDirectory
	centers   directory.CenterDirectory
	sessions  conversation.SessionStore
	messenger conversation.Messenger
	from      string
	logger    *logging.Logger
	metrics   *metrics.ConversationMetrics
	now       func() time.Time
}

// NewService wires the alert intake with its collaborators.
func NewService(
	vehicles directory.VehicleDirectory,
	users directory.UserDirectory,
	centers directory.CenterDirectory,
	sessions conversation.SessionStore,
	messenger conversation.Messenger,
	fromNumber string,
	logger *logging.Logger,
	m *metrics.ConversationMetrics,
) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		vehicles:  vehicles,
		users:     users,
		centers:   centers,
		sessions:  sessions,
		messenger: messenger,
		from:      fromNumber,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// Process resolves the alert to an owner and candidate centers, upserts the
// session and sends the first prompt. Input-resolution failures come back as
// structured outcomes; only infrastructure faults return an error.
func (s *Service) Process(ctx context.Context, req Request) (*Outcome, error) {
	vehicleID := strings.TrimSpace(req.VehicleID)
	mode := req.Mode
	if mode == "" {
		mode = ModeManual
	}

	vehicle, err := s.vehicles.FindVehicle(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, directory.ErrVehicleNotFound) {
			s.metrics.ObserveAlert("vehicle_not_registered")
			return &Outcome{
				Status:  "error",
				Code:    CodeVehicleNotRegistered,
				Message: fmt.Sprintf("Vehicle %q is not registered.", vehicleID),
			}, nil
		}
		return nil, err
	}

	brand := resolveBrand(vehicleID, vehicle.Brand)
	if brand == "" {
		s.metrics.ObserveAlert("unresolved_brand")
		return &Outcome{
			Status:  "error",
			Code:    CodeUnresolvedBrand,
			Message: fmt.Sprintf("Could not determine a brand for vehicle %q. Use the format 'Company_Model' (e.g., 'Tata_V11').", vehicleID),
		}, nil
	}

	user, err := s.users.FindUser(ctx, vehicle.UserID)
	if err != nil {
		if errors.Is(err, directory.ErrUserNotFound) {
			s.metrics.ObserveAlert("owner_not_found")
			return &Outcome{
				Status:  "error",
				Code:    CodeOwnerNotFound,
				Message: fmt.Sprintf("No owner on record for vehicle %q.", vehicleID),
			}, nil
		}
		return nil, err
	}

	phone := messaging.NormalizeE164(user.Phone)
	if phone == "" {
		s.metrics.ObserveAlert("no_contact_channel")
		return &Outcome{
			Status:  "error",
			Code:    CodeNoContactChannel,
			Message: fmt.Sprintf("Owner of vehicle %q has no phone number on record.", vehicleID),
		}, nil
	}

	limit := manualCenterLimit
	if mode == ModeAuto {
		limit = autoCenterLimit
	}
	centers, err := s.centers.FindCentersByBrandPrefix(ctx, brand, limit)
	if err != nil {
		return nil, err
	}
	if len(centers) == 0 {
		s.metrics.ObserveAlert("no_centers")
		return &Outcome{
			Status:  "warning",
			Code:    CodeNoCentersFound,
			Message: fmt.Sprintf("No centers found for company %q. Please register a center with company_name=%q.", brand, brand),
		}, nil
	}

	now := s.now().UTC()
	session := &conversation.Session{
		Phone:         phone,
		VehicleID:     vehicleID,
		Issue:         req.Issue,
		UserID:        user.ID,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}

	var body string
	if mode == ModeAuto {
		center := centers[0]
		session.State = conversation.StateAwaitingTimeChoice
		session.SelectedCenterID = center.ID
		body = conversation.AutoSelectedMessage(req.Issue, vehicleID, center)
	} else {
		options := make(map[string]string, len(centers))
		for i, center := range centers {
			options[fmt.Sprintf("%d", i+1)] = center.ID
		}
		session.State = conversation.StateAwaitingCenterChoice
		session.CenterOptions = options
		body = conversation.CenterMenuMessage(req.Issue, vehicleID, centers)
	}

	// A new alert always supersedes an in-flight conversation for the phone.
	if err := s.sessions.Upsert(ctx, session); err != nil {
		return nil, err
	}

	meta := map[string]string{}
	sendErr := s.messenger.Send(ctx, conversation.OutboundMessage{
		To:       phone,
		From:     s.from,
		Body:     body,
		Metadata: meta,
	})
	if sendErr != nil {
		// Known accepted inconsistency: the session stays persisted even
		// though the prompt never reached the owner.
		s.logger.Error("alert notification delivery failed",
			"vehicle_id", vehicleID,
			"phone", phone,
			"error", sendErr,
		)
		s.metrics.ObserveAlert("delivery_failed")
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, sendErr)
	}

	s.logger.Info("alert processed",
		"vehicle_id", vehicleID,
		"brand", brand,
		"mode", string(mode),
		"centers_found", len(centers),
	)
	s.metrics.ObserveAlert("success")
	return &Outcome{
		Status:       "success",
		Message:      fmt.Sprintf("Notified owner of %s about: %s", vehicleID, req.Issue),
		CentersFound: len(centers),
		DeliveryID:   meta["provider_message_id"],
	}, nil
}

// resolveBrand derives the brand from the identifier's separator prefix,
// falling back to the brand recorded in the directory.
func resolveBrand(vehicleID, directoryBrand string) string {
	if idx := strings.Index(vehicleID, brandSeparator); idx > 0 {
		return vehicleID[:idx]
	}
	return strings.TrimSpace(directoryBrand)
}
