package alert

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fleetassist/fleetassist/pkg/logging"
)

// Processor handles one sensor anomaly alert.
type Processor interface {
	Process(ctx context.Context, req Request) (*Outcome, error)
}

// Handler wires HTTP requests to the alert service.
type Handler struct {
	service Processor
	logger  *logging.Logger
}

// NewHandler creates an alert handler.
func NewHandler(service Processor, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type sensorAnomalyRequest struct {
	VehicleID     string `json:"vehicle_id"`
	IssueDetected string `json:"issue_detected"`
	Mode          string `json:"mode,omitempty"`
}

// SensorAnomaly handles POST /alerts/sensor-anomaly.
func (h *Handler) SensorAnomaly(w http.ResponseWriter, r *http.Request) {
	var req sensorAnomalyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode sensor anomaly request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.VehicleID == "" || req.IssueDetected == "" {
		http.Error(w, "vehicle_id and issue_detected are required", http.StatusBadRequest)
		return
	}

	mode := Mode(req.Mode)
	switch mode {
	case "", ModeManual, ModeAuto:
	default:
		http.Error(w, "mode must be 'manual' or 'auto'", http.StatusBadRequest)
		return
	}

	outcome, err := h.service.Process(r.Context(), Request{
		VehicleID: req.VehicleID,
		Issue:     req.IssueDetected,
		Mode:      mode,
	})
	if err != nil {
		if errors.Is(err, ErrDeliveryFailed) {
			h.writeJSON(w, http.StatusBadGateway, &Outcome{
				Status:  "error",
				Code:    "NOTIFICATION_DELIVERY_FAILED",
				Message: "Could not deliver the notification to the owner.",
			})
			return
		}
		h.logger.Error("failed to process sensor anomaly", "error", err)
		http.Error(w, "Failed to process alert", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
