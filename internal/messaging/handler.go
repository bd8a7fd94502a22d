package messaging

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fleetassist/fleetassist/internal/observability/metrics"
	"github.com/fleetassist/fleetassist/pkg/logging"
)

// ReplyInterpreter advances the owner's conversation from an inbound reply.
type ReplyInterpreter interface {
	HandleReply(ctx context.Context, phone, body string) (string, error)
}

// HandlerConfig configures the inbound SMS webhook handler.
type HandlerConfig struct {
	Interpreter       ReplyInterpreter
	Logger            *logging.Logger
	Metrics           *metrics.ConversationMetrics
	TwilioAuthToken   string
	WebhookURL        string // public URL of the webhook, used for signature checks
	ValidateSignature bool
}

// Handler receives provider webhooks and feeds replies to the interpreter.
type Handler struct {
	interpreter       ReplyInterpreter
	logger            *logging.Logger
	metrics           *metrics.ConversationMetrics
	twilioAuthToken   string
	webhookURL        string
	validateSignature bool
}

// NewHandler creates a webhook handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Handler{
		interpreter:       cfg.Interpreter,
		logger:            cfg.Logger,
		metrics:           cfg.Metrics,
		twilioAuthToken:   cfg.TwilioAuthToken,
		webhookURL:        cfg.WebhookURL,
		validateSignature: cfg.ValidateSignature,
	}
}

// InboundSMSWebhook handles POST /webhooks/sms. The response body is the
// reply delivered back to the sender, as plain text.
func (h *Handler) InboundSMSWebhook(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if h.validateSignature && h.twilioAuthToken != "" {
		if !ValidateTwilioSignature(r, h.twilioAuthToken, h.webhookURL) {
			h.logger.Warn("rejected inbound sms with invalid signature")
			h.observe("rejected", started)
			http.Error(w, "Invalid signature", http.StatusForbidden)
			return
		}
	}

	inbound, err := ParseInboundSMS(r)
	if err != nil {
		h.logger.Error("failed to parse inbound sms", "error", err)
		h.observe("parse_error", started)
		http.Error(w, "Invalid webhook payload", http.StatusBadRequest)
		return
	}

	phone := NormalizeE164(inbound.From)
	if phone == "" {
		h.observe("missing_from", started)
		http.Error(w, "From is required", http.StatusBadRequest)
		return
	}

	deliveryID := inbound.MessageSid
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}
	h.logger.Info("inbound sms received",
		"from", phone,
		"delivery_id", deliveryID,
	)

	reply, err := h.interpreter.HandleReply(r.Context(), phone, inbound.Body)
	if err != nil {
		// The owner still gets a terminal, human-readable answer.
		h.logger.Error("reply interpretation failed", "from", phone, "error", err)
		h.observe("error", started)
		h.writeText(w, "Something went wrong on our side. Please try again in a moment.")
		return
	}

	h.observe("ok", started)
	h.writeText(w, reply)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) observe(result string, started time.Time) {
	h.metrics.ObserveReplyLatency(result, time.Since(started).Seconds())
}

func (h *Handler) writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		h.logger.Error("failed to write webhook response", "error", err)
	}
}
