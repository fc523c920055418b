package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/wolfman30/review-collector/internal/conversation"
	"github.com/wolfman30/review-collector/internal/observability/metrics"
	"github.com/wolfman30/review-collector/pkg/logging"
)

// Engine is the conversation surface the webhook drives.
type Engine interface {
	Process(ctx context.Context, contactNumber, body string) (conversation.Result, error)
}

// Handler handles messaging webhook requests.
type Handler struct {
	authToken         string
	validateSignature bool
	engine            Engine
	deduper           Deduper
	metrics           *metrics.WebhookMetrics
	logger            *logging.Logger
}

// NewHandler creates a new messaging handler. deduper and m may be nil.
func NewHandler(authToken string, validateSignature bool, engine Engine, deduper Deduper, m *metrics.WebhookMetrics, logger *logging.Logger) *Handler {
	if engine == nil {
		panic("messaging: engine cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		authToken:         authToken,
		validateSignature: validateSignature,
		engine:            engine,
		deduper:           deduper,
		metrics:           m,
		logger:            logger,
	}
}

// WhatsAppWebhook handles POST /webhook/whatsapp requests from Twilio.
func (h *Handler) WhatsAppWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.validateSignature && h.authToken != "" {
		if !ValidateTwilioSignature(r, h.authToken, buildAbsoluteURL(r)) {
			h.logger.Warn("invalid twilio signature")
			h.metrics.ObserveInbound("unauthorized")
			http.Error(w, "Invalid Twilio signature.", http.StatusForbidden)
			return
		}
	}

	webhook, err := ParseTwilioWebhook(r)
	if err != nil {
		h.logger.Error("failed to parse twilio webhook", "error", err)
		h.metrics.ObserveInbound("bad_request")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if webhook.From == "" {
		h.logger.Error("invalid twilio payload", "error", errors.New("missing sender number"))
		h.metrics.ObserveInbound("bad_request")
		http.Error(w, "Missing sender number.", http.StatusBadRequest)
		return
	}

	if h.deduper != nil && webhook.MessageSid != "" {
		processed, err := h.deduper.AlreadyProcessed(r.Context(), webhook.MessageSid)
		if err != nil {
			// Dedupe is best effort; a dead Redis must not drop messages.
			h.logger.Warn("webhook dedupe unavailable", "error", err, "message_sid", webhook.MessageSid)
		} else if processed {
			h.logger.Info("duplicate webhook delivery ignored", "message_sid", webhook.MessageSid, "from", webhook.From)
			h.metrics.ObserveInbound("duplicate")
			writeTwiML(w, EmptyTwiMLResponse())
			return
		}
	}

	result, err := h.engine.Process(r.Context(), webhook.From, webhook.Body)
	if err != nil {
		// The sid stays unmarked, so Twilio's retry of this delivery reaches
		// the engine instead of being answered as a duplicate.
		h.logger.Error("conversation transition failed", "error", err, "from", webhook.From, "message_sid", webhook.MessageSid)
		h.metrics.ObserveInbound("error")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if h.deduper != nil && webhook.MessageSid != "" {
		if err := h.deduper.MarkProcessed(r.Context(), webhook.MessageSid); err != nil {
			h.logger.Warn("failed to record webhook id", "error", err, "message_sid", webhook.MessageSid)
		}
	}

	h.metrics.ObserveInbound("ok")
	h.metrics.ObserveLatency(time.Since(start).Seconds())
	h.logger.Info("webhook processed",
		"from", webhook.From,
		"message_sid", webhook.MessageSid,
		"completed", result.Review != nil,
	)
	writeTwiML(w, BuildTwiMLReply(result.Reply))
}

// HealthCheck returns a simple health check response.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status": "ok",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

func writeTwiML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
