package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/smokerelay/smokerelay/internal/logger"
	"github.com/smokerelay/smokerelay/internal/model"
)

// SubscriptionService classifies and handles inbound webhook events.
type SubscriptionService interface {
	Handle(ctx context.Context, event model.Event) error
}

// Webhook handles the platform's webhook endpoints: the registration
// handshake and the event callback.
type Webhook struct {
	service           SubscriptionService
	verificationToken string
	logger            *logger.Logger
}

// NewWebhook creates a Webhook handler.
func NewWebhook(service SubscriptionService, verificationToken string, logger *logger.Logger) *Webhook {
	return &Webhook{
		service:           service,
		verificationToken: verificationToken,
		logger:            logger,
	}
}

// Verify answers the platform's subscription handshake: echo the challenge
// when the verify token matches, 403 otherwise.
func (h *Webhook) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	verifyToken := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode != "" && verifyToken == h.verificationToken {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	w.WriteHeader(http.StatusForbidden)
}

// Callback decodes the webhook envelope and hands every messaging event to
// the subscription service. The platform contract requires a single terminal
// response per delivery, sent once all events are handled.
func (h *Webhook) Callback(w http.ResponseWriter, r *http.Request) {
	var envelope model.WebhookEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		h.logger.Error("Webhook handler: failed to decode body", "error", err.Error())
		writeAck(w, http.StatusBadRequest, "malformed body")
		return
	}

	if envelope.Object != "page" {
		h.logger.Info("Webhook handler: unknown envelope object", "object", envelope.Object)
		writeAck(w, http.StatusNotFound, "unknown event source")
		return
	}

	var lastErr error
	for _, entry := range envelope.Entry {
		for _, we := range entry.Messaging {
			event := model.ClassifyEvent(we)
			if err := h.service.Handle(r.Context(), event); err != nil {
				h.logger.Error("Webhook handler: event handling reported error",
					"kind", event.Kind.String(),
					"sender_id", event.SenderID,
					"error", err.Error())
				lastErr = err
			}
		}
	}

	if lastErr != nil {
		writeAck(w, http.StatusOK, lastErr.Error())
		return
	}
	writeAck(w, http.StatusOK, "")
}
