package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/smokerelay/smokerelay/internal/logger"
)

// AlertService delivers smoke alerts and operator-triggered messages.
type AlertService interface {
	Smoke(ctx context.Context, at time.Time) error
	Send(ctx context.Context, text, recipientID string) error
	RequestToken(ctx context.Context, recipientID string) error
}

// Alert handles detector and operator endpoints.
type Alert struct {
	service AlertService
	logger  *logger.Logger
}

// NewAlert creates an Alert handler.
func NewAlert(service AlertService, logger *logger.Logger) *Alert {
	return &Alert{
		service: service,
		logger:  logger,
	}
}

type smokeRequest struct {
	Event string `json:"event"`
}

type sendRequest struct {
	Text        string `json:"text"`
	RecipientID string `json:"recipient_id"`
}

type tokenRequest struct {
	RecipientID string `json:"recipient_id"`
}

// Smoke ingests the detector's smoke event and broadcasts the alert.
func (h *Alert) Smoke(w http.ResponseWriter, r *http.Request) {
	var req smokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAck(w, http.StatusBadRequest, "malformed body")
		return
	}

	if req.Event != "smoke_detected" {
		h.logger.Error("Alert handler: unknown detector event", "event", req.Event)
		writeAck(w, http.StatusInternalServerError, "unknown event")
		return
	}

	if err := h.service.Smoke(r.Context(), time.Now()); err != nil {
		writeAck(w, http.StatusOK, err.Error())
		return
	}
	writeAck(w, http.StatusOK, "")
}

// Send delivers a direct message to one recipient.
func (h *Alert) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAck(w, http.StatusBadRequest, "malformed body")
		return
	}
	if req.Text == "" || req.RecipientID == "" {
		writeAck(w, http.StatusBadRequest, "text and recipient_id are required")
		return
	}

	if err := h.service.Send(r.Context(), req.Text, req.RecipientID); err != nil {
		writeAck(w, http.StatusOK, err.Error())
		return
	}
	writeAck(w, http.StatusOK, "")
}

// RequestToken asks the platform to prompt a recipient for a notification
// token grant.
func (h *Alert) RequestToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAck(w, http.StatusBadRequest, "malformed body")
		return
	}
	if req.RecipientID == "" {
		writeAck(w, http.StatusBadRequest, "recipient_id is required")
		return
	}

	if err := h.service.RequestToken(r.Context(), req.RecipientID); err != nil {
		writeAck(w, http.StatusOK, err.Error())
		return
	}
	writeAck(w, http.StatusOK, "")
}
