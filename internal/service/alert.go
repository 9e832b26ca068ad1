package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smokerelay/smokerelay/internal/logger"
	"github.com/smokerelay/smokerelay/internal/registry"
)

// Alert delivers smoke alerts and operator-triggered messages to registered
// recipients.
type Alert struct {
	registry *registry.Registry
	sender   MessageSender
	logger   *logger.Logger
}

// NewAlert creates an Alert service.
func NewAlert(reg *registry.Registry, sender MessageSender, logger *logger.Logger) *Alert {
	return &Alert{
		registry: reg,
		sender:   sender,
		logger:   logger.Component("alert"),
	}
}

// Smoke broadcasts a smoke-detected alert to every registered user.
// Delivery prefers each user's notification token; per-user failures are
// collected and reported together, the remaining recipients still get the
// alert.
func (a *Alert) Smoke(ctx context.Context, at time.Time) error {
	a.registry.Load(ctx)

	users := a.registry.Users()
	if len(users) == 0 {
		return fmt.Errorf("no registered recipients")
	}

	text := "Smoke detected! at " + at.Format("2006-01-02 15:04:05")

	var errs []error
	for _, user := range users {
		if _, err := a.sender.SendText(ctx, text, user.ID, false); err != nil {
			a.logger.Error("Alert service: failed to deliver smoke alert",
				"user_id", user.ID,
				"error", err.Error())
			errs = append(errs, fmt.Errorf("user %s: %w", user.ID, err))
		}
	}

	a.logger.Info("Alert service: smoke alert dispatched",
		"recipients", len(users),
		"failed", len(errs))

	return errors.Join(errs...)
}

// Send delivers a direct text message to one recipient.
func (a *Alert) Send(ctx context.Context, text, recipientID string) error {
	a.registry.Load(ctx)
	_, err := a.sender.SendText(ctx, text, recipientID, false)
	return err
}

// RequestToken sends the notification-token request template to a recipient.
func (a *Alert) RequestToken(ctx context.Context, recipientID string) error {
	_, err := a.sender.SendTokenRequest(ctx, recipientID)
	return err
}
