package service

import (
	"context"
	"time"

	"github.com/smokerelay/smokerelay/internal/logger"
	"github.com/smokerelay/smokerelay/internal/model"
	"github.com/smokerelay/smokerelay/internal/registry"
)

// MessageSender defines the delivery operations the services drive.
type MessageSender interface {
	SendText(ctx context.Context, text, recipientID string, forceRawID bool) (*model.PlatformResponse, error)
	SendQuickReply(ctx context.Context, text string, options []string, recipientID string, forceRawID bool) (*model.PlatformResponse, error)
	SendTokenRequest(ctx context.Context, recipientID string) (*model.PlatformResponse, error)
}

// Quick-reply payloads offered by the verification flow. The button labels
// map to these via model.QuickReplyPayload.
const (
	payloadContinue = "CONTINUE"
	payloadCancel   = "CANCEL"
	payloadRefresh  = "REFRESH"
	payloadStop     = "STOP"
)

const (
	msgAlreadySubscribed  = "You are already receiving alerts of smoke detection."
	msgProvideToken       = "Please provide the correct verification token to receive alerts."
	msgVerified           = "You entered the correct verification token. Continue to receive smoke detection alerts?"
	msgInternalError      = "An internal server error occurred. Please try again in a while."
	msgStopped            = "You have stopped receiving smoke detection alerts."
	msgSubscribed         = "You will now receive smoke detection alerts."
	msgAllowNotifications = "Allow notification messages below to finish subscribing."
)

// Subscription classifies inbound webhook events and drives the registry and
// delivery accordingly. Per-sender state is implicit: unregistered,
// registered without a token, or subscribed, all derived from registry
// contents.
type Subscription struct {
	registry          *registry.Registry
	sender            MessageSender
	verificationToken string
	logger            *logger.Logger
}

// NewSubscription creates a Subscription service.
func NewSubscription(reg *registry.Registry, sender MessageSender, verificationToken string, logger *logger.Logger) *Subscription {
	return &Subscription{
		registry:          reg,
		sender:            sender,
		verificationToken: verificationToken,
		logger:            logger.Component("subscription"),
	}
}

// Handle processes one classified inbound event to completion. Registry and
// delivery failures are absorbed into best-effort user messaging; the
// returned error is diagnostic only and never prevents the caller from
// acknowledging the event.
func (s *Subscription) Handle(ctx context.Context, event model.Event) error {
	s.registry.Load(ctx)

	s.logger.Debug("Subscription service: handling event",
		"kind", event.Kind.String(),
		"sender_id", event.SenderID)

	switch event.Kind {
	case model.EventTokenGrant:
		return s.handleTokenGrant(ctx, event)
	case model.EventText:
		return s.handleText(ctx, event)
	case model.EventQuickReply:
		return s.handleQuickReply(ctx, event)
	default:
		s.logger.Info("Subscription service: unrecognized event shape, acknowledging",
			"sender_id", event.SenderID)
		return nil
	}
}

// handleTokenGrant processes the platform's optin event: either a token
// grant/refresh or a revocation. Subscription state is driven entirely by
// the platform's own event, never by client input.
func (s *Subscription) handleTokenGrant(ctx context.Context, event model.Event) error {
	senderID := event.SenderID
	optin := event.Optin

	if optin.NotificationMessagesStatus == model.StatusStopNotifications {
		if err := s.registry.Remove(ctx, senderID); err != nil {
			s.logger.Error("Subscription service: failed to remove user on revoke",
				"user_id", senderID,
				"error", err.Error())
		}
		// The token was just revoked; only the raw id can still reach the user.
		_, err := s.sender.SendText(ctx, msgStopped, senderID, true)
		return err
	}

	if _, found := s.registry.FindByID(senderID); !found {
		if result := s.registry.Add(ctx, senderID); result == registry.AddFailed {
			s.logger.Error("Subscription service: failed to register user on token grant",
				"user_id", senderID)
		}
	}

	if err := s.registry.SetNotificationToken(ctx, senderID, optin.NotificationMessagesToken, optin.TokenExpiryTimestamp, optin.Payload); err != nil {
		s.logger.Error("Subscription service: failed to store notification token",
			"user_id", senderID,
			"error", err.Error())
	}

	if !s.subscriptionValid(senderID) {
		// Grant signal arrived but the stored token is unusable; prompt the
		// user to allow notifications and request a fresh token.
		if _, err := s.sender.SendText(ctx, msgAllowNotifications, senderID, true); err != nil {
			s.logger.Error("Subscription service: failed to send allow-notifications prompt",
				"user_id", senderID,
				"error", err.Error())
		}
		_, err := s.sender.SendTokenRequest(ctx, senderID)
		return err
	}

	_, err := s.sender.SendText(ctx, msgSubscribed, senderID, false)
	return err
}

// handleText processes a plain text message. The shared verification secret
// gates registration so that knowing the webhook endpoint alone is not
// enough to subscribe an arbitrary id.
func (s *Subscription) handleText(ctx context.Context, event model.Event) error {
	senderID := event.SenderID

	user, found := s.registry.FindByID(senderID)
	subscribed := found && s.registry.IsSubscribed(user)

	if event.Text != s.verificationToken {
		if subscribed {
			_, err := s.sender.SendText(ctx, msgAlreadySubscribed, senderID, false)
			return err
		}
		_, err := s.sender.SendText(ctx, msgProvideToken, senderID, true)
		return err
	}

	if subscribed {
		_, err := s.sender.SendText(ctx, msgAlreadySubscribed, senderID, false)
		return err
	}

	if result := s.registry.Add(ctx, senderID); result == registry.AddFailed {
		_, err := s.sender.SendText(ctx, msgInternalError, senderID, true)
		return err
	}

	_, err := s.sender.SendQuickReply(ctx, msgVerified, []string{"Continue", "Cancel"}, senderID, true)
	return err
}

// handleQuickReply maps a quick-reply payload back to its action.
func (s *Subscription) handleQuickReply(ctx context.Context, event model.Event) error {
	senderID := event.SenderID

	switch event.Payload {
	case payloadContinue, payloadRefresh:
		_, err := s.sender.SendTokenRequest(ctx, senderID)
		return err
	case payloadCancel, payloadStop:
		if err := s.registry.Remove(ctx, senderID); err != nil {
			s.logger.Error("Subscription service: failed to remove user on cancel",
				"user_id", senderID,
				"error", err.Error())
		}
		_, err := s.sender.SendText(ctx, msgStopped, senderID, true)
		return err
	default:
		s.logger.Info("Subscription service: unknown quick-reply payload, acknowledging",
			"sender_id", senderID,
			"payload", event.Payload)
		return nil
	}
}

// subscriptionValid reports whether the sender now holds a usable token:
// present, non-empty and unexpired.
func (s *Subscription) subscriptionValid(senderID string) bool {
	user, found := s.registry.FindByID(senderID)
	if !found || !s.registry.IsSubscribed(user) {
		return false
	}
	if user.NotificationMessages.Token == "" {
		return false
	}
	return model.TokenValid(user.NotificationMessages.ExpiryTimestamp, time.Now())
}
