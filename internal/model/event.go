package model

import "strings"

// WebhookEnvelope is the raw body the platform posts to the webhook:
// a page object carrying one or more entries of messaging events.
type WebhookEnvelope struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry groups the messaging events of one page entry.
type WebhookEntry struct {
	Messaging []WebhookEvent `json:"messaging"`
}

// WebhookEvent is one loosely-shaped inbound event as delivered by the
// platform. Exactly one of Optin or Message is expected to be set.
type WebhookEvent struct {
	Sender  EventSender   `json:"sender"`
	Optin   *EventOptin   `json:"optin,omitempty"`
	Message *EventMessage `json:"message,omitempty"`
}

type EventSender struct {
	ID string `json:"id"`
}

// EventOptin reports a notification-token grant or revocation.
type EventOptin struct {
	NotificationMessagesToken  string `json:"notification_messages_token"`
	TokenExpiryTimestamp       string `json:"token_expiry_timestamp"`
	NotificationMessagesStatus string `json:"notification_messages_status"`
	Payload                    string `json:"payload"`
}

type EventMessage struct {
	Text       string             `json:"text"`
	QuickReply *MessageQuickReply `json:"quick_reply,omitempty"`
}

// MessageQuickReply is the quick-reply selection attached to an inbound
// message.
type MessageQuickReply struct {
	Payload string `json:"payload"`
}

// StatusStopNotifications is the optin status the platform sends when the
// user revokes notification messages.
const StatusStopNotifications = "STOP_NOTIFICATIONS"

// EventKind tags the classified inbound event variant.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventTokenGrant
	EventText
	EventQuickReply
)

func (k EventKind) String() string {
	switch k {
	case EventTokenGrant:
		return "token_grant"
	case EventText:
		return "text"
	case EventQuickReply:
		return "quick_reply"
	default:
		return "unknown"
	}
}

// Event is the classified form of a WebhookEvent. Which payload fields are
// meaningful depends on Kind: Optin for EventTokenGrant, Text for EventText,
// Payload for EventQuickReply.
type Event struct {
	Kind     EventKind
	SenderID string
	Optin    EventOptin
	Text     string
	Payload  string
}

// ClassifyEvent resolves the duck-typed platform event into a tagged variant
// in one place so downstream branches operate on a known case.
func ClassifyEvent(we WebhookEvent) Event {
	switch {
	case we.Optin != nil && we.Optin.NotificationMessagesToken != "":
		return Event{Kind: EventTokenGrant, SenderID: we.Sender.ID, Optin: *we.Optin}
	case we.Message != nil && we.Message.QuickReply != nil && we.Message.QuickReply.Payload != "":
		return Event{Kind: EventQuickReply, SenderID: we.Sender.ID, Payload: we.Message.QuickReply.Payload}
	case we.Message != nil && we.Sender.ID != "" && we.Message.Text != "":
		return Event{Kind: EventText, SenderID: we.Sender.ID, Text: we.Message.Text}
	default:
		return Event{Kind: EventUnknown, SenderID: we.Sender.ID}
	}
}

// QuickReplyPayload derives the machine-readable payload for a quick-reply
// button from its label: upper-cased with all whitespace removed, so the
// inbound payload maps back to the offered action deterministically.
func QuickReplyPayload(label string) string {
	return strings.ToUpper(strings.Join(strings.Fields(label), ""))
}
