package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyEvent_TokenGrant(t *testing.T) {
	event := ClassifyEvent(WebhookEvent{
		Sender: EventSender{ID: "U1"},
		Optin: &EventOptin{
			NotificationMessagesToken: "TOK1",
			TokenExpiryTimestamp:      "1700000000",
			Payload:                   "PAYLOAD",
		},
	})

	assert.Equal(t, EventTokenGrant, event.Kind)
	assert.Equal(t, "U1", event.SenderID)
	assert.Equal(t, "TOK1", event.Optin.NotificationMessagesToken)
}

func TestClassifyEvent_QuickReply(t *testing.T) {
	event := ClassifyEvent(WebhookEvent{
		Sender: EventSender{ID: "U1"},
		Message: &EventMessage{
			Text:       "Continue",
			QuickReply: &MessageQuickReply{Payload: "CONTINUE"},
		},
	})

	assert.Equal(t, EventQuickReply, event.Kind)
	assert.Equal(t, "CONTINUE", event.Payload)
}

func TestClassifyEvent_Text(t *testing.T) {
	event := ClassifyEvent(WebhookEvent{
		Sender:  EventSender{ID: "U1"},
		Message: &EventMessage{Text: "hello"},
	})

	assert.Equal(t, EventText, event.Kind)
	assert.Equal(t, "hello", event.Text)
}

func TestClassifyEvent_Unknown(t *testing.T) {
	tests := []struct {
		name  string
		event WebhookEvent
	}{
		{name: "empty event", event: WebhookEvent{}},
		{name: "optin without token", event: WebhookEvent{Sender: EventSender{ID: "U1"}, Optin: &EventOptin{}}},
		{name: "message without text", event: WebhookEvent{Sender: EventSender{ID: "U1"}, Message: &EventMessage{}}},
		{name: "message without sender", event: WebhookEvent{Message: &EventMessage{Text: "hi"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, EventUnknown, ClassifyEvent(tt.event).Kind)
		})
	}
}

func TestQuickReplyPayload(t *testing.T) {
	assert.Equal(t, "CONTINUE", QuickReplyPayload("Continue"))
	assert.Equal(t, "STOPALERTS", QuickReplyPayload("Stop alerts"))
	assert.Equal(t, "CANCEL", QuickReplyPayload("  Cancel\t"))
}
