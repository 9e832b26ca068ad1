package model

// Recipient addresses an outbound message either by raw platform id or by a
// granted notification token. Exactly one field is set.
type Recipient struct {
	ID                        string `json:"id,omitempty"`
	NotificationMessagesToken string `json:"notification_messages_token,omitempty"`
}

// MessagePayload is the body posted to the platform's message endpoint.
type MessagePayload struct {
	Recipient     Recipient `json:"recipient"`
	MessagingType string    `json:"messaging_type,omitempty"`
	Message       Message   `json:"message"`
	AccessToken   string    `json:"access_token"`
}

// Message holds one of the supported message shapes: plain text, text with
// quick-reply buttons, or a template attachment.
type Message struct {
	Text         string       `json:"text,omitempty"`
	QuickReplies []QuickReply `json:"quick_replies,omitempty"`
	Attachment   *Attachment  `json:"attachment,omitempty"`
}

// QuickReply is one tappable predefined response button.
type QuickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

// Attachment wraps a structured template message.
type Attachment struct {
	Type    string          `json:"type"`
	Payload TemplatePayload `json:"payload"`
}

// TemplatePayload carries the notification-token request template fields.
type TemplatePayload struct {
	TemplateType                 string `json:"template_type"`
	NotificationMessagesTimezone string `json:"notification_messages_timezone,omitempty"`
	Title                        string `json:"title"`
	Payload                      string `json:"payload"`
	NotificationMessagesCTAText  string `json:"notification_messages_cta_text,omitempty"`
}

// PlatformResponse is the platform's success body for a sent message.
type PlatformResponse struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}
