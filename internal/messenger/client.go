package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smokerelay/smokerelay/internal/logger"
	"github.com/smokerelay/smokerelay/internal/model"
)

// RecipientResolver looks up registered users for recipient resolution.
type RecipientResolver interface {
	FindByID(id string) (model.User, bool)
	IsSubscribed(user model.User) bool
}

// Platform limit on quick-reply buttons per message.
const maxQuickReplies = 13

const messagingTypeResponse = "RESPONSE"

// Options configures a messenger Client.
type Options struct {
	BaseURL     string
	PageID      string
	AccessToken string
	HTTPClient  *http.Client
}

// Client sends messages through the platform's message endpoint. Stored
// notification tokens are preferred for addressing; when the platform rejects
// an attempt, text and quick-reply sends fall back to raw-id addressing once.
type Client struct {
	baseURL     string
	pageID      string
	accessToken string
	httpClient  *http.Client
	resolver    RecipientResolver
	logger      *logger.Logger
}

// NewClient creates a messenger Client.
func NewClient(opts Options, resolver RecipientResolver, logger *logger.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		pageID:      opts.PageID,
		accessToken: opts.AccessToken,
		httpClient:  httpClient,
		resolver:    resolver,
		logger:      logger.Component("messenger"),
	}
}

// SendText sends a plain text message to the resolved recipient.
func (c *Client) SendText(ctx context.Context, text, recipientID string, forceRawID bool) (*model.PlatformResponse, error) {
	return c.sendWithRetry(ctx, model.Message{Text: text}, recipientID, forceRawID)
}

// SendQuickReply sends a text message with up to 13 quick-reply buttons.
// Each button's payload is derived deterministically from its label so the
// inbound payload maps back to an action.
func (c *Client) SendQuickReply(ctx context.Context, text string, options []string, recipientID string, forceRawID bool) (*model.PlatformResponse, error) {
	if len(options) > maxQuickReplies {
		options = options[:maxQuickReplies]
	}
	replies := make([]model.QuickReply, 0, len(options))
	for _, label := range options {
		replies = append(replies, model.QuickReply{
			ContentType: "text",
			Title:       label,
			Payload:     model.QuickReplyPayload(label),
		})
	}
	return c.sendWithRetry(ctx, model.Message{Text: text, QuickReplies: replies}, recipientID, forceRawID)
}

// SendTokenRequest sends the structured template asking the user to grant a
// renewable notification token. It always addresses by raw id: a token
// cannot be requested through itself, so a failure here has no fallback and
// is reported as-is.
func (c *Client) SendTokenRequest(ctx context.Context, recipientID string) (*model.PlatformResponse, error) {
	msg := model.Message{
		Attachment: &model.Attachment{
			Type: "template",
			Payload: model.TemplatePayload{
				TemplateType:                 "notification_messages",
				NotificationMessagesTimezone: "UTC",
				Title:                        "Allow notifications to receive smoke detection alerts.",
				Payload:                      "ADDITIONAL-WEBHOOK-INFORMATION",
				NotificationMessagesCTAText:  "ALLOW",
			},
		},
	}
	return c.post(ctx, msg, model.Recipient{ID: recipientID}, "")
}

// sendWithRetry posts the message once, and on a platform rejection retries
// exactly once with raw-id addressing. The common failure is a stored token
// gone stale; the raw id still reaches the user. The retry's own failure is
// reported, not retried again. Network errors are reported immediately.
func (c *Client) sendWithRetry(ctx context.Context, msg model.Message, recipientID string, forceRawID bool) (*model.PlatformResponse, error) {
	resp, err := c.post(ctx, msg, c.resolveRecipient(recipientID, forceRawID), messagingTypeResponse)
	if err == nil {
		return resp, nil
	}

	var platformErr *model.PlatformError
	if !errors.As(err, &platformErr) {
		return nil, err
	}

	c.logger.Warn("Messenger: platform rejected message, retrying with raw id",
		"recipient_id", recipientID,
		"error", err.Error())

	return c.post(ctx, msg, model.Recipient{ID: recipientID}, messagingTypeResponse)
}

// resolveRecipient picks the physical address for a logical recipient:
// forced raw id, the user's notification token when subscribed and unexpired,
// or the raw id when the user is unknown, has no token, or the token is
// stale. A missing user is a soft condition, not an error.
func (c *Client) resolveRecipient(recipientID string, forceRawID bool) model.Recipient {
	if forceRawID {
		return model.Recipient{ID: recipientID}
	}

	user, ok := c.resolver.FindByID(recipientID)
	if !ok {
		c.logger.Warn("Messenger: no user found, addressing by raw id",
			"recipient_id", recipientID)
		return model.Recipient{ID: recipientID}
	}

	if c.resolver.IsSubscribed(user) {
		if model.TokenValid(user.NotificationMessages.ExpiryTimestamp, time.Now()) {
			return model.Recipient{NotificationMessagesToken: user.NotificationMessages.Token}
		}
		c.logger.Warn("Messenger: stored token expired, addressing by raw id",
			"recipient_id", recipientID)
	}
	return model.Recipient{ID: recipientID}
}

func (c *Client) post(ctx context.Context, msg model.Message, recipient model.Recipient, messagingType string) (*model.PlatformResponse, error) {
	payload := model.MessagePayload{
		Recipient:     recipient,
		MessagingType: messagingType,
		Message:       msg,
		AccessToken:   c.accessToken,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.pageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build platform request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call platform: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read platform response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error model.PlatformError `json:"error"`
		}
		if jsonErr := json.Unmarshal(respBody, &errBody); jsonErr != nil || errBody.Error.Message == "" {
			errBody.Error = model.PlatformError{Message: strings.TrimSpace(string(respBody)), Code: resp.StatusCode}
		}
		return nil, &errBody.Error
	}

	var platformResp model.PlatformResponse
	if err := json.Unmarshal(respBody, &platformResp); err != nil {
		return nil, fmt.Errorf("failed to decode platform response: %w", err)
	}

	c.logger.Debug("Messenger: message sent",
		"recipient_id", platformResp.RecipientID,
		"message_id", platformResp.MessageID)

	return &platformResp, nil
}
