package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smokerelay/smokerelay/internal/model"
	"github.com/smokerelay/smokerelay/internal/testutil"
)

type subscriptionServiceMock struct {
	mock.Mock
}

func (m *subscriptionServiceMock) Handle(ctx context.Context, event model.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func decodeAck(t *testing.T, rr *httptest.ResponseRecorder) AckResponse {
	t.Helper()
	var ack AckResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&ack))
	return ack
}

func TestWebhook_Verify_MatchingToken(t *testing.T) {
	h := NewWebhook(&subscriptionServiceMock{}, "verify-secret", testutil.MakeNoopLogger())

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=verify-secret&hub.challenge=CHALLENGE", nil)
	rr := httptest.NewRecorder()

	h.Verify(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "CHALLENGE", rr.Body.String())
}

func TestWebhook_Verify_WrongToken(t *testing.T) {
	h := NewWebhook(&subscriptionServiceMock{}, "verify-secret", testutil.MakeNoopLogger())

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=CHALLENGE", nil)
	rr := httptest.NewRecorder()

	h.Verify(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.NotContains(t, rr.Body.String(), "CHALLENGE")
}

func TestWebhook_Verify_MissingMode(t *testing.T) {
	h := NewWebhook(&subscriptionServiceMock{}, "verify-secret", testutil.MakeNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.verify_token=verify-secret", nil)
	rr := httptest.NewRecorder()

	h.Verify(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestWebhook_Callback_DispatchesEveryEvent(t *testing.T) {
	service := &subscriptionServiceMock{}
	service.On("Handle", mock.Anything, mock.MatchedBy(func(e model.Event) bool {
		return e.Kind == model.EventText && e.SenderID == "U1"
	})).Return(nil)
	service.On("Handle", mock.Anything, mock.MatchedBy(func(e model.Event) bool {
		return e.Kind == model.EventQuickReply && e.SenderID == "U2"
	})).Return(nil)

	h := NewWebhook(service, "verify-secret", testutil.MakeNoopLogger())

	body := `{
		"object": "page",
		"entry": [
			{"messaging": [{"sender": {"id": "U1"}, "message": {"text": "hello"}}]},
			{"messaging": [{"sender": {"id": "U2"}, "message": {"text": "Continue", "quick_reply": {"payload": "CONTINUE"}}}]}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h.Callback(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	ack := decodeAck(t, rr)
	assert.Equal(t, StatusEventReceived, ack.Status)
	assert.Empty(t, ack.Error)
	service.AssertNumberOfCalls(t, "Handle", 2)
}

func TestWebhook_Callback_MalformedBody(t *testing.T) {
	service := &subscriptionServiceMock{}
	h := NewWebhook(service, "verify-secret", testutil.MakeNoopLogger())

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()

	h.Callback(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	service.AssertNotCalled(t, "Handle")
}

func TestWebhook_Callback_UnknownObject(t *testing.T) {
	service := &subscriptionServiceMock{}
	h := NewWebhook(service, "verify-secret", testutil.MakeNoopLogger())

	req := httptest.NewRequest(http.MethodPost, "/webhook",
		strings.NewReader(`{"object": "user", "entry": []}`))
	rr := httptest.NewRecorder()

	h.Callback(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	service.AssertNotCalled(t, "Handle")
}

func TestWebhook_Callback_HandlerErrorStillAcknowledged(t *testing.T) {
	service := &subscriptionServiceMock{}
	service.On("Handle", mock.Anything, mock.Anything).Return(errors.New("delivery failed"))

	h := NewWebhook(service, "verify-secret", testutil.MakeNoopLogger())

	body := `{"object": "page", "entry": [{"messaging": [{"sender": {"id": "U1"}, "message": {"text": "hello"}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h.Callback(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	ack := decodeAck(t, rr)
	assert.Equal(t, StatusEventReceived, ack.Status)
	assert.Equal(t, "delivery failed", ack.Error)
}
