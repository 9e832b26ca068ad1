package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokerelay/smokerelay/internal/api/http/handler"
	"github.com/smokerelay/smokerelay/internal/mocks"
	"github.com/smokerelay/smokerelay/internal/model"
	"github.com/smokerelay/smokerelay/internal/testutil"
)

type subscriptionStub struct{}

func (subscriptionStub) Handle(ctx context.Context, event model.Event) error { return nil }

type alertStub struct{}

func (alertStub) Smoke(ctx context.Context, at time.Time) error              { return nil }
func (alertStub) Send(ctx context.Context, text, recipientID string) error   { return nil }
func (alertStub) RequestToken(ctx context.Context, recipientID string) error { return nil }

func newTestRouter(t *testing.T) (http.Handler, *mocks.TokenManager) {
	t.Helper()
	log := testutil.MakeNoopLogger()
	tokens := &mocks.TokenManager{}

	webhook := handler.NewWebhook(subscriptionStub{}, "verify-secret", log)
	alert := handler.NewAlert(alertStub{}, log)

	r := New(webhook, alert, tokens, log)
	return r.Register(), tokens
}

func TestRouter_WebhookVerifyIsPublic(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=verify-secret&hub.challenge=CH", nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "CH", rr.Body.String())
}

func TestRouter_WebhookCallbackIsPublic(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/webhook",
		strings.NewReader(`{"object": "page", "entry": []}`))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_ProtectedEndpointsRequireToken(t *testing.T) {
	h, _ := newTestRouter(t)

	for _, path := range []string{"/alert", "/send", "/notification-request"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestRouter_ProtectedEndpointWithValidToken(t *testing.T) {
	h, tokens := newTestRouter(t)
	tokens.On("Parse", "good-token").Return("detector-1", nil)

	req := httptest.NewRequest(http.MethodPost, "/alert",
		strings.NewReader(`{"event": "smoke_detected"}`))
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	tokens.AssertCalled(t, "Parse", "good-token")
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/webhook", nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
