package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/smokerelay/smokerelay/internal/mocks"
	"github.com/smokerelay/smokerelay/internal/testutil"
)

func newProtected(parser *mocks.TokenManager) (http.Handler, *bool) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	m := NewAuthenticate(parser, testutil.MakeNoopLogger())
	return m.Handle(next), &called
}

func TestAuthenticate_ValidToken(t *testing.T) {
	parser := &mocks.TokenManager{}
	parser.On("Parse", "good-token").Return("detector-1", nil)

	h, called := newProtected(parser)

	req := httptest.NewRequest(http.MethodPost, "/alert", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, *called)
}

func TestAuthenticate_MissingToken(t *testing.T) {
	parser := &mocks.TokenManager{}

	h, called := newProtected(parser)

	req := httptest.NewRequest(http.MethodPost, "/alert", nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, *called)
	parser.AssertNotCalled(t, "Parse", mock.Anything)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	parser := &mocks.TokenManager{}
	parser.On("Parse", "bad-token").Return("", errors.New("failed to parse token"))

	h, called := newProtected(parser)

	req := httptest.NewRequest(http.MethodPost, "/alert", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, *called)
	assert.Contains(t, rr.Body.String(), "invalid authorization token")
}
