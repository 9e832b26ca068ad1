package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/smokerelay/smokerelay/internal/logger"
)

// TokenParser resolves the caller subject from bearer tokens.
type TokenParser interface {
	Parse(tokenString string) (string, error)
}

// Authenticate validates bearer tokens on detector and operator endpoints.
type Authenticate struct {
	tokens TokenParser
	logger *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokens TokenParser, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokens: tokens, logger: logger}
}

// Handle parses the Authorization header and rejects the request unless a
// valid bearer token is presented.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if tokenString == "" {
			m.unauthorized(w, "missing authorization token")
			return
		}

		subject, err := m.tokens.Parse(tokenString)
		if err != nil {
			m.logger.Warn("Authenticate middleware: invalid token", "error", err.Error())
			m.unauthorized(w, "invalid authorization token")
			return
		}

		m.logger.Debug("Authenticate middleware: caller authenticated", "subject", subject)
		next.ServeHTTP(w, r)
	})
}

func (m *Authenticate) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
