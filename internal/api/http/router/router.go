package router

import (
	"net/http"

	"github.com/smokerelay/smokerelay/internal/api/http/handler"
	"github.com/smokerelay/smokerelay/internal/api/http/middleware"
	"github.com/smokerelay/smokerelay/internal/logger"
)

// Router wires handlers and middleware into the HTTP route table.
type Router struct {
	webhook      *handler.Webhook
	alert        *handler.Alert
	authenticate *middleware.Authenticate
	logging      *middleware.Logging
}

// New creates a Router over the given handlers and token parser.
func New(
	webhook *handler.Webhook,
	alert *handler.Alert,
	tokens middleware.TokenParser,
	logger *logger.Logger,
) *Router {
	return &Router{
		webhook:      webhook,
		alert:        alert,
		authenticate: middleware.NewAuthenticate(tokens, logger),
		logging:      middleware.NewLogging(logger),
	}
}

// Register builds the route table. The webhook endpoints are public (the
// platform authenticates through the handshake secret); detector and
// operator endpoints require a bearer token.
func (r *Router) Register() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /webhook", r.webhook.Verify)
	mux.HandleFunc("POST /webhook", r.webhook.Callback)

	mux.Handle("POST /alert", r.authenticate.Handle(http.HandlerFunc(r.alert.Smoke)))
	mux.Handle("POST /send", r.authenticate.Handle(http.HandlerFunc(r.alert.Send)))
	mux.Handle("POST /notification-request", r.authenticate.Handle(http.HandlerFunc(r.alert.RequestToken)))

	return r.logging.Handle(mux)
}
