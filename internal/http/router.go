package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires all routes and the middleware chain. The health,
// token, and documentation endpoints stay open; everything else
// requires token auth.
func NewRouter(h *Handler, docs *APIDocs, validator TokenValidator, limiter *IPRateLimiter, allowOrigin string) http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	api.HandleFunc("/auth/token", h.Token).Methods(http.MethodPost)

	api.HandleFunc("/schema", docs.Schema).Methods(http.MethodGet)
	api.HandleFunc("/docs", docs.SwaggerUI).Methods(http.MethodGet)
	api.HandleFunc("/redoc", docs.Redoc).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(TokenAuth(validator))

	authed.HandleFunc("/chat", h.Chat).Methods(http.MethodPost)
	authed.HandleFunc("/analyze-claim", h.AnalyzeClaim).Methods(http.MethodPost)
	authed.HandleFunc("/agent-feedback", h.AgentFeedback).Methods(http.MethodPost)
	authed.HandleFunc("/agent-feedback-deep", h.AgentFeedbackDeep).Methods(http.MethodPost)

	authed.HandleFunc("/tickets", h.ListTickets).Methods(http.MethodGet)
	authed.HandleFunc("/tickets", h.CreateTicket).Methods(http.MethodPost)
	authed.HandleFunc("/tickets/{number}", h.GetTicket).Methods(http.MethodGet)
	authed.HandleFunc("/tickets/{number}/status", h.UpdateTicketStatus).Methods(http.MethodPost)
	authed.HandleFunc("/contacts", h.CreateContact).Methods(http.MethodPost)

	// Outermost first.
	var handler http.Handler = r
	handler = limiter.Middleware(handler)
	handler = Logging(handler)
	handler = CORS(allowOrigin)(handler)
	handler = RequestID(handler)
	handler = Recovery(handler)

	return handler
}
