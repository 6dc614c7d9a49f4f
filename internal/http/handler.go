package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mueblesrd/support-rag/internal/auth"
	"github.com/mueblesrd/support-rag/internal/chat"
	"github.com/mueblesrd/support-rag/internal/claims"
	"github.com/mueblesrd/support-rag/internal/domain"
	"github.com/mueblesrd/support-rag/internal/tickets"
)

const requestTimeout = 60 * time.Second

type ChatService interface {
	Ask(ctx context.Context, req chat.Request) (*chat.Response, error)
}

type ClaimsService interface {
	Analyze(ctx context.Context, req *claims.AnalyzeRequest) (*claims.AnalyzeResponse, error)
	EvaluateBatch(ctx context.Context, req *claims.FeedbackRequest) (*claims.FeedbackResponse, error)
	EvaluateDeep(ctx context.Context, req *claims.FeedbackRequest) (*claims.FeedbackResponse, error)
}

type AuthService interface {
	IssueToken(ctx context.Context, username, password string) (string, error)
}

type TicketService interface {
	List(ctx context.Context) ([]tickets.Ticket, error)
	Get(ctx context.Context, number string) (*tickets.Ticket, error)
	Create(ctx context.Context, req *tickets.CreateTicketRequest) (*tickets.Ticket, error)
	SetStatus(ctx context.Context, number string, req *tickets.UpdateStatusRequest) (*tickets.Ticket, error)
	CreateContact(ctx context.Context, c *tickets.Contact) (*tickets.Contact, error)
}

type Handler struct {
	chat    ChatService
	claims  ClaimsService
	auth    AuthService
	tickets TicketService
}

func NewHandler(chatSvc ChatService, claimsSvc ClaimsService, authSvc AuthService, ticketSvc TicketService) *Handler {
	return &Handler{
		chat:    chatSvc,
		claims:  claimsSvc,
		auth:    authSvc,
		tickets: ticketSvc,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var req auth.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondAppError(w, r, domain.NewValidationError("invalid json body"))
		return
	}

	token, err := h.auth.IssueToken(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		respondAppError(w, r, domain.NewAuthError("invalid username or password"))
		return
	}
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, auth.TokenResponse{Token: token})
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondAppError(w, r, domain.NewValidationError("invalid json body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	resp, err := h.chat.Ask(ctx, req)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) AnalyzeClaim(w http.ResponseWriter, r *http.Request) {
	var req claims.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondAppError(w, r, domain.NewValidationError("invalid json body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	resp, err := h.claims.Analyze(ctx, &req)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) AgentFeedback(w http.ResponseWriter, r *http.Request) {
	h.agentFeedback(w, r, h.claims.EvaluateBatch)
}

func (h *Handler) AgentFeedbackDeep(w http.ResponseWriter, r *http.Request) {
	h.agentFeedback(w, r, h.claims.EvaluateDeep)
}

func (h *Handler) agentFeedback(
	w http.ResponseWriter,
	r *http.Request,
	evaluate func(context.Context, *claims.FeedbackRequest) (*claims.FeedbackResponse, error),
) {
	var req claims.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondAppError(w, r, domain.NewValidationError("invalid json body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	resp, err := evaluate(ctx, &req)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	out, err := h.tickets.List(r.Context())
	if err != nil {
		respondAppError(w, r, domain.NewInternalError("ticket lookup failed", err))
		return
	}
	if out == nil {
		out = []tickets.Ticket{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]

	t, err := h.tickets.Get(r.Context(), number)
	if errors.Is(err, tickets.ErrNotFound) {
		respondAppError(w, r, domain.NewNotFoundError("ticket not found"))
		return
	}
	if err != nil {
		respondAppError(w, r, domain.NewInternalError("ticket lookup failed", err))
		return
	}

	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req tickets.CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondAppError(w, r, domain.NewValidationError("invalid json body"))
		return
	}
	if err := req.Validate(); err != nil {
		respondAppError(w, r, domain.NewValidationError(err.Error()))
		return
	}

	t, err := h.tickets.Create(r.Context(), &req)
	if errors.Is(err, tickets.ErrExists) {
		respondAppError(w, r, domain.NewValidationError("ticket number already exists"))
		return
	}
	if err != nil {
		respondAppError(w, r, domain.NewInternalError("ticket creation failed", err))
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) UpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]

	var req tickets.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondAppError(w, r, domain.NewValidationError("invalid json body"))
		return
	}
	if err := req.Validate(); err != nil {
		respondAppError(w, r, domain.NewValidationError(err.Error()))
		return
	}

	t, err := h.tickets.SetStatus(r.Context(), number, &req)
	if errors.Is(err, tickets.ErrNotFound) {
		respondAppError(w, r, domain.NewNotFoundError("ticket not found"))
		return
	}
	if err != nil {
		respondAppError(w, r, domain.NewInternalError("ticket update failed", err))
		return
	}

	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var c tickets.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondAppError(w, r, domain.NewValidationError("invalid json body"))
		return
	}
	if c.FullName == "" {
		respondAppError(w, r, domain.NewValidationError("full_name is required"))
		return
	}

	created, err := h.tickets.CreateContact(r.Context(), &c)
	if err != nil {
		respondAppError(w, r, domain.NewInternalError("contact creation failed", err))
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func respondAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		if appErr.StatusCode >= http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "request failed", "error", err)
		}
		writeJSON(w, appErr.StatusCode, domain.ErrorResponse{
			Error: appErr.Message,
			Code:  string(appErr.Category),
		})
		return
	}

	slog.ErrorContext(r.Context(), "request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
		Error: err.Error(),
		Code:  string(domain.ErrCatUnknown),
	})
}
