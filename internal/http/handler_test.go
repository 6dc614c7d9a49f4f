package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mueblesrd/support-rag/internal/auth"
	"github.com/mueblesrd/support-rag/internal/chat"
	"github.com/mueblesrd/support-rag/internal/claims"
	"github.com/mueblesrd/support-rag/internal/domain"
	"github.com/mueblesrd/support-rag/internal/tickets"
)

// --- Mocks ---

type mockChat struct {
	resp *chat.Response
	err  error
}

func (m *mockChat) Ask(_ context.Context, _ chat.Request) (*chat.Response, error) {
	return m.resp, m.err
}

type mockClaims struct {
	analyzeResp  *claims.AnalyzeResponse
	feedbackResp *claims.FeedbackResponse
	err          error
	batchCalls   int
	deepCalls    int
}

func (m *mockClaims) Analyze(_ context.Context, _ *claims.AnalyzeRequest) (*claims.AnalyzeResponse, error) {
	return m.analyzeResp, m.err
}

func (m *mockClaims) EvaluateBatch(_ context.Context, _ *claims.FeedbackRequest) (*claims.FeedbackResponse, error) {
	m.batchCalls++
	return m.feedbackResp, m.err
}

func (m *mockClaims) EvaluateDeep(_ context.Context, _ *claims.FeedbackRequest) (*claims.FeedbackResponse, error) {
	m.deepCalls++
	return m.feedbackResp, m.err
}

type mockAuth struct {
	token string
	err   error
}

func (m *mockAuth) IssueToken(_ context.Context, _, _ string) (string, error) {
	return m.token, m.err
}

type mockValidator struct {
	valid string
}

func (m *mockValidator) ValidateToken(_ context.Context, token string) (*auth.User, error) {
	if token == m.valid {
		return &auth.User{ID: 1, Username: "rosalie"}, nil
	}
	return nil, auth.ErrNotFound
}

type mockTickets struct {
	tickets map[string]*tickets.Ticket
	created *tickets.Ticket
	err     error
}

func (m *mockTickets) List(_ context.Context) ([]tickets.Ticket, error) {
	var out []tickets.Ticket
	for _, t := range m.tickets {
		out = append(out, *t)
	}
	return out, m.err
}

func (m *mockTickets) Get(_ context.Context, number string) (*tickets.Ticket, error) {
	t, ok := m.tickets[number]
	if !ok {
		return nil, tickets.ErrNotFound
	}
	return t, nil
}

func (m *mockTickets) Create(_ context.Context, req *tickets.CreateTicketRequest) (*tickets.Ticket, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = &tickets.Ticket{Number: req.Number, Subject: req.Subject, Status: req.Status}
	return m.created, nil
}

func (m *mockTickets) SetStatus(_ context.Context, number string, req *tickets.UpdateStatusRequest) (*tickets.Ticket, error) {
	t, ok := m.tickets[number]
	if !ok {
		return nil, tickets.ErrNotFound
	}
	t.Status = req.Status
	return t, nil
}

func (m *mockTickets) CreateContact(_ context.Context, c *tickets.Contact) (*tickets.Contact, error) {
	c.ID = 1
	return c, nil
}

const testToken = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"

const testSchema = "openapi: 3.0.3\ninfo:\n  title: MueblesRD Support API\n"

func newTestRouter(h *Handler) http.Handler {
	return NewRouter(h, NewAPIDocs([]byte(testSchema)), &mockValidator{valid: testToken}, NewIPRateLimiter(100, 100), "*")
}

func defaultHandler() (*Handler, *mockClaims) {
	claimsSvc := &mockClaims{
		feedbackResp: &claims.FeedbackResponse{FinalRecommendation: "Approve."},
	}
	h := NewHandler(
		&mockChat{resp: &chat.Response{Answer: "72 hours", Sources: []string{"2.-Warranty Deadlines"}}},
		claimsSvc,
		&mockAuth{token: testToken},
		&mockTickets{tickets: map[string]*tickets.Ticket{
			"00430578": {Number: "00430578", Subject: "Defective sofa", Status: tickets.StatusNew},
		}},
	)
	return h, claimsSvc
}

func doJSON(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body == "" {
		rd = bytes.NewReader(nil)
	} else {
		rd = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestHealth(t *testing.T) {
	h, _ := defaultHandler()
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestToken(t *testing.T) {
	h, _ := defaultHandler()
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/token", "", `{"username":"rosalie","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp auth.TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, testToken, resp.Token)
}

func TestToken_InvalidCredentials(t *testing.T) {
	h := NewHandler(&mockChat{}, &mockClaims{}, &mockAuth{err: auth.ErrInvalidCredentials}, &mockTickets{})
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/token", "", `{"username":"x","password":"y"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp domain.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, string(domain.ErrCatAuth), resp.Code)
}

func TestAuthRequired(t *testing.T) {
	h, _ := defaultHandler()
	router := newTestRouter(h)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/chat"},
		{http.MethodPost, "/api/analyze-claim"},
		{http.MethodPost, "/api/agent-feedback"},
		{http.MethodPost, "/api/agent-feedback-deep"},
		{http.MethodGet, "/api/tickets"},
		{http.MethodPost, "/api/tickets"},
		{http.MethodGet, "/api/tickets/00430578"},
		{http.MethodPost, "/api/tickets/00430578/status"},
		{http.MethodPost, "/api/contacts"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := doJSON(t, router, p.method, p.path, "", `{}`)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var resp domain.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, string(domain.ErrCatAuth), resp.Code)
		})
	}
}

func TestAuth_BadToken(t *testing.T) {
	h, _ := defaultHandler()
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/api/chat", "wrong-token", `{"query":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_BearerSchemeRejected(t *testing.T) {
	h, _ := defaultHandler()
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"query":"hi"}`))
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChat(t *testing.T) {
	h, _ := defaultHandler()
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/api/chat", testToken, `{"query":"What is the deadline?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chat.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "72 hours", resp.Answer)
	assert.Equal(t, []string{"2.-Warranty Deadlines"}, resp.Sources)
}

func TestChat_InvalidJSON(t *testing.T) {
	h, _ := defaultHandler()
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/api/chat", testToken, "not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp domain.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, string(domain.ErrCatValidation), resp.Code)
}

func TestChat_ServiceValidationError(t *testing.T) {
	h := NewHandler(
		&mockChat{err: domain.NewValidationError("query is required")},
		&mockClaims{}, &mockAuth{}, &mockTickets{},
	)
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/api/chat", testToken, `{"query":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp domain.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "query is required", resp.Error)
	assert.Equal(t, string(domain.ErrCatValidation), resp.Code)
}

func TestChat_ModelError(t *testing.T) {
	h := NewHandler(
		&mockChat{err: domain.NewModelError("answer generation failed", context.DeadlineExceeded)},
		&mockClaims{}, &mockAuth{}, &mockTickets{},
	)
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/api/chat", testToken, `{"query":"q"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAnalyzeClaim(t *testing.T) {
	h := NewHandler(&mockChat{}, &mockClaims{
		analyzeResp: &claims.AnalyzeResponse{
			ClaimSummary: claims.ClaimSummary{ClaimType: claims.ClaimDamagedProduct, DaysSinceDelivery: 19},
			ToneAnalysis: claims.ToneAnalysis{Tone: "neutral", Confidence: 0.5, Indicators: []string{}},
		},
	}, &mockAuth{}, &mockTickets{})
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/api/analyze-claim", testToken, `{"claim_type":"damaged_product"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	for _, field := range []string{
		"claim_summary", "tone_analysis", "policy_recommendations",
		"communication_recommendations", "next_steps", "sources",
	} {
		assert.Contains(t, raw, field)
	}
}

func TestAgentFeedbackVariants(t *testing.T) {
	h, claimsSvc := defaultHandler()
	router := newTestRouter(h)

	body := `{"claim_type":"damaged_product","contract_number":"252228"}`

	rec := doJSON(t, router, http.MethodPost, "/api/agent-feedback", testToken, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, claimsSvc.batchCalls)
	assert.Equal(t, 0, claimsSvc.deepCalls)

	rec = doJSON(t, router, http.MethodPost, "/api/agent-feedback-deep", testToken, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, claimsSvc.batchCalls)
	assert.Equal(t, 1, claimsSvc.deepCalls)
}

func TestListTickets(t *testing.T) {
	h, _ := defaultHandler()
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodGet, "/api/tickets", testToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out []tickets.Ticket
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, "00430578", out[0].Number)
}

func TestListTickets_EmptyIsArray(t *testing.T) {
	h := NewHandler(&mockChat{}, &mockClaims{}, &mockAuth{}, &mockTickets{})
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodGet, "/api/tickets", testToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestGetTicket_NotFound(t *testing.T) {
	h, _ := defaultHandler()
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodGet, "/api/tickets/99999999", testToken, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp domain.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, string(domain.ErrCatNotFound), resp.Code)
}

func TestCreateTicket(t *testing.T) {
	h, _ := defaultHandler()
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/api/tickets", testToken,
		`{"number":"00430600","subject":"Nouveau cas"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var out tickets.Ticket
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, "00430600", out.Number)
	assert.Equal(t, tickets.StatusNew, out.Status)
}

func TestCreateTicket_MissingSubject(t *testing.T) {
	h, _ := defaultHandler()
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/api/tickets", testToken, `{"number":"00430601"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTicket_Duplicate(t *testing.T) {
	h := NewHandler(&mockChat{}, &mockClaims{}, &mockAuth{}, &mockTickets{err: tickets.ErrExists})
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/api/tickets", testToken,
		`{"number":"00430578","subject":"dup"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTicketStatus(t *testing.T) {
	h, _ := defaultHandler()
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/api/tickets/00430578/status", testToken, `{"status":"ferme"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out tickets.Ticket
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, tickets.StatusClosed, out.Status)
}

func TestUpdateTicketStatus_InvalidStatus(t *testing.T) {
	h, _ := defaultHandler()
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/api/tickets/00430578/status", testToken, `{"status":"done"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateContact(t *testing.T) {
	h, _ := defaultHandler()
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodPost, "/api/contacts", testToken, `{"full_name":"Marie Tremblay"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/contacts", testToken, `{"email":"no-name@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := defaultHandler()
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDHeader(t *testing.T) {
	h, _ := defaultHandler()
	router := newTestRouter(h)

	rec := doJSON(t, router, http.MethodGet, "/api/health", "", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRateLimit(t *testing.T) {
	h, _ := defaultHandler()
	router := NewRouter(h, NewAPIDocs([]byte(testSchema)), &mockValidator{valid: testToken}, NewIPRateLimiter(1, 1), "*")

	rec := doJSON(t, router, http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var resp domain.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, string(domain.ErrCatRateLimit), resp.Code)
}
