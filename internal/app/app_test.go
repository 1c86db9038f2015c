package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/mail"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
)

type nopSender struct{}

func (nopSender) Send(context.Context, mail.Message) error { return nil }

type harness struct {
	t *testing.T
	c *Container
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{
		App:  config.AppConfig{Name: "helpdesk-test", Version: "test"},
		Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4},
	}
	c, err := New(context.Background(), Options{Config: cfg, Store: memory.NewSeededStore(), Sender: nopSender{}})
	require.NoError(t, err)
	require.NoError(t, c.Auth.EnsureBootstrapAdmin(context.Background(), "root@example.com", "rootpassword"))
	return &harness{t: t, c: c}
}

func (h *harness) do(method, path, token string, body any) (int, map[string]any) {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.c.HTTP.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(h.t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func (h *harness) login(login, password string) string {
	h.t.Helper()
	status, body := h.do(http.MethodPost, "/auth/login", "", map[string]any{"login": login, "password": password})
	require.Equal(h.t, http.StatusOK, status, body)
	return body["data"].(map[string]any)["access_token"].(string)
}

func (h *harness) createUser(adminToken, username, role string) string {
	h.t.Helper()
	status, body := h.do(http.MethodPost, "/admin/users", adminToken, map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"role":     role,
	})
	require.Equal(h.t, http.StatusCreated, status, body)
	return h.login(username, "password123")
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestTicketWorkflowOverHTTP(t *testing.T) {
	h := newHarness(t)
	admin := h.login("root@example.com", "rootpassword")
	agent := h.createUser(admin, "agent", "Agent")
	user := h.createUser(admin, "alice", "User")

	status, body := h.do(http.MethodPost, "/tickets", user, map[string]any{"subject": "Mail is down"})
	require.Equal(t, http.StatusCreated, status, body)
	ticket := body["data"].(map[string]any)
	ticketID := ticket["id"].(string)
	assert.Equal(t, "HD-000001", ticket["key"])

	status, body = h.do(http.MethodGet, "/lookups", user, nil)
	require.Equal(t, http.StatusOK, status)
	var resolvedID string
	for _, s := range body["data"].(map[string]any)["statuses"].([]any) {
		st := s.(map[string]any)
		if st["name"] == "Resolved" {
			resolvedID = st["id"].(string)
		}
	}
	require.NotEmpty(t, resolvedID)

	status, body = h.do(http.MethodPost, "/tickets/"+ticketID+"/status", user, map[string]any{"status_id": resolvedID})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = h.do(http.MethodPost, "/tickets/"+ticketID+"/comments", agent, map[string]any{"content": "Restarting the relay"})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, true, body["data"].(map[string]any)["first_response"])

	status, body = h.do(http.MethodPost, "/tickets/"+ticketID+"/status", agent, map[string]any{"status_id": "bogus"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_STATUS", errorCode(body))

	status, body = h.do(http.MethodPost, "/tickets/"+ticketID+"/status", agent, map[string]any{"status_id": resolvedID})
	require.Equal(t, http.StatusOK, status, body)
	result := body["data"].(map[string]any)
	assert.Equal(t, true, result["resolved"])
	assert.Equal(t, "New", result["old_status"])

	status, body = h.do(http.MethodGet, "/tickets/"+ticketID+"/comments", user, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].([]any), 1, "audit comment is internal")

	status, body = h.do(http.MethodGet, "/tickets/"+ticketID+"/comments", agent, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].([]any), 2)

	status, _ = h.do(http.MethodGet, "/dashboard", user, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, body = h.do(http.MethodGet, "/dashboard", agent, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["data"].(map[string]any)["total"])
}

func TestCommentValidationOverHTTP(t *testing.T) {
	h := newHarness(t)
	admin := h.login("root", "rootpassword")
	user := h.createUser(admin, "alice", "User")

	_, body := h.do(http.MethodPost, "/tickets", user, map[string]any{"subject": "Help"})
	ticketID := body["data"].(map[string]any)["id"].(string)

	status, body := h.do(http.MethodPost, "/tickets/"+ticketID+"/comments", user, map[string]any{"content": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = h.do(http.MethodPost, "/tickets/"+ticketID+"/comments", user, map[string]any{"content": "psst", "is_internal": true})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = h.do(http.MethodPost, "/tickets/"+ticketID+"/comments", user, map[string]any{"content": "hi", "parent_id": "nope"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_PARENT", errorCode(body))
}

func TestAuthAndErrorEnvelope(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(http.MethodGet, "/tickets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, body = h.do(http.MethodPost, "/auth/login", "", map[string]any{"login": "root", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = h.do(http.MethodPost, "/auth/login", "", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"].(map[string]any)["details"], "login")

	status, body = h.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	admin := h.login("root", "rootpassword")
	agent := h.createUser(admin, "agent", "Agent")
	status, _ = h.do(http.MethodGet, "/admin/settings", agent, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, body = h.do(http.MethodGet, "/admin/settings", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].(map[string]any)["notifications"], 7)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := h.c.HTTP.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "helpdesk_http_requests_total")
}

func TestAssetsKnowledgeAndExpensesOverHTTP(t *testing.T) {
	h := newHarness(t)
	admin := h.login("root", "rootpassword")
	agent := h.createUser(admin, "agent", "Agent")
	user := h.createUser(admin, "alice", "User")

	_, body := h.do(http.MethodPost, "/tickets", user, map[string]any{"subject": "Laptop will not boot"})
	ticketID := body["data"].(map[string]any)["id"].(string)

	status, body := h.do(http.MethodPost, "/assets", agent, map[string]any{
		"name":            "ThinkPad T14",
		"asset_type":      "computer",
		"serial_number":   "PF-12345",
		"warranty_expiry": "2030-01-31",
	})
	require.Equal(t, http.StatusCreated, status, body)
	asset := body["data"].(map[string]any)
	assetID := asset["id"].(string)
	assert.Equal(t, "available", asset["status"])
	assert.Equal(t, "2030-01-31", asset["warranty_expiry"])

	status, _ = h.do(http.MethodGet, "/assets", user, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = h.do(http.MethodGet, "/assets?asset_type=toaster", agent, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = h.do(http.MethodPost, "/tickets/"+ticketID+"/assets", agent, map[string]any{"asset_id": assetID})
	require.Equal(t, http.StatusNoContent, status, body)
	status, body = h.do(http.MethodGet, "/assets/"+assetID, agent, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].(map[string]any)["tickets"], 1)
	status, _ = h.do(http.MethodDelete, "/assets/"+assetID, agent, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = h.do(http.MethodDelete, "/assets/"+assetID, admin, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body = h.do(http.MethodPost, "/kb/categories", admin, map[string]any{"name": "Hardware"})
	require.Equal(t, http.StatusCreated, status, body)
	categoryID := body["data"].(map[string]any)["id"].(string)
	status, body = h.do(http.MethodPost, "/kb/articles", admin, map[string]any{
		"title":       "Laptop boot loops",
		"content":     "Hold **power** for ten seconds.",
		"category_id": categoryID,
	})
	require.Equal(t, http.StatusCreated, status, body)
	articleID := body["data"].(map[string]any)["id"].(string)
	status, _ = h.do(http.MethodPost, "/kb/articles", agent, map[string]any{"title": "x", "content": "y", "category_id": categoryID})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = h.do(http.MethodGet, "/kb/articles/"+articleID, user, nil)
	require.Equal(t, http.StatusOK, status, body)
	article := body["data"].(map[string]any)
	assert.Contains(t, article["html"], "<strong>power</strong>")
	assert.EqualValues(t, 1, article["view_count"])

	status, body = h.do(http.MethodGet, "/search?q=laptop", user, nil)
	require.Equal(t, http.StatusOK, status, body)
	results := body["data"].(map[string]any)
	assert.Len(t, results["tickets"], 1)
	assert.Len(t, results["articles"], 1)
	assert.NotContains(t, results, "assets")
	status, body = h.do(http.MethodGet, "/search?q=thinkpad", agent, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["data"].(map[string]any)["assets"], 1)

	status, body = h.do(http.MethodPost, "/tickets/"+ticketID+"/expenses", agent, map[string]any{
		"amount":      12.5,
		"description": "Replacement charger",
		"date":        "2024-03-04",
		"billable":    true,
	})
	require.Equal(t, http.StatusCreated, status, body)
	expense := body["data"].(map[string]any)
	assert.EqualValues(t, 1250, expense["amount_cents"])
	assert.Equal(t, "$12.50", expense["amount"])
	status, _ = h.do(http.MethodPost, "/tickets/"+ticketID+"/expenses", user, map[string]any{"amount": 1, "description": "x", "date": "2024-03-04"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = h.do(http.MethodGet, "/reports/time-expenses?date_from=2024-03-01&date_to=2024-03-31", agent, nil)
	require.Equal(t, http.StatusOK, status, body)
	report := body["data"].(map[string]any)
	assert.EqualValues(t, 1250, report["total_cents"])
	assert.Equal(t, "2024-03-31", report["date_to"])
	status, _ = h.do(http.MethodGet, "/reports/time-expenses?date_from=2024-03-10&date_to=2024-03-01", agent, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = h.do(http.MethodGet, "/time", agent, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Empty(t, body["data"].(map[string]any)["entries"])
}
