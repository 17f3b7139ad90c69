package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-security-alert-watcher/internal/metrics"
	"github.com/mr1hm/go-security-alert-watcher/internal/webhook"
)

const testWebhookPath = "/api/github/webhooks"

// mockReceiver implements webhook.Receiver for testing
type mockReceiver struct {
	deliveries []webhook.Delivery
}

func (m *mockReceiver) VerifyAndReceive(ctx context.Context, d webhook.Delivery) error {
	m.deliveries = append(m.deliveries, d)
	return nil
}

func setupTestRouter(recv webhook.Receiver, m *metrics.Metrics, middleware ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	ingress := webhook.NewHandler(recv, nil, m)
	handler := NewHandler(ingress, m.Handler(), testWebhookPath)
	handler.RegisterRoutes(router, middleware...)
	return router
}

func webhookRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, testWebhookPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "code_scanning_alert")
	req.Header.Set("X-GitHub-Delivery", "72d3162e-cc78-11e3-81ab-4c9367dc0958")
	req.Header.Set("X-Hub-Signature-256", "sha256=abc")
	return req
}

func TestReceiveWebhook(t *testing.T) {
	recv := &mockReceiver{}
	router := setupTestRouter(recv, metrics.New())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, webhookRequest(`{"action":"closed_by_user"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if w.Body.String() != `{"ok":true}` {
		t.Errorf("unexpected body %s", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("unexpected content type %q", ct)
	}

	if len(recv.deliveries) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(recv.deliveries))
	}
	d := recv.deliveries[0]
	if d.Event != "code_scanning_alert" || d.Signature != "sha256=abc" || string(d.Payload) != `{"action":"closed_by_user"}` {
		t.Errorf("unexpected delivery %+v", d)
	}
}

func TestReceiveWebhook_MissingHeaders(t *testing.T) {
	recv := &mockReceiver{}
	router := setupTestRouter(recv, metrics.New())

	req := httptest.NewRequest(http.MethodPost, testWebhookPath, strings.NewReader(`{}`))
	req.Header.Set("X-GitHub-Event", "code_scanning_alert")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !strings.HasPrefix(resp["message"], "missing required headers") {
		t.Errorf("unexpected message %q", resp["message"])
	}
	if len(recv.deliveries) != 0 {
		t.Error("receiver must not be called")
	}
}

func TestHealth(t *testing.T) {
	router := setupTestRouter(&mockReceiver{}, metrics.New())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %s", resp["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupTestRouter(&mockReceiver{}, metrics.New())

	router.ServeHTTP(httptest.NewRecorder(), webhookRequest(`{}`))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `alert_watcher_webhook_deliveries_total{status="200"} 1`) {
		t.Errorf("delivery counter missing from exposition:\n%s", w.Body.String())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	recv := &mockReceiver{}
	router := setupTestRouter(recv, metrics.New(), RateLimitMiddleware(1))

	first := httptest.NewRecorder()
	router.ServeHTTP(first, webhookRequest(`{}`))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, webhookRequest(`{}`))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") != "1" {
		t.Errorf("expected Retry-After header, got %q", second.Header().Get("Retry-After"))
	}
	if len(recv.deliveries) != 1 {
		t.Errorf("expected limited request to skip the receiver, got %d deliveries", len(recv.deliveries))
	}

	// health is not rate limited
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected health to bypass the limiter, got %d", w.Code)
	}
}
