package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gastobot/internal/core"
	"gastobot/internal/ledger/memory"
	"gastobot/internal/whapi"
)

type fakeProcessor struct {
	mutated []string
	err     error
	calls   int
	lastLen int
}

func (f *fakeProcessor) ProcessWebhook(_ context.Context, messages []whapi.Message) ([]string, error) {
	f.calls++
	f.lastLen = len(messages)
	return f.mutated, f.err
}

type failingStore struct{}

func (failingStore) Load(context.Context) (*core.Ledger, error) {
	return nil, errors.New("disk gone")
}
func (failingStore) Save(context.Context, *core.Ledger) error {
	return errors.New("disk gone")
}

func newTestServer(t *testing.T, proc *fakeProcessor) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	srv := NewServer(":0", store, proc, Options{
		WebhookSecret: "s3cret",
		CacheTTL:      time.Minute,
		CacheCapacity: 8,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, store
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, &fakeProcessor{})

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestWebhookVerification(t *testing.T) {
	srv, _ := newTestServer(t, &fakeProcessor{})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.verify_token=s3cret&hub.challenge=12345", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("valid token status=%d", rr.Code)
	}
	if rr.Body.String() != "12345" {
		t.Fatalf("challenge echo = %q", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/webhook?hub.verify_token=wrong&hub.challenge=12345", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("invalid token status=%d, want 403", rr.Code)
	}
}

func TestWebhookDelivery(t *testing.T) {
	proc := &fakeProcessor{mutated: []string{"u1"}}
	srv, _ := newTestServer(t, proc)

	body := `{"messages":[{"type":"text","body":"Almoço: 45,50","from":"u1","to":"bot"}]}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}
	if proc.calls != 1 || proc.lastLen != 1 {
		t.Fatalf("processor calls=%d lastLen=%d", proc.calls, proc.lastLen)
	}
}

func TestWebhookMalformedPayloadAcknowledged(t *testing.T) {
	proc := &fakeProcessor{}
	srv, _ := newTestServer(t, proc)

	for _, body := range []string{"not json", `{}`, `{"messages":[]}`} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("body %q: status=%d, want 200", body, rr.Code)
		}
	}
	if proc.calls != 0 {
		t.Fatalf("processor must not run on empty payloads, calls=%d", proc.calls)
	}
}

func TestWebhookInternalFault(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("boom")}
	srv, _ := newTestServer(t, proc)

	body := `{"messages":[{"type":"text","body":"x","from":"u"}]}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "boom") {
		t.Fatalf("error text missing from body: %q", rr.Body.String())
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, store := newTestServer(t, &fakeProcessor{})
	ctx := context.Background()

	l, _ := store.Load(ctx)
	now := time.Now()
	l.Append(core.Expense{ID: 1, UserID: "u1", Description: "a", Amount: core.Money{Cents: 100}, Category: "Outros", Date: core.DateOf(now), Timestamp: now})
	l.Append(core.Expense{ID: 2, UserID: "u2", Description: "b", Amount: core.Money{Cents: 200}, Category: "Outros", Date: core.DateOf(now), Timestamp: now})
	l.PutInstallment("u1", "p1", core.InstallmentPlan{Description: "tv", TotalAmount: core.Money{Cents: 120000}, MonthlyAmount: core.Money{Cents: 10000}, Count: 12})
	if err := store.Save(ctx, l); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}

	var got statusResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "online" || got.TotalExpenses != 2 || got.TotalInstallments != 1 {
		t.Fatalf("unexpected status response: %+v", got)
	}
}

func TestUserDataEndpoint(t *testing.T) {
	srv, store := newTestServer(t, &fakeProcessor{})
	ctx := context.Background()

	l, _ := store.Load(ctx)
	now := time.Now()
	l.Append(core.Expense{ID: 1, UserID: "u1", Description: "gasolina", Amount: core.Money{Cents: 5000}, Category: "Combustível", Date: core.DateOf(now), Timestamp: now})
	l.Append(core.Expense{ID: 2, UserID: "u2", Description: "outro", Amount: core.Money{Cents: 1000}, Category: "Outros", Date: core.DateOf(now), Timestamp: now})
	if err := store.Save(ctx, l); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/data/u1", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}

	var got userDataResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Expenses) != 1 || got.Expenses[0].Description != "gasolina" {
		t.Fatalf("unexpected expenses: %+v", got.Expenses)
	}
	if got.Installments == nil {
		t.Fatal("installments must serialize as an object, not null")
	}

	// Unknown users yield empty collections, not 404.
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/data/nobody", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("unknown user status=%d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Expenses) != 0 {
		t.Fatalf("unknown user expenses: %+v", got.Expenses)
	}
}

func TestUserDataCacheInvalidation(t *testing.T) {
	proc := &fakeProcessor{mutated: []string{"u1"}}
	srv, store := newTestServer(t, proc)
	ctx := context.Background()

	fetch := func() userDataResponse {
		t.Helper()
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/data/u1", nil)
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("status=%d", rr.Code)
		}
		var got userDataResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return got
	}

	if got := fetch(); len(got.Expenses) != 0 {
		t.Fatalf("expected empty data, got %+v", got.Expenses)
	}

	// Mutate behind the cache; the stale entry must be served until a
	// webhook invalidates it.
	l, _ := store.Load(ctx)
	now := time.Now()
	l.Append(core.Expense{ID: 1, UserID: "u1", Description: "café", Amount: core.Money{Cents: 500}, Category: "Comida", Date: core.DateOf(now), Timestamp: now})
	if err := store.Save(ctx, l); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if got := fetch(); len(got.Expenses) != 0 {
		t.Fatalf("expected cached empty data, got %+v", got.Expenses)
	}

	body := `{"messages":[{"type":"text","body":"x","from":"u1"}]}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("webhook status=%d", rr.Code)
	}

	if got := fetch(); len(got.Expenses) != 1 {
		t.Fatalf("expected fresh data after invalidation, got %+v", got.Expenses)
	}
}

func TestStatusEndpointLoadFailure(t *testing.T) {
	srv := NewServer(":0", failingStore{}, &fakeProcessor{}, Options{WebhookSecret: "s"})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "disk gone") {
		t.Fatalf("error text missing: %q", rr.Body.String())
	}
}

func TestDashboardServed(t *testing.T) {
	srv, _ := newTestServer(t, &fakeProcessor{})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("dashboard status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "GastoBot") {
		t.Fatal("dashboard body missing heading")
	}
}
