package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fairyhunter13/ecomarket-sync/internal/aggregate"
	"github.com/fairyhunter13/ecomarket-sync/internal/config"
	"github.com/fairyhunter13/ecomarket-sync/internal/ledger"
	"github.com/fairyhunter13/ecomarket-sync/internal/model"
	"github.com/fairyhunter13/ecomarket-sync/internal/notifier"
	"github.com/fairyhunter13/ecomarket-sync/internal/obs"
)

// capturePublisher records published events; err makes every publish fail.
type capturePublisher struct {
	mu     sync.Mutex
	events []model.SaleEvent
	err    error
}

func (c *capturePublisher) Publish(_ context.Context, ev model.SaleEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *capturePublisher) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func setupBranch(t *testing.T, pub notifier.Publisher) (*notifier.Notifier, http.Handler) {
	t.Helper()
	obs.InitLogger()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	l := ledger.New(cfg.BranchID, model.BranchSeed())
	n := notifier.New(pub, cfg.BranchID, time.Second)
	app := NewBranchApp(cfg, l, n)
	return n, NewBranchRouter(app)
}

func TestPostSale_HappyPath(t *testing.T) {
	pub := &capturePublisher{}
	n, mux := setupBranch(t, pub)

	body := bytes.NewBufferString(`{"product_id":5,"quantity":2}`)
	r := httptest.NewRequest(http.MethodPost, "/sales", body)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var rec model.SaleRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.ProductName != "Quinoa" || rec.QuantitySold != 2 || rec.Status != "completed" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.TotalAmount != 25.0 {
		t.Fatalf("expected total 25.0, got %v", rec.TotalAmount)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if !n.Drain(ctx) {
		t.Fatalf("notifier drain timeout")
	}
	if pub.count() != 1 {
		t.Fatalf("expected 1 published event, got %d", pub.count())
	}
}

func TestPostSale_InsufficientStock(t *testing.T) {
	_, mux := setupBranch(t, &capturePublisher{})

	// Quinoa starts at 3: first sale of 2 succeeds, second must fail.
	for i, want := range []int{http.StatusOK, http.StatusConflict} {
		body := bytes.NewBufferString(`{"product_id":5,"quantity":2}`)
		r := httptest.NewRequest(http.MethodPost, "/sales", body)
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)
		if w.Code != want {
			t.Fatalf("sale %d: expected %d, got %d", i, want, w.Code)
		}
	}
}

func TestPostSale_ValidationErrors(t *testing.T) {
	_, mux := setupBranch(t, &capturePublisher{})

	cases := []struct {
		name, body string
		want       int
	}{
		{"unknown_product", `{"product_id":999,"quantity":1}`, http.StatusNotFound},
		{"missing_product_id", `{"quantity":1}`, http.StatusBadRequest},
		{"zero_quantity", `{"product_id":1,"quantity":0}`, http.StatusBadRequest},
		{"negative_quantity", `{"product_id":1,"quantity":-2}`, http.StatusBadRequest},
		{"malformed_json", `{"product_id":1,`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/sales", bytes.NewBufferString(tc.body))
			r.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, r)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}

func TestPostSale_NotifierFailureInvisible(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}
	n, mux := setupBranch(t, pub)

	body := bytes.NewBufferString(`{"product_id":1,"quantity":2}`)
	r := httptest.NewRequest(http.MethodPost, "/sales", body)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("publish failure must not fail the sale: got %d", w.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if !n.Drain(ctx) {
		t.Fatalf("notifier drain timeout")
	}
	if _, failed := n.Metrics(); failed != 1 {
		t.Fatalf("expected 1 failed notification, got %d", failed)
	}
}

func TestInventoryAndStats(t *testing.T) {
	_, mux := setupBranch(t, &capturePublisher{})

	r := httptest.NewRequest(http.MethodGet, "/inventory", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("inventory: expected 200, got %d", w.Code)
	}
	var products []model.Product
	if err := json.Unmarshal(w.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode inventory: %v", err)
	}
	if len(products) != 5 {
		t.Fatalf("expected 5 products, got %d", len(products))
	}

	body := bytes.NewBufferString(`{"product_id":1,"quantity":2}`)
	pr := httptest.NewRequest(http.MethodPost, "/sales", body)
	pr.Header.Set("Content-Type", "application/json")
	pw := httptest.NewRecorder()
	mux.ServeHTTP(pw, pr)
	if pw.Code != http.StatusOK {
		t.Fatalf("sale: expected 200, got %d", pw.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/sales/stats", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	var st model.SaleStats
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if st.TotalSales != 1 || st.TotalRevenue != 5.0 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestPutProductStock(t *testing.T) {
	_, mux := setupBranch(t, &capturePublisher{})

	r := httptest.NewRequest(http.MethodPut, "/products/4", bytes.NewBufferString(`{"stock":40}`))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	r = httptest.NewRequest(http.MethodPut, "/products/999", bytes.NewBufferString(`{"stock":1}`))
	r.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	r = httptest.NewRequest(http.MethodPut, "/products/4", bytes.NewBufferString(`{}`))
	r.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHealthzAndOpenAPI(t *testing.T) {
	_, mux := setupBranch(t, &capturePublisher{})

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", w.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("openapi: expected 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("openapi:")) {
		t.Fatalf("expected openapi content")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	_, mux := setupBranch(t, &capturePublisher{})

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.Header.Set("X-Request-Id", "req-123")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	if got := w.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
}

func setupCentral(t *testing.T, pub notifier.Publisher) (*aggregate.Aggregate, http.Handler) {
	t.Helper()
	obs.InitLogger()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	agg := aggregate.New(model.CentralSeed())
	app := NewCentralApp(cfg, agg, pub)
	return agg, NewCentralRouter(app)
}

func TestSaleNotification_AcceptsAndAssignsMessageID(t *testing.T) {
	pub := &capturePublisher{}
	_, mux := setupCentral(t, pub)

	body := bytes.NewBufferString(`{"branch_id":"branch-001","product_id":5,"quantity_sold":2,"timestamp":"2026-08-30T12:00:00Z","sale_price":25.0}`)
	r := httptest.NewRequest(http.MethodPost, "/sale-notification", body)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "accepted" || resp["message_id"] == "" {
		t.Fatalf("unexpected response: %v", resp)
	}
	if pub.count() != 1 {
		t.Fatalf("expected 1 published event, got %d", pub.count())
	}
	pub.mu.Lock()
	defer pub.mu.Unlock()
	if pub.events[0].MessageID != resp["message_id"] {
		t.Fatalf("published message id mismatch")
	}
}

func TestSaleNotification_Errors(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}
	_, mux := setupCentral(t, pub)

	r := httptest.NewRequest(http.MethodPost, "/sale-notification", bytes.NewBufferString(`{"product_id":1,`))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed: expected 400, got %d", w.Code)
	}

	r = httptest.NewRequest(http.MethodPost, "/sale-notification", bytes.NewBufferString(`{"product_id":1,"quantity_sold":1}`))
	r.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("publish failure: expected 502, got %d", w.Code)
	}
}

func TestCentralInventory(t *testing.T) {
	agg, mux := setupCentral(t, &capturePublisher{})
	if _, err := agg.Apply(5, 2); err != nil {
		t.Fatalf("apply: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/inventory", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var products []model.Product
	if err := json.Unmarshal(w.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, p := range products {
		if p.ID == 5 && p.Stock != 13 {
			t.Fatalf("expected Quinoa stock 13, got %d", p.Stock)
		}
	}
}
