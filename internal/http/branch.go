package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/ecomarket-sync/internal/config"
	httpopenapi "github.com/fairyhunter13/ecomarket-sync/internal/http/openapi"
	"github.com/fairyhunter13/ecomarket-sync/internal/ledger"
	"github.com/fairyhunter13/ecomarket-sync/internal/notifier"
)

// BranchApp wires the branch HTTP surface to the local ledger and notifier.
type BranchApp struct {
	Cfg     config.Config
	Ledger  *ledger.Ledger
	Notify  *notifier.Notifier
	started time.Time
}

// NewBranchApp constructs a BranchApp.
func NewBranchApp(cfg config.Config, l *ledger.Ledger, n *notifier.Notifier) *BranchApp {
	return &BranchApp{Cfg: cfg, Ledger: l, Notify: n, started: time.Now()}
}

// SaleRequest is the branch sale intake payload.
type SaleRequest struct {
	ProductID    int64  `json:"product_id"`
	Quantity     int64  `json:"quantity"`
	CustomerInfo string `json:"customer_info,omitempty"`
}

func (a *BranchApp) rootHandler(w http.ResponseWriter, _ *http.Request) {
	info := map[string]any{
		"service":               "ecomarket-branch",
		"branch_id":             a.Ledger.BranchID(),
		"status":                "operational",
		"local_inventory_items": len(a.Ledger.Snapshot()),
		"total_sales":           a.Ledger.Stats().TotalSales,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(info)
}

func (a *BranchApp) inventoryHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a.Ledger.Snapshot())
}

func (a *BranchApp) postSaleHandler(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return
	}
	var req SaleRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.ProductID <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "product_id is required")
		return
	}
	if req.Quantity <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "quantity must be > 0")
		return
	}

	rec, err := a.Ledger.ReserveAndCommit(req.ProductID, req.Quantity)
	switch {
	case errors.Is(err, ledger.ErrUnknownProduct):
		WriteJSONError(w, http.StatusNotFound, "product_not_found", "")
		return
	case errors.Is(err, ledger.ErrInsufficientStock):
		WriteJSONError(w, http.StatusConflict, "insufficient_stock", err.Error())
		return
	case err != nil:
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	// The sale is committed; notification is best effort and never blocks
	// or fails the response.
	a.Notify.Notify(rec.ProductID, rec.QuantitySold, rec.Timestamp, rec.TotalAmount)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rec)
}

func (a *BranchApp) salesHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a.Ledger.Sales())
}

func (a *BranchApp) statsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a.Ledger.Stats())
}

func (a *BranchApp) putProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "invalid product id")
		return
	}
	var body struct {
		Stock *int64 `json:"stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if body.Stock == nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "stock is required")
		return
	}
	switch err := a.Ledger.SetStock(id, *body.Stock); {
	case errors.Is(err, ledger.ErrUnknownProduct):
		WriteJSONError(w, http.StatusNotFound, "product_not_found", "")
		return
	case err != nil:
		WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "new_stock": *body.Stock})
}

func (a *BranchApp) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (a *BranchApp) metricsHandler(w http.ResponseWriter, _ *http.Request) {
	published, failed := a.Notify.Metrics()
	st := a.Ledger.Stats()
	m := map[string]any{
		"total_sales":             st.TotalSales,
		"total_revenue":           st.TotalRevenue,
		"notifications_published": published,
		"notifications_failed":    failed,
		"uptime_sec":              time.Since(a.started).Seconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m)
}

func (a *BranchApp) openapiHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *BranchApp) docsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
