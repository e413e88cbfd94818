package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/ecomarket-sync/internal/aggregate"
	"github.com/fairyhunter13/ecomarket-sync/internal/config"
	"github.com/fairyhunter13/ecomarket-sync/internal/model"
	"github.com/fairyhunter13/ecomarket-sync/internal/notifier"
	"github.com/fairyhunter13/ecomarket-sync/internal/obs"
)

// CentralApp exposes the ingestion endpoint that bridges HTTP notifications
// into the durable channel, plus the central inventory view.
type CentralApp struct {
	Cfg config.Config
	Agg *aggregate.Aggregate
	Pub notifier.Publisher

	started  time.Time
	ingested atomic.Uint64
	rejected atomic.Uint64
}

// NewCentralApp constructs a CentralApp.
func NewCentralApp(cfg config.Config, agg *aggregate.Aggregate, pub notifier.Publisher) *CentralApp {
	return &CentralApp{Cfg: cfg, Agg: agg, Pub: pub, started: time.Now()}
}

func (a *CentralApp) saleNotificationHandler(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return
	}
	var ev model.SaleEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		a.rejected.Add(1)
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	// Branches that predate message ids send none; assign one here so the
	// consumer can always deduplicate.
	if ev.MessageID == "" {
		ev.MessageID = uuid.NewString()
	}
	if err := a.Pub.Publish(r.Context(), ev); err != nil {
		a.rejected.Add(1)
		obs.Logger.Error("sale_ingest_publish_failed", "message_id", ev.MessageID, "error", err)
		WriteJSONError(w, http.StatusBadGateway, "publish_failed", "")
		return
	}
	a.ingested.Add(1)
	obs.Logger.Info("sale_ingested", "message_id", ev.MessageID, "branch_id", ev.BranchID)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted", "message_id": ev.MessageID})
}

func (a *CentralApp) inventoryHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a.Agg.Snapshot())
}

func (a *CentralApp) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (a *CentralApp) metricsHandler(w http.ResponseWriter, _ *http.Request) {
	m := map[string]any{
		"notifications_ingested": a.ingested.Load(),
		"notifications_rejected": a.rejected.Load(),
		"uptime_sec":             time.Since(a.started).Seconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m)
}
