package httpapi

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewBranchRouter registers the branch routes and returns the handler with
// middleware applied.
func NewBranchRouter(app *BranchApp) http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID, WithLogging)
	r.Get("/", app.rootHandler)
	r.Get("/inventory", app.inventoryHandler)
	r.Post("/sales", app.postSaleHandler)
	r.Get("/sales", app.salesHandler)
	r.Get("/sales/stats", app.statsHandler)
	r.Put("/products/{id}", app.putProductHandler)
	r.Get("/healthz", app.healthHandler)
	r.Get("/debug/metrics", app.metricsHandler)
	r.Handle("/debug/vars", expvar.Handler())
	r.Get("/openapi.yaml", app.openapiHandler)
	r.Get("/docs", app.docsHandler)
	return r
}

// NewCentralRouter registers the central ingestion and reporting routes.
func NewCentralRouter(app *CentralApp) http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID, WithLogging)
	r.Post("/sale-notification", app.saleNotificationHandler)
	r.Get("/inventory", app.inventoryHandler)
	r.Get("/healthz", app.healthHandler)
	r.Get("/debug/metrics", app.metricsHandler)
	r.Handle("/debug/vars", expvar.Handler())
	return r
}
