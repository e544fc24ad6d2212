// Package httpx exposes the aggregated datasets to the presentation layer.
package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reisemkt/dashboard-api/internal/ingest"
	"github.com/reisemkt/dashboard-api/internal/period"
	"github.com/reisemkt/dashboard-api/internal/store"
	"github.com/reisemkt/dashboard-api/internal/utils"
)

type server struct {
	log  *slog.Logger
	svc  *ingest.Service
	ctrl *period.Controller
	st   *store.MemoryStore
}

func NewRouter(log *slog.Logger, svc *ingest.Service, ctrl *period.Controller, st *store.MemoryStore, m *utils.Metrics, reg *prometheus.Registry) http.Handler {
	s := &server{log: log, svc: svc, ctrl: ctrl, st: st}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(utils.Instrument(m))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", s.handleReady)
	mux.Post("/ingest/run", s.handleIngest)
	mux.Get("/api/overview", s.handleOverview)
	mux.Get("/api/daily", s.handleDaily)
	mux.Get("/api/crm", s.handleCrm)
	mux.Get("/api/export/daily.csv", s.handleExportCsv)
	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return mux
}

func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.st.Snapshot(); !ok {
		http.Error(w, "datasets not loaded", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(200)
	w.Write([]byte("ready"))
}

func (s *server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Run(r.Context()); err != nil {
		s.log.Error("ingest failed", slog.String("err", err.Error()))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]any{"status": "ok"})
}

// applyPeriod moves the selected window when both bounds are present in the
// query ("YYYY-MM-DD"); otherwise the controller keeps its current period.
func (s *server) applyPeriod(r *http.Request) {
	start, err1 := time.ParseInLocation("2006-01-02", r.URL.Query().Get("start"), time.Local)
	end, err2 := time.ParseInLocation("2006-01-02", r.URL.Query().Get("end"), time.Local)
	if err1 == nil && err2 == nil {
		s.ctrl.SetPeriod(start, end)
	}
}

func (s *server) handleOverview(w http.ResponseWriter, r *http.Request) {
	s.applyPeriod(r)
	rep, ok := s.ctrl.Daily()
	if !ok {
		http.Error(w, "datasets not loaded", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]any{
		"start":           rep.Start,
		"end":             rep.End,
		"metrics":         rep.Metrics,
		"previousMetrics": rep.PreviousMetrics,
		"comparisons":     rep.Comparisons,
		"minDate":         rep.MinDate,
		"maxDate":         rep.MaxDate,
		"empty":           len(rep.Rows) == 0,
	})
}

func (s *server) handleDaily(w http.ResponseWriter, r *http.Request) {
	s.applyPeriod(r)
	rep, ok := s.ctrl.Daily()
	if !ok {
		http.Error(w, "datasets not loaded", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, rep)
}

func (s *server) handleCrm(w http.ResponseWriter, r *http.Request) {
	s.applyPeriod(r)
	rep, ok := s.ctrl.Crm()
	if !ok {
		http.Error(w, "datasets not loaded", http.StatusServiceUnavailable)
		return
	}
	daily, _ := s.ctrl.Daily()

	// share of the site revenue that the CRM operation answers for
	var revenueShare float64
	if daily.Metrics.RevenueTotal > 0 {
		revenueShare = rep.CombinedRevenue / daily.Metrics.RevenueTotal
	}
	writeJSON(w, map[string]any{
		"crm":          rep,
		"siteRevenue":  daily.Metrics.RevenueTotal,
		"revenueShare": revenueShare,
		"empty":        rep.Metrics.OrdersTotal == 0 && rep.ActionOrders == 0,
	})
}

func (s *server) handleExportCsv(w http.ResponseWriter, r *http.Request) {
	s.applyPeriod(r)
	rep, ok := s.ctrl.Daily()
	if !ok {
		http.Error(w, "datasets not loaded", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="resultados_diarios.csv"`)
	if err := WriteDailyCsv(w, rep.Rows); err != nil {
		s.log.Error("csv export failed", slog.String("err", err.Error()))
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
