package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"github.com/devmaster24/shelly-smartplug-exporter/exporter/internal/device"
	"github.com/devmaster24/shelly-smartplug-exporter/exporter/internal/poller"
	"github.com/devmaster24/shelly-smartplug-exporter/exporter/internal/render"
)

// Poller runs one scrape cycle over a registry.
type Poller interface {
	Poll(ctx context.Context, reg *device.Registry) poller.Snapshot
}

// contentType is the text exposition media type, version 0.0.4.
var contentType = string(expfmt.NewFormat(expfmt.TypeTextPlain))

// Handler serves the scrape endpoint and the exporter's own endpoints.
type Handler struct {
	registry *device.Registry
	poller   Poller
	mux      *http.ServeMux
}

// New creates a Handler and registers all routes. self is the gatherer
// behind /exporter/metrics.
func New(reg *device.Registry, p Poller, self prometheus.Gatherer) http.Handler {
	h := &Handler{registry: reg, poller: p, mux: http.NewServeMux()}

	h.mux.HandleFunc("/metrics", h.metrics)
	h.mux.HandleFunc("/healthz", h.health)
	h.mux.Handle("/exporter/metrics", getOnly(promhttp.HandlerFor(self, promhttp.HandlerOpts{})))

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// metrics handles GET /metrics: a fresh poll of every device, rendered.
// Device failures never change the status code.
func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.poller.Poll(r.Context(), h.registry)

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if err := render.Write(w, snap); err != nil {
		slog.Debug("api: write response", "err", err)
	}
}

// health handles GET /healthz.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func getOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}
