package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/nikolayk812/storefront/internal/telemetry"
	"github.com/nikolayk812/storefront/internal/transport/http/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// NewRouter wires the API routes. metrics may be nil.
func NewRouter(h *Handler, jwtSecret []byte, metrics http.Handler) http.Handler {
	auth := middleware.Auth(jwtSecret, h.logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.HandleHealth)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	authed := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, auth(telemetry.WithHTTPRoute(fn)))
	}
	admin := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, auth(middleware.RequireAdmin(telemetry.WithHTTPRoute(fn))))
	}

	authed("GET /cart", h.HandleGetCart)
	authed("POST /cart/items", h.HandleAddCartItem)
	authed("PATCH /cart/items/{itemId}", h.HandleUpdateCartItem)
	authed("DELETE /cart/items/{itemId}", h.HandleRemoveCartItem)
	authed("DELETE /cart", h.HandleClearCart)

	authed("POST /orders", h.HandleCreateOrder)
	authed("POST /orders/checkout", h.HandleCheckout)
	authed("GET /orders", h.HandleListOrders)
	authed("GET /orders/{id}", h.HandleGetOrder)
	admin("GET /orders/stats", h.HandleOrderStats)
	admin("GET /orders/status/{status}", h.HandleListOrdersByStatus)
	admin("PUT /orders/{id}/status", h.HandleUpdateOrderStatus)
	admin("DELETE /orders/{id}", h.HandleDeleteOrder)

	return otelhttp.NewHandler(mux, "storefront",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
		}),
	)
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		h.writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
