package handler

import (
	"net/http"

	"github.com/nikolayk812/storefront/internal/domain"
)

func (h *Handler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	serviceReq, err := req.toService()
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), user, serviceReq)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.orders.Checkout(r.Context(), user, req.toService())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, order)
}

// HandleListOrders lists every order for admins, optionally narrowed by ?user_id=.
// Customers always get their own orders.
func (h *Handler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	ownerID := user.ID
	if user.IsAdmin() {
		ownerID = r.URL.Query().Get("user_id")
	}

	orders, err := h.orders.GetOrders(r.Context(), ownerID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, nonNil(orders))
}

// HandleGetOrder hides orders of other users behind a 404.
func (h *Handler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	orderID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrderByID(r.Context(), orderID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if !user.IsAdmin() && order.OwnerID != user.ID {
		h.writeServiceError(w, r, domain.ErrOrderNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleListOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.GetOrdersByStatus(r.Context(), r.PathValue("status"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, nonNil(orders))
}

func (h *Handler) HandleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateOrderStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.orders.UpdateOrderStatus(r.Context(), orderID, req.Status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.orders.DeleteOrder(r.Context(), orderID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleOrderStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.GetOrderStats(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

func nonNil(orders []domain.Order) []domain.Order {
	if orders == nil {
		return []domain.Order{}
	}
	return orders
}
