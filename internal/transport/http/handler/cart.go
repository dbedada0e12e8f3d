package handler

import (
	"net/http"
)

func (h *Handler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	cart, err := h.carts.GetCart(r.Context(), user)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) HandleAddCartItem(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	var req addCartItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	cart, err := h.carts.AddToCart(r.Context(), user, req.ProductID, req.Quantity)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, cart)
}

func (h *Handler) HandleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	itemID, ok := h.pathID(w, r, "itemId")
	if !ok {
		return
	}

	var req updateCartItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	cart, err := h.carts.UpdateCartItem(r.Context(), user, itemID, *req.Quantity)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) HandleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	itemID, ok := h.pathID(w, r, "itemId")
	if !ok {
		return
	}

	cart, err := h.carts.RemoveFromCart(r.Context(), user, itemID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) HandleClearCart(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	cart, err := h.carts.ClearCart(r.Context(), user)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, cart)
}
