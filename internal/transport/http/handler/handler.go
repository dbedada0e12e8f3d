// Package handler exposes the cart and order use cases as a JSON API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/logger"
	"github.com/nikolayk812/storefront/internal/service"
	"github.com/nikolayk812/storefront/internal/transport/http/middleware"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type CartService interface {
	GetCart(ctx context.Context, user domain.User) (domain.Cart, error)
	AddToCart(ctx context.Context, user domain.User, productID uuid.UUID, quantity int) (domain.Cart, error)
	UpdateCartItem(ctx context.Context, user domain.User, itemID uuid.UUID, quantity int) (domain.Cart, error)
	RemoveFromCart(ctx context.Context, user domain.User, itemID uuid.UUID) (domain.Cart, error)
	ClearCart(ctx context.Context, user domain.User) (domain.Cart, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, user domain.User, req service.CreateOrderRequest) (domain.Order, error)
	Checkout(ctx context.Context, user domain.User, req service.CheckoutRequest) (domain.Order, error)
	GetOrders(ctx context.Context, ownerID string) ([]domain.Order, error)
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	GetOrdersByStatus(ctx context.Context, status string) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (domain.Order, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
	GetOrderStats(ctx context.Context) (domain.OrderStats, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	carts    CartService
	orders   OrderService
	db       Pinger
	validate *validator.Validate
	logger   *zap.Logger
}

func NewHandler(carts CartService, orders OrderService, db Pinger, l *zap.Logger) *Handler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		carts:    carts,
		orders:   orders,
		db:       db,
		validate: validate,
		logger:   l,
	}
}

// errorStatuses maps domain errors to the status and message clients see.
var errorStatuses = []struct {
	err    error
	status int
}{
	{domain.ErrCartNotFound, http.StatusNotFound},
	{domain.ErrCartItemNotFound, http.StatusNotFound},
	{domain.ErrProductNotFound, http.StatusNotFound},
	{domain.ErrOrderNotFound, http.StatusNotFound},
	{domain.ErrInvalidQuantity, http.StatusBadRequest},
	{domain.ErrInvalidOrderStatus, http.StatusBadRequest},
	{domain.ErrEmptyOrder, http.StatusBadRequest},
	{domain.ErrCurrencyMismatch, http.StatusBadRequest},
	{domain.ErrNegativeAmount, http.StatusBadRequest},
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}

	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("%s is not a valid uuid", name))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) user(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
	}
	return user, ok
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			h.writeError(w, e.status, e.err.Error())
			return
		}
	}

	logger.Error(r.Context(), h.logger, "request failed",
		zap.String("method", r.Method),
		zap.String("route", r.Pattern),
		zap.Error(err),
	)
	h.writeError(w, http.StatusInternalServerError, "internal server error")
}

func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "invalid request"
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		if fe.Param() != "" {
			messages = append(messages, fmt.Sprintf("%s failed on %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			messages = append(messages, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
	}

	return strings.Join(messages, "; ")
}
