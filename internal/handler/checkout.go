package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/modernshop/internal/model"
	"github.com/sakif/modernshop/internal/service"
)

// CheckoutHandler turns the cart into orders.
type CheckoutHandler struct {
	checkout *service.CheckoutService
	logger   *slog.Logger
}

// NewCheckoutHandler creates a CheckoutHandler.
func NewCheckoutHandler(checkout *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

type orderListResponse struct {
	Orders []model.Order `json:"orders"`
	Count  int           `json:"count"`
}

type orderResponse struct {
	Success bool         `json:"success"`
	Order   *model.Order `json:"order"`
}

// HandlePlaceOrder pays for the current cart.
//
// HTTP: POST /api/checkout
// REQUEST BODY: {"shipping": {...}, "payment": {...}}
//
// The request blocks for the simulated payment time.
func (h *CheckoutHandler) HandlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var form model.CheckoutForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, err)
		return
	}

	order, err := h.checkout.PlaceOrder(r.Context(), form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderResponse{Success: true, Order: order})
}

// HandleGetOrder returns a placed order.
//
// HTTP: GET /api/orders/{number}
func (h *CheckoutHandler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.GetOrder(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{Success: true, Order: order})
}

// HandleListOrders returns every order in placement order (the account's
// order history).
//
// HTTP: GET /api/orders
func (h *CheckoutHandler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	orders := h.checkout.Orders()
	writeJSON(w, http.StatusOK, orderListResponse{Orders: orders, Count: len(orders)})
}
