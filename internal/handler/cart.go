package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/modernshop/internal/apperror"
	"github.com/sakif/modernshop/internal/model"
	"github.com/sakif/modernshop/internal/service"
)

// CartHandler exposes the cart store.
//
// VARIANTS IN URLS:
// A line is addressed as /api/cart/items/{id}?color=..&size=..
// A missing parameter means "no variant", which is not the same as an empty
// one: ?color= addresses the line whose color is "".
type CartHandler struct {
	cart    *service.CartService
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewCartHandler creates a CartHandler. Items are built from the catalog, so
// clients can't set their own prices.
func NewCartHandler(cart *service.CartService, catalog *service.CatalogService, logger *slog.Logger) *CartHandler {
	return &CartHandler{cart: cart, catalog: catalog, logger: logger}
}

// MaxAddQuantity caps how many units one add request may put in the cart.
const MaxAddQuantity = 99

type addItemRequest struct {
	ProductID int     `json:"id"`
	Color     *string `json:"color,omitempty"`
	Size      *string `json:"size,omitempty"`
	Quantity  *int    `json:"quantity,omitempty"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// HandleGet returns the cart with its totals.
//
// HTTP: GET /api/cart
func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cart.Snapshot())
}

// HandleAdd adds units of a product, one by default. Each unit goes through
// AddItem, so n units land on the same line as n separate adds would.
//
// HTTP: POST /api/cart/items
// REQUEST BODY: {"id": 1, "color": "Black", "quantity": 2}
func (h *CartHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 || quantity > MaxAddQuantity {
		writeError(w, apperror.ValidationFailed("quantity",
			fmt.Sprintf("quantity must be between 1 and %d", MaxAddQuantity)))
		return
	}

	item, err := h.catalog.CartItemFor(req.ProductID, req.Color, req.Size)
	if err != nil {
		writeError(w, err)
		return
	}

	var snap service.CartSnapshot
	for range quantity {
		snap = h.cart.AddItem(item)
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleUpdate sets a line's quantity; zero or less removes it.
//
// HTTP: PATCH /api/cart/items/{id}?color=&size=
// REQUEST BODY: {"quantity": 3}
func (h *CartHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	key, err := lineKey(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Quantity == nil {
		writeError(w, apperror.ValidationFailed("quantity", "quantity is required"))
		return
	}

	writeJSON(w, http.StatusOK, h.cart.UpdateQuantity(key, *req.Quantity))
}

// HandleRemove drops a line. Removing an absent line succeeds.
//
// HTTP: DELETE /api/cart/items/{id}?color=&size=
func (h *CartHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	key, err := lineKey(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cart.RemoveItem(key))
}

// HandleClear empties the cart.
//
// HTTP: DELETE /api/cart
func (h *CartHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cart.ClearCart())
}

// HandleToggle flips the cart drawer open or closed.
//
// HTTP: POST /api/cart/toggle
func (h *CartHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cart.ToggleCart())
}

// HandleClose closes the cart drawer.
//
// HTTP: POST /api/cart/close
func (h *CartHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cart.CloseCart())
}

// lineKey builds the line identity from the {id} URL parameter plus the
// optional color and size query parameters.
func lineKey(r *http.Request) (model.LineKey, error) {
	id, err := productID(r)
	if err != nil {
		return model.LineKey{}, err
	}

	q := r.URL.Query()
	var color, size *string
	if q.Has("color") {
		color = model.Variant(q.Get("color"))
	}
	if q.Has("size") {
		size = model.Variant(q.Get("size"))
	}
	return model.Key(id, color, size), nil
}
