// Package service contains the business logic layer of the storefront.
//
// THE LAYERS:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → the cart and auth stores, catalog queries, checkout
//	persist / repository     → snapshots and the account directory
//
// The two stores (CartService, AuthService) each own one persist.Store. They
// never write to storage directly: they call Set, and persistence happens as a
// side effect of every state change.
package service

import (
	"log/slog"
	"slices"

	"github.com/sakif/modernshop/internal/model"
	"github.com/sakif/modernshop/internal/persist"
)

// CartStorageKey is the name the cart snapshot is stored under.
const CartStorageKey = "cart-storage"

// CartSnapshot is the cart plus its derived totals, computed together.
// It encodes flat: {items, isOpen, totalItems, subtotal, ...}.
//
// Only CartTotals is embedded. CartState's pricing methods share their names
// with the CartTotals fields, so embedding both would make them ambiguous.
type CartSnapshot struct {
	Items  []model.CartItem `json:"items"`
	IsOpen bool             `json:"isOpen"`
	model.CartTotals
}

// CartService is the cart store.
//
// None of its operations can fail. Stock is display-only, unknown lines are
// no-ops, and storage failures are swallowed by the substrate.
//
// IMMUTABLE UPDATES:
// Every mutation builds a new Items slice. A CartState obtained from State()
// before the mutation keeps seeing the old items.
type CartService struct {
	store  *persist.Store[model.CartState]
	logger *slog.Logger
}

// NewCartService creates the cart store and restores any snapshot from storage.
// A nil storage keeps the cart in memory only.
func NewCartService(storage persist.Storage, logger *slog.Logger) *CartService {
	store := persist.New(model.CartState{Items: []model.CartItem{}}, persist.Config[model.CartState]{
		Name:    CartStorageKey,
		Storage: storage,
		Logger:  logger,
	})

	if store.Hydrated() {
		restored := store.Get().Items
		if items, dropped, merged := normalizeItems(restored); dropped > 0 || merged > 0 {
			logger.Warn("restored cart was inconsistent, repairing",
				slog.Int("dropped_lines", dropped),
				slog.Int("merged_lines", merged),
			)
			store.Set(func(c model.CartState) model.CartState {
				c.Items = items
				return c
			})
		}
		logger.Info("cart restored",
			slog.Int("lines", len(store.Get().Items)),
			slog.Int("total_items", store.Get().TotalItems()),
		)
	}

	return &CartService{store: store, logger: logger}
}

// AddItem adds one unit of item. An existing line with the same product and
// variant has its quantity incremented; otherwise a new line with quantity 1
// is appended. item.Quantity is ignored.
func (s *CartService) AddItem(item model.CartItem) CartSnapshot {
	next := s.store.Set(func(c model.CartState) model.CartState {
		key := item.Key()
		if i := c.IndexOf(key); i >= 0 {
			c.Items = slices.Clone(c.Items)
			c.Items[i].Quantity++
			return c
		}
		item.Quantity = 1
		c.Items = append(slices.Clone(c.Items), item)
		return c
	})

	s.logger.Debug("cart item added", slog.Int("product_id", item.ProductID))
	return snapshot(next)
}

// RemoveItem drops the line matching key. Absent keys are a no-op.
func (s *CartService) RemoveItem(key model.LineKey) CartSnapshot {
	next := s.store.Set(func(c model.CartState) model.CartState {
		c.Items = slices.DeleteFunc(slices.Clone(c.Items), key.Matches)
		return c
	})
	return snapshot(next)
}

// UpdateQuantity sets the line's quantity. A quantity of zero or less removes
// the line, exactly like RemoveItem. Absent keys are a no-op.
func (s *CartService) UpdateQuantity(key model.LineKey, quantity int) CartSnapshot {
	if quantity <= 0 {
		return s.RemoveItem(key)
	}

	next := s.store.Set(func(c model.CartState) model.CartState {
		i := c.IndexOf(key)
		if i < 0 {
			return c
		}
		c.Items = slices.Clone(c.Items)
		c.Items[i].Quantity = quantity
		return c
	})
	return snapshot(next)
}

// ClearCart empties the cart. The open/closed flag is untouched.
func (s *CartService) ClearCart() CartSnapshot {
	next := s.store.Set(func(c model.CartState) model.CartState {
		c.Items = []model.CartItem{}
		return c
	})
	s.logger.Debug("cart cleared")
	return snapshot(next)
}

// ToggleCart flips the visibility flag.
func (s *CartService) ToggleCart() CartSnapshot {
	return snapshot(s.store.Set(func(c model.CartState) model.CartState {
		c.IsOpen = !c.IsOpen
		return c
	}))
}

// CloseCart clears the visibility flag.
func (s *CartService) CloseCart() CartSnapshot {
	return snapshot(s.store.Set(func(c model.CartState) model.CartState {
		c.IsOpen = false
		return c
	}))
}

// State returns the current cart.
func (s *CartService) State() model.CartState {
	return s.store.Get()
}

// Snapshot returns the current cart with its totals.
func (s *CartService) Snapshot() CartSnapshot {
	return snapshot(s.store.Get())
}

// Items returns a copy of the current lines.
func (s *CartService) Items() []model.CartItem {
	return slices.Clone(s.store.Get().Items)
}

// Derived getters. Each reads the current state and recomputes.

func (s *CartService) TotalItems() int { return s.store.Get().TotalItems() }
func (s *CartService) Subtotal() float64 { return s.store.Get().Subtotal() }
func (s *CartService) Tax() float64 { return s.store.Get().Tax() }
func (s *CartService) Shipping() float64 { return s.store.Get().Shipping() }
func (s *CartService) TotalPrice() float64 { return s.store.Get().Total() }
func (s *CartService) AmountForFreeShipping() float64 {
	return s.store.Get().AmountForFreeShipping()
}

// Subscribe registers l for every cart change.
func (s *CartService) Subscribe(l persist.Listener[model.CartState]) (unsubscribe func()) {
	return s.store.Subscribe(l)
}

// normalizeItems restores the line invariants on a cart read from storage:
// every quantity is at least 1 and each key has at most one line. Lines with
// quantity <= 0 are dropped; duplicates fold into the first line with their key.
func normalizeItems(items []model.CartItem) (out []model.CartItem, dropped, merged int) {
	out = make([]model.CartItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			dropped++
			continue
		}
		if i := slices.IndexFunc(out, item.Key().Matches); i >= 0 {
			out[i].Quantity += item.Quantity
			merged++
			continue
		}
		out = append(out, item)
	}
	return out, dropped, merged
}

func snapshot(c model.CartState) CartSnapshot {
	if c.Items == nil {
		c.Items = []model.CartItem{}
	}
	return CartSnapshot{Items: c.Items, IsOpen: c.IsOpen, CartTotals: c.Totals()}
}
