package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/modernshop/internal/apperror"
	"github.com/sakif/modernshop/internal/latency"
	"github.com/sakif/modernshop/internal/model"
)

// DefaultPaymentLatency is the simulated payment processing time.
const DefaultPaymentLatency = latency.Fixed(3 * time.Second)

// OrderNumberPrefix starts every order number.
const OrderNumberPrefix = "MS"

// CheckoutService turns the current cart into an order. Payment is stubbed:
// card details are checked for presence, then dropped.
//
// Orders are kept in memory for the life of the process.
type CheckoutService struct {
	cart   *CartService
	delay  latency.Delayer
	logger *slog.Logger

	mu       sync.RWMutex
	orders   []model.Order
	byNumber map[string]int
}

// NewCheckoutService creates a CheckoutService that drains cart.
func NewCheckoutService(cart *CartService, delay latency.Delayer, logger *slog.Logger) *CheckoutService {
	if delay == nil {
		delay = DefaultPaymentLatency
	}
	return &CheckoutService{
		cart:     cart,
		delay:    delay,
		logger:   logger,
		byNumber: make(map[string]int),
	}
}

// PlaceOrder validates form, simulates payment, records the order and clears
// the cart.
//
// The order is built from the cart as it was when PlaceOrder was called. Items
// added during the payment wait are not part of it, but ClearCart still
// removes them.
func (s *CheckoutService) PlaceOrder(ctx context.Context, form model.CheckoutForm) (*model.Order, error) {
	if err := validateCheckout(form); err != nil {
		return nil, err
	}

	cart := s.cart.State()
	if len(cart.Items) == 0 {
		return nil, apperror.ValidationFailed("items", "cart is empty")
	}

	s.delay.Delay()

	placedAt := time.Now().UTC()
	order := model.Order{
		Number:            OrderNumberPrefix + strings.ToUpper(xid.New().String()),
		Items:             append([]model.CartItem(nil), cart.Items...),
		Totals:            cart.Totals(),
		Shipping:          form.Shipping,
		PlacedAt:          placedAt,
		EstimatedDelivery: placedAt.Add(model.DeliveryEstimate),
	}

	s.mu.Lock()
	s.byNumber[order.Number] = len(s.orders)
	s.orders = append(s.orders, order)
	s.mu.Unlock()

	s.cart.ClearCart()

	s.logger.Info("order placed",
		slog.String("order", order.Number),
		slog.Int("items", order.Totals.TotalItems),
		slog.Float64("total", order.Totals.Total),
	)
	return cloneOrder(order), nil
}

// GetOrder looks an order up by number.
func (s *CheckoutService) GetOrder(number string) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byNumber[number]
	if !ok {
		return nil, apperror.NotFound("order", number)
	}
	return cloneOrder(s.orders[i]), nil
}

// Orders returns every order in placement order.
func (s *CheckoutService) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = *cloneOrder(o)
	}
	return out
}

func cloneOrder(o model.Order) *model.Order {
	o.Items = append([]model.CartItem(nil), o.Items...)
	return &o
}

// validateCheckout checks the fields the checkout form marks required,
// in the order they appear on the form.
func validateCheckout(f model.CheckoutForm) error {
	required := []struct {
		field, value, label string
	}{
		{"firstName", f.Shipping.FirstName, "first name"},
		{"lastName", f.Shipping.LastName, "last name"},
		{"email", f.Shipping.Email, "email"},
		{"address", f.Shipping.Address, "address"},
		{"city", f.Shipping.City, "city"},
		{"state", f.Shipping.State, "state"},
		{"zipCode", f.Shipping.ZipCode, "ZIP code"},
		{"cardNumber", f.Payment.CardNumber, "card number"},
		{"expiryDate", f.Payment.ExpiryDate, "expiry date"},
		{"cvv", f.Payment.CVV, "CVV"},
		{"cardName", f.Payment.CardName, "name on card"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperror.ValidationFailed(r.field, r.label+" is required")
		}
	}
	return nil
}
