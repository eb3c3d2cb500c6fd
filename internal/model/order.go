package model

import "time"

// ShippingAddress is the delivery part of the checkout form.
type ShippingAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address"`
	Apartment string `json:"apartment,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

// PaymentDetails is the card part of the checkout form.
// It is checked for presence and then dropped; it never lands on an Order.
type PaymentDetails struct {
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
	CardName   string `json:"cardName"`
}

// CheckoutForm is the full checkout submission.
type CheckoutForm struct {
	Shipping ShippingAddress `json:"shipping"`
	Payment  PaymentDetails  `json:"payment"`
}

// Order is a snapshot of the cart at the moment it was paid for.
// Prices are frozen here; later catalog or cart changes don't touch it.
type Order struct {
	Number   string          `json:"number"`
	Items    []CartItem      `json:"items"`
	Totals   CartTotals      `json:"totals"`
	Shipping ShippingAddress `json:"shipping"`
	PlacedAt time.Time       `json:"placedAt"`

	// EstimatedDelivery is PlacedAt plus DeliveryEstimate.
	EstimatedDelivery time.Time `json:"estimatedDelivery"`
}

// DeliveryEstimate is how long after placement an order is expected to arrive.
const DeliveryEstimate = 5 * 24 * time.Hour
