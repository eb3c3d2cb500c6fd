// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. No inheritance, just composition.
package model

// Pricing rules applied to every cart.
const (
	TaxRate               = 0.08
	FreeShippingThreshold = 50.00
	ShippingFee           = 9.99
)

// CartItem is one line of the cart.
//
// OPTIONAL VARIANTS AS POINTERS:
// Color and Size are *string, not string. A nil pointer means "this line has no
// color", which is a DIFFERENT line from one whose color is "" or "Black".
// JSON encodes nil as an absent field (omitempty), so the stored cart keeps that
// distinction across a restart.
//
// The json tags mirror the storage layout the storefront client already reads
// ("id", "price", "originalPrice", ...), so the persisted blob stays compatible.
type CartItem struct {
	ProductID     int      `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Image         string   `json:"image"`
	Category      string   `json:"category"`
	Brand         string   `json:"brand"`
	Color         *string  `json:"color,omitempty"`
	Size          *string  `json:"size,omitempty"`
	Quantity      int      `json:"quantity"`
	InStock       bool     `json:"inStock"`
}

// Key returns the identity of this line within a cart.
func (i CartItem) Key() LineKey {
	return LineKey{ProductID: i.ProductID, Color: i.Color, Size: i.Size}
}

// LineTotal is price × quantity for this line.
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// LineKey identifies a cart line: the product plus its optional variant.
type LineKey struct {
	ProductID int
	Color     *string
	Size      *string
}

// Key builds a LineKey. Pass nil for an absent color or size.
func Key(productID int, color, size *string) LineKey {
	return LineKey{ProductID: productID, Color: color, Size: size}
}

// Matches reports whether the item belongs to this line.
// Variants are compared by value, and nil only equals nil.
func (k LineKey) Matches(item CartItem) bool {
	return k.ProductID == item.ProductID &&
		sameVariant(k.Color, item.Color) &&
		sameVariant(k.Size, item.Size)
}

func sameVariant(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Variant returns a pointer to v, for building items and keys inline:
//
//	model.Key(4, model.Variant("Black"), nil)
func Variant(v string) *string {
	return &v
}

// CartState is everything the cart store owns.
// The whole struct is persisted under the cart storage key.
type CartState struct {
	Items  []CartItem `json:"items"`
	IsOpen bool       `json:"isOpen"`
}

// =========================================================================
// DERIVED VALUES
// =========================================================================
//
// VALUE RECEIVERS = PURE FUNCTIONS:
// Every method below takes CartState by value and only reads it. Nothing is
// cached; each call walks the current items, so the numbers can never go stale
// after a mutation.

// IndexOf returns the position of the line matching key, or -1.
func (c CartState) IndexOf(key LineKey) int {
	for i, item := range c.Items {
		if key.Matches(item) {
			return i
		}
	}
	return -1
}

// TotalItems is the sum of all quantities.
func (c CartState) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Subtotal is Σ(price × quantity).
func (c CartState) Subtotal() float64 {
	total := 0.0
	for _, item := range c.Items {
		total += item.LineTotal()
	}
	return total
}

// Tax is the subtotal times TaxRate.
func (c CartState) Tax() float64 {
	return c.Subtotal() * TaxRate
}

// Shipping is free from FreeShippingThreshold upward, otherwise the flat fee.
// Exactly 50.00 ships free.
func (c CartState) Shipping() float64 {
	if c.Subtotal() >= FreeShippingThreshold {
		return 0
	}
	return ShippingFee
}

// Total is subtotal + tax + shipping.
func (c CartState) Total() float64 {
	return c.Subtotal() + c.Tax() + c.Shipping()
}

// AmountForFreeShipping is how much more the customer has to add before
// shipping becomes free. Zero once the threshold is reached.
func (c CartState) AmountForFreeShipping() float64 {
	return max(0, FreeShippingThreshold-c.Subtotal())
}

// CartTotals is the derived view of a cart, computed at one instant.
type CartTotals struct {
	TotalItems            int     `json:"totalItems"`
	Subtotal              float64 `json:"subtotal"`
	Tax                   float64 `json:"tax"`
	Shipping              float64 `json:"shipping"`
	Total                 float64 `json:"total"`
	AmountForFreeShipping float64 `json:"amountForFreeShipping"`
}

// Totals computes every derived value from the same state.
func (c CartState) Totals() CartTotals {
	return CartTotals{
		TotalItems:            c.TotalItems(),
		Subtotal:              c.Subtotal(),
		Tax:                   c.Tax(),
		Shipping:              c.Shipping(),
		Total:                 c.Total(),
		AmountForFreeShipping: c.AmountForFreeShipping(),
	}
}
