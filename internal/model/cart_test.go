package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cartOf(items ...CartItem) CartState {
	return CartState{Items: items}
}

func TestLineKey_Matches(t *testing.T) {
	black := CartItem{ProductID: 4, Color: Variant("Black"), Size: Variant("M")}
	plain := CartItem{ProductID: 4}

	tests := []struct {
		name string
		key  LineKey
		item CartItem
		want bool
	}{
		{"same product and variant", Key(4, Variant("Black"), Variant("M")), black, true},
		{"different color", Key(4, Variant("White"), Variant("M")), black, false},
		{"absent color vs concrete color", Key(4, nil, Variant("M")), black, false},
		{"absent vs absent", Key(4, nil, nil), plain, true},
		{"empty string is not absent", Key(4, Variant(""), nil), plain, false},
		{"different product", Key(5, nil, nil), plain, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.Matches(tt.item))
		})
	}
}

func TestSubtotal_IndependentOfOrder(t *testing.T) {
	a := CartItem{ProductID: 1, Price: 12.50, Quantity: 2}
	b := CartItem{ProductID: 2, Price: 3.25, Quantity: 4}

	assert.InDelta(t, 38.0, cartOf(a, b).Subtotal(), 1e-9)
	assert.InDelta(t, cartOf(a, b).Subtotal(), cartOf(b, a).Subtotal(), 1e-9)
}

func TestShipping_Boundary(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		quantity int
		want     float64
	}{
		{"empty-ish small cart pays shipping", 10, 1, ShippingFee},
		{"just under threshold", 49.99, 1, ShippingFee},
		{"exactly threshold ships free", 25, 2, 0},
		{"over threshold ships free", 299.99, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cartOf(CartItem{ProductID: 1, Price: tt.price, Quantity: tt.quantity})
			assert.Equal(t, tt.want, c.Shipping())
		})
	}
}

func TestTotals_Scenario(t *testing.T) {
	// One product at 10.00, added twice.
	c := cartOf(CartItem{ProductID: 1, Price: 10, Quantity: 2})

	totals := c.Totals()
	assert.Equal(t, 2, totals.TotalItems)
	assert.InDelta(t, 20.00, totals.Subtotal, 1e-9)
	assert.InDelta(t, 1.60, totals.Tax, 1e-9)
	assert.InDelta(t, 9.99, totals.Shipping, 1e-9)
	assert.InDelta(t, 31.59, totals.Total, 1e-9)
	assert.InDelta(t, 30.00, totals.AmountForFreeShipping, 1e-9)
}

func TestTax_Idempotent(t *testing.T) {
	c := cartOf(CartItem{ProductID: 3, Price: 89.99, Quantity: 1})
	assert.Equal(t, c.Tax(), c.Tax())
	assert.InDelta(t, 89.99*TaxRate, c.Tax(), 1e-9)
}

func TestEmptyCart(t *testing.T) {
	var c CartState
	assert.Equal(t, 0, c.TotalItems())
	assert.Equal(t, 0.0, c.Subtotal())
	assert.Equal(t, ShippingFee, c.Shipping())
	assert.Equal(t, -1, c.IndexOf(Key(1, nil, nil)))
}

func TestProfileUpdate_Apply(t *testing.T) {
	u := User{ID: "1", FirstName: "Demo", LastName: "User", Phone: "+1"}
	ProfileUpdate{FirstName: Variant("Dana")}.Apply(&u)

	assert.Equal(t, "Dana", u.FirstName)
	assert.Equal(t, "User", u.LastName, "nil fields are left alone")
	assert.Equal(t, "+1", u.Phone)
}
