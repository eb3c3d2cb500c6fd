package model

import "slices"

// Product is a catalog record. The catalog is read-only; nothing in the stores
// owns or mutates products.
type Product struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice"`
	Rating        float64  `json:"rating"`
	Reviews       int      `json:"reviews"`
	Image         string   `json:"image"`
	Category      string   `json:"category"`
	Brand         string   `json:"brand"`
	IsNew         bool     `json:"isNew"`
	IsSale        bool     `json:"isSale"`
	InStock       bool     `json:"inStock"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`

	// Colors and Sizes are the variants the product is sold in. An empty list
	// means the product has no variant of that kind.
	Colors []string `json:"colors"`
	Sizes  []string `json:"sizes"`
}

// Offers reports whether v is an acceptable choice among options: absent is
// always acceptable, a present value must be one of the options.
func Offers(options []string, v *string) bool {
	if v == nil {
		return true
	}
	return slices.Contains(options, *v)
}

// CartItem builds the add-to-cart line for this product. Quantity is left at
// zero; the cart store decides it.
func (p Product) CartItem(color, size *string) CartItem {
	return CartItem{
		ProductID:     p.ID,
		Name:          p.Name,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Image:         p.Image,
		Category:      p.Category,
		Brand:         p.Brand,
		Color:         color,
		Size:          size,
		InStock:       p.InStock,
	}
}
