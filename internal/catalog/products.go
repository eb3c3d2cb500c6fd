// Package catalog holds the static mock product catalog.
package catalog

import "github.com/sakif/modernshop/internal/model"

// AllFacet is the facet value meaning "don't filter on this".
const AllFacet = "All"

func price(v float64) *float64 { return &v }

// products is in "featured" order.
var products = []model.Product{
	{
		ID: 1, Name: "Premium Wireless Headphones",
		Price: 299.99, OriginalPrice: price(399.99),
		Rating: 4.8, Reviews: 1247,
		Image:    "/premium-wireless-headphones-product-photo.jpg",
		Category: "Electronics", Brand: "AudioTech",
		IsSale: true, InStock: true,
		Description: "High-quality wireless headphones with noise cancellation",
		Tags:        []string{"wireless", "noise-cancelling", "premium"},
		Colors:      []string{"Black", "Silver", "Rose Gold"},
	},
	{
		ID: 2, Name: "Smart Fitness Watch",
		Price:  199.99,
		Rating: 4.6, Reviews: 892,
		Image:    "/smart-fitness-watch-product-photo.jpg",
		Category: "Wearables", Brand: "FitTech",
		IsNew: true, InStock: true,
		Description: "Advanced fitness tracking with heart rate monitoring",
		Tags:        []string{"fitness", "smart", "health"},
	},
	{
		ID: 3, Name: "Minimalist Desk Lamp",
		Price: 89.99, OriginalPrice: price(119.99),
		Rating: 4.9, Reviews: 456,
		Image:    "/placeholder.svg?height=300&width=300&text=Desk+Lamp",
		Category: "Home & Office", Brand: "LightCraft",
		IsSale: true, InStock: true,
		Description: "Modern LED desk lamp with adjustable brightness",
		Tags:        []string{"led", "adjustable", "modern"},
	},
	{
		ID: 4, Name: "Organic Cotton T-Shirt",
		Price:  29.99,
		Rating: 4.7, Reviews: 2103,
		Image:    "/organic-cotton-t-shirt.jpg",
		Category: "Fashion", Brand: "EcoWear",
		InStock:     true,
		Description: "Sustainable organic cotton t-shirt in multiple colors",
		Tags:        []string{"organic", "sustainable", "cotton"},
	},
	{
		ID: 5, Name: "Portable Bluetooth Speaker",
		Price: 79.99, OriginalPrice: price(99.99),
		Rating: 4.5, Reviews: 678,
		Image:    "/placeholder.svg?height=300&width=300&text=Bluetooth+Speaker",
		Category: "Electronics", Brand: "SoundWave",
		IsSale:      true,
		Description: "Waterproof portable speaker with 12-hour battery life",
		Tags:        []string{"bluetooth", "waterproof", "portable"},
	},
	{
		ID: 6, Name: "Eco-Friendly Water Bottle",
		Price:  24.99,
		Rating: 4.8, Reviews: 1534,
		Image:    "/placeholder.svg?height=300&width=300&text=Water+Bottle",
		Category: "Lifestyle", Brand: "GreenLife",
		IsNew: true, InStock: true,
		Description: "Stainless steel water bottle with temperature retention",
		Tags:        []string{"eco-friendly", "stainless-steel", "insulated"},
	},
	{
		ID: 7, Name: "Gaming Mechanical Keyboard",
		Price: 149.99, OriginalPrice: price(179.99),
		Rating: 4.7, Reviews: 834,
		Image:    "/placeholder.svg?height=300&width=300&text=Gaming+Keyboard",
		Category: "Electronics", Brand: "GameTech",
		IsSale: true, InStock: true,
		Description: "RGB mechanical keyboard with customizable switches",
		Tags:        []string{"gaming", "mechanical", "rgb"},
	},
	{
		ID: 8, Name: "Yoga Mat Premium",
		Price:  59.99,
		Rating: 4.6, Reviews: 567,
		Image:    "/placeholder.svg?height=300&width=300&text=Yoga+Mat",
		Category: "Fitness", Brand: "ZenFit",
		IsNew: true, InStock: true,
		Description: "Non-slip yoga mat with alignment guides",
		Tags:        []string{"yoga", "non-slip", "premium"},
	},
}

// categories lists the category facet, "All" first, in storefront order.
var categories = []string{AllFacet, "Electronics", "Fashion", "Home & Office", "Wearables", "Lifestyle", "Fitness"}

// brands lists the brand facet, "All" first.
var brands = []string{AllFacet, "AudioTech", "FitTech", "LightCraft", "EcoWear", "SoundWave", "GreenLife", "GameTech", "ZenFit"}

// Products returns a deep copy of the catalog in featured order.
func Products() []model.Product {
	out := make([]model.Product, len(products))
	for i, p := range products {
		p.Tags = append([]string(nil), p.Tags...)
		p.Colors = append([]string{}, p.Colors...)
		p.Sizes = append([]string{}, p.Sizes...)
		if p.OriginalPrice != nil {
			p.OriginalPrice = price(*p.OriginalPrice)
		}
		out[i] = p
	}
	return out
}

// Categories returns the category facet values.
func Categories() []string {
	return append([]string(nil), categories...)
}

// Brands returns the brand facet values.
func Brands() []string {
	return append([]string(nil), brands...)
}
