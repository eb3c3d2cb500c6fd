package service

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/sakif/modernshop/internal/apperror"
	"github.com/sakif/modernshop/internal/catalog"
	"github.com/sakif/modernshop/internal/model"
)

// Sort orders accepted by CatalogService.List.
const (
	SortFeatured  = "featured"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
	SortNewest    = "newest"
)

// Price slider bounds of the storefront.
const (
	DefaultMinPrice = 0.0
	DefaultMaxPrice = 500.0
)

// Filter narrows and orders a product listing. The zero value of each field
// except MaxPrice means "no constraint"; use DefaultFilter for a fully open one.
type Filter struct {
	Search   string
	Category string // "" or "All" matches any
	Brand    string // "" or "All" matches any
	MinPrice float64
	MaxPrice float64 // inclusive
	OnSale   bool
	InStock  bool
	Sort     string // one of the Sort constants; unknown values keep featured order
}

// DefaultFilter matches every product in featured order.
func DefaultFilter() Filter {
	return Filter{MinPrice: DefaultMinPrice, MaxPrice: DefaultMaxPrice, Sort: SortFeatured}
}

// Facets are the values a client can offer as filter choices.
type Facets struct {
	Categories []string   `json:"categories"`
	Brands     []string   `json:"brands"`
	Sorts      []string   `json:"sorts"`
	PriceRange [2]float64 `json:"priceRange"`
}

// CatalogService answers read-only queries over the mock product catalog.
type CatalogService struct {
	products []model.Product
}

// NewCatalogService loads the static catalog.
func NewCatalogService() *CatalogService {
	return &CatalogService{products: catalog.Products()}
}

// List returns the products matching f, sorted by f.Sort.
// Sorting is stable: products that tie keep their featured order.
func (s *CatalogService) List(f Filter) []model.Product {
	query := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if matches(p, f, query) {
			out = append(out, p)
		}
	}

	switch f.Sort {
	case SortPriceLow:
		slices.SortStableFunc(out, func(a, b model.Product) int { return cmp.Compare(a.Price, b.Price) })
	case SortPriceHigh:
		slices.SortStableFunc(out, func(a, b model.Product) int { return cmp.Compare(b.Price, a.Price) })
	case SortRating:
		slices.SortStableFunc(out, func(a, b model.Product) int { return cmp.Compare(b.Rating, a.Rating) })
	case SortNewest:
		slices.SortStableFunc(out, func(a, b model.Product) int { return cmp.Compare(rank(b.IsNew), rank(a.IsNew)) })
	}
	return out
}

func matches(p model.Product, f Filter, query string) bool {
	if query != "" && !searchHit(p, query) {
		return false
	}
	if !facetHit(f.Category, p.Category) || !facetHit(f.Brand, p.Brand) {
		return false
	}
	if p.Price < f.MinPrice || p.Price > f.MaxPrice {
		return false
	}
	if f.OnSale && !p.IsSale {
		return false
	}
	if f.InStock && !p.InStock {
		return false
	}
	return true
}

func searchHit(p model.Product, query string) bool {
	if strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query) {
		return true
	}
	return slices.ContainsFunc(p.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), query)
	})
}

func facetHit(want, got string) bool {
	return want == "" || want == catalog.AllFacet || want == got
}

func rank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Get returns one product.
func (s *CatalogService) Get(id int) (model.Product, error) {
	i := slices.IndexFunc(s.products, func(p model.Product) bool { return p.ID == id })
	if i < 0 {
		return model.Product{}, apperror.NotFound("product", strconv.Itoa(id))
	}
	return s.products[i], nil
}

// Categories returns the category facet, "All" first.
func (s *CatalogService) Categories() []string { return catalog.Categories() }

// Brands returns the brand facet, "All" first.
func (s *CatalogService) Brands() []string { return catalog.Brands() }

// Facets returns every filter choice in one value.
func (s *CatalogService) Facets() Facets {
	return Facets{
		Categories: s.Categories(),
		Brands:     s.Brands(),
		Sorts:      []string{SortFeatured, SortPriceLow, SortPriceHigh, SortRating, SortNewest},
		PriceRange: [2]float64{DefaultMinPrice, DefaultMaxPrice},
	}
}

// CartItemFor builds the add-to-cart line for product id with the given variant.
// A color or size the product isn't sold in is a validation error.
func (s *CatalogService) CartItemFor(id int, color, size *string) (model.CartItem, error) {
	p, err := s.Get(id)
	if err != nil {
		return model.CartItem{}, err
	}
	if !model.Offers(p.Colors, color) {
		return model.CartItem{}, apperror.ValidationFailed("color",
			fmt.Sprintf("%s is not available in color %q", p.Name, *color))
	}
	if !model.Offers(p.Sizes, size) {
		return model.CartItem{}, apperror.ValidationFailed("size",
			fmt.Sprintf("%s is not available in size %q", p.Name, *size))
	}
	return p.CartItem(color, size), nil
}
