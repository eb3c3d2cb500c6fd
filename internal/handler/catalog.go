package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/modernshop/internal/apperror"
	"github.com/sakif/modernshop/internal/model"
	"github.com/sakif/modernshop/internal/service"
)

// CatalogHandler serves the read-only product catalog.
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

type productListResponse struct {
	Products []model.Product `json:"products"`
	Count    int             `json:"count"`
}

// HandleList returns the filtered, sorted product listing.
//
// HTTP: GET /api/products?search=&category=&brand=&minPrice=&maxPrice=&onSale=&inStock=&sort=
//
// Every parameter is optional. The price range defaults to 0..500.
func (h *CatalogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	products := h.catalog.List(f)
	writeJSON(w, http.StatusOK, productListResponse{Products: products, Count: len(products)})
}

// HandleGet returns a single product.
//
// HTTP: GET /api/products/{id}
func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := h.catalog.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleFacets returns the filter choices (categories, brands, sorts, price range).
//
// HTTP: GET /api/products/facets
func (h *CatalogHandler) HandleFacets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Facets())
}

func parseFilter(q url.Values) (service.Filter, error) {
	f := service.DefaultFilter()
	f.Search = q.Get("search")
	f.Category = q.Get("category")
	f.Brand = q.Get("brand")
	if s := q.Get("sort"); s != "" {
		f.Sort = s
	}

	var err error
	if f.MinPrice, err = floatParam(q, "minPrice", f.MinPrice); err != nil {
		return f, err
	}
	if f.MaxPrice, err = floatParam(q, "maxPrice", f.MaxPrice); err != nil {
		return f, err
	}
	if f.MinPrice > f.MaxPrice {
		return f, apperror.ValidationFailed("minPrice", "minPrice must not exceed maxPrice")
	}
	if f.OnSale, err = boolParam(q, "onSale"); err != nil {
		return f, err
	}
	if f.InStock, err = boolParam(q, "inStock"); err != nil {
		return f, err
	}
	return f, nil
}

func floatParam(q url.Values, name string, def float64) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperror.ValidationFailed(name, name+" must be a number")
	}
	return v, nil
}

func boolParam(q url.Values, name string) (bool, error) {
	raw := q.Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperror.ValidationFailed(name, name+" must be true or false")
	}
	return v, nil
}

// productID reads the {id} URL parameter.
func productID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed("id", "product id must be an integer")
	}
	return id, nil
}
