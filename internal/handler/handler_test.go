package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/modernshop/internal/latency"
	"github.com/sakif/modernshop/internal/persist"
	"github.com/sakif/modernshop/internal/repository"
	"github.com/sakif/modernshop/internal/repository/memory"
	"github.com/sakif/modernshop/internal/service"
	"github.com/stretchr/testify/require"
)

// =========================================================================
// TEST HARNESS
// =========================================================================

type testApp struct {
	router   http.Handler
	cart     *service.CartService
	auth     *service.AuthService
	checkout *service.CheckoutService
}

// newTestApp wires real services (memory storage, seeded memory directory,
// no latency) behind the same routes the server mounts.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	dir := memory.NewDirectory()
	require.NoError(t, repository.Seed(t.Context(), dir))
	storage := persist.NewMemoryStorage()

	cart := service.NewCartService(storage, logger)
	auth := service.NewAuthService(storage, dir, latency.None{}, logger)
	catalog := service.NewCatalogService()
	checkout := service.NewCheckoutService(cart, latency.None{}, logger)

	ch := NewCatalogHandler(catalog, logger)
	cah := NewCartHandler(cart, catalog, logger)
	ah := NewAuthHandler(auth, logger)
	coh := NewCheckoutHandler(checkout, logger)

	r := chi.NewRouter()
	r.Get("/api/products", ch.HandleList)
	r.Get("/api/products/facets", ch.HandleFacets)
	r.Get("/api/products/{id}", ch.HandleGet)
	r.Get("/api/cart", cah.HandleGet)
	r.Delete("/api/cart", cah.HandleClear)
	r.Post("/api/cart/items", cah.HandleAdd)
	r.Patch("/api/cart/items/{id}", cah.HandleUpdate)
	r.Delete("/api/cart/items/{id}", cah.HandleRemove)
	r.Post("/api/cart/toggle", cah.HandleToggle)
	r.Post("/api/cart/close", cah.HandleClose)
	r.Get("/api/auth/session", ah.HandleSession)
	r.Post("/api/auth/login", ah.HandleLogin)
	r.Post("/api/auth/signup", ah.HandleSignup)
	r.Post("/api/auth/logout", ah.HandleLogout)
	r.Patch("/api/auth/profile", ah.HandleUpdateProfile)
	r.Post("/api/auth/reset-password", ah.HandleResetPassword)
	r.Post("/api/auth/change-password", ah.HandleChangePassword)
	r.Post("/api/checkout", coh.HandlePlaceOrder)
	r.Get("/api/orders", coh.HandleListOrders)
	r.Get("/api/orders/{number}", coh.HandleGetOrder)

	return &testApp{router: r, cart: cart, auth: auth, checkout: checkout}
}

// do sends a request; body is JSON-encoded unless it's a string.
func (a *testApp) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}
