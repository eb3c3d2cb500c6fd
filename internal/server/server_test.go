package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/sakif/modernshop/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Storage = config.StorageMemory
	cfg.AuthLatency = 0
	cfg.PaymentLatency = 0
	return cfg
}

func startServer(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()
	s, err := New(cfg, testLogger())
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		assert.NoError(t, s.Close())
	})
	return ts
}

func call(t *testing.T, ts *httptest.Server, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	ts := startServer(t, testConfig())

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestShoppingFlow(t *testing.T) {
	ts := startServer(t, testConfig())

	status, body := call(t, ts, http.MethodGet, "/api/products?onSale=true", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 4, body["count"])

	status, body = call(t, ts, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "demo@modernshop.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, _ = call(t, ts, http.MethodPost, "/api/cart/items", map[string]any{"id": 1, "color": "Black"})
	require.Equal(t, http.StatusOK, status)

	status, body = call(t, ts, http.MethodPost, "/api/checkout", map[string]any{
		"shipping": map[string]any{
			"firstName": "Demo", "lastName": "User", "email": "demo@modernshop.com",
			"address": "1 Main St", "city": "Springfield", "state": "IL", "zipCode": "62701",
		},
		"payment": map[string]any{
			"cardNumber": "4242424242424242", "expiryDate": "12/30", "cvv": "123", "cardName": "Demo User",
		},
	})
	require.Equal(t, http.StatusCreated, status)
	order := body["order"].(map[string]any)

	status, body = call(t, ts, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["totalItems"])

	status, _ = call(t, ts, http.MethodGet, "/api/orders/"+order["number"].(string), nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestUnknownRoute(t *testing.T) {
	ts := startServer(t, testConfig())

	resp, err := ts.Client().Get(ts.URL + "/api/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =========================================================================
// STORAGE BACKENDS
// =========================================================================

// assertSurvivesRestart adds to the cart and signs in on one server, then
// checks a second server built from the same config restores both.
func assertSurvivesRestart(t *testing.T, cfg config.Config) {
	t.Helper()

	first, err := New(cfg, testLogger())
	require.NoError(t, err)
	ts := httptest.NewServer(first.Handler())

	status, _ := call(t, ts, http.MethodPost, "/api/cart/items", map[string]any{"id": 2})
	require.Equal(t, http.StatusOK, status)
	status, _ = call(t, ts, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "demo@modernshop.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, status)

	ts.Close()
	require.NoError(t, first.Close())

	ts = startServer(t, cfg)

	_, cart := call(t, ts, http.MethodGet, "/api/cart", nil)
	assert.EqualValues(t, 1, cart["totalItems"])

	_, session := call(t, ts, http.MethodGet, "/api/auth/session", nil)
	assert.Equal(t, true, session["isAuthenticated"])
	assert.Equal(t, false, session["isLoading"])
}

func TestRestart_FileStorage(t *testing.T) {
	cfg := testConfig()
	cfg.Storage = config.StorageFile
	cfg.DataDir = filepath.Join(t.TempDir(), "state")

	assertSurvivesRestart(t, cfg)
}

func TestRestart_SQLite(t *testing.T) {
	cfg := testConfig()
	cfg.Storage = config.StorageSQLite
	cfg.Directory = config.DirectorySQLite
	cfg.DBPath = filepath.Join(t.TempDir(), "db", "shop.db")

	assertSurvivesRestart(t, cfg)
}

func TestRestart_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Storage = config.StorageRedis
	cfg.RedisAddr = mr.Addr()

	assertSurvivesRestart(t, cfg)
	assert.True(t, mr.Exists("modernshop:cart-storage"))
}

func TestSQLiteDirectory_SignupSurvivesRestart(t *testing.T) {
	cfg := testConfig()
	cfg.Directory = config.DirectorySQLite
	cfg.DBPath = filepath.Join(t.TempDir(), "shop.db")

	first, err := New(cfg, testLogger())
	require.NoError(t, err)
	ts := httptest.NewServer(first.Handler())
	status, _ := call(t, ts, http.MethodPost, "/api/auth/signup", map[string]any{
		"email": "kept@modernshop.com", "password": "longenough",
	})
	require.Equal(t, http.StatusCreated, status)
	ts.Close()
	require.NoError(t, first.Close())

	ts = startServer(t, cfg)
	status, _ = call(t, ts, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "kept@modernshop.com", "password": "longenough",
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestNew_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.Storage = config.StorageRedis
	cfg.RedisAddr = addr

	_, err := New(cfg, testLogger())
	assert.Error(t, err)
}
