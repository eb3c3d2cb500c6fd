// Package server is the composition root: it picks the storage backends,
// builds the stores and handlers, mounts the routes, and runs the HTTP server.
//
// DEPENDENCY FLOW:
//
//	config.Config
//	  → persist.Storage (memory | file | sqlite blobs | redis)
//	  → repository.AccountRepository (memory | sqlite), seeded with the demo account
//	  → CartService, AuthService, CatalogService, CheckoutService
//	  → handlers → chi routes under /api
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/modernshop/internal/config"
	"github.com/sakif/modernshop/internal/handler"
	"github.com/sakif/modernshop/internal/latency"
	"github.com/sakif/modernshop/internal/middleware"
	"github.com/sakif/modernshop/internal/model"
	"github.com/sakif/modernshop/internal/persist"
	"github.com/sakif/modernshop/internal/repository"
	"github.com/sakif/modernshop/internal/repository/memory"
	sqliteRepo "github.com/sakif/modernshop/internal/repository/sqlite"
	"github.com/sakif/modernshop/internal/service"
)

// startupTimeout bounds the work New does against external backends.
const startupTimeout = 5 * time.Second

// Server owns the router, the stores, and every resource that needs closing.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger

	cart     *service.CartService
	auth     *service.AuthService
	catalog  *service.CatalogService
	checkout *service.CheckoutService

	// closers run in reverse order on Close.
	closers []io.Closer
}

// New builds the whole application from cfg.
// On error, anything already opened is closed before returning.
func New(cfg config.Config, logger *slog.Logger) (_ *Server, err error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	var db *sqliteRepo.DB
	if cfg.UsesSQLite() {
		if db, err = openDB(cfg.DBPath); err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db)
	}

	storage, err := s.openStorage(ctx, db)
	if err != nil {
		return nil, err
	}

	var accounts repository.AccountRepository = memory.NewDirectory()
	if cfg.Directory == config.DirectorySQLite {
		accounts = db
	}
	if err := repository.Seed(ctx, accounts); err != nil {
		return nil, fmt.Errorf("seeding directory: %w", err)
	}

	s.cart = service.NewCartService(storage, logger)
	s.auth = service.NewAuthService(storage, accounts, latency.Fixed(cfg.AuthLatency), logger)
	s.catalog = service.NewCatalogService()
	s.checkout = service.NewCheckoutService(s.cart, latency.Fixed(cfg.PaymentLatency), logger)
	s.watchStores()

	s.setupRoutes()

	logger.Info("application ready",
		slog.String("storage", cfg.Storage),
		slog.String("directory", cfg.Directory),
		slog.Duration("auth_latency", cfg.AuthLatency),
		slog.Duration("payment_latency", cfg.PaymentLatency),
	)
	return s, nil
}

func openDB(path string) (*sqliteRepo.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sqliteRepo.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// openStorage returns the snapshot storage named by the config.
func (s *Server) openStorage(ctx context.Context, db *sqliteRepo.DB) (persist.Storage, error) {
	switch s.config.Storage {
	case config.StorageMemory:
		return persist.NewMemoryStorage(), nil

	case config.StorageFile:
		fs, err := persist.NewFileStorage(s.config.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening file storage: %w", err)
		}
		return fs, nil

	case config.StorageSQLite:
		return db.Blobs(), nil

	case config.StorageRedis:
		rs := persist.NewRedisStorage(s.config.RedisAddr, s.config.RedisPassword, s.config.RedisPrefix)
		s.closers = append(s.closers, rs)
		// A dead Redis would otherwise only show up as Warn lines on every Set.
		if err := rs.Ping(ctx); err != nil {
			return nil, err
		}
		return rs, nil
	}
	return nil, fmt.Errorf("unknown storage %q", s.config.Storage)
}

// watchStores logs every state change at Debug. These are the same
// subscriptions a presentation layer would make.
func (s *Server) watchStores() {
	s.cart.Subscribe(func(next, prev model.CartState) {
		s.logger.Debug("cart changed",
			slog.Int("total_items", next.TotalItems()),
			slog.Int("prev_total_items", prev.TotalItems()),
			slog.Bool("open", next.IsOpen),
		)
	})
	s.auth.Subscribe(func(next, prev model.AuthState) {
		if next.IsAuthenticated == prev.IsAuthenticated && next.IsLoading == prev.IsLoading {
			return
		}
		s.logger.Debug("session changed",
			slog.Bool("authenticated", next.IsAuthenticated),
			slog.Bool("loading", next.IsLoading),
		)
	})
}

// setupRoutes configures middleware and routes.
//
// ROUTES:
//
//	GET    /api/products             filtered listing
//	GET    /api/products/facets      filter choices
//	GET    /api/products/{id}        one product
//	GET    /api/cart                 cart + totals
//	POST   /api/cart/items           add one unit
//	PATCH  /api/cart/items/{id}      set quantity (?color=&size=)
//	DELETE /api/cart/items/{id}      remove line  (?color=&size=)
//	DELETE /api/cart                 clear
//	POST   /api/cart/toggle          flip drawer
//	POST   /api/cart/close           close drawer
//	GET    /api/auth/session         current session (reconciled)
//	POST   /api/auth/login|signup|logout|reset-password|change-password
//	PATCH  /api/auth/profile
//	POST   /api/checkout             place order
//	GET    /api/orders               order history
//	GET    /api/orders/{number}      placed order
//
// MIDDLEWARE ORDER:
// RequestID first so the logger can print it; Recoverer innermost of the
// chi middleware so a panic still gets logged with its 500.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	catalogHandler := handler.NewCatalogHandler(s.catalog, s.logger)
	cartHandler := handler.NewCartHandler(s.cart, s.catalog, s.logger)
	authHandler := handler.NewAuthHandler(s.auth, s.logger)
	checkoutHandler := handler.NewCheckoutHandler(s.checkout, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.HandleList)
			r.Get("/facets", catalogHandler.HandleFacets)
			r.Get("/{id}", catalogHandler.HandleGet)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.HandleGet)
			r.Delete("/", cartHandler.HandleClear)
			r.Post("/items", cartHandler.HandleAdd)
			r.Patch("/items/{id}", cartHandler.HandleUpdate)
			r.Delete("/items/{id}", cartHandler.HandleRemove)
			r.Post("/toggle", cartHandler.HandleToggle)
			r.Post("/close", cartHandler.HandleClose)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Get("/session", authHandler.HandleSession)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/signup", authHandler.HandleSignup)
			r.Post("/logout", authHandler.HandleLogout)
			r.Patch("/profile", authHandler.HandleUpdateProfile)
			r.Post("/reset-password", authHandler.HandleResetPassword)
			r.Post("/change-password", authHandler.HandleChangePassword)
		})

		r.Post("/checkout", checkoutHandler.HandlePlaceOrder)
		r.Get("/orders", checkoutHandler.HandleListOrders)
		r.Get("/orders/{number}", checkoutHandler.HandleGetOrder)
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases databases and connections. Safe to call more than once.
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down gracefully:
//  1. stop accepting connections
//  2. wait up to 30s for in-flight requests (a checkout can take seconds)
//  3. close storage and the database
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
