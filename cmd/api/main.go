package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"bookcatalog/internal/auth"
	"bookcatalog/internal/book"
	"bookcatalog/internal/catalog"
	"bookcatalog/internal/config"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/ownership"
	"bookcatalog/internal/platform/logging"
	"bookcatalog/internal/platform/openlibrary"
	"bookcatalog/internal/platform/postgres"
	"bookcatalog/internal/user"
)

const userAgent = "bookcatalog/1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Must("info").Fatal("load config", zap.Error(err))
	}

	logger := logging.Must(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer dbPool.Close()
	logger.Info("database connection OK", zap.String("dsn", postgres.RedactDSN(cfg.DatabaseDSN)))

	h := wire(cfg, dbPool, logger)
	limiter := httpx.NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)

	handler := httpx.Chain(
		newRouter(h, cfg.JWTSecret, dbPool.Ping),
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware(logger),
		httpx.SecurityHeadersMiddleware,
		httpx.CORSMiddleware(cfg.CORSOrigins),
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
		limiter.Middleware,
	)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

type handlers struct {
	books     *book.HTTPHandler
	catalog   *catalog.HTTPHandler
	users     *user.HTTPHandler
	ownership *ownership.HTTPHandler
	auth      *auth.HTTPHandler
}

func wire(cfg *config.Config, dbPool *pgxpool.Pool, logger *zap.Logger) handlers {
	txManager := postgres.NewTxManager(dbPool)

	bookRepo := book.NewPostgresRepo(dbPool, cfg.DBTimeout)
	userRepo := user.NewPostgresRepo(dbPool, cfg.DBTimeout)
	ownershipRepo := ownership.NewPostgresRepo(dbPool, cfg.DBTimeout)

	olClient := openlibrary.NewClient(cfg.OpenLibraryURL, userAgent, nil)

	bookService := book.NewService(bookRepo)
	ownershipService := ownership.NewService(ownershipRepo, userRepo, bookRepo, txManager)
	userService := user.NewService(userRepo, txManager, ownershipService)
	resolver := catalog.NewResolver(bookRepo, olClient, logger)
	authService := auth.NewService(cfg.JWTSecret, cfg.TokenTTL, userRepo)

	return handlers{
		books:     book.NewHTTPHandler(bookService, logger),
		catalog:   catalog.NewHTTPHandler(resolver, logger),
		users:     user.NewHTTPHandler(userService, logger),
		ownership: ownership.NewHTTPHandler(ownershipService, logger),
		auth:      auth.NewHTTPHandler(authService, logger),
	}
}

func newRouter(h handlers, jwtSecret string, ready func(context.Context) error) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := ready(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("GET /api/books", h.books.List)
	router.HandleFunc("POST /api/books", h.books.Create)
	router.HandleFunc("GET /api/books/search", h.catalog.Search)
	router.HandleFunc("GET /api/books/{id}", h.books.Get)
	router.HandleFunc("PUT /api/books/{id}", h.books.Update)
	router.HandleFunc("DELETE /api/books/{id}", h.books.Delete)

	router.HandleFunc("POST /api/auth/login", h.auth.Login)
	router.Handle("GET /api/users/current", httpx.AuthMiddleware(jwtSecret)(http.HandlerFunc(h.users.Current)))

	router.HandleFunc("GET /api/users", h.users.List)
	router.HandleFunc("POST /api/users", h.users.Create)
	router.HandleFunc("GET /api/users/{id}", h.users.Get)
	router.HandleFunc("PUT /api/users/{id}", h.users.Update)
	router.HandleFunc("PATCH /api/users/{id}", h.users.UpdatePassword)
	router.HandleFunc("DELETE /api/users/{id}", h.users.Delete)

	router.HandleFunc("GET /api/users/{id}/books", h.ownership.ListBooks)
	router.HandleFunc("POST /api/users/{id}/books/{bookId}/add", h.ownership.Add)
	router.HandleFunc("POST /api/users/{id}/books/{bookId}/remove", h.ownership.Remove)

	return router
}
