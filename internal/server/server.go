// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: every dependency — database, cookie signer,
// services, handlers — is wired together here, in one place, rather than
// scattered across the codebase. main.go stays minimal ("load config, start
// the server") and each layer only receives what it needs: services get
// repository interfaces, handlers get services, nobody reaches around a
// layer.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/manelromero/blog/internal/auth"
	"github.com/manelromero/blog/internal/config"
	"github.com/manelromero/blog/internal/handler"
	"github.com/manelromero/blog/internal/middleware"
	sqliteRepo "github.com/manelromero/blog/internal/repository/sqlite"
	"github.com/manelromero/blog/internal/service"
)

// Server owns the router and the resources that need closing on shutdown —
// for now, the database connection.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the whole dependency chain:
//
//	sqlite.DB → services (auth, posts) → handlers → routes
//
// plus the cross-cutting pieces (cookie signer, password hasher, template
// renderer).
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and the route table.
//
// ROUTE TABLE:
//
//	GET  /                   → post listing (auth required, else → /login)
//	POST /                   → vote on a post
//	GET/POST /signup         → signup form / create account
//	GET/POST /login          → login form / authenticate
//	GET  /logout             → clear session
//	GET/POST /newpost        → post form / create post
//	GET  /{postID}           → permalink (public)
//	POST /{postID}           → add comment
//	GET/POST /edit/{postID}  → edit form / apply edit (owner only)
//	GET/POST /delete/{postID}→ confirm / delete (owner only)
//
// MIDDLEWARE ORDER MATTERS: the request id and real-IP extraction run
// first, then panic recovery, then request logging, then session
// resolution — so every log line carries the final status and every
// handler can ask who's logged in.
func (s *Server) setupRoutes() error {
	signer, err := auth.NewCookieSigner(s.config.SecretKey)
	if err != nil {
		return fmt.Errorf("creating cookie signer: %w", err)
	}

	renderer, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	authService := service.NewAuthService(s.db, auth.NewPasswordService(), s.logger)
	postService := service.NewPostService(s.db, s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, signer, renderer, s.logger)
	postHandler := handler.NewPostHandler(postService, renderer, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(auth.WithUser(signer, s.db))

	// Static files: GET /static/css/style.css → {StaticDir}/css/style.css
	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// Public routes.
	s.router.Get("/signup", authHandler.HandleSignUpForm)
	s.router.Post("/signup", authHandler.HandleSignUp)
	s.router.Get("/login", authHandler.HandleLogInForm)
	s.router.Post("/login", authHandler.HandleLogIn)
	s.router.Get("/logout", authHandler.HandleLogOut)

	// The permalink page is readable without a session; chi prefers the
	// static routes above over this wildcard, so /signup never matches it.
	s.router.Get("/{postID}", postHandler.HandlePermalink)

	// Protected routes: anonymous requests are redirected to /login.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Get("/", postHandler.HandleHome)
		r.Post("/", postHandler.HandleVote)
		r.Get("/newpost", postHandler.HandleNewPostForm)
		r.Post("/newpost", postHandler.HandleNewPost)
		r.Post("/{postID}", postHandler.HandleAddComment)
		r.Get("/edit/{postID}", postHandler.HandleEditForm)
		r.Post("/edit/{postID}", postHandler.HandleEdit)
		r.Get("/delete/{postID}", postHandler.HandleDeleteForm)
		r.Post("/delete/{postID}", postHandler.HandleDelete)
	})

	s.router.NotFound(renderer.NotFound)

	return nil
}

// Router exposes the configured router — used by the handler tests to drive
// the full middleware stack through httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the server's resources without serving. Start does this
// itself; Close exists for callers (tests) that never Start.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the database (flushes the WAL, releases the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

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
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
