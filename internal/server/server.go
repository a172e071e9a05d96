// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: every dependency — database, services,
// handlers, the mentor provider — is wired here in one place, and each layer
// only receives what it needs. Handlers never touch the database; services
// never touch HTTP.
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

	"github.com/sakif/roadmap-academy/internal/auth"
	"github.com/sakif/roadmap-academy/internal/catalog"
	"github.com/sakif/roadmap-academy/internal/handler"
	"github.com/sakif/roadmap-academy/internal/mentor"
	"github.com/sakif/roadmap-academy/internal/middleware"
	sqliteRepo "github.com/sakif/roadmap-academy/internal/repository/sqlite"
	"github.com/sakif/roadmap-academy/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port         int
	DBPath       string
	JWTSecret    string
	GeminiAPIKey string // empty disables the mentor routes
	CatalogPath  string // empty uses the embedded roadmap
}

// Server owns the router, the database connection, and the config.
// The database is closed during graceful shutdown in Start.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server and wires the whole dependency graph:
//
//	sqlite.DB → repositories → services → handlers → routes
func New(cfg Config, logger *slog.Logger) (*Server, error) {
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

// setupRoutes configures middleware, builds the services, and mounts every
// route.
//
// Middleware order matters: RequestID → RealIP → Recoverer → request logger,
// then per-route auth middleware inside the API groups.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === Catalog ===
	var (
		cat *catalog.Catalog
		err error
	)
	if s.config.CatalogPath != "" {
		cat, err = catalog.LoadFile(s.config.CatalogPath)
	} else {
		cat, err = catalog.Load()
	}
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	s.logger.Info("catalog loaded", slog.Int("modules", cat.Len()))

	// === Auth plumbing ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	// === Services ===
	authSvc := service.NewAuthService(s.db, tokens, passwords, s.logger)
	progressSvc := service.NewProgressService(s.db, cat, s.logger)
	rewardSvc := service.NewRewardService(s.db, progressSvc, cat, s.logger)

	// === Handlers ===
	authHandler := handler.NewAuthHandler(authSvc, s.logger)
	roadmapHandler := handler.NewRoadmapHandler(cat, progressSvc, authSvc, s.logger)
	progressHandler := handler.NewProgressHandler(progressSvc, s.logger)
	rewardHandler := handler.NewRewardHandler(rewardSvc, s.logger)

	optional := auth.OptionalAuth(tokens)
	required := auth.RequireAuth(tokens)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
		})

		r.Group(func(r chi.Router) {
			r.Use(required)
			r.Get("/me", authHandler.HandleMe)
			r.Put("/me/theme", authHandler.HandleSetTheme)
		})

		r.Group(func(r chi.Router) {
			r.Use(optional)
			r.Get("/roadmap", roadmapHandler.HandleRoadmap)
			r.Get("/roadmap/{id}", roadmapHandler.HandleModule)
			r.Get("/progress/summary", roadmapHandler.HandleSummary)

			r.Post("/progress/topic", progressHandler.HandleToggleTopic)
			r.Post("/progress/project", progressHandler.HandleToggleProject)
			r.Post("/progress/outcome", progressHandler.HandleToggleOutcome)
			r.Post("/progress/tech", progressHandler.HandleToggleTech)

			r.Post("/modules/{id}/chest", rewardHandler.HandleClaim)
		})
	})

	// === Mentor routes (only when the credential is configured) ===
	// The Gemini key is held server-side exclusively; without it the rest
	// of the app still works, minus the AI features.
	if s.config.GeminiAPIKey != "" {
		provider, err := mentor.NewGeminiProvider(context.Background(), s.config.GeminiAPIKey)
		if err != nil {
			return fmt.Errorf("creating mentor provider: %w", err)
		}

		mentorSvc := service.NewMentorService(provider, s.db, progressSvc, rewardSvc, cat, s.logger)
		mentorHandler := handler.NewMentorHandler(mentorSvc, s.logger)

		s.router.Group(func(r chi.Router) {
			r.Use(optional)
			r.Post("/api/mentor/chat", mentorHandler.HandleChat)
			r.Post("/api/modules/{id}/idea", mentorHandler.HandleIdea)
		})
	} else {
		s.logger.Warn("GEMINI_API_KEY not set — mentor routes are disabled")
	}

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests (30s),
// close the database (flushes the WAL, releases the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // mentor calls can be slow
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
