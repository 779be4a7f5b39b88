package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpupo63/multiblog-backend/config"
	"github.com/rpupo63/multiblog-backend/database"
	"github.com/rpupo63/multiblog-backend/storage"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(database database.Database, settings config.Settings, images storage.Store) (Server, error) {
	if err := settings.Validate(); err != nil {
		return Server{}, err
	}

	address := fmt.Sprintf("0.0.0.0:%s", settings.Port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	router := newRouter(database, withSettings(settings), withImageStore(images), withStartupTime(startupTime))

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  settings.ReadTimeout,  // Timeout for reading the entire request
		WriteTimeout: settings.WriteTimeout, // Timeout for writing the response
		IdleTimeout:  settings.IdleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	settings    config.Settings
	images      storage.Store
	startupTime time.Time
}

func withSettings(settings config.Settings) func(*router) {
	return func(r *router) {
		r.settings = settings
	}
}

func withImageStore(images storage.Store) func(*router) {
	return func(r *router) {
		r.images = images
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(database database.Database, opts ...func(*router)) *chi.Mux {
	router := router{
		settings:    config.Load(map[string]string{}),
		startupTime: time.Now(),
	}
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(MetricsMiddleware)
	chiRouter.Use(HTTPLoggingMiddleware)

	// Apply CORS middleware
	if len(router.settings.AcceptedOrigins) > 0 {
		chiRouter.Use(corsMiddleware(router.settings.AcceptedOrigins))
	}

	svc := newAppServices(database, router.settings, router.images)

	// Initialize all handlers
	handlers := initializeHandlers(database, svc, router.settings, router.startupTime)

	// Initialize auth middleware
	authMiddleware := newAuthMiddleware(svc.tokens, svc.users)

	// Uploaded images are served by the app only for the local backend
	if local, ok := router.images.(*storage.LocalStore); ok {
		chiRouter.Handle(local.Prefix()+"*", local.Handler())
	}

	setupRoutes(chiRouter, handlers, authMiddleware)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
