package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cargoline/apiserver/config"
	"github.com/cargoline/apiserver/internal/db"
	"github.com/cargoline/apiserver/internal/handlers"
	"github.com/cargoline/apiserver/internal/logger"
	"github.com/cargoline/apiserver/internal/mq"
	"github.com/cargoline/apiserver/internal/password"
	"github.com/cargoline/apiserver/internal/services"
	"github.com/cargoline/apiserver/internal/session"
	"github.com/cargoline/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const sessionSweepInterval = 10 * time.Minute

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	mq         mq.Backend
	sessions   *session.MemoryStore
}

// New opens the database and message broker and builds the router.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	backend, err := mq.NewBackend(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("init mq backend: %w", err)
	}

	sessionStore := session.NewMemoryStore()
	sessions, err := session.NewManager(sessionStore, cfg.Session)
	if err != nil {
		_ = backend.Close()
		_ = dbConn.Close()
		return nil, err
	}

	router := NewRouter(Deps{
		DB:       dbConn,
		Config:   cfg,
		Sessions: sessions,
		Events:   mq.NewEventPublisher(backend),
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		mq:         backend,
		sessions:   sessionStore,
	}, nil
}

// Deps are the collaborators NewRouter wires into handlers.
type Deps struct {
	DB       *sql.DB
	Config   config.Config
	Sessions *session.Manager
	Events   services.EventPublisher
}

// NewRouter builds the full HTTP routing tree.
func NewRouter(deps Deps) *chi.Mux {
	userRepo := store.NewUserRepository(deps.DB)
	brandRepo := store.NewBrandRepository(deps.DB)

	authService := services.NewAuthService(
		userRepo,
		password.NewHasher(password.DefaultParams),
		deps.Config.Admin,
		deps.Events,
		deps.Config.MQ.UsersChannel,
	)
	brandService := services.NewBrandService(brandRepo, deps.Events, deps.Config.MQ.BrandsChannel)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logger.Middleware,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz(deps.DB))

	router.Group(func(r chi.Router) {
		r.Use(deps.Sessions.Load)
		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, authService, deps.Sessions)
		})
		r.Route("/brands", func(r chi.Router) {
			handlers.BrandRouter(r, brandService)
		})
	})

	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	go s.sessions.RunJanitor(ctx, sessionSweepInterval)

	log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the broker and database.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.mq != nil {
		if closeErr := s.mq.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close mq backend")
		}
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
