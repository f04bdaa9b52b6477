package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, services *api.Services) *Server {
	router := NewRouter(cfg, services)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// NewRouter builds the gin engine with the middleware chain and every route.
func NewRouter(cfg *config.Config, services *api.Services) *gin.Engine {
	if cfg.Env == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSOrigins),
	)

	api.RegisterRoutes(router, services)

	// uploaded images are served by the API itself unless they live in S3
	if cfg.MediaStorage == "local" && strings.HasPrefix(cfg.MediaURL, "/") {
		router.Static(cfg.MediaURL, cfg.MediaDir)
	}

	return router
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	logging.Info().Str("addr", s.http.Addr).Msg("server starting")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
