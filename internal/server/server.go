package server

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/database"
	custommiddleware "product-catalog/internal/middleware"
	"product-catalog/internal/repository"
	"product-catalog/internal/service"
	"product-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *database.Service
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *database.Service) *Server {
	s := &Server{
		config: cfg,
		logger: logger,
		db:     db,
	}

	if cfg.Redis.Enabled {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      s.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(s.db.DB(), "catalog"),
	)
	metrics := custommiddleware.NewMetrics(registry)

	router := chi.NewRouter()
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.CORSMiddleware(s.config.Server.AllowedOrigins, s.config.Server.IsDevelopment()))
	router.Use(custommiddleware.LoggingMiddleware(s.logger))
	router.Use(metrics.Middleware)
	router.Use(custommiddleware.ErrorHandlingMiddleware(s.logger))

	router.Get("/health", s.health)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	// Initialize repositories
	db := s.db.DB()
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	transactor := database.NewTransactor(db)

	// Initialize services
	productService := service.NewProductService(productRepo, categoryRepo, transactor, s.logger)
	categoryService := service.NewCategoryService(categoryRepo, transactor)

	// Initialize handlers
	productHandler := transport.NewProductHandler(productService, s.logger)
	categoryHandler := transport.NewCategoryHandler(categoryService, s.logger)

	authMiddleware := custommiddleware.AuthMiddleware(s.config.JWT.Secret, s.logger)

	router.Group(func(r chi.Router) {
		if s.redis != nil {
			r.Use(custommiddleware.RateLimitMiddleware(s.redis, custommiddleware.RateLimitConfig{
				RequestsPerWindow: s.config.RateLimit.Requests,
				Window:            s.config.RateLimit.Window,
				KeyPrefix:         "catalog_rate_limit",
			}, s.logger))
		}

		productHandler.RegisterRoutes(r, authMiddleware)
		categoryHandler.RegisterRoutes(r, authMiddleware)
	})

	return router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())

	status := http.StatusOK
	if health["status"] != "up" {
		status = http.StatusServiceUnavailable
	}

	custommiddleware.RespondWithJSON(w, status, map[string]interface{}{
		"status":     health["status"],
		"database":   health,
		"request_id": middleware.GetReqID(r.Context()),
	})
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
