// Package server wires the stub backend: in-memory repositories, services
// and handlers behind one chi router.
package server

import (
	"fmt"
	"net/http"
	"time"

	"live-commerce/internal/config"
	custommiddleware "live-commerce/internal/middleware"
	"live-commerce/internal/repository"
	"live-commerce/internal/service"
	"live-commerce/internal/storage"
	"live-commerce/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// UploadPrefix is the URL path product images are served under
const UploadPrefix = "/uploads"

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	redis  *redis.Client
}

// NewServer builds the stub API. redisClient is optional and only used for
// rate limiting.
func NewServer(cfg *config.Config, logger *zap.Logger, redisClient *redis.Client) *Server {
	router := chi.NewRouter()
	router.Use(custommiddleware.DefaultMiddlewareStack(logger)...)
	router.Use(custommiddleware.CORSMiddleware(cfg.Stub.AllowedOrigins, cfg.IsDevelopment()))
	if cfg.RateLimit.Enabled && redisClient != nil {
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "stub:ratelimit",
		}, logger))
	}
	router.NotFound(custommiddleware.NotFound)
	router.MethodNotAllowed(custommiddleware.MethodNotAllowed)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		if redisClient != nil {
			status["redis"] = "up"
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				status["redis"] = "down"
			}
		}
		custommiddleware.RespondWithJSON(w, http.StatusOK, status)
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	refreshTokenRepo := repository.NewRefreshTokenRepository()
	productRepo := repository.NewProductRepository()
	reservationRepo := repository.NewReservationRepository()
	streamRepo := repository.NewStreamRepository()

	// Initialize services
	images := storage.NewLocal(cfg.Stub.UploadDir, UploadPrefix)
	accessExpiry := time.Duration(cfg.JWT.AccessExpiry) * time.Minute
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg.JWT.Secret, accessExpiry)
	productService := service.NewProductService(productRepo, images, logger)
	reservationService := service.NewReservationService(reservationRepo, productRepo)
	streamService := service.NewStreamService(streamRepo)

	// Route guards
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	var sellers, members func(http.Handler) http.Handler
	if cfg.Stub.RequireAuth {
		requireSeller := custommiddleware.RequireRole(logger, "seller", "admin")
		sellers = func(next http.Handler) http.Handler { return authMiddleware(requireSeller(next)) }
		members = authMiddleware
	}

	// Register routes
	transport.NewAuthHandler(authService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewProductHandler(productService, logger).RegisterRoutes(router, sellers)
	transport.NewReservationHandler(reservationService, logger).RegisterRoutes(router, members)
	transport.NewStreamHandler(streamService, logger).RegisterRoutes(router, sellers)

	router.Handle(UploadPrefix+"/*", http.StripPrefix(UploadPrefix+"/", http.FileServer(http.Dir(images.Dir()))))

	logger.Info("Stub API configured",
		zap.Bool("require_auth", cfg.Stub.RequireAuth),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled && redisClient != nil),
		zap.Stringer("uploads", images),
	)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Stub.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		redis:  redisClient,
	}
}

// Close releases the server's resources
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
