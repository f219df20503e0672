package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"nana-store/internal/config"
	custommiddleware "nana-store/internal/middleware"
	"nana-store/internal/repository"
	"nana-store/internal/service"
	"nana-store/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Options carries the optional collaborators of a Server
type Options struct {
	// Redis enables request rate limiting when set
	Redis *redis.Client
	// Health reports backend status on /health
	Health func() map[string]string
	// Now overrides the clock used for order rules
	Now func() time.Time
	// Closers are released by Close after shutdown
	Closers []io.Closer
}

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	closers []io.Closer
}

func NewServer(cfg *config.Config, logger *zap.Logger, store *repository.Store, opts Options) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{"status": "ok"}
		if opts.Health != nil {
			backend := opts.Health()
			body["database"] = backend
			if backend["status"] != "up" {
				body["status"] = "degraded"
				custommiddleware.RespondWithJSON(w, http.StatusServiceUnavailable, body)
				return
			}
		}
		custommiddleware.RespondWithJSON(w, http.StatusOK, body)
	})

	userService := service.NewUserService(store.Users, store.RefreshTokens, service.TokenSettings{
		Secret:     cfg.JWT.Secret,
		AccessTTL:  time.Duration(cfg.JWT.AccessExpiry) * time.Minute,
		RefreshTTL: time.Duration(cfg.JWT.RefreshExpiry) * 24 * time.Hour,
	}, logger)
	productService := service.NewProductService(store.Products, logger)
	cartService := service.NewCartService(store, logger)
	accountService := service.NewAccountService(store, logger)
	orderService := service.NewOrderService(
		store,
		service.NewCatalogGuard(store.Products),
		service.NewInventoryLedger(store.Products, logger),
		service.NewOrderNumberGenerator(store.OrderSequences, cfg.Store.OrderPrefix, cfg.Store.Location()),
		service.OrderSettings{
			Shipping: service.ShippingPolicy{
				FreeThreshold: cfg.Store.FreeShippingThreshold,
				Fee:           cfg.Store.ShippingFee,
			},
			CancelWindow: cfg.Store.CancelWindow(),
			Now:          opts.Now,
		},
		logger,
	)

	guards := transport.Guards{
		Auth:         custommiddleware.AuthMiddleware(userService, logger),
		OptionalAuth: custommiddleware.OptionalAuthMiddleware(userService, logger),
		Admin:        custommiddleware.RequireAdmin(logger),
	}
	respond := transport.NewResponder(logger, cfg.IsDevelopment())

	router.Group(func(api chi.Router) {
		if opts.Redis != nil {
			api.Use(custommiddleware.RateLimitMiddleware(opts.Redis, custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.RateLimit.Requests,
				Window:            time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
			}, logger))
		}

		transport.NewUserHandler(userService, respond, logger).RegisterRoutes(api, guards)
		transport.NewProductHandler(productService, respond, logger).RegisterRoutes(api, guards)
		transport.NewCartHandler(cartService, respond, logger).RegisterRoutes(api, guards)
		transport.NewOrderHandler(orderService, respond, logger).RegisterRoutes(api, guards)
		transport.NewAccountHandler(accountService, respond, logger).RegisterRoutes(api, guards)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusNotFound, "route not found")
	})

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:  cfg,
		logger:  logger,
		closers: opts.Closers,
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Error("Failed to close resource", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
