package server

import (
	"fmt"
	"net/http"
	"time"

	"stock-ledger/internal/config"
	custommiddleware "stock-ledger/internal/middleware"
	"stock-ledger/internal/repository"
	"stock-ledger/internal/service"
	"stock-ledger/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	store   *repository.DocumentStore
	limiter *redis.Client
}

// NewServer wires the ledger services over store and mounts the HTTP API
func NewServer(cfg *config.Config, logger *zap.Logger, store *repository.DocumentStore) *Server {
	s := &Server{
		config: cfg,
		logger: logger,
		store:  store,
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
	cfg := s.config
	logger := s.logger

	router := chi.NewRouter()
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, !cfg.IsProduction()))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"storage": cfg.Storage.Driver,
		})
	})

	policy := service.ClampOversell
	if cfg.Ledger.RejectOversell {
		policy = service.RejectOversell
	}
	opts := []service.Option{
		service.WithLogger(logger),
		service.WithOversellPolicy(policy),
	}

	ledger := service.NewLedger(
		service.NewProductCatalog(s.store, s.store, s.store, opts...),
		service.NewStockLedger(s.store, opts...),
		service.NewSalesLog(s.store, s.store, s.store, opts...),
		logger,
	)

	productHandler := transport.NewProductHandler(ledger, logger)
	stockHandler := transport.NewStockHandler(ledger, logger)
	saleHandler := transport.NewSaleHandler(ledger.Sales, time.Local, logger)
	reportHandler := transport.NewReportHandler(ledger, time.Local, logger)

	router.Group(func(r chi.Router) {
		if cfg.Auth.Secret != "" {
			r.Use(custommiddleware.AuthMiddleware(cfg.Auth.Secret, logger))
		} else {
			logger.Warn("AUTH_SECRET is not set, API is open to any caller")
		}

		if cfg.RateLimit.Requests > 0 {
			s.limiter = redis.NewClient(&redis.Options{
				Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			r.Use(custommiddleware.RateLimitMiddleware(s.limiter, custommiddleware.RateLimitConfig{
				Requests:  cfg.RateLimit.Requests,
				Window:    cfg.RateLimit.Window,
				KeyPrefix: cfg.Redis.KeyPrefix,
			}, logger))
		}

		productHandler.RegisterRoutes(r)
		stockHandler.RegisterRoutes(r)
		saleHandler.RegisterRoutes(r)
		reportHandler.RegisterRoutes(r)
	})

	logger.Info("Ledger configured",
		zap.String("oversell_policy", policy.String()),
		zap.Bool("auth", cfg.Auth.Secret != ""),
		zap.Int("rate_limit", cfg.RateLimit.Requests),
	)
	return router
}

// Close releases the document store and the rate limit client
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.limiter != nil {
		if err := s.limiter.Close(); err != nil {
			s.logger.Error("Failed to close rate limit client", zap.Error(err))
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("Failed to close document store", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
