package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"litverse-be/internal/auth"
	"litverse-be/internal/book"
	"litverse-be/internal/cache"
	"litverse-be/internal/cart"
	"litverse-be/internal/config"
	"litverse-be/internal/db"
	"litverse-be/internal/httpapi"
	"litverse-be/internal/logger"
	"litverse-be/internal/middleware"
	"litverse-be/internal/notify"
	"litverse-be/internal/order"
	"litverse-be/internal/payment"
	"litverse-be/internal/review"
	"litverse-be/internal/user"
	"litverse-be/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	limiterSweepInterval = time.Minute
	shutdownTimeout      = 10 * time.Second
)

var (
	initDBFunc      = db.InitDB
	newCacheFunc    = newCache
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	decimal.MarshalJSONWithoutQuotes = true

	conn := initDBFunc(cfg)
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter()
	go limiter.Run(ctx, limiterSweepInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           newServer(cfg, conn, newCacheFunc(cfg), limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newCache(cfg *config.Config) cache.Cache {
	if cfg.RedisAddress == "" {
		logger.L().Warn("REDIS_ADDRESS not set, book cache disabled")
		return cache.Noop()
	}
	return cache.NewRedisCache(cache.NewRedisClient(cfg), "litverse")
}

// newServer wires repositories, services and the router. The returned handler
// carries request ids and access logs around gin.
func newServer(cfg *config.Config, conn *sqlx.DB, bookCache cache.Cache, limiter *middleware.RateLimiter) http.Handler {
	validator := validation.New()
	notifier := notify.NewFromConfig(cfg)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	bookRepo := book.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	userRepo := user.NewRepository(conn)

	bookSvc := book.NewService(conn, bookRepo, bookCache, validator)
	cartSvc := cart.NewService(cartRepo, bookRepo, cart.WithRetryAttempts(cfg.CartRetryAttempts))
	userSvc := user.NewService(userRepo, tokens, notifier, validator)

	var transitions order.Transitions
	if cfg.StrictOrderTransitions {
		transitions = order.StrictTransitions
	}
	orderSvc := order.NewService(order.Deps{
		DB:          conn,
		Orders:      order.NewRepository(conn),
		Books:       bookRepo,
		Carts:       cartRepo,
		Users:       userRepo,
		BookCache:   bookSvc,
		Notifier:    notifier,
		Validator:   validator,
		Transitions: transitions,
	})

	router := httpapi.NewRouter(httpapi.Deps{
		Books:        bookSvc,
		Carts:        cartSvc,
		Orders:       orderSvc,
		Users:        userSvc,
		Reviews:      review.NewService(review.NewRepository(conn), bookSvc, validator),
		Payments:     payment.NewService(payment.NewRepository(conn), validator),
		Tokens:       tokens,
		Validator:    validator,
		Limiter:      limiter,
		DB:           conn,
		CORSOrigins:  cfg.CORSOrigins,
		SecureCookie: cfg.AppEnv == "production",
	})

	return logger.RequestIDMiddleware(logger.LoggingMiddleware(router))
}
