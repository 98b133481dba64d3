package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/wwb.blog/internal/api"
	"github.com/wuwenbin0122/wwb.blog/internal/auth"
	"github.com/wuwenbin0122/wwb.blog/internal/db"
	"github.com/wuwenbin0122/wwb.blog/internal/rate"
	"github.com/wuwenbin0122/wwb.blog/internal/utils"
)

func main() {
	if err := utils.LoadEnvFiles(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: failed to load: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("logger: failed to build: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	store, closeStore, err := openUserStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store: failed to open", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	var limiter auth.AttemptLimiter
	if cfg.Redis.URL != "" {
		client, err := db.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Fatal("redis: failed to connect", zap.Error(err))
		}
		defer client.Close()

		limiter = rate.New(client, rate.Config{
			MaxAttempts: cfg.Auth.SigninMaxAttempts,
			Lockout:     cfg.Auth.SigninLockout,
		})
		logger.Info("sign-in throttle enabled",
			zap.Int("max_attempts", cfg.Auth.SigninMaxAttempts),
			zap.Duration("lockout", cfg.Auth.SigninLockout),
		)
	}

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("SECRET_ACCESS_KEY is not set; signup and signin will fail to issue tokens")
	}

	authService, err := auth.NewService(store, auth.Options{
		Hasher:              auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		Issuer:              auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		UsernameMaxAttempts: cfg.Auth.UsernameMaxAttempts,
		Limiter:             limiter,
		Logger:              logger.Named("auth"),
	})
	if err != nil {
		logger.Fatal("failed to initialise auth service", zap.Error(err))
	}

	router := setupRouter(authService, logger)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server crashed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
}

// openUserStore connects the configured backend and prepares its uniqueness
// constraints. The returned func releases the connection.
func openUserStore(ctx context.Context, cfg *utils.Config, logger *zap.Logger) (auth.UserStore, func(), error) {
	switch cfg.StoreDriver {
	case utils.StoreDriverPostgres:
		postgres, err := db.NewPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Ping(ctx); err != nil {
			postgres.Close()
			return nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx); err != nil {
			postgres.Close()
			return nil, nil, err
		}
		return postgres.UserStore(), postgres.Close, nil

	case utils.StoreDriverMongo:
		mongoStore, err := db.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		if err := mongoStore.EnsureCollections(ctx); err != nil {
			_ = mongoStore.Close(context.Background())
			return nil, nil, err
		}
		closeFn := func() {
			if err := mongoStore.Close(context.Background()); err != nil {
				logger.Warn("mongo: close error", zap.Error(err))
			}
		}
		return mongoStore.UserStore(), closeFn, nil
	}

	return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

func setupRouter(authService *auth.Service, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestID(), api.RequestLogger(logger.Named("http")))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api.NewHandler(authService, logger.Named("api")).RegisterRoutes(router)

	return router
}
