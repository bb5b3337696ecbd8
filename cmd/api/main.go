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

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"distrust-bot/internal/config"
	"distrust-bot/internal/dm"
	"distrust-bot/internal/events"
	apihttp "distrust-bot/internal/http"
	"distrust-bot/internal/repository"
	"distrust-bot/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	if cfg.LogDevelopment {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	var revealSender dm.Sender = dm.NewDisabledSender("dm webhook not configured")
	if cfg.DMWebhookURL != "" {
		sender, err := dm.NewWebhookSender(cfg.DMWebhookURL, cfg.DMWebhookToken, cfg.DMTimeout, cfg.DMMaxAttempts, logger)
		if err != nil {
			logger.Warn("dm webhook sender init failed", zap.Error(err))
		} else {
			revealSender = sender
		}
	} else {
		logger.Warn("dm webhook not configured, every session start will fail delivery")
	}

	hub := events.NewHub(logger)
	go hub.Run(ctx)
	publisher := events.NewMultiPublisher().Add("websocket", hub)

	var redisClient *redis.Client
	redisReady := false
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			redisReady = true
			publisher.Add("redis", events.NewRedisPublisher(redisClient, cfg.RedisChannel))
		}
		cancel()
		defer redisClient.Close()
	}

	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("distrust-bot"), nats.MaxReconnects(-1))
		if err != nil {
			logger.Warn("nats connect failed", zap.Error(err))
		} else {
			publisher.Add("nats", events.NewNATSPublisher(nc, cfg.NATSSubject))
			defer nc.Drain()
		}
	}

	store := repository.NewMemorySessionStore()
	assigner := service.NewRandomRoleAssigner(cfg.RoleSeed)
	gameSvc := service.NewGameService(logger, store, assigner, revealSender, publisher, cfg.SessionTimeout)
	defer gameSvc.Shutdown()
	if cfg.StartLimitMax > 0 {
		if redisReady {
			gameSvc.WithStartLimiter(service.NewRedisStartRateLimiter(redisClient, cfg.StartLimitWindow, cfg.StartLimitMax))
		} else {
			gameSvc.WithStartLimiter(service.NewStartRateLimiter(cfg.StartLimitWindow, cfg.StartLimitMax))
		}
	}
	go gameSvc.RunJanitor(ctx, cfg.PruneInterval, cfg.SessionRetention)

	var jwtSvc *service.JWTService
	if cfg.JWTSecret != "" {
		jwtSvc = service.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAdapterTTL)
		if redisReady {
			jwtSvc.WithRevocations(service.NewRedisTokenRevocationStore(redisClient))
		} else {
			jwtSvc.WithRevocations(service.NewMemoryTokenRevocationStore())
		}
	} else {
		logger.Warn("jwt secret not configured, api is unauthenticated")
	}

	gameHandler := apihttp.NewGameHandler(logger, gameSvc)
	router := apihttp.NewRouter(logger, gameHandler, hub.ServeWS, jwtSvc)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.Duration("session_timeout", cfg.SessionTimeout),
		zap.Int("event_sinks", publisher.Len()),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
