package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"photosession/internal/app"
	"photosession/internal/config"
	"photosession/internal/database"
	"photosession/internal/database/migrations"
	"photosession/internal/events"
	jwtsvc "photosession/internal/pkg/jwt"
	"photosession/internal/pkg/lock"
	"photosession/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.AppEnv})

	gormLevel := gormlogger.Warn
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
		gormLevel = gormlogger.Error
	}
	db, err := database.Connect(cfg.DatabaseURL, &gorm.Config{Logger: gormlogger.Default.LogMode(gormLevel)})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := migrations.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	locker, closeLocker := newLocker(ctx, cfg)
	defer closeLocker()

	publisher := newPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("close event publisher")
		}
	}()

	services := app.NewServices(db, locker, publisher)
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	r := app.NewRouter(ctx, services, j, app.RouterConfig{
		RateLimitPerMin: cfg.RateLimitPerMin,
		RequestTimeout:  cfg.RequestTimeout,
		CORSOrigins:     cfg.CORSOrigins(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.AppEnv).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}

func newLocker(ctx context.Context, cfg *config.Config) (lock.Locker, func()) {
	if !cfg.RedisEnabled {
		log.Info().Msg("using in-process locks")
		return lock.NewLocal(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("using redis locks")
	return lock.NewRedis(client, cfg.SlotLockTTL, cfg.SlotLockWait), func() { _ = client.Close() }
}

func newPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		return events.Nop{}
	}
	log.Info().Strs("brokers", cfg.Brokers()).Str("topic", cfg.KafkaTopicBookings).Msg("publishing events to kafka")
	return events.NewKafkaPublisher(cfg.Brokers(), cfg.KafkaTopicBookings)
}
