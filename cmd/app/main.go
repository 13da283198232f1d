package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/confbooking/config"
	"github.com/Domenick1991/confbooking/internal/bootstrap"
	"github.com/Domenick1991/confbooking/internal/cache"
	"github.com/Domenick1991/confbooking/internal/kafka"
	"github.com/Domenick1991/confbooking/internal/metrics"
	"github.com/Domenick1991/confbooking/internal/repository"
	"github.com/Domenick1991/confbooking/internal/scheduler"
	"github.com/Domenick1991/confbooking/internal/service/booking"
	"github.com/Domenick1991/confbooking/internal/service/conference"
	"github.com/Domenick1991/confbooking/internal/service/users"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.ConferencesCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	conferenceRepo := repository.NewConferenceRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	waitlistRepo := repository.NewWaitlistRepository(pool)

	conferenceService := conference.NewConferenceService(conferenceRepo, redisCache)
	userService := users.NewUserService(userRepo)
	bookingService := booking.NewBookingService(
		repository.NewTxRunner(pool),
		conferenceRepo,
		userRepo,
		bookingRepo,
		waitlistRepo,
		scheduler.NewTimer(),
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.OfferWindowSeconds)*time.Second,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithMetrics(metrics.New()),
	)

	if err := bootstrap.Run(ctx, cfg, conferenceService, userService, bookingService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
