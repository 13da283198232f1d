package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/confbooking/config"
	"github.com/Domenick1991/confbooking/internal/cache"
	"github.com/Domenick1991/confbooking/internal/email"
	"github.com/Domenick1991/confbooking/internal/kafka"
	"github.com/Domenick1991/confbooking/internal/repository"
	"github.com/Domenick1991/confbooking/internal/scheduler"
	"github.com/Domenick1991/confbooking/internal/service/booking"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.ConferencesCacheTTL)*time.Second)

	bookingService := booking.NewBookingService(
		repository.NewTxRunner(pool),
		repository.NewConferenceRepository(pool),
		repository.NewUserRepository(pool),
		repository.NewBookingRepository(pool),
		repository.NewWaitlistRepository(pool),
		scheduler.NewTimer(),
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.OfferWindowSeconds)*time.Second,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, emailSender.Send); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.OfferSweepSeconds) * time.Second)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			expired, err := bookingService.ExpireOverdueOffers(ctx)
			if err != nil {
				log.Printf("expire offers error: %v", err)
				continue
			}
			if expired > 0 {
				log.Printf("expired %d waitlist offers", expired)
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
