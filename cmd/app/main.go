package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/skyticket/config"
	"github.com/Domenick1991/skyticket/internal/bootstrap"
	"github.com/Domenick1991/skyticket/internal/cache"
	"github.com/Domenick1991/skyticket/internal/kafka"
	"github.com/Domenick1991/skyticket/internal/repository"
	"github.com/Domenick1991/skyticket/internal/service/booking"
	"github.com/Domenick1991/skyticket/internal/service/flights"
	"github.com/Domenick1991/skyticket/internal/service/revenue"
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

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SearchCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	userRepo := repository.NewUserRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	inventoryRepo := repository.NewInventoryRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	revenueRepo := repository.NewRevenueRepository(pool)

	flightService := flights.NewFlightService(flightRepo, inventoryRepo, redisCache)
	bookingService := booking.NewBookingService(
		orderRepo,
		flightRepo,
		producer,
		cfg.Kafka.OrderEventsTopic,
		time.Duration(cfg.Booking.PaymentWindowMinutes)*time.Minute,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	revenueService := revenue.NewRevenueService(revenueRepo)

	router := bootstrap.NewRouter(userRepo, flightService, bookingService, revenueService)
	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
