package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/skyticket/config"
	"github.com/Domenick1991/skyticket/internal/email"
	"github.com/Domenick1991/skyticket/internal/kafka"
	"github.com/Domenick1991/skyticket/internal/repository"
	"github.com/Domenick1991/skyticket/internal/service/booking"
	"github.com/Domenick1991/skyticket/internal/service/flights"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
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

	flightRepo := repository.NewFlightRepository(pool)
	inventoryRepo := repository.NewInventoryRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	flightService := flights.NewFlightService(flightRepo, inventoryRepo, nil)
	bookingService := booking.NewBookingService(
		orderRepo,
		flightRepo,
		producer,
		cfg.Kafka.OrderEventsTopic,
		time.Duration(cfg.Booking.PaymentWindowMinutes)*time.Minute,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.OrderEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			return emailSender.Send(ctx, event)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			expired, err := bookingService.ExpireReservations(ctx)
			if err != nil {
				log.Printf("expire reservations error: %v", err)
				continue
			}
			if len(expired) > 0 {
				log.Printf("expired %d reservations", len(expired))
			}

			finished, err := flightService.FinishDeparted(ctx)
			if err != nil {
				log.Printf("finish departed flights error: %v", err)
				continue
			}
			if finished > 0 {
				log.Printf("finished %d departed flights", finished)
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
