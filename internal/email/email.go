package email

import (
	"context"
	"log"

	"github.com/Domenick1991/skyticket/internal/kafka"
)

// Sender is the notification sink behind the worker. Delivery is a log
// line for now; the event carries everything a real transport needs.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.OrderEvent) error {
	log.Printf("notify %s: %s for order %s (flight %d, %s)", event.Email, event.Type, event.OrderNo, event.FlightID, event.TotalAmount)
	return nil
}
