package booking

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/Domenick1991/skyticket/internal/kafka"
	"github.com/Domenick1991/skyticket/internal/repository"
	"github.com/google/uuid"
)

// BookingUseCase is the single entry point mutating seat inventory and
// the order ledger together.
type BookingUseCase interface {
	CreateOrder(ctx context.Context, user *domain.User, flightID, cabinID int64) (*domain.Order, error)
	GetOrder(ctx context.Context, user *domain.User, orderNo string) (*domain.Order, error)
	ListOrders(ctx context.Context, user *domain.User) ([]domain.Order, error)
	PayOrder(ctx context.Context, user *domain.User, orderNo string) (*domain.Order, error)
	RequestRefund(ctx context.Context, user *domain.User, orderNo, reason string) (*domain.RefundRecord, error)
	ExpireReservations(ctx context.Context) ([]domain.Order, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	orders             repository.OrderRepository
	flights            repository.FlightRepository
	producer           Producer
	orderTopic         string
	notificationsTopic string
	paymentWindow      time.Duration
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithNow overrides the clock, used by tests.
func WithNow(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	orders repository.OrderRepository,
	flights repository.FlightRepository,
	producer Producer,
	orderTopic string,
	paymentWindow time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		orders:        orders,
		flights:       flights,
		producer:      producer,
		orderTopic:    orderTopic,
		paymentWindow: paymentWindow,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// newOrderNo is a 20-character hex order number.
func newOrderNo() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

// CreateOrder reserves exactly one seat in the chosen cabin and opens a
// RESERVED order against it. The seat decrement and the order insert
// commit atomically in the ledger; on any failure nothing is written.
func (s *BookingService) CreateOrder(ctx context.Context, user *domain.User, flightID, cabinID int64) (*domain.Order, error) {
	if user.IsStaff() {
		return nil, domain.ErrStaffCannotBook
	}

	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	if !flight.Bookable(s.now()) {
		return nil, fmt.Errorf("flight %s: %w", flight.FlightNo, domain.ErrFlightNotOnSale)
	}

	order := &domain.Order{
		OrderNo:  newOrderNo(),
		UserID:   user.ID,
		FlightID: flightID,
		CabinID:  cabinID,
	}
	if err := s.orders.CreateReserved(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, "order_created", order, user.Profile.Email)
	return order, nil
}

func (s *BookingService) GetOrder(ctx context.Context, user *domain.User, orderNo string) (*domain.Order, error) {
	order, err := s.orders.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if order.UserID != user.ID && !user.IsStaff() {
		return nil, fmt.Errorf("order %s: %w", orderNo, domain.ErrNotFound)
	}
	return s.reconcile(ctx, order, user.Profile.Email)
}

// ListOrders returns the caller's orders newest first. Reservation
// expiry is applied to every stale order before it is returned, so the
// displayed state is never an unpaid reservation past its window.
func (s *BookingService) ListOrders(ctx context.Context, user *domain.User) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].Status != domain.OrderStatusReserved {
			continue
		}
		refreshed, err := s.reconcile(ctx, &orders[i], user.Profile.Email)
		if err != nil {
			return nil, err
		}
		orders[i] = *refreshed
	}
	return orders, nil
}

// reconcile lazily expires a stale reservation; safe to call any number
// of times.
func (s *BookingService) reconcile(ctx context.Context, order *domain.Order, email string) (*domain.Order, error) {
	if !order.Expired(s.now(), s.paymentWindow) {
		return order, nil
	}
	refreshed, expired, err := s.orders.Reconcile(ctx, order.OrderNo, s.now(), s.paymentWindow)
	if err != nil {
		return nil, err
	}
	if expired {
		s.publish(ctx, "order_expired", refreshed, email)
	}
	return refreshed, nil
}

// PayOrder confirms payment of a reservation. Payment is simulated as an
// instantaneous confirmation; the ledger re-checks expiry inside the
// same transaction, so a reservation past its window is cancelled
// instead and the caller sees ErrOrderAlreadyCancelled. Paying an
// already-paid order succeeds without any state change.
func (s *BookingService) PayOrder(ctx context.Context, user *domain.User, orderNo string) (*domain.Order, error) {
	order, err := s.orders.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if order.UserID != user.ID {
		return nil, fmt.Errorf("order %s: %w", orderNo, domain.ErrNotFound)
	}

	alreadyPaid := order.Status == domain.OrderStatusPaid

	paid, err := s.orders.MarkPaid(ctx, orderNo, s.now(), s.paymentWindow)
	if err != nil {
		return nil, err
	}
	if !alreadyPaid {
		s.publish(ctx, "order_paid", paid, user.Profile.Email)
	}
	return paid, nil
}

// RequestRefund refunds a paid order. The fee comes from the refund
// policy: if the flight has already departed the whole operation aborts
// and nothing is written. Refunds are auto-approved; the record, the
// REFUNDED transition and the seat release commit atomically.
func (s *BookingService) RequestRefund(ctx context.Context, user *domain.User, orderNo, reason string) (*domain.RefundRecord, error) {
	order, err := s.orders.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if order.UserID != user.ID {
		return nil, fmt.Errorf("order %s: %w", orderNo, domain.ErrNotFound)
	}
	if order.Status != domain.OrderStatusPaid {
		return nil, fmt.Errorf("order %s in state %s: %w", orderNo, order.Status, domain.ErrInvalidState)
	}

	flight, err := s.flights.GetByID(ctx, order.FlightID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fee, refundAmount, err := domain.ComputeRefund(order, flight.DepartTime, now)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", orderNo, err)
	}

	approveTime := now
	record := &domain.RefundRecord{
		Reason:       reason,
		RefundFee:    fee,
		RefundAmount: refundAmount,
		Status:       domain.RefundStatusApproved,
		ApproveTime:  &approveTime,
	}

	refunded, err := s.orders.MarkRefunded(ctx, orderNo, record, now)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "order_refunded", refunded, user.Profile.Email)
	return record, nil
}

// ExpireReservations is the active sweep counterpart of reconcile: it
// cancels every reservation past the payment window and releases each
// seat exactly once.
func (s *BookingService) ExpireReservations(ctx context.Context) ([]domain.Order, error) {
	now := s.now()
	expired, err := s.orders.ExpireReservedBefore(ctx, now.Add(-s.paymentWindow), now)
	if err != nil {
		return nil, err
	}
	for i := range expired {
		s.publish(ctx, "order_expired", &expired[i], "")
	}
	return expired, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, order *domain.Order, email string) {
	if s.producer == nil || s.orderTopic == "" {
		return
	}
	event := kafka.OrderEvent{
		Type:        eventType,
		OrderNo:     order.OrderNo,
		UserID:      order.UserID,
		FlightID:    order.FlightID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount.String(),
		Email:       email,
		OccurredAt:  s.now(),
	}
	if err := s.producer.Publish(ctx, s.orderTopic, order.OrderNo, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for order %s: %v", eventType, order.OrderNo, err)
	}
	if s.notificationsTopic != "" && email != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, order.OrderNo, event); err != nil {
			log.Printf("WARNING: failed to publish notification for order %s: %v", order.OrderNo, err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
