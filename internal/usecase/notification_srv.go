package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/pkg/mailer"
	"seat-reservation/pkg/receipt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const receiptSubject = "Your Seat Reservation (Receipt Attached)"

type NotificationService interface {
	// Send renders and delivers the receipt of a committed order. It never
	// fails the caller; the result only says whether delivery went through.
	Send(ctx context.Context, order *entity.Order) bool
	// Resend re-reads the order and sends its receipt again.
	Resend(ctx context.Context, orderID string) (bool, error)
}

type notificationService struct {
	reservations ReservationService
	renderer     receipt.Renderer
	notifier     mailer.Notifier
	showTime     string
	timeout      time.Duration
	log          *zap.Logger
}

func NewNotificationService(
	reservations ReservationService,
	renderer receipt.Renderer,
	notifier mailer.Notifier,
	showTime string,
	timeout time.Duration,
	log *zap.Logger,
) NotificationService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &notificationService{
		reservations: reservations,
		renderer:     renderer,
		notifier:     notifier,
		showTime:     showTime,
		timeout:      timeout,
		log:          log.With(zap.String("service", "notification")),
	}
}

func (s *notificationService) Send(ctx context.Context, order *entity.Order) bool {
	// The order is already committed; a client hanging up must not cut delivery short.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "notification.Send",
		trace.WithAttributes(attribute.String("order_id", order.OrderID)),
	)
	defer span.End()

	if err := s.deliver(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Error("Receipt delivery failed",
			zap.Error(err),
			zap.String("order_id", order.OrderID),
			zap.String("contact_email", order.ContactEmail),
		)
		return false
	}

	s.log.Info("Receipt delivered",
		zap.String("order_id", order.OrderID),
		zap.String("contact_email", order.ContactEmail),
	)
	return true
}

func (s *notificationService) Resend(ctx context.Context, orderID string) (bool, error) {
	ctx, span := tracer.Start(ctx, "notification.Resend")
	defer span.End()

	order, err := s.reservations.Lookup(ctx, orderID)
	if err != nil {
		return false, err
	}
	return s.Send(ctx, order), nil
}

func (s *notificationService) deliver(ctx context.Context, order *entity.Order) error {
	guests := make([]receipt.Guest, len(order.Guests))
	for i, g := range order.Guests {
		guests[i] = receipt.Guest{SeatID: g.SeatID, Name: g.Name}
	}

	artifact, err := s.renderer.Render(ctx, receipt.Receipt{
		OrderID:    order.OrderID,
		Email:      order.ContactEmail,
		Seats:      order.Seats,
		Guests:     guests,
		ShowTime:   s.showTime,
		ReservedAt: order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}

	err = s.notifier.Notify(ctx, mailer.Message{
		To:      order.ContactEmail,
		Subject: receiptSubject,
		Body:    s.messageBody(order),
		Attachments: []mailer.Attachment{{
			Filename:    artifact.Filename,
			ContentType: artifact.ContentType,
			Body:        artifact.Body,
		}},
	})
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

func (s *notificationService) messageBody(order *entity.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thanks! Your seats are: %s\n", strings.Join(order.Seats, ", "))
	b.WriteString("Guests:\n")
	if len(order.Guests) == 0 {
		b.WriteString("(No guest names provided)\n")
	}
	for i, g := range order.Guests {
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, g.Name, g.SeatID)
	}
	b.WriteString("All tickets are free.\n")
	fmt.Fprintf(&b, "Order ID: %s\n", order.OrderID)
	fmt.Fprintf(&b, "Show: %s\n", s.showTime)
	return b.String()
}
