package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/metrics"
)

// Типы событий жизненного цикла бронирования
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// BookingEvent событие жизненного цикла бронирования
type BookingEvent struct {
	Type          string    `json:"type"`
	BookingID     int64     `json:"bookingId"`
	BookingNumber string    `json:"bookingNumber"`
	UserID        int64     `json:"userId"`
	BranchID      int64     `json:"branchId"`
	ServiceID     int64     `json:"serviceId"`
	ArrangementID int64     `json:"arrangementId"`
	SlotDate      string    `json:"slotDate"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	Status        string    `json:"status"`
	TotalPrice    float64   `json:"totalPrice"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Publisher публикует события бронирований в Kafka
// Публикация best-effort: бронирование уже зафиксировано в БД, поэтому
// ошибка брокера логируется и отражается в метриках, но не роняет запрос
type Publisher struct {
	writer  *kafka.Writer
	metrics *metrics.Metrics
	logger  Logger
}

// NewPublisher создает новый publisher событий бронирований
func NewPublisher(brokers []string, topic string, m *metrics.Metrics, logger Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // порядок событий одного бронирования
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
	}

	return &Publisher{
		writer:  writer,
		metrics: m,
		logger:  logger,
	}
}

// PublishBookingCreated публикует событие создания бронирования
func (p *Publisher) PublishBookingCreated(ctx context.Context, booking *domain.Booking) {
	p.publish(ctx, EventBookingCreated, booking)
}

// PublishBookingCancelled публикует событие отмены бронирования
func (p *Publisher) PublishBookingCancelled(ctx context.Context, booking *domain.Booking) {
	p.publish(ctx, EventBookingCancelled, booking)
}

func (p *Publisher) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	event := BookingEvent{
		Type:          eventType,
		BookingID:     booking.ID,
		BookingNumber: booking.BookingNumber,
		UserID:        booking.UserID,
		BranchID:      booking.BranchID,
		ServiceID:     booking.ServiceID,
		ArrangementID: booking.ArrangementID,
		SlotDate:      booking.SlotDate.Format(domain.DateFormat),
		StartTime:     booking.StartTime.String(),
		EndTime:       booking.EndTime.String(),
		Status:        string(booking.Status),
		TotalPrice:    booking.TotalPrice,
		OccurredAt:    time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("events: failed to marshal %s for booking=%d: %v", eventType, booking.ID, err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(booking.ID, 10)),
		Value: payload,
	})
	if p.metrics != nil {
		p.metrics.ObserveEventPublished(eventType, err)
	}
	if err != nil {
		p.logger.Error("events: failed to publish %s for booking=%d: %v", eventType, booking.ID, err)
		return
	}

	p.logger.Info("events: published %s for booking=%d", eventType, booking.ID)
}

// Close закрывает writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}
