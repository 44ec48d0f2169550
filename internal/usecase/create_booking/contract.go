package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/internal/service/discounts"
)

// CatalogRepository интерфейс каталога услуг и филиалов
type CatalogRepository interface {
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	GetBranch(ctx context.Context, id int64) (*domain.Branch, error)
	GetAddons(ctx context.Context, serviceID int64, ids []int64) ([]*domain.ServiceAddon, error)
}

// ArrangementRepository интерфейс репозитория ресурсов
type ArrangementRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Arrangement, error)
	ListPoolForUpdate(ctx context.Context, member *domain.Arrangement) ([]*domain.Arrangement, error)
}

// TimeSlotRepository интерфейс леджера занятых слотов
type TimeSlotRepository interface {
	OccupiedIntervals(ctx context.Context, arrangementIDs []int64, dateFrom, dateTo time.Time) ([]domain.OccupiedInterval, error)
	Reserve(ctx context.Context, slot *domain.TimeSlot) (*domain.TimeSlot, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// DiscountComposer интерфейс композитора скидок
// Validate блокирует строки инструментов, Commit применяет план -
// оба вызова обязаны происходить в транзакции бронирования
type DiscountComposer interface {
	Validate(ctx context.Context, input *discounts.Input) (*discounts.Plan, error)
	Commit(ctx context.Context, bookingID int64, userID int64, plan *discounts.Plan) error
}

// EventPublisher интерфейс публикации событий жизненного цикла бронирований
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, booking *domain.Booking)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
