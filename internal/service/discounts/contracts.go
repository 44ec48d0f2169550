package discounts

import (
	"context"
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
)

// VoucherRepository интерфейс репозитория ваучеров
type VoucherRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Voucher, error)
	CountUserRedemptions(ctx context.Context, voucherID, userID int64) (int, error)
	Redeem(ctx context.Context, voucherID, userID, bookingID int64, discountAmount float64) error
}

// GiftCardRepository интерфейс репозитория подарочных карт
type GiftCardRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.GiftCard, error)
	Debit(ctx context.Context, card *domain.GiftCard, bookingID int64, amount float64, claim bool) error
}

// BookingRepository интерфейс репозитория бронирований
// Композитору нужна только проверка истории для first_time_only ваучеров
type BookingRepository interface {
	HasCompletedBookings(ctx context.Context, userID int64) (bool, error)
}

// TimeProvider интерфейс для получения текущего времени
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
