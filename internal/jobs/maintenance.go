package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	CompletePastBookings(ctx context.Context, now time.Time) (int64, error)
}

// VoucherRepository интерфейс репозитория ваучеров
type VoucherRepository interface {
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// GiftCardRepository интерфейс репозитория подарочных карт
type GiftCardRepository interface {
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Maintenance периодическое обслуживание данных:
// завершает прошедшие бронирования и просрочивает ваучеры и карты.
// Слоты не трогает - леджер занятости меняют только аллокатор и отмена
type Maintenance struct {
	bookingRepo  BookingRepository
	voucherRepo  VoucherRepository
	giftCardRepo GiftCardRepository
	logger       Logger
	cron         *cron.Cron
}

// NewMaintenance создает новый экземпляр обслуживания
func NewMaintenance(
	bookingRepo BookingRepository,
	voucherRepo VoucherRepository,
	giftCardRepo GiftCardRepository,
	logger Logger,
) *Maintenance {
	return &Maintenance{
		bookingRepo:  bookingRepo,
		voucherRepo:  voucherRepo,
		giftCardRepo: giftCardRepo,
		logger:       logger,
		cron:         cron.New(),
	}
}

// Start запускает обслуживание по cron-расписанию, например "*/10 * * * *"
func (m *Maintenance) Start(schedule string) error {
	if _, err := m.cron.AddFunc(schedule, m.Run); err != nil {
		return err
	}
	m.cron.Start()
	m.logger.Info("maintenance: started with schedule %q", schedule)
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущего прогона
func (m *Maintenance) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.logger.Info("maintenance: stopped")
}

// Run выполняет один прогон обслуживания
func (m *Maintenance) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now()

	completed, err := m.bookingRepo.CompletePastBookings(ctx, now)
	if err != nil {
		m.logger.Error("maintenance: complete past bookings failed: %v", err)
	} else if completed > 0 {
		m.logger.Info("maintenance: completed %d past bookings", completed)
	}

	expiredVouchers, err := m.voucherRepo.ExpireStale(ctx, now)
	if err != nil {
		m.logger.Error("maintenance: expire vouchers failed: %v", err)
	} else if expiredVouchers > 0 {
		m.logger.Info("maintenance: expired %d vouchers", expiredVouchers)
	}

	expiredCards, err := m.giftCardRepo.ExpireStale(ctx, now)
	if err != nil {
		m.logger.Error("maintenance: expire gift cards failed: %v", err)
	} else if expiredCards > 0 {
		m.logger.Info("maintenance: expired %d gift cards", expiredCards)
	}
}
