package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
)

// CatalogRepository интерфейс каталога услуг и филиалов
type CatalogRepository interface {
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	GetBranch(ctx context.Context, id int64) (*domain.Branch, error)
}

// ArrangementRepository интерфейс репозитория ресурсов
type ArrangementRepository interface {
	ListActive(ctx context.Context, serviceID, branchID int64) ([]*domain.Arrangement, error)
}

// TimeSlotRepository интерфейс леджера занятых слотов
type TimeSlotRepository interface {
	OccupiedIntervals(ctx context.Context, arrangementIDs []int64, dateFrom, dateTo time.Time) ([]domain.OccupiedInterval, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
