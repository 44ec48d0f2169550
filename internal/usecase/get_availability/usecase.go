package get_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	catalogRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/catalog"
)

// UseCase use case расчета доступности услуги на филиале
// Сетка почасовая и служит только для отображения - точную проверку
// пересечений делает аллокатор при создании бронирования
type UseCase struct {
	catalogRepo     CatalogRepository
	arrangementRepo ArrangementRepository
	timeSlotRepo    TimeSlotRepository
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalogRepo CatalogRepository,
	arrangementRepo ArrangementRepository,
	timeSlotRepo TimeSlotRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		catalogRepo:     catalogRepo,
		arrangementRepo: arrangementRepo,
		timeSlotRepo:    timeSlotRepo,
		logger:          logger,
	}
}

// Execute выполняет use case расчета доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: branch=%d, service=%d, from=%s, to=%s",
		req.BranchID, req.ServiceID, req.DateFrom.Format(domain.DateFormat), req.DateTo.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем услугу
	service, err := uc.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailability: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailability: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("GetAvailability: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	// 3. Проверяем филиал
	branch, err := uc.catalogRepo.GetBranch(ctx, req.BranchID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrBranchNotFound) {
			uc.logger.Warn("GetAvailability: branch id=%d not found", req.BranchID)
			return nil, ErrBranchNotFound
		}
		uc.logger.Error("GetAvailability: failed to get branch id=%d: %v", req.BranchID, err)
		return nil, fmt.Errorf("%w: failed to get branch: %v", ErrInternal, err)
	}
	if !branch.IsActive {
		uc.logger.Warn("GetAvailability: branch id=%d is inactive", req.BranchID)
		return nil, ErrBranchNotFound
	}

	// 4. Получаем активные ресурсы услуги на филиале
	arrangements, err := uc.arrangementRepo.ListActive(ctx, req.ServiceID, req.BranchID)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to list arrangements: %v", err)
		return nil, fmt.Errorf("%w: failed to list arrangements: %v", ErrInternal, err)
	}

	// Нет ресурсов - пустой ответ, не ошибка
	if len(arrangements) == 0 {
		uc.logger.Info("GetAvailability: no active arrangements for service=%d branch=%d", req.ServiceID, req.BranchID)
		return &Response{
			Pools:        []Pool{},
			Availability: map[string]map[string]map[string]string{},
		}, nil
	}

	// 5. Группируем ресурсы в пулы по ключу (тип, базовая цена, цена со скидкой)
	poolMembers := make(map[string][]*domain.Arrangement)
	poolOrder := make([]string, 0)
	for _, arr := range arrangements {
		key := arr.Group().String()
		if _, ok := poolMembers[key]; !ok {
			poolOrder = append(poolOrder, key)
		}
		poolMembers[key] = append(poolMembers[key], arr)
	}

	// 6. Читаем занятые интервалы всех ресурсов за период
	arrangementIDs := make([]int64, 0, len(arrangements))
	for _, arr := range arrangements {
		arrangementIDs = append(arrangementIDs, arr.ID)
	}

	intervals, err := uc.timeSlotRepo.OccupiedIntervals(ctx, arrangementIDs, req.DateFrom, req.DateTo)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to read occupied intervals: %v", err)
		return nil, fmt.Errorf("%w: failed to read occupied intervals: %v", ErrInternal, err)
	}

	// 7. Раскладываем интервалы в почасовые корзины
	blocked, err := blockedBuckets(intervals)
	if err != nil {
		uc.logger.Error("GetAvailability: corrupt interval data: %v", err)
		return nil, fmt.Errorf("%w: corrupt interval data: %v", ErrInternal, err)
	}

	// 8. Границы сетки из рабочих часов филиала
	firstBucket, lastBucket, err := bucketRange(branch)
	if err != nil {
		uc.logger.Error("GetAvailability: invalid branch hours for branch=%d: %v", req.BranchID, err)
		return nil, fmt.Errorf("%w: invalid branch hours: %v", ErrInternal, err)
	}

	dates := datesInRange(req.DateFrom, req.DateTo)

	// 9. OR-слияние по членам каждого пула
	resp := &Response{
		Pools:        make([]Pool, 0, len(poolOrder)),
		Availability: make(map[string]map[string]map[string]string, len(poolOrder)),
	}

	for _, key := range poolOrder {
		members := poolMembers[key]
		first := members[0]

		resp.Pools = append(resp.Pools, Pool{
			Key:             key,
			ArrangementType: first.ArrangementType,
			RoomNumber:      first.RoomNumber,
			BasePrice:       first.BasePrice,
			DiscountPrice:   first.DiscountPrice,
			MemberCount:     len(members),
		})
		resp.Availability[key] = mergePool(members, blocked, dates, firstBucket, lastBucket)
	}

	uc.logger.Info("GetAvailability: %d pools, %d dates for service=%d branch=%d",
		len(resp.Pools), len(dates), req.ServiceID, req.BranchID)

	return resp, nil
}
