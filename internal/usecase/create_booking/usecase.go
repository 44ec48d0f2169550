package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	arrangementRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/arrangement"
	catalogRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/catalog"
	timeslotRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/timeslot"
	"github.com/m04kA/SPA-BookingService/internal/service/discounts"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// UseCase use case создания бронирования
// Аллокатор: привязывает свободный ресурс пула к интервалу и фиксирует
// бронирование, слот и скидки одной сериализуемой транзакцией
type UseCase struct {
	catalogRepo     CatalogRepository
	arrangementRepo ArrangementRepository
	timeSlotRepo    TimeSlotRepository
	bookingRepo     BookingRepository
	discounts       DiscountComposer
	events          EventPublisher
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalogRepo CatalogRepository,
	arrangementRepo ArrangementRepository,
	timeSlotRepo TimeSlotRepository,
	bookingRepo BookingRepository,
	discountComposer DiscountComposer,
	events EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		catalogRepo:     catalogRepo,
		arrangementRepo: arrangementRepo,
		timeSlotRepo:    timeSlotRepo,
		bookingRepo:     bookingRepo,
		discounts:       discountComposer,
		events:          events,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания бронирования
// Использует сериализуемую транзакцию для предотвращения гонки данных:
// два конкурентных запроса на последний свободный ресурс пула получают
// ровно одного победителя, второй - ErrSlotConflict
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, branch=%d, service=%d, arrangement=%d, date=%s, time=%s",
		req.UserID, req.BranchID, req.ServiceID, req.ArrangementID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Дата и время должны попадать в окно бронирования
	now := uc.timeProvider.Now()
	if err := validateDate(req.Date, now, domain.MaxAdvanceBookingDays); err != nil {
		uc.logger.Warn("CreateBooking: date %s rejected: %v", req.Date.Format(domain.DateFormat), err)
		return nil, err
	}
	if err := validateBookingTime(req.Date, req.StartTime, now, domain.MinBookingNoticeMinutes); err != nil {
		uc.logger.Warn("CreateBooking: start time %s rejected: %v", req.StartTime, err)
		return nil, err
	}

	// 3. Получаем услугу
	service, err := uc.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("CreateBooking: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	// 4. Получаем филиал
	branch, err := uc.catalogRepo.GetBranch(ctx, req.BranchID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrBranchNotFound) {
			uc.logger.Warn("CreateBooking: branch id=%d not found", req.BranchID)
			return nil, ErrBranchNotFound
		}
		uc.logger.Error("CreateBooking: failed to get branch id=%d: %v", req.BranchID, err)
		return nil, fmt.Errorf("%w: failed to get branch: %v", ErrInternal, err)
	}
	if !branch.IsActive {
		uc.logger.Warn("CreateBooking: branch id=%d is inactive", req.BranchID)
		return nil, ErrBranchNotFound
	}

	// 5. Получаем дополнения к услуге
	addons, err := uc.catalogRepo.GetAddons(ctx, req.ServiceID, req.AddonIDs)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrAddonNotFound) {
			uc.logger.Warn("CreateBooking: some addons not found for service=%d: %v", req.ServiceID, req.AddonIDs)
			return nil, ErrAddonNotFound
		}
		uc.logger.Error("CreateBooking: failed to get addons: %v", err)
		return nil, fmt.Errorf("%w: failed to get addons: %v", ErrInternal, err)
	}

	// 6. Получаем выбранный ресурс и проверяем его принадлежность
	selected, err := uc.arrangementRepo.GetByID(ctx, req.ArrangementID)
	if err != nil {
		if errors.Is(err, arrangementRepo.ErrArrangementNotFound) {
			uc.logger.Warn("CreateBooking: arrangement id=%d not found", req.ArrangementID)
			return nil, ErrInvalidArrangement
		}
		uc.logger.Error("CreateBooking: failed to get arrangement id=%d: %v", req.ArrangementID, err)
		return nil, fmt.Errorf("%w: failed to get arrangement: %v", ErrInternal, err)
	}
	if err := validateArrangement(selected, req); err != nil {
		uc.logger.Warn("CreateBooking: arrangement id=%d rejected: %v", req.ArrangementID, err)
		return nil, err
	}

	// 7. Считаем время окончания: услуга + дополнения + уборка
	endTime, fallback := computeEndTime(req.StartTime, service, addons, selected)
	if fallback {
		uc.logger.Warn("CreateBooking: bad total duration for service=%d arrangement=%d, end set to start=%s",
			req.ServiceID, req.ArrangementID, req.StartTime)
	}

	// 8. Интервал должен умещаться в рабочие часы филиала
	if err := validateWorkingHours(branch, req.StartTime, endTime); err != nil {
		uc.logger.Warn("CreateBooking: interval %s-%s outside working hours %s-%s",
			req.StartTime, endTime, branch.OpenTime, branch.CloseTime)
		return nil, err
	}

	var result *domain.Booking

	// 9. Критическая секция: привязка ресурса, бронирование, слот и скидки
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 9.1. Блокируем пул выбранного ресурса (FOR UPDATE)
		pool, err := uc.arrangementRepo.ListPoolForUpdate(txCtx, selected)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to lock pool: %v", err)
			return fmt.Errorf("%w: failed to lock pool: %v", ErrInternal, err)
		}

		// 9.2. Читаем занятость пула на дату
		poolIDs := make([]int64, 0, len(pool))
		for _, member := range pool {
			poolIDs = append(poolIDs, member.ID)
		}

		occupied, err := uc.timeSlotRepo.OccupiedIntervals(txCtx, poolIDs, req.Date, req.Date)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to read occupancy: %v", err)
			return fmt.Errorf("%w: failed to read occupancy: %v", ErrInternal, err)
		}

		// 9.3. Привязываем первый свободный ресурс пула
		chosen := bindFreeMember(pool, occupied, req.StartTime, endTime)
		if chosen == nil {
			uc.logger.Warn("CreateBooking: no free arrangement in pool of %d for %s %s-%s",
				len(pool), req.Date.Format(domain.DateFormat), req.StartTime, endTime)
			return ErrSlotConflict
		}

		// 9.4. Стоимость: эффективная цена ресурса + дополнения
		subtotal := chosen.EffectivePrice()
		for _, addon := range addons {
			subtotal += addon.Price
		}

		// 9.5. Валидируем скидки (блокирует строки ваучера и карт)
		plan, err := uc.discounts.Validate(txCtx, &discounts.Input{
			UserID:       req.UserID,
			Subtotal:     subtotal,
			Scope:        domain.ScopeServices,
			VoucherCodes: req.VoucherCodes,
			GiftCardIDs:  req.GiftCardIDs,
		})
		if err != nil {
			return mapDiscountError(err)
		}

		totalPrice := subtotal - plan.VoucherDiscount - plan.GiftCardTotal
		if totalPrice < 0 {
			totalPrice = 0
		}

		// 9.6. Создаем бронирование с денормализацией данных
		booking := &domain.Booking{
			BookingNumber:  uuid.NewString(),
			UserID:         req.UserID,
			BranchID:       req.BranchID,
			ServiceID:      req.ServiceID,
			ArrangementID:  chosen.ID,
			SlotDate:       req.Date,
			StartTime:      req.StartTime,
			EndTime:        endTime,
			Status:         domain.StatusRequested,
			Subtotal:       subtotal,
			DiscountAmount: plan.VoucherDiscount,
			GiftCardAmount: plan.GiftCardTotal,
			TotalPrice:     totalPrice,
			ServiceName:    service.Name,
			Notes:          req.Notes,
			// Денормализация данных ресурса
			ArrangementType: chosen.ArrangementType,
			RoomNumber:      chosen.RoomNumber,
		}
		if plan.Voucher != nil {
			booking.VoucherID = &plan.Voucher.ID
		}
		for _, addon := range addons {
			booking.Addons = append(booking.Addons, domain.BookingAddon{
				AddonID:         addon.ID,
				Name:            addon.Name,
				Price:           addon.Price,
				DurationMinutes: addon.DurationMinutes,
			})
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		// 9.7. Резервируем слот; exclusion constraint в БД - страховка
		// на случай вставки мимо блокировки пула
		_, err = uc.timeSlotRepo.Reserve(txCtx, &domain.TimeSlot{
			ArrangementID: chosen.ID,
			BookingID:     created.ID,
			SlotDate:      req.Date,
			StartTime:     req.StartTime,
			EndTime:       endTime,
		})
		if err != nil {
			if errors.Is(err, timeslotRepo.ErrSlotConflict) {
				uc.logger.Warn("CreateBooking: lost reservation race for arrangement=%d", chosen.ID)
				return ErrSlotConflict
			}
			uc.logger.Error("CreateBooking: failed to reserve slot: %v", err)
			return fmt.Errorf("%w: failed to reserve slot: %v", ErrInternal, err)
		}

		// 9.8. Применяем скидки с идентификатором созданного бронирования
		if err := uc.discounts.Commit(txCtx, created.ID, req.UserID, plan); err != nil {
			uc.logger.Error("CreateBooking: failed to commit discounts: %v", err)
			return fmt.Errorf("%w: failed to commit discounts: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: created booking id=%d number=%s arrangement=%d total=%.2f",
		result.ID, result.BookingNumber, result.ArrangementID, result.TotalPrice)

	// 10. Публикуем событие после фиксации транзакции
	uc.events.PublishBookingCreated(ctx, result)

	return toResponse(result), nil
}

// bindFreeMember возвращает первого члена пула (в порядке ID), чьи занятые
// интервалы не пересекаются с [start, end). Пул уже заблокирован FOR UPDATE
func bindFreeMember(pool []*domain.Arrangement, occupied []domain.OccupiedInterval, start, end types.TimeString) *domain.Arrangement {
	for _, member := range pool {
		free := true
		for _, interval := range occupied {
			if interval.ArrangementID == member.ID && interval.Overlaps(start, end) {
				free = false
				break
			}
		}
		if free {
			return member
		}
	}
	return nil
}

// mapDiscountError транслирует ошибки композитора в сентинелы usecase,
// сохраняя текст с инструментом и причиной отказа
func mapDiscountError(err error) error {
	switch {
	case errors.Is(err, discounts.ErrVoucherNotFound):
		return ErrVoucherNotFound
	case errors.Is(err, discounts.ErrGiftCardNotFound):
		return ErrGiftCardNotFound
	case errors.Is(err, discounts.ErrDiscountRejected):
		return fmt.Errorf("%w: %v", ErrDiscountRejected, err)
	default:
		return fmt.Errorf("%w: discount validation: %v", ErrInternal, err)
	}
}
