package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/SPA-BookingService/internal/service/bookings/models"
)

// Service сервис для работы с существующими бронированиями:
// чтение, отмена и переходы статусов по платежным событиям.
// Создание бронирований живет в usecase create_booking
type Service struct {
	bookingRepo  BookingRepository
	timeSlotRepo TimeSlotRepository
	events       EventPublisher
	txManager    TransactionManager
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	timeSlotRepo TimeSlotRepository,
	events EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		timeSlotRepo: timeSlotRepo,
		events:       events,
		txManager:    txManager,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
// Пользователь может видеть только собственное бронирование
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if booking.UserID != userID {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, status=%v", req.UserID, req.Status)

	filter := domain.UserBookingsFilter{
		UserID:          req.UserID,
		IncludeInactive: req.IncludeInactive,
	}
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование пользователя и освобождает его слот
// Статус и слот меняются в одной транзакции - ёмкость освобождается
// атомарно с отменой, окно не может достаться двоим
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	var cancelled *domain.Booking

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		if booking.UserID != req.UserID {
			return ErrAccessDenied
		}

		if !booking.CanBeCancelled() {
			s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
			return ErrCannotCancel
		}

		if err := s.bookingRepo.Cancel(txCtx, bookingID, domain.StatusCancelledByUser, req.CancellationReason); err != nil {
			return fmt.Errorf("%w: Cancel - update status: %v", ErrInternal, err)
		}

		if err := s.timeSlotRepo.DeleteByBookingID(txCtx, bookingID); err != nil {
			return fmt.Errorf("%w: Cancel - release slot: %v", ErrInternal, err)
		}

		booking.Status = domain.StatusCancelledByUser
		cancelled = booking
		return nil
	})
	if err != nil {
		return err
	}

	s.events.PublishBookingCancelled(ctx, cancelled)
	s.logger.Info("Cancel: booking id=%d cancelled, slot released", bookingID)
	return nil
}

// MarkPaymentSucceeded обрабатывает платежный хук успешной оплаты
func (s *Service) MarkPaymentSucceeded(ctx context.Context, bookingID int64) error {
	return s.transition(ctx, bookingID, domain.StatusPaymentSuccess)
}

// MarkPaymentFailed обрабатывает платежный хук неуспешной оплаты
// Бронирование уходит в on_hold и перестает удерживать слот в выдаче
func (s *Service) MarkPaymentFailed(ctx context.Context, bookingID int64) error {
	return s.transition(ctx, bookingID, domain.StatusOnHold)
}

// Confirm переводит оплаченное бронирование в подтвержденное менеджером
func (s *Service) Confirm(ctx context.Context, bookingID int64) error {
	return s.transition(ctx, bookingID, domain.StatusConfirmed)
}

// transition выполняет переход статуса внутри транзакции
// Повторное чтение с блокировкой исключает гонки между хуками
func (s *Service) transition(ctx context.Context, bookingID int64, next domain.BookingStatus) error {
	s.logger.Info("transition: booking id=%d -> %s", bookingID, next)

	return s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: transition - repository error: %v", ErrInternal, err)
		}

		if !booking.CanTransitionTo(next) {
			s.logger.Warn("transition: illegal transition %s -> %s for booking id=%d", booking.Status, next, bookingID)
			return ErrInvalidStatusTransition
		}

		if err := s.bookingRepo.UpdateStatus(txCtx, bookingID, next); err != nil {
			return fmt.Errorf("%w: transition - update status: %v", ErrInternal, err)
		}

		// Уход в on_hold освобождает слот - бронирование больше не удерживает окно
		if next == domain.StatusOnHold {
			if err := s.timeSlotRepo.DeleteByBookingID(txCtx, bookingID); err != nil {
				return fmt.Errorf("%w: transition - release slot: %v", ErrInternal, err)
			}
		}

		return nil
	})
}
