package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.BranchID <= 0 {
		return fmt.Errorf("%w: branchID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.ArrangementID <= 0 {
		return fmt.Errorf("%w: arrangementID is required", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	for _, addonID := range req.AddonIDs {
		if addonID <= 0 {
			return fmt.Errorf("%w: addon id must be positive", ErrInvalidInput)
		}
	}

	for _, code := range req.VoucherCodes {
		if code == "" {
			return fmt.Errorf("%w: empty voucher code", ErrInvalidInput)
		}
	}

	if len(req.GiftCardIDs) > domain.MaxGiftCardsPerBooking {
		return fmt.Errorf("%w: too many gift cards", ErrInvalidInput)
	}
	for _, cardID := range req.GiftCardIDs {
		if cardID <= 0 {
			return fmt.Errorf("%w: gift card id must be positive", ErrInvalidInput)
		}
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateDate проверяет, что дата подходит для бронирования
func validateDate(bookingDate time.Time, now time.Time, advanceBookingDays int) error {
	// Дата в прошлом недопустима
	if isDateInPast(bookingDate, now) {
		return ErrInvalidDate
	}

	maxDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, advanceBookingDays)

	bookingDateOnly := time.Date(bookingDate.Year(), bookingDate.Month(), bookingDate.Day(), 0, 0, 0, 0, bookingDate.Location())

	if bookingDateOnly.After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceBookingDays)
	}

	return nil
}

// validateBookingTime проверяет, что бронирование на сегодня не нарушает
// минимальный интервал до начала
func validateBookingTime(
	bookingDate time.Time,
	startTime types.TimeString,
	now time.Time,
	minBookingNoticeMinutes int,
) error {
	// Для будущих дат проверка не нужна
	if !isSameDay(bookingDate, now) {
		return nil
	}

	currentTime := types.NewTimeString(now)
	minAllowedTime, err := currentTime.AddMinutes(minBookingNoticeMinutes)
	if err != nil {
		return fmt.Errorf("%w: failed to calculate min allowed time: %v", ErrInternal, err)
	}

	if startTime.IsBefore(minAllowedTime) {
		return fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooLateToBook, minBookingNoticeMinutes)
	}

	return nil
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата раньше сегодняшнего дня
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}

// validateArrangement проверяет, что выбранный ресурс активен
// и принадлежит запрошенной услуге и филиалу
func validateArrangement(arr *domain.Arrangement, req *Request) error {
	if !arr.IsActive {
		return ErrInvalidArrangement
	}
	if arr.ServiceID != req.ServiceID || arr.BranchID != req.BranchID {
		return ErrInvalidArrangement
	}
	return nil
}

// validateWorkingHours проверяет, что интервал внутри рабочих часов филиала
func validateWorkingHours(branch *domain.Branch, start, end types.TimeString) error {
	if start.IsBefore(branch.OpenTime) {
		return ErrOutsideWorkingHours
	}
	if end.IsAfter(branch.CloseTime) {
		return ErrOutsideWorkingHours
	}
	return nil
}
