package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SPA-BookingService/internal/api/handlers"
	"github.com/m04kA/SPA-BookingService/internal/api/middleware"
	createBooking "github.com/m04kA/SPA-BookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidDateTime     = "некорректная дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgDateInPast          = "дата бронирования уже прошла"
	msgDateTooFar          = "дата бронирования слишком далеко в будущем"
	msgTooLateToBook       = "слишком поздно для бронирования на это время"
	msgSlotConflict        = "выбранное время уже занято"
	msgServiceNotFound     = "услуга не найдена"
	msgBranchNotFound      = "филиал не найден"
	msgAddonNotFound       = "дополнение к услуге не найдено"
	msgInvalidArrangement  = "выбранный вариант размещения недоступен"
	msgOutsideWorkingHours = "время выходит за рабочие часы филиала"
	msgVoucherNotFound     = "ваучер не найден"
	msgGiftCardNotFound    = "подарочная карта не найдена"
	msgDiscountRejected    = "скидка не может быть применена"
	msgUnauthorized        = "не указан идентификатор пользователя"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse date/time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /bookings - Date in the past: user_id=%d, date=%s", userID, req.Date)
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, createBooking.ErrDateTooFarInFuture):
			h.logger.Warn("POST /bookings - Date too far in the future: user_id=%d, date=%s", userID, req.Date)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			h.logger.Warn("POST /bookings - Too late to book: user_id=%d, date=%s, time=%s", userID, req.Date, req.StartTime)
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrInvalidArrangement):
			h.logger.Warn("POST /bookings - Invalid arrangement: user_id=%d, arrangement_id=%d", userID, req.ArrangementID)
			handlers.RespondBadRequest(w, msgInvalidArrangement)

		case errors.Is(err, createBooking.ErrOutsideWorkingHours):
			h.logger.Warn("POST /bookings - Outside working hours: user_id=%d, time=%s", userID, req.StartTime)
			handlers.RespondBadRequest(w, msgOutsideWorkingHours)

		case errors.Is(err, createBooking.ErrSlotConflict):
			h.logger.Warn("POST /bookings - Slot conflict: user_id=%d, arrangement_id=%d, date=%s, time=%s",
				userID, req.ArrangementID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotConflict)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /bookings - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrBranchNotFound):
			h.logger.Warn("POST /bookings - Branch not found: branch_id=%d", req.BranchID)
			handlers.RespondNotFound(w, msgBranchNotFound)

		case errors.Is(err, createBooking.ErrAddonNotFound):
			h.logger.Warn("POST /bookings - Addon not found: user_id=%d, addon_ids=%v", userID, req.AddonIDs)
			handlers.RespondNotFound(w, msgAddonNotFound)

		case errors.Is(err, createBooking.ErrVoucherNotFound):
			h.logger.Warn("POST /bookings - Voucher not found: user_id=%d", userID)
			handlers.RespondNotFound(w, msgVoucherNotFound)

		case errors.Is(err, createBooking.ErrGiftCardNotFound):
			h.logger.Warn("POST /bookings - Gift card not found: user_id=%d", userID)
			handlers.RespondNotFound(w, msgGiftCardNotFound)

		case errors.Is(err, createBooking.ErrDiscountRejected):
			h.logger.Warn("POST /bookings - Discount rejected: user_id=%d, error=%v", userID, err)
			handlers.RespondUnprocessable(w, msgDiscountRejected)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, number=%s, user_id=%d",
		result.ID, result.BookingNumber, userID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
