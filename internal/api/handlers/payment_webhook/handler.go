package payment_webhook

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SPA-BookingService/internal/api/handlers"
	"github.com/m04kA/SPA-BookingService/internal/service/bookings"
)

const (
	msgInvalidBookingID  = "некорректный идентификатор бронирования"
	msgBookingNotFound   = "бронирование не найдено"
	msgIllegalTransition = "недопустимый переход статуса"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandlePaymentSucceeded POST /internal/v1/bookings/{bookingId}/payment-succeeded
func (h *Handler) HandlePaymentSucceeded(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "payment-succeeded", h.service.MarkPaymentSucceeded)
}

// HandlePaymentFailed POST /internal/v1/bookings/{bookingId}/payment-failed
func (h *Handler) HandlePaymentFailed(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "payment-failed", h.service.MarkPaymentFailed)
}

// HandleConfirm POST /internal/v1/bookings/{bookingId}/confirm
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "confirm", h.service.Confirm)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, name string, fn func(context.Context, int64) error) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	if err := fn(r.Context(), bookingID); err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("POST /internal %s - Not found: booking_id=%d", name, bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, bookings.ErrInvalidStatusTransition):
			h.logger.Warn("POST /internal %s - Illegal transition: booking_id=%d", name, bookingID)
			handlers.RespondConflict(w, msgIllegalTransition)

		default:
			h.logger.Error("POST /internal %s - Failed: booking_id=%d, error=%v", name, bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /internal %s - OK: booking_id=%d", name, bookingID)
	w.WriteHeader(http.StatusNoContent)
}
