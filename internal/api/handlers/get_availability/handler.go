package get_availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SPA-BookingService/internal/api/handlers"
	"github.com/m04kA/SPA-BookingService/internal/domain"
	getAvailability "github.com/m04kA/SPA-BookingService/internal/usecase/get_availability"
)

const (
	msgInvalidBranchID  = "некорректный идентификатор филиала"
	msgInvalidServiceID = "некорректный идентификатор услуги"
	msgInvalidDateRange = "некорректный диапазон дат, ожидается YYYY-MM-DD"
	msgServiceNotFound  = "услуга не найдена"
	msgBranchNotFound   = "филиал не найден"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/branches/{branchId}/services/{serviceId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	branchID, err := strconv.ParseInt(vars["branchId"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidBranchID)
		return
	}

	serviceID, err := strconv.ParseInt(vars["serviceId"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	dateFrom, dateTo, err := parseDateRange(r)
	if err != nil {
		h.logger.Warn("GET /availability - Invalid date range: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateRange)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailability.Request{
		BranchID:  branchID,
		ServiceID: serviceID,
		DateFrom:  dateFrom,
		DateTo:    dateTo,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDateRange)

		case errors.Is(err, getAvailability.ErrServiceNotFound):
			h.logger.Warn("GET /availability - Service not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailability.ErrBranchNotFound):
			h.logger.Warn("GET /availability - Branch not found: branch_id=%d", branchID)
			handlers.RespondNotFound(w, msgBranchNotFound)

		default:
			h.logger.Error("GET /availability - Failed: branch_id=%d, service_id=%d, error=%v", branchID, serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// parseDateRange читает date_from/date_to из query
// Отсутствие date_to означает запрос на одну дату
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()

	dateFrom, err := time.Parse(domain.DateFormat, query.Get("date_from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	rawTo := query.Get("date_to")
	if rawTo == "" {
		return dateFrom, dateFrom, nil
	}

	dateTo, err := time.Parse(domain.DateFormat, rawTo)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return dateFrom, dateTo, nil
}
