package get_availability

import "fmt"

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BranchID <= 0 {
		return fmt.Errorf("%w: branchID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.DateFrom.IsZero() || req.DateTo.IsZero() {
		return fmt.Errorf("%w: date range is required", ErrInvalidInput)
	}

	// Одиночная дата допустима (from == to), обратный диапазон - нет
	if req.DateFrom.After(req.DateTo) {
		return fmt.Errorf("%w: dateFrom is after dateTo", ErrInvalidInput)
	}

	return nil
}
