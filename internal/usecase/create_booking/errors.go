package create_booking

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена или неактивна
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrBranchNotFound возвращается, когда филиал не найден или неактивен
	ErrBranchNotFound = errors.New("create_booking: branch not found")

	// ErrAddonNotFound возвращается, когда дополнение не найдено у услуги
	ErrAddonNotFound = errors.New("create_booking: addon not found")

	// ErrInvalidArrangement возвращается, когда выбранный ресурс не существует,
	// неактивен или не принадлежит указанной услуге и филиалу
	ErrInvalidArrangement = errors.New("create_booking: invalid arrangement")

	// ErrSlotConflict возвращается, когда во всем пуле не осталось свободного
	// ресурса на запрошенный интервал
	ErrSlotConflict = errors.New("create_booking: slot conflict")

	// ErrOutsideWorkingHours возвращается, когда интервал выходит за рабочие часы филиала
	ErrOutsideWorkingHours = errors.New("create_booking: outside branch working hours")

	// ErrInvalidDate возвращается, когда дата бронирования в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает окно бронирования
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrTooLateToBook возвращается, когда бронирование на сегодня нарушает
	// минимальный интервал до начала
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrVoucherNotFound возвращается, когда ваучер не найден
	ErrVoucherNotFound = errors.New("create_booking: voucher not found")

	// ErrGiftCardNotFound возвращается, когда подарочная карта не найдена
	ErrGiftCardNotFound = errors.New("create_booking: gift card not found")

	// ErrDiscountRejected возвращается, когда инструмент скидки отклонен
	// Текст ошибки называет инструмент и причину
	ErrDiscountRejected = errors.New("create_booking: discount rejected")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
