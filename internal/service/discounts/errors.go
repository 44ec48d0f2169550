package discounts

import "errors"

var (
	// ErrVoucherNotFound возвращается, когда ваучер с указанным кодом не найден
	ErrVoucherNotFound = errors.New("voucher not found")

	// ErrGiftCardNotFound возвращается, когда подарочная карта не найдена
	ErrGiftCardNotFound = errors.New("gift card not found")

	// ErrDiscountRejected возвращается, когда инструмент скидки не прошел
	// валидацию. Сообщение всегда называет инструмент и причину отказа
	ErrDiscountRejected = errors.New("discount rejected")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("discounts: internal error")
)
