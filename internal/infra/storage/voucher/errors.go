package voucher

import "errors"

var (
	// ErrVoucherNotFound возвращается, когда ваучер не найден
	ErrVoucherNotFound = errors.New("voucher.repository: voucher not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("voucher.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("voucher.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("voucher.repository: failed to scan row")
)
