package timeslot

import "errors"

var (
	// ErrSlotConflict возвращается, когда интервал пересекается с уже занятым
	// слотом того же ресурса (проиграна гонка или время уже занято)
	ErrSlotConflict = errors.New("timeslot.repository: slot conflict")

	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("timeslot.repository: slot not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("timeslot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("timeslot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("timeslot.repository: failed to scan row")
)
