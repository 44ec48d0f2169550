package domain

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Business validation constants
const (
	MinServiceDurationMinutes   = 5
	MaxServiceDurationMinutes   = 480 // 8 hours
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxGiftCardsPerBooking      = 5
)

// Окно бронирования
const (
	// MaxAdvanceBookingDays максимальное количество дней вперед для бронирования
	MaxAdvanceBookingDays = 90

	// MinBookingNoticeMinutes минимальный интервал между текущим временем
	// и началом бронирования на сегодня
	MinBookingNoticeMinutes = 30
)

// HourBucketMinutes размер корзины почасовой сетки доступности
// Сетка используется только для отображения; аллокатор проверяет
// пересечения по точному времени
const HourBucketMinutes = 60

// InactiveStatuses список статусов, не занимающих слот
// Используется при фильтрации бронирований для подсчёта занятости
var InactiveStatuses = []BookingStatus{
	StatusCancelledByUser,
	StatusCancelledByCompany,
	StatusOnHold,
}

// ActiveStatuses список статусов, удерживающих слот
var ActiveStatuses = []BookingStatus{
	StatusRequested,
	StatusPaymentPending,
	StatusPaymentSuccess,
	StatusConfirmed,
	StatusCompleted,
}
