package domain

import (
	"time"

	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusRequested          BookingStatus = "requested"
	StatusPaymentPending     BookingStatus = "payment_pending"
	StatusPaymentSuccess     BookingStatus = "payment_success"
	StatusConfirmed          BookingStatus = "confirmed"
	StatusCompleted          BookingStatus = "completed"
	StatusOnHold             BookingStatus = "on_hold"
	StatusCancelledByUser    BookingStatus = "cancelled_by_user"
	StatusCancelledByCompany BookingStatus = "cancelled_by_company"
)

// Booking represents a confirmed allocation of a spa arrangement time slot
type Booking struct {
	ID            int64
	BookingNumber string // uuid, generated per request, no shared counters
	UserID        int64
	BranchID      int64
	ServiceID     int64
	ArrangementID int64 // конкретный ресурс, к которому привязан слот
	SlotDate      time.Time
	StartTime     types.TimeString
	EndTime       types.TimeString
	Status        BookingStatus

	// Pricing breakdown: TotalPrice = max(Subtotal - DiscountAmount - GiftCardAmount, 0)
	Subtotal       float64
	DiscountAmount float64
	GiftCardAmount float64
	TotalPrice     float64

	VoucherID *int64
	Addons    []BookingAddon

	// Denormalized data for history
	ServiceName     string
	ArrangementType string
	RoomNumber      string

	Notes              *string
	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingAddon is an add-on service line attached to a booking,
// denormalized at booking time so later catalog edits don't rewrite history
type BookingAddon struct {
	AddonID         int64
	Name            string
	Price           float64
	DurationMinutes int
}

// IsActive returns true if the booking still occupies its time slot
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelledByUser &&
		b.Status != StatusCancelledByCompany &&
		b.Status != StatusOnHold
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	switch b.Status {
	case StatusRequested, StatusPaymentPending, StatusPaymentSuccess, StatusConfirmed:
		return true
	default:
		return false
	}
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelledByUser || b.Status == StatusCancelledByCompany
}

// CanTransitionTo reports whether the payment/lifecycle transition is legal
// Переходы управляются внешними платежными событиями, ядро только валидирует
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	switch next {
	case StatusPaymentSuccess:
		return b.Status == StatusRequested || b.Status == StatusPaymentPending
	case StatusPaymentPending:
		return b.Status == StatusRequested
	case StatusOnHold:
		return b.Status == StatusRequested || b.Status == StatusPaymentPending
	case StatusConfirmed:
		return b.Status == StatusPaymentSuccess
	case StatusCompleted:
		return b.Status == StatusPaymentSuccess || b.Status == StatusConfirmed
	default:
		return false
	}
}

// UserBookingsFilter фильтр для получения бронирований пользователя
type UserBookingsFilter struct {
	UserID          int64
	Status          *BookingStatus
	IncludeInactive bool
}
