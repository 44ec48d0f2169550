package models

import (
	"errors"
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64   `json:"userId"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID          int64   `json:"userId"`
	Status          *string `json:"status,omitempty"`
	IncludeInactive bool    `json:"includeInactive,omitempty"`
}

// Response модели

// BookingAddonResponse строка дополнения в составе бронирования
type BookingAddonResponse struct {
	AddonID         int64   `json:"addonId"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"durationMinutes"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID            int64  `json:"id"`
	BookingNumber string `json:"bookingNumber"`
	UserID        int64  `json:"userId"`
	BranchID      int64  `json:"branchId"`
	ServiceID     int64  `json:"serviceId"`
	ArrangementID int64  `json:"arrangementId"`
	SlotDate      string `json:"slotDate"`  // "2025-10-15"
	StartTime     string `json:"startTime"` // "10:00"
	EndTime       string `json:"endTime"`   // "11:45"
	Status        string `json:"status"`

	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discountAmount"`
	GiftCardAmount float64 `json:"giftCardAmount"`
	TotalPrice     float64 `json:"totalPrice"`

	Addons []BookingAddonResponse `json:"addons"`

	// Денормализованные данные
	ServiceName     string `json:"serviceName"`
	ArrangementType string `json:"arrangementType"`
	RoomNumber      string `json:"roomNumber"`

	Notes              *string `json:"notes,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		BookingNumber:      b.BookingNumber,
		UserID:             b.UserID,
		BranchID:           b.BranchID,
		ServiceID:          b.ServiceID,
		ArrangementID:      b.ArrangementID,
		SlotDate:           b.SlotDate.Format(domain.DateFormat),
		StartTime:          b.StartTime.String(),
		EndTime:            b.EndTime.String(),
		Status:             string(b.Status),
		Subtotal:           b.Subtotal,
		DiscountAmount:     b.DiscountAmount,
		GiftCardAmount:     b.GiftCardAmount,
		TotalPrice:         b.TotalPrice,
		Addons:             make([]BookingAddonResponse, 0, len(b.Addons)),
		ServiceName:        b.ServiceName,
		ArrangementType:    b.ArrangementType,
		RoomNumber:         b.RoomNumber,
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	for _, addon := range b.Addons {
		resp.Addons = append(resp.Addons, BookingAddonResponse{
			AddonID:         addon.AddonID,
			Name:            addon.Name,
			Price:           addon.Price,
			DurationMinutes: addon.DurationMinutes,
		})
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	if bookings == nil {
		return &BookingListResponse{
			Bookings: []BookingResponse{},
		}
	}

	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, len(bookings)),
	}

	for i, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings[i] = *bookingResp
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	validStatuses := []domain.BookingStatus{
		domain.StatusRequested,
		domain.StatusPaymentPending,
		domain.StatusPaymentSuccess,
		domain.StatusConfirmed,
		domain.StatusCompleted,
		domain.StatusOnHold,
		domain.StatusCancelledByUser,
		domain.StatusCancelledByCompany,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
