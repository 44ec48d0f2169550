package create_booking

import (
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	createBooking "github.com/m04kA/SPA-BookingService/internal/usecase/create_booking"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	BranchID      int64    `json:"branchId" validate:"required,gt=0"`
	ServiceID     int64    `json:"serviceId" validate:"required,gt=0"`
	ArrangementID int64    `json:"arrangementId" validate:"required,gt=0"`
	Date          string   `json:"date" validate:"required"`      // "2025-10-15"
	StartTime     string   `json:"startTime" validate:"required"` // "10:00"
	AddonIDs      []int64  `json:"addonIds,omitempty" validate:"omitempty,dive,gt=0"`
	VoucherCodes  []string `json:"voucherCodes,omitempty" validate:"omitempty,dive,min=1"`
	GiftCardIDs   []int64  `json:"giftCardIds,omitempty" validate:"omitempty,max=5,dive,gt=0"`
	Notes         *string  `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// AddonResponse строка дополнения в HTTP ответе
type AddonResponse struct {
	AddonID         int64   `json:"addonId"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"durationMinutes"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64           `json:"id"`
	BookingNumber   string          `json:"bookingNumber"`
	UserID          int64           `json:"userId"`
	BranchID        int64           `json:"branchId"`
	ServiceID       int64           `json:"serviceId"`
	ArrangementID   int64           `json:"arrangementId"`
	Date            string          `json:"date"`
	StartTime       string          `json:"startTime"`
	EndTime         string          `json:"endTime"`
	Status          string          `json:"status"`
	Subtotal        float64         `json:"subtotal"`
	DiscountAmount  float64         `json:"discountAmount"`
	GiftCardAmount  float64         `json:"giftCardAmount"`
	TotalPrice      float64         `json:"totalPrice"`
	Addons          []AddonResponse `json:"addons"`
	ServiceName     string          `json:"serviceName"`
	ArrangementType string          `json:"arrangementType"`
	RoomNumber      string          `json:"roomNumber"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		UserID:        userID,
		BranchID:      r.BranchID,
		ServiceID:     r.ServiceID,
		ArrangementID: r.ArrangementID,
		Date:          date,
		StartTime:     startTime,
		AddonIDs:      r.AddonIDs,
		VoucherCodes:  r.VoucherCodes,
		GiftCardIDs:   r.GiftCardIDs,
		Notes:         r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	out := &BookingResponse{
		ID:              resp.ID,
		BookingNumber:   resp.BookingNumber,
		UserID:          resp.UserID,
		BranchID:        resp.BranchID,
		ServiceID:       resp.ServiceID,
		ArrangementID:   resp.ArrangementID,
		Date:            resp.SlotDate.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		EndTime:         resp.EndTime.String(),
		Status:          resp.Status,
		Subtotal:        resp.Subtotal,
		DiscountAmount:  resp.DiscountAmount,
		GiftCardAmount:  resp.GiftCardAmount,
		TotalPrice:      resp.TotalPrice,
		Addons:          make([]AddonResponse, 0, len(resp.Addons)),
		ServiceName:     resp.ServiceName,
		ArrangementType: resp.ArrangementType,
		RoomNumber:      resp.RoomNumber,
		Notes:           resp.Notes,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}

	for _, addon := range resp.Addons {
		out.Addons = append(out.Addons, AddonResponse{
			AddonID:         addon.AddonID,
			Name:            addon.Name,
			Price:           addon.Price,
			DurationMinutes: addon.DurationMinutes,
		})
	}

	return out
}
