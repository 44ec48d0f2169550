package create_booking

import (
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// Request модель запроса на создание бронирования
// Клиент выбирает конкретный arrangement из выдачи доступности,
// аллокатор волен привязать любой свободный ресурс того же пула
type Request struct {
	UserID        int64
	BranchID      int64
	ServiceID     int64
	ArrangementID int64
	Date          time.Time        // Дата бронирования (без времени)
	StartTime     types.TimeString // Время начала, например "10:00"
	AddonIDs      []int64          // Дополнения к услуге (опционально)
	VoucherCodes  []string         // Коды ваучеров (не более одного)
	GiftCardIDs   []int64          // Подарочные карты в порядке применения
	Notes         *string          // Заметки (опционально)
}

// AddonLine строка дополнения в ответе
type AddonLine struct {
	AddonID         int64
	Name            string
	Price           float64
	DurationMinutes int
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID            int64
	BookingNumber string
	UserID        int64
	BranchID      int64
	ServiceID     int64
	ArrangementID int64
	SlotDate      time.Time
	StartTime     types.TimeString
	EndTime       types.TimeString
	Status        string

	Subtotal       float64
	DiscountAmount float64
	GiftCardAmount float64
	TotalPrice     float64

	Addons []AddonLine

	// Денормализованные данные
	ServiceName     string
	ArrangementType string
	RoomNumber      string

	Notes *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func toResponse(b *domain.Booking) *Response {
	resp := &Response{
		ID:              b.ID,
		BookingNumber:   b.BookingNumber,
		UserID:          b.UserID,
		BranchID:        b.BranchID,
		ServiceID:       b.ServiceID,
		ArrangementID:   b.ArrangementID,
		SlotDate:        b.SlotDate,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		Status:          string(b.Status),
		Subtotal:        b.Subtotal,
		DiscountAmount:  b.DiscountAmount,
		GiftCardAmount:  b.GiftCardAmount,
		TotalPrice:      b.TotalPrice,
		Addons:          make([]AddonLine, 0, len(b.Addons)),
		ServiceName:     b.ServiceName,
		ArrangementType: b.ArrangementType,
		RoomNumber:      b.RoomNumber,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	for _, addon := range b.Addons {
		resp.Addons = append(resp.Addons, AddonLine{
			AddonID:         addon.AddonID,
			Name:            addon.Name,
			Price:           addon.Price,
			DurationMinutes: addon.DurationMinutes,
		})
	}

	return resp
}
