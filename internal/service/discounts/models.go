package discounts

import "github.com/m04kA/SPA-BookingService/internal/domain"

// Input входные данные композитора скидок
type Input struct {
	UserID       int64
	Subtotal     float64
	Scope        domain.DiscountScope
	VoucherCodes []string
	GiftCardIDs  []int64
}

// GiftCardApplication запланированное списание с одной карты
type GiftCardApplication struct {
	Card   *domain.GiftCard
	Amount float64
	Claim  bool // закрепить transferable карту за пользователем
}

// Plan результат валидации: рассчитанные суммы и заблокированные инструменты
// План применяется Commit в той же транзакции после создания бронирования
type Plan struct {
	Voucher         *domain.Voucher
	VoucherDiscount float64
	GiftCards       []GiftCardApplication
	GiftCardTotal   float64
}

// TotalDiscount суммарная скидка плана
func (p *Plan) TotalDiscount() float64 {
	return p.VoucherDiscount + p.GiftCardTotal
}
