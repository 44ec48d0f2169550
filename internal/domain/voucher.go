package domain

import "time"

// VoucherType discount calculation mode
type VoucherType string

const (
	VoucherPercentage VoucherType = "percentage"
	VoucherFixed      VoucherType = "fixed"
)

// VoucherStatus lifecycle state of a voucher code
type VoucherStatus string

const (
	VoucherActive   VoucherStatus = "active"
	VoucherInactive VoucherStatus = "inactive"
	VoucherExpired  VoucherStatus = "expired"
)

// DiscountScope applicability scope shared by vouchers and gift cards
type DiscountScope string

const (
	ScopeAll      DiscountScope = "all"
	ScopeServices DiscountScope = "services"
	ScopeProducts DiscountScope = "products"
)

// Voucher is a discount code with usage caps and a validity window.
// Invariant: CurrentUses <= MaxUses (when set); per-user usage <= MaxUsesPerUser.
type Voucher struct {
	ID                int64
	Code              string
	DiscountType      VoucherType
	DiscountValue     float64
	MaxDiscountAmount *float64 // только для percentage
	MinPurchaseAmount float64
	AppliesTo         DiscountScope
	MaxUses           *int // nil = без глобального лимита
	MaxUsesPerUser    *int // nil = без лимита на пользователя
	FirstTimeOnly     bool
	ValidFrom         time.Time
	ValidUntil        time.Time
	CurrentUses       int
	Status            VoucherStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsWithinWindow reports whether the voucher is valid at the given moment
func (v *Voucher) IsWithinWindow(now time.Time) bool {
	return !now.Before(v.ValidFrom) && !now.After(v.ValidUntil)
}

// AppliesToScope reports whether the voucher covers the purchase scope
func (v *Voucher) AppliesToScope(scope DiscountScope) bool {
	return v.AppliesTo == ScopeAll || v.AppliesTo == scope
}

// HasGlobalCapacity reports whether the global usage cap allows one more use
func (v *Voucher) HasGlobalCapacity() bool {
	return v.MaxUses == nil || v.CurrentUses < *v.MaxUses
}

// Discount computes the voucher discount for the subtotal,
// clamped so it never exceeds the subtotal
func (v *Voucher) Discount(subtotal float64) float64 {
	var d float64
	switch v.DiscountType {
	case VoucherPercentage:
		d = subtotal * v.DiscountValue / 100
		if v.MaxDiscountAmount != nil && d > *v.MaxDiscountAmount {
			d = *v.MaxDiscountAmount
		}
	case VoucherFixed:
		d = v.DiscountValue
	}
	if d > subtotal {
		d = subtotal
	}
	if d < 0 {
		d = 0
	}
	return d
}
