package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SPA-BookingService/pkg/ptr"
)

func TestArrangement_Group(t *testing.T) {
	a := &Arrangement{ArrangementType: "single_room", BasePrice: 100}
	b := &Arrangement{ArrangementType: "single_room", BasePrice: 100}
	c := &Arrangement{ArrangementType: "single_room", BasePrice: 100, DiscountPrice: ptr.Ptr(80.0)}
	d := &Arrangement{ArrangementType: "single_room", BasePrice: 100, DiscountPrice: ptr.Ptr(0.0)}

	assert.Equal(t, a.Group(), b.Group())
	assert.NotEqual(t, a.Group(), c.Group())
	// Нулевая скидочная цена не отделяет ресурс от пула без скидки
	assert.Equal(t, a.Group(), d.Group())
	assert.Equal(t, "single_room:100.00", a.Group().String())
	assert.Equal(t, "single_room:100.00:80.00", c.Group().String())
}

func TestArrangement_EffectivePrice(t *testing.T) {
	assert.Equal(t, 100.0, (&Arrangement{BasePrice: 100}).EffectivePrice())
	assert.Equal(t, 80.0, (&Arrangement{BasePrice: 100, DiscountPrice: ptr.Ptr(80.0)}).EffectivePrice())
	// Нулевая скидочная цена игнорируется
	assert.Equal(t, 100.0, (&Arrangement{BasePrice: 100, DiscountPrice: ptr.Ptr(0.0)}).EffectivePrice())
}

func TestOccupiedInterval_Overlaps(t *testing.T) {
	occupied := OccupiedInterval{StartTime: "10:00", EndTime: "11:00"}

	assert.True(t, occupied.Overlaps("10:30", "11:30"))
	assert.True(t, occupied.Overlaps("09:30", "10:30"))
	assert.True(t, occupied.Overlaps("09:00", "12:00"))

	// Смежные интервалы не пересекаются: [09:00,10:00) и [10:00,11:00)
	assert.False(t, occupied.Overlaps("09:00", "10:00"))
	assert.False(t, occupied.Overlaps("11:00", "12:00"))

	// Интервал нулевой длины ни с чем не пересекается
	assert.False(t, occupied.Overlaps("10:30", "10:30"))
}

func TestBooking_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from BookingStatus
		to   BookingStatus
		ok   bool
	}{
		{StatusRequested, StatusPaymentSuccess, true},
		{StatusRequested, StatusPaymentPending, true},
		{StatusRequested, StatusOnHold, true},
		{StatusPaymentPending, StatusPaymentSuccess, true},
		{StatusPaymentPending, StatusOnHold, true},
		{StatusPaymentSuccess, StatusConfirmed, true},
		{StatusPaymentSuccess, StatusCompleted, true},
		{StatusConfirmed, StatusCompleted, true},

		{StatusRequested, StatusConfirmed, false},
		{StatusConfirmed, StatusPaymentSuccess, false},
		{StatusCompleted, StatusConfirmed, false},
		{StatusCancelledByUser, StatusPaymentSuccess, false},
		{StatusOnHold, StatusConfirmed, false},
	}

	for _, tt := range tests {
		b := &Booking{Status: tt.from}
		assert.Equal(t, tt.ok, b.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestBooking_CanBeCancelled(t *testing.T) {
	cancellable := []BookingStatus{StatusRequested, StatusPaymentPending, StatusPaymentSuccess, StatusConfirmed}
	for _, status := range cancellable {
		assert.True(t, (&Booking{Status: status}).CanBeCancelled(), string(status))
	}

	final := []BookingStatus{StatusCompleted, StatusOnHold, StatusCancelledByUser, StatusCancelledByCompany}
	for _, status := range final {
		assert.False(t, (&Booking{Status: status}).CanBeCancelled(), string(status))
	}
}

func TestBooking_IsActive(t *testing.T) {
	assert.True(t, (&Booking{Status: StatusRequested}).IsActive())
	assert.False(t, (&Booking{Status: StatusOnHold}).IsActive())
	assert.False(t, (&Booking{Status: StatusCancelledByUser}).IsActive())
}

func TestVoucher_Discount(t *testing.T) {
	percentage := &Voucher{DiscountType: VoucherPercentage, DiscountValue: 20}
	assert.Equal(t, 40.0, percentage.Discount(200))

	capped := &Voucher{DiscountType: VoucherPercentage, DiscountValue: 20, MaxDiscountAmount: ptr.Ptr(15.0)}
	assert.Equal(t, 15.0, capped.Discount(200))

	fixed := &Voucher{DiscountType: VoucherFixed, DiscountValue: 50}
	assert.Equal(t, 50.0, fixed.Discount(200))
	assert.Equal(t, 30.0, fixed.Discount(30)) // не больше суммы покупки
}

func TestVoucher_HasGlobalCapacity(t *testing.T) {
	assert.True(t, (&Voucher{}).HasGlobalCapacity()) // без лимита
	assert.True(t, (&Voucher{MaxUses: ptr.Ptr(5), CurrentUses: 4}).HasGlobalCapacity())
	assert.False(t, (&Voucher{MaxUses: ptr.Ptr(5), CurrentUses: 5}).HasGlobalCapacity())
}

func TestGiftCard_CanBeUsedBy(t *testing.T) {
	owned := &GiftCard{OwnerUserID: 10}
	assert.True(t, owned.CanBeUsedBy(10))
	assert.False(t, owned.CanBeUsedBy(11))

	transferable := &GiftCard{OwnerUserID: 10, Transferable: true}
	assert.True(t, transferable.CanBeUsedBy(11))

	claimed := &GiftCard{OwnerUserID: 10, Transferable: true, Claimed: true}
	assert.False(t, claimed.CanBeUsedBy(11))
	assert.True(t, claimed.CanBeUsedBy(10)) // владелец может всегда
}

func TestStatusForBalance(t *testing.T) {
	assert.Equal(t, GiftCardActive, StatusForBalance(100, 100))
	assert.Equal(t, GiftCardPartiallyUsed, StatusForBalance(40, 100))
	assert.Equal(t, GiftCardFullyUsed, StatusForBalance(0, 100))
}

func TestVoucher_IsWithinWindow(t *testing.T) {
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)
	v := &Voucher{ValidFrom: now.AddDate(0, -1, 0), ValidUntil: now.AddDate(0, 1, 0)}

	assert.True(t, v.IsWithinWindow(now))
	assert.True(t, v.IsWithinWindow(v.ValidFrom))
	assert.True(t, v.IsWithinWindow(v.ValidUntil))
	assert.False(t, v.IsWithinWindow(v.ValidUntil.Add(time.Second)))
}
