package domain

import "time"

// GiftCardStatus derived from the remaining balance
type GiftCardStatus string

const (
	GiftCardActive        GiftCardStatus = "active"
	GiftCardPartiallyUsed GiftCardStatus = "partially_used"
	GiftCardFullyUsed     GiftCardStatus = "fully_used"
	GiftCardExpired       GiftCardStatus = "expired"
)

// GiftCard is a prepaid balance instrument redeemable against bookings.
// Invariants: CurrentBalance never negative, CurrentBalance <= InitialAmount;
// every redemption is logged as an immutable GiftCardTransaction.
type GiftCard struct {
	ID             int64
	Code           string
	OwnerUserID    int64
	InitialAmount  float64
	CurrentBalance float64
	Status         GiftCardStatus
	AppliesTo      DiscountScope
	Transferable   bool
	Claimed        bool
	ValidFrom      time.Time
	ValidUntil     time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// GiftCardTransaction is an immutable redemption log entry
type GiftCardTransaction struct {
	ID           int64
	GiftCardID   int64
	BookingID    int64
	Amount       float64
	BalanceAfter float64
	CreatedAt    time.Time
}

// IsRedeemable reports whether the card can participate in a redemption
func (g *GiftCard) IsRedeemable() bool {
	return g.Status == GiftCardActive || g.Status == GiftCardPartiallyUsed
}

// IsWithinWindow reports whether the card is valid at the given moment
func (g *GiftCard) IsWithinWindow(now time.Time) bool {
	return !now.Before(g.ValidFrom) && !now.After(g.ValidUntil)
}

// AppliesToScope reports whether the card covers the purchase scope
func (g *GiftCard) AppliesToScope(scope DiscountScope) bool {
	return g.AppliesTo == ScopeAll || g.AppliesTo == scope
}

// CanBeUsedBy reports whether the user may redeem this card:
// the owner always can, anyone can claim a transferable unclaimed card
func (g *GiftCard) CanBeUsedBy(userID int64) bool {
	if g.OwnerUserID == userID {
		return true
	}
	return g.Transferable && !g.Claimed
}

// StatusForBalance derives the card status from a remaining balance
func StatusForBalance(balance, initial float64) GiftCardStatus {
	switch {
	case balance <= 0:
		return GiftCardFullyUsed
	case balance < initial:
		return GiftCardPartiallyUsed
	default:
		return GiftCardActive
	}
}
