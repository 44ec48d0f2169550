package domain

import (
	"fmt"
	"time"
)

// Arrangement represents one concrete bookable resource: a room configured
// for a service at a branch. Rows sharing the same GroupKey are
// interchangeable from the customer's perspective and form a pool;
// the concrete row only matters to avoid double-booking the same room.
type Arrangement struct {
	ID                     int64
	ServiceID              int64
	BranchID               int64
	ArrangementType        string // e.g. "single_room", "couple_room"
	RoomNumber             string
	BasePrice              float64
	DiscountPrice          *float64
	CleanupDurationMinutes int
	IsActive               bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// GroupKey identifies a pool of interchangeable arrangements:
// same type and same pricing means same pool
type GroupKey struct {
	ArrangementType string
	BasePrice       float64
	DiscountPrice   float64 // 0 when not set
}

// Group returns the pool grouping key of the arrangement
func (a *Arrangement) Group() GroupKey {
	key := GroupKey{
		ArrangementType: a.ArrangementType,
		BasePrice:       a.BasePrice,
	}
	if a.DiscountPrice != nil {
		key.DiscountPrice = *a.DiscountPrice
	}
	return key
}

// String возвращает строковый ключ пула для карты доступности
func (k GroupKey) String() string {
	if k.DiscountPrice > 0 {
		return fmt.Sprintf("%s:%.2f:%.2f", k.ArrangementType, k.BasePrice, k.DiscountPrice)
	}
	return fmt.Sprintf("%s:%.2f", k.ArrangementType, k.BasePrice)
}

// EffectivePrice returns the price a customer pays for this arrangement
func (a *Arrangement) EffectivePrice() float64 {
	if a.DiscountPrice != nil && *a.DiscountPrice > 0 {
		return *a.DiscountPrice
	}
	return a.BasePrice
}
