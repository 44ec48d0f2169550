package events

import (
	"context"

	"github.com/m04kA/SPA-BookingService/internal/domain"
)

// NopPublisher заглушка для окружений без брокера (события выключены в конфиге)
type NopPublisher struct{}

func (NopPublisher) PublishBookingCreated(context.Context, *domain.Booking)   {}
func (NopPublisher) PublishBookingCancelled(context.Context, *domain.Booking) {}
