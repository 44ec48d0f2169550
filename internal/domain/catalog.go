package domain

import "github.com/m04kA/SPA-BookingService/pkg/types"

// Branch represents a spa center. Operating hours are same-day only:
// schedules crossing midnight are not supported.
type Branch struct {
	ID        int64
	Name      string
	OpenTime  types.TimeString
	CloseTime types.TimeString
	IsActive  bool
}

// Service represents a bookable spa service (massage, sauna, ...)
type Service struct {
	ID              int64
	Name            string
	DurationMinutes int
	IsActive        bool
}

// ServiceAddon represents an optional add-on extending a service
type ServiceAddon struct {
	ID              int64
	ServiceID       int64
	Name            string
	DurationMinutes int
	Price           float64
	IsActive        bool
}
