package domain

import (
	"time"

	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// TimeSlot is an occupancy record for one concrete arrangement.
// Created exactly once, atomically with its owning booking; never mutated.
// Cancellation deletes the row and frees the resource.
// Invariant: for one arrangement no two slots overlap in [start, end) on a date.
type TimeSlot struct {
	ID            int64
	ArrangementID int64
	BookingID     int64
	SlotDate      time.Time
	StartTime     types.TimeString
	EndTime       types.TimeString
	CreatedAt     time.Time
}

// OccupiedInterval занятый интервал одного ресурса, результат чтения леджера
type OccupiedInterval struct {
	ArrangementID int64
	SlotDate      time.Time
	StartTime     types.TimeString
	EndTime       types.TimeString
}

// Overlaps reports whether [StartTime, EndTime) intersects [start, end)
// Граничные случаи (конец одного = начало другого) пересечением не считаются
func (i OccupiedInterval) Overlaps(start, end types.TimeString) bool {
	return i.StartTime.IsBefore(end) && i.EndTime.IsAfter(start)
}
