package create_booking

import (
	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// computeEndTime считает время окончания бронирования:
// начало + длительность услуги + длительности дополнений + уборка.
// При некорректной суммарной длительности (неположительная или выход
// за пределы суток) возвращает начало как конец и признак fallback -
// такой слот нулевой длины ничего не блокирует в леджере
func computeEndTime(start types.TimeString, service *domain.Service, addons []*domain.ServiceAddon, arrangement *domain.Arrangement) (types.TimeString, bool) {
	total := service.DurationMinutes
	for _, addon := range addons {
		total += addon.DurationMinutes
	}
	total += arrangement.CleanupDurationMinutes

	if total <= 0 {
		return start, true
	}

	end, err := start.AddMinutes(total)
	if err != nil {
		return start, true
	}

	return end, false
}
