package create_booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

func TestComputeEndTime(t *testing.T) {
	service := &domain.Service{DurationMinutes: 60}
	addons := []*domain.ServiceAddon{{DurationMinutes: 30}}
	arrangement := &domain.Arrangement{CleanupDurationMinutes: 15}

	end, fallback := computeEndTime("10:00", service, addons, arrangement)

	assert.False(t, fallback)
	assert.Equal(t, types.TimeString("11:45"), end)
}

func TestComputeEndTime_NoAddons(t *testing.T) {
	service := &domain.Service{DurationMinutes: 90}
	arrangement := &domain.Arrangement{CleanupDurationMinutes: 10}

	end, fallback := computeEndTime("09:00", service, nil, arrangement)

	assert.False(t, fallback)
	assert.Equal(t, types.TimeString("10:40"), end)
}

func TestComputeEndTime_NonPositiveDurationFallsBackToStart(t *testing.T) {
	// Битая длительность в каталоге: конец = начало, слот нулевой длины
	service := &domain.Service{DurationMinutes: -60}
	arrangement := &domain.Arrangement{CleanupDurationMinutes: 15}

	end, fallback := computeEndTime("10:00", service, nil, arrangement)

	assert.True(t, fallback)
	assert.Equal(t, types.TimeString("10:00"), end)
}

func TestComputeEndTime_OverflowPastMidnightFallsBackToStart(t *testing.T) {
	service := &domain.Service{DurationMinutes: 23 * 60}
	arrangement := &domain.Arrangement{CleanupDurationMinutes: 120}

	end, fallback := computeEndTime("10:00", service, nil, arrangement)

	assert.True(t, fallback)
	assert.Equal(t, types.TimeString("10:00"), end)
}

func TestComputeEndTime_ExactEndOfDay(t *testing.T) {
	service := &domain.Service{DurationMinutes: 14 * 60}
	arrangement := &domain.Arrangement{}

	end, fallback := computeEndTime("10:00", service, nil, arrangement)

	assert.False(t, fallback)
	assert.Equal(t, types.TimeString("24:00"), end)
}
