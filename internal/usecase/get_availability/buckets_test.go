package get_availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

var testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

func interval(arrangementID int64, start, end string) domain.OccupiedInterval {
	return domain.OccupiedInterval{
		ArrangementID: arrangementID,
		SlotDate:      testDate,
		StartTime:     types.TimeString(start),
		EndTime:       types.TimeString(end),
	}
}

func TestBlockedBuckets_EndExclusive(t *testing.T) {
	// Занятость 10:00-11:45 блокирует корзины 10 и 11, но не 12
	blocked, err := blockedBuckets([]domain.OccupiedInterval{interval(1, "10:00", "11:45")})
	require.NoError(t, err)

	dateKey := testDate.Format(domain.DateFormat)
	assert.True(t, blocked[1][dateKey][10])
	assert.True(t, blocked[1][dateKey][11])
	assert.False(t, blocked[1][dateKey][12])
}

func TestBlockedBuckets_PartialHourBlocksBucket(t *testing.T) {
	// Занятость до 10:30 блокирует корзину 10:00 целиком
	blocked, err := blockedBuckets([]domain.OccupiedInterval{interval(1, "09:00", "10:30")})
	require.NoError(t, err)

	dateKey := testDate.Format(domain.DateFormat)
	assert.True(t, blocked[1][dateKey][9])
	assert.True(t, blocked[1][dateKey][10])
	assert.False(t, blocked[1][dateKey][11])
}

func TestBlockedBuckets_ExactHourBoundary(t *testing.T) {
	// Занятость ровно до 10:00 не трогает корзину 10:00
	blocked, err := blockedBuckets([]domain.OccupiedInterval{interval(1, "09:00", "10:00")})
	require.NoError(t, err)

	dateKey := testDate.Format(domain.DateFormat)
	assert.True(t, blocked[1][dateKey][9])
	assert.False(t, blocked[1][dateKey][10])
}

func TestBlockedBuckets_ZeroLengthIntervalBlocksNothing(t *testing.T) {
	// Слот нулевой длины (fallback длительности) не блокирует корзины
	blocked, err := blockedBuckets([]domain.OccupiedInterval{interval(1, "10:00", "10:00")})
	require.NoError(t, err)

	assert.Empty(t, blocked[1][testDate.Format(domain.DateFormat)])
}

func TestBlockedBuckets_EndOfDay(t *testing.T) {
	blocked, err := blockedBuckets([]domain.OccupiedInterval{interval(1, "23:00", "24:00")})
	require.NoError(t, err)

	dateKey := testDate.Format(domain.DateFormat)
	assert.True(t, blocked[1][dateKey][23])
}

func TestBucketRange(t *testing.T) {
	branch := &domain.Branch{OpenTime: "09:00", CloseTime: "22:00"}
	first, last, err := bucketRange(branch)
	require.NoError(t, err)
	assert.Equal(t, 9, first)
	assert.Equal(t, 21, last) // закрытие эксклюзивно

	// Неполный первый час не показывается: бронь с 09:00 при открытии
	// в 09:30 все равно была бы отклонена
	branch = &domain.Branch{OpenTime: "09:30", CloseTime: "18:30"}
	first, last, err = bucketRange(branch)
	require.NoError(t, err)
	assert.Equal(t, 10, first)
	assert.Equal(t, 18, last)

	_, _, err = bucketRange(&domain.Branch{OpenTime: "10:00", CloseTime: "09:00"})
	assert.Error(t, err)
}

func TestMergePool_ORSemantics(t *testing.T) {
	// Пул из двух комнат: корзина свободна, пока свободна хотя бы одна
	members := []*domain.Arrangement{{ID: 1}, {ID: 2}}

	blocked, err := blockedBuckets([]domain.OccupiedInterval{
		interval(1, "10:00", "12:00"),
		interval(2, "11:00", "13:00"),
	})
	require.NoError(t, err)

	grid := mergePool(members, blocked, []time.Time{testDate}, 9, 13)
	hours := grid[testDate.Format(domain.DateFormat)]

	assert.Equal(t, SlotAvailable, hours["09:00"]) // обе свободны
	assert.Equal(t, SlotAvailable, hours["10:00"]) // комната 2 свободна
	assert.Equal(t, SlotBooked, hours["11:00"])    // заняты обе
	assert.Equal(t, SlotAvailable, hours["12:00"]) // комната 1 свободна
	assert.Equal(t, SlotAvailable, hours["13:00"])
}

func TestMergePool_SingleMemberFullyBooked(t *testing.T) {
	members := []*domain.Arrangement{{ID: 7}}

	blocked, err := blockedBuckets([]domain.OccupiedInterval{interval(7, "09:00", "22:00")})
	require.NoError(t, err)

	grid := mergePool(members, blocked, []time.Time{testDate}, 9, 21)
	for hour, status := range grid[testDate.Format(domain.DateFormat)] {
		assert.Equal(t, SlotBooked, status, hour)
	}
}

func TestDatesInRange(t *testing.T) {
	dates := datesInRange(testDate, testDate.AddDate(0, 0, 2))
	require.Len(t, dates, 3)
	assert.Equal(t, testDate, dates[0])
	assert.Equal(t, testDate.AddDate(0, 0, 2), dates[2])

	// Одиночная дата
	assert.Len(t, datesInRange(testDate, testDate), 1)
}
