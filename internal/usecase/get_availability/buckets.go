package get_availability

import (
	"fmt"
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
)

// hourLabel метка корзины сетки, например "10:00"
func hourLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// bucketRange возвращает первую и последнюю корзину рабочего дня филиала
// Начало дня округляется вверх до полного часа: частично открытую корзину
// аллокатор отклонил бы как выход за рабочие часы, поэтому сетка ее не
// показывает. Закрытие - эксклюзивная граница: при закрытии в 22:00
// последняя корзина начинается в 21:00
func bucketRange(branch *domain.Branch) (int, int, error) {
	openMinutes, err := branch.OpenTime.Minutes()
	if err != nil {
		return 0, 0, fmt.Errorf("invalid open time %q: %v", branch.OpenTime, err)
	}

	closeMinutes, err := branch.CloseTime.Minutes()
	if err != nil {
		return 0, 0, fmt.Errorf("invalid close time %q: %v", branch.CloseTime, err)
	}

	if closeMinutes <= openMinutes {
		return 0, 0, fmt.Errorf("close time %q is not after open time %q", branch.CloseTime, branch.OpenTime)
	}

	firstBucket := (openMinutes + domain.HourBucketMinutes - 1) / domain.HourBucketMinutes
	lastBucket := (closeMinutes - 1) / domain.HourBucketMinutes

	return firstBucket, lastBucket, nil
}

// blockedBuckets раскладывает занятые интервалы в корзины почасовой сетки:
// любое ненулевое пересечение с корзиной блокирует её целиком.
// Конец интервала эксклюзивен - занятость до 10:30 блокирует корзину 10:00,
// занятость ровно до 10:00 её не трогает. Интервалы нулевой длины не
// блокируют ничего.
// Результат: arrangement_id -> дата -> занятые корзины
func blockedBuckets(intervals []domain.OccupiedInterval) (map[int64]map[string]map[int]bool, error) {
	blocked := make(map[int64]map[string]map[int]bool)

	for _, interval := range intervals {
		startMinutes, err := interval.StartTime.Minutes()
		if err != nil {
			return nil, fmt.Errorf("invalid interval start %q: %v", interval.StartTime, err)
		}
		endMinutes, err := interval.EndTime.Minutes()
		if err != nil {
			return nil, fmt.Errorf("invalid interval end %q: %v", interval.EndTime, err)
		}

		date := interval.SlotDate.Format(domain.DateFormat)
		firstBucket := startMinutes / domain.HourBucketMinutes
		lastBucket := (endMinutes - 1) / domain.HourBucketMinutes

		for hour := firstBucket; hour <= lastBucket; hour++ {
			byDate, ok := blocked[interval.ArrangementID]
			if !ok {
				byDate = make(map[string]map[int]bool)
				blocked[interval.ArrangementID] = byDate
			}
			byHour, ok := byDate[date]
			if !ok {
				byHour = make(map[int]bool)
				byDate[date] = byHour
			}
			byHour[hour] = true
		}
	}

	return blocked, nil
}

// mergePool строит сетку пула OR-слиянием по его членам:
// корзина свободна, если хотя бы один ресурс пула в ней свободен
func mergePool(
	members []*domain.Arrangement,
	blocked map[int64]map[string]map[int]bool,
	dates []time.Time,
	firstBucket, lastBucket int,
) map[string]map[string]string {
	grid := make(map[string]map[string]string, len(dates))

	for _, date := range dates {
		dateKey := date.Format(domain.DateFormat)
		hours := make(map[string]string, lastBucket-firstBucket+1)

		for hour := firstBucket; hour <= lastBucket; hour++ {
			status := SlotBooked
			for _, member := range members {
				if !blocked[member.ID][dateKey][hour] {
					status = SlotAvailable
					break
				}
			}
			hours[hourLabel(hour)] = status
		}

		grid[dateKey] = hours
	}

	return grid
}

// datesInRange возвращает все даты диапазона включительно
func datesInRange(from, to time.Time) []time.Time {
	dates := make([]time.Time, 0)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
