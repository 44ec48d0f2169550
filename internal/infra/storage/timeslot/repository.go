package timeslot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/dbmetrics"
	"github.com/m04kA/SPA-BookingService/pkg/psqlbuilder"
)

// Коды ошибок PostgreSQL, означающие конфликт занятости:
// 23P01 - exclusion_violation (constraint time_slots_no_overlap),
// 23505 - unique_violation (booking_id уже владеет слотом),
// 40001 - serialization_failure (проигравшая сторона гонки под SERIALIZABLE)
const (
	pgExclusionViolation   = "23P01"
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
)

// Repository репозиторий леджера занятых слотов
// Леджер append-only: слот создается атомарно с бронированием и никогда
// не изменяется; отмена бронирования удаляет строку, освобождая ресурс
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// OccupiedIntervals получает занятые интервалы ресурсов за период дат (включительно)
// Результат отсортирован по (arrangement_id, slot_date, start_time)
// Чтение без побочных эффектов; внутри транзакции на одну дату строки
// блокируются FOR UPDATE - так аллокатор видит консистентную занятость пула
func (r *Repository) OccupiedIntervals(ctx context.Context, arrangementIDs []int64, dateFrom, dateTo time.Time) ([]domain.OccupiedInterval, error) {
	if len(arrangementIDs) == 0 {
		return []domain.OccupiedInterval{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"arrangement_id",
		"slot_date",
		"start_time",
		"end_time",
	).
		From("time_slots").
		Where(squirrel.Eq{"arrangement_id": arrangementIDs}).
		Where(squirrel.GtOrEq{"slot_date": dateFrom}).
		Where(squirrel.LtOrEq{"slot_date": dateTo}).
		OrderBy("arrangement_id ASC, slot_date ASC, start_time ASC")

	if dbmetrics.IsInTransaction(ctx) && dateFrom.Equal(dateTo) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: OccupiedIntervals - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: OccupiedIntervals - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	intervals := make([]domain.OccupiedInterval, 0)
	for rows.Next() {
		var interval domain.OccupiedInterval
		if err := rows.Scan(
			&interval.ArrangementID,
			&interval.SlotDate,
			&interval.StartTime,
			&interval.EndTime,
		); err != nil {
			return nil, fmt.Errorf("%w: OccupiedIntervals - scan row: %v", ErrScanRow, err)
		}
		intervals = append(intervals, interval)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: OccupiedIntervals - rows error: %v", ErrScanRow, err)
	}

	return intervals, nil
}

// Reserve вставляет новый занятый слот
// Exclusion constraint в БД гарантирует отсутствие пересечений даже при
// конкурентных вставках - нарушение транслируется в ErrSlotConflict
func (r *Repository) Reserve(ctx context.Context, slot *domain.TimeSlot) (*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("time_slots").
		Columns(
			"arrangement_id",
			"booking_id",
			"slot_date",
			"start_time",
			"end_time",
		).
		Values(
			slot.ArrangementID,
			slot.BookingID,
			slot.SlotDate,
			slot.StartTime,
			slot.EndTime,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Reserve - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&slot.ID,
		&createdAt,
	)

	if err != nil {
		if isConflictError(err) {
			return nil, ErrSlotConflict
		}
		return nil, fmt.Errorf("%w: Reserve - execute insert: %v", ErrExecQuery, err)
	}

	slot.CreatedAt = createdAt.Time

	return slot, nil
}

// isConflictError распознает ошибки PostgreSQL, означающие, что слот достался
// конкуренту. Сбой сериализации тоже конфликт: из двух одновременных запросов
// на один интервал ровно один получает слот, второй - SlotConflict
func isConflictError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	switch string(pqErr.Code) {
	case pgExclusionViolation, pgUniqueViolation, pgSerializationFailure:
		return true
	default:
		return false
	}
}

// DeleteByBookingID удаляет слот бронирования, освобождая ресурс
// Вызывается в одной транзакции с изменением статуса бронирования
func (r *Repository) DeleteByBookingID(ctx context.Context, bookingID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("time_slots").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteByBookingID - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteByBookingID - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteByBookingID - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}
