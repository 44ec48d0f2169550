package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/dbmetrics"
	"github.com/m04kA/SPA-BookingService/pkg/psqlbuilder"
)

var selectColumns = []string{
	"id",
	"booking_number",
	"user_id",
	"branch_id",
	"service_id",
	"arrangement_id",
	"slot_date",
	"start_time",
	"end_time",
	"status",
	"subtotal",
	"discount_amount",
	"gift_card_amount",
	"total_price",
	"voucher_id",
	"service_name",
	"arrangement_type",
	"room_number",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование вместе со строками дополнений
// Вызывается внутри транзакции аллокатора - бронирование и слот
// фиксируются атомарно
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"booking_number",
			"user_id",
			"branch_id",
			"service_id",
			"arrangement_id",
			"slot_date",
			"start_time",
			"end_time",
			"status",
			"subtotal",
			"discount_amount",
			"gift_card_amount",
			"total_price",
			"voucher_id",
			"service_name",
			"arrangement_type",
			"room_number",
			"notes",
		).
		Values(
			b.BookingNumber,
			b.UserID,
			b.BranchID,
			b.ServiceID,
			b.ArrangementID,
			b.SlotDate,
			b.StartTime,
			b.EndTime,
			b.Status,
			b.Subtotal,
			b.DiscountAmount,
			b.GiftCardAmount,
			b.TotalPrice,
			b.VoucherID,
			b.ServiceName,
			b.ArrangementType,
			b.RoomNumber,
			b.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	if err := r.insertAddons(ctx, executor, b.ID, b.Addons); err != nil {
		return nil, err
	}

	return b, nil
}

func (r *Repository) insertAddons(ctx context.Context, executor DBExecutor, bookingID int64, addons []domain.BookingAddon) error {
	if len(addons) == 0 {
		return nil
	}

	insertBuilder := psqlbuilder.Insert("booking_addons").
		Columns("booking_id", "addon_id", "name", "price", "duration_minutes")

	for _, addon := range addons {
		insertBuilder = insertBuilder.Values(bookingID, addon.AddonID, addon.Name, addon.Price, addon.DurationMinutes)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertAddons - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertAddons - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByID получает бронирование по ID вместе с дополнениями
// Внутри транзакции строка блокируется FOR UPDATE - переходы статусов
// не должны гоняться друг с другом
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(selectColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	if b.Addons, err = r.getAddons(ctx, executor, b.ID); err != nil {
		return nil, err
	}

	return b, nil
}

// GetByUserID получает бронирования пользователя по фильтру
// Результат отсортирован по дате и времени слота (ближайшие первыми)
func (r *Repository) GetByUserID(ctx context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(selectColumns...).
		From("bookings").
		Where(squirrel.Eq{"user_id": filter.UserID}).
		OrderBy("slot_date ASC, start_time ASC")

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": domain.InactiveStatuses})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByUserID - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - rows error: %v", ErrScanRow, err)
	}

	for _, b := range bookings {
		if b.Addons, err = r.getAddons(ctx, executor, b.ID); err != nil {
			return nil, err
		}
	}

	return bookings, nil
}

// HasCompletedBookings проверяет, были ли у пользователя завершенные бронирования
// Используется цепочкой валидации ваучеров first_time_only
func (r *Repository) HasCompletedBookings(ctx context.Context, userID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("bookings").
		Where(squirrel.Eq{
			"user_id": userID,
			"status":  domain.StatusCompleted,
		}).
		Limit(1).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: HasCompletedBookings - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: HasCompletedBookings - execute query: %v", ErrExecQuery, err)
	}

	return true, nil
}

// UpdateStatus обновляет статус бронирования
// Легальность перехода проверяет сервисный слой через CanTransitionTo
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// Cancel переводит бронирование в отмененный статус с причиной отмены
func (r *Repository) Cancel(ctx context.Context, id int64, status domain.BookingStatus, reason *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// CompletePastBookings переводит в completed подтвержденные и оплаченные
// бронирования, чье время окончания уже прошло. Возвращает число обновленных строк
func (r *Repository) CompletePastBookings(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCompleted).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": []domain.BookingStatus{
			domain.StatusPaymentSuccess,
			domain.StatusConfirmed,
		}}).
		Where(squirrel.Or{
			squirrel.Lt{"slot_date": now.Format(domain.DateFormat)},
			squirrel.And{
				squirrel.Eq{"slot_date": now.Format(domain.DateFormat)},
				squirrel.Lt{"end_time": now.Format(domain.TimeFormat)},
			},
		}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CompletePastBookings - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CompletePastBookings - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CompletePastBookings - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

func (r *Repository) getAddons(ctx context.Context, executor DBExecutor, bookingID int64) ([]domain.BookingAddon, error) {
	query, args, err := psqlbuilder.Select("addon_id", "name", "price", "duration_minutes").
		From("booking_addons").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("addon_id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getAddons - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getAddons - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	addons := make([]domain.BookingAddon, 0)
	for rows.Next() {
		var addon domain.BookingAddon
		if err := rows.Scan(&addon.AddonID, &addon.Name, &addon.Price, &addon.DurationMinutes); err != nil {
			return nil, fmt.Errorf("%w: getAddons - scan row: %v", ErrScanRow, err)
		}
		addons = append(addons, addon)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getAddons - rows error: %v", ErrScanRow, err)
	}

	return addons, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var voucherID sql.NullInt64
	var notes, cancellationReason sql.NullString
	var cancelledAt, createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&b.ID,
		&b.BookingNumber,
		&b.UserID,
		&b.BranchID,
		&b.ServiceID,
		&b.ArrangementID,
		&b.SlotDate,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&b.Subtotal,
		&b.DiscountAmount,
		&b.GiftCardAmount,
		&b.TotalPrice,
		&voucherID,
		&b.ServiceName,
		&b.ArrangementType,
		&b.RoomNumber,
		&notes,
		&cancellationReason,
		&cancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if voucherID.Valid {
		b.VoucherID = &voucherID.Int64
	}
	if notes.Valid {
		b.Notes = &notes.String
	}
	if cancellationReason.Valid {
		b.CancellationReason = &cancellationReason.String
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}
