package voucher

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
	"code",
	"discount_type",
	"discount_value",
	"max_discount_amount",
	"min_purchase_amount",
	"applies_to",
	"max_uses",
	"max_uses_per_user",
	"first_time_only",
	"valid_from",
	"valid_until",
	"current_uses",
	"status",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с ваучерами и их погашениями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория ваучеров
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByCode получает ваучер по коду
// Внутри транзакции строка блокируется FOR UPDATE - конкурентные погашения
// одного кода сериализуются, лимит max_uses не может быть превышен
func (r *Repository) GetByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(selectColumns...).
		From("vouchers").
		Where(squirrel.Eq{"code": code})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCode - build select query: %v", ErrBuildQuery, err)
	}

	var v domain.Voucher
	var maxDiscountAmount sql.NullFloat64
	var maxUses, maxUsesPerUser sql.NullInt64
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&v.ID,
		&v.Code,
		&v.DiscountType,
		&v.DiscountValue,
		&maxDiscountAmount,
		&v.MinPurchaseAmount,
		&v.AppliesTo,
		&maxUses,
		&maxUsesPerUser,
		&v.FirstTimeOnly,
		&v.ValidFrom,
		&v.ValidUntil,
		&v.CurrentUses,
		&v.Status,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrVoucherNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCode - scan voucher: %v", ErrScanRow, err)
	}

	if maxDiscountAmount.Valid {
		v.MaxDiscountAmount = &maxDiscountAmount.Float64
	}
	if maxUses.Valid {
		uses := int(maxUses.Int64)
		v.MaxUses = &uses
	}
	if maxUsesPerUser.Valid {
		uses := int(maxUsesPerUser.Int64)
		v.MaxUsesPerUser = &uses
	}
	v.CreatedAt = createdAt.Time
	v.UpdatedAt = updatedAt.Time

	return &v, nil
}

// CountUserRedemptions считает погашения ваучера конкретным пользователем
func (r *Repository) CountUserRedemptions(ctx context.Context, voucherID, userID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("voucher_redemptions").
		Where(squirrel.Eq{
			"voucher_id": voucherID,
			"user_id":    userID,
		}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountUserRedemptions - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountUserRedemptions - execute query: %v", ErrExecQuery, err)
	}

	return count, nil
}

// Redeem инкрементирует счетчик использований и записывает погашение
// Вызывается в транзакции бронирования после блокировки строки ваучера
func (r *Repository) Redeem(ctx context.Context, voucherID, userID, bookingID int64, discountAmount float64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("vouchers").
		Set("current_uses", squirrel.Expr("current_uses + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": voucherID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Redeem - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Redeem - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Redeem - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrVoucherNotFound
	}

	query, args, err = psqlbuilder.Insert("voucher_redemptions").
		Columns("voucher_id", "user_id", "booking_id", "discount_amount").
		Values(voucherID, userID, bookingID, discountAmount).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Redeem - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Redeem - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// ExpireStale переводит в expired активные ваучеры с истекшим окном действия
// Возвращает число обновленных строк
func (r *Repository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("vouchers").
		Set("status", domain.VoucherExpired).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": domain.VoucherActive}).
		Where(squirrel.Lt{"valid_until": now}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: ExpireStale - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireStale - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireStale - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}
