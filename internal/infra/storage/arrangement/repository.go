package arrangement

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/dbmetrics"
	"github.com/m04kA/SPA-BookingService/pkg/psqlbuilder"
)

var selectColumns = []string{
	"id",
	"service_id",
	"branch_id",
	"arrangement_type",
	"room_number",
	"base_price",
	"discount_price",
	"cleanup_duration_minutes",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с arrangements (ресурсами пулов)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория arrangements
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает arrangement по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Arrangement, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(selectColumns...).
		From("arrangements").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	arr, err := scanArrangement(row)
	if err == sql.ErrNoRows {
		return nil, ErrArrangementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan arrangement: %v", ErrScanRow, err)
	}

	return arr, nil
}

// ListActive получает все активные arrangements услуги на филиале
// Результат отсортирован по ID - порядок важен для детерминированной привязки
func (r *Repository) ListActive(ctx context.Context, serviceID, branchID int64) ([]*domain.Arrangement, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(selectColumns...).
		From("arrangements").
		Where(squirrel.Eq{
			"service_id": serviceID,
			"branch_id":  branchID,
			"is_active":  true,
		}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanArrangements(rows)
}

// ListPoolForUpdate получает всех членов пула выбранного arrangement с блокировкой
// FOR UPDATE. Пул = активные arrangements той же услуги и филиала с тем же
// ключом группировки (тип, базовая цена, цена со скидкой).
// Вызывается только внутри транзакции - блокировка сериализует конкурентные
// попытки аллокации на одном пуле.
func (r *Repository) ListPoolForUpdate(ctx context.Context, member *domain.Arrangement) ([]*domain.Arrangement, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(selectColumns...).
		From("arrangements").
		Where(squirrel.Eq{
			"service_id":       member.ServiceID,
			"branch_id":        member.BranchID,
			"arrangement_type": member.ArrangementType,
			"base_price":       member.BasePrice,
			"is_active":        true,
		}).
		OrderBy("id ASC")

	// NULL и нулевая скидочная цена - один пул, как в ключе группировки Group()
	if member.DiscountPrice != nil && *member.DiscountPrice > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"discount_price": *member.DiscountPrice})
	} else {
		selectBuilder = selectBuilder.Where("(discount_price IS NULL OR discount_price = 0)")
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListPoolForUpdate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPoolForUpdate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanArrangements(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArrangement(row rowScanner) (*domain.Arrangement, error) {
	var arr domain.Arrangement
	var discountPrice sql.NullFloat64
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&arr.ID,
		&arr.ServiceID,
		&arr.BranchID,
		&arr.ArrangementType,
		&arr.RoomNumber,
		&arr.BasePrice,
		&discountPrice,
		&arr.CleanupDurationMinutes,
		&arr.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if discountPrice.Valid {
		arr.DiscountPrice = &discountPrice.Float64
	}
	arr.CreatedAt = createdAt.Time
	arr.UpdatedAt = updatedAt.Time

	return &arr, nil
}

func scanArrangements(rows *sql.Rows) ([]*domain.Arrangement, error) {
	arrangements := make([]*domain.Arrangement, 0)

	for rows.Next() {
		arr, err := scanArrangement(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanArrangements - scan row: %v", ErrScanRow, err)
		}
		arrangements = append(arrangements, arr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanArrangements - rows error: %v", ErrScanRow, err)
	}

	return arrangements, nil
}
