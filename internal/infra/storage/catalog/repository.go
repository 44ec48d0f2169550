package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/dbmetrics"
	"github.com/m04kA/SPA-BookingService/pkg/psqlbuilder"
)

// Repository репозиторий каталога: услуги, филиалы, дополнительные услуги
// Каталог наполняется административным инструментарием, ядро его только читает
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetService получает активную услугу по ID
func (r *Repository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"duration_minutes",
		"is_active",
	).
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var service domain.Service
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&service.ID,
		&service.Name,
		&service.DurationMinutes,
		&service.IsActive,
	)

	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %v", ErrScanRow, err)
	}

	return &service, nil
}

// GetBranch получает филиал по ID
func (r *Repository) GetBranch(ctx context.Context, id int64) (*domain.Branch, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"open_time",
		"close_time",
		"is_active",
	).
		From("branches").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBranch - build select query: %v", ErrBuildQuery, err)
	}

	var branch domain.Branch
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&branch.ID,
		&branch.Name,
		&branch.OpenTime,
		&branch.CloseTime,
		&branch.IsActive,
	)

	if err == sql.ErrNoRows {
		return nil, ErrBranchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBranch - scan branch: %v", ErrScanRow, err)
	}

	return &branch, nil
}

// GetAddons получает активные дополнительные услуги по списку ID
// Если хотя бы один ID не найден или не относится к услуге, возвращает ErrAddonNotFound
func (r *Repository) GetAddons(ctx context.Context, serviceID int64, ids []int64) ([]*domain.ServiceAddon, error) {
	if len(ids) == 0 {
		return []*domain.ServiceAddon{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"service_id",
		"name",
		"duration_minutes",
		"price",
		"is_active",
	).
		From("service_addons").
		Where(squirrel.Eq{"id": ids, "service_id": serviceID, "is_active": true}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetAddons - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAddons - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	addons := make([]*domain.ServiceAddon, 0, len(ids))
	for rows.Next() {
		var addon domain.ServiceAddon
		if err := rows.Scan(
			&addon.ID,
			&addon.ServiceID,
			&addon.Name,
			&addon.DurationMinutes,
			&addon.Price,
			&addon.IsActive,
		); err != nil {
			return nil, fmt.Errorf("%w: GetAddons - scan addon: %v", ErrScanRow, err)
		}
		addons = append(addons, &addon)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetAddons - rows error: %v", ErrScanRow, err)
	}

	if len(addons) != len(ids) {
		return nil, ErrAddonNotFound
	}

	return addons, nil
}
