package arrangement

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/ptr"
)

var errCapture = errors.New("capture")

// captureExecutor перехватывает текст запроса вместо выполнения
type captureExecutor struct {
	query string
}

func (c *captureExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	c.query = query
	return nil, errCapture
}

func (c *captureExecutor) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	c.query = query
	return nil, errCapture
}

func (c *captureExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	c.query = query
	return nil
}

func poolMember(discountPrice *float64) *domain.Arrangement {
	return &domain.Arrangement{
		ID:              1,
		ServiceID:       5,
		BranchID:        3,
		ArrangementType: "single_room",
		BasePrice:       100,
		DiscountPrice:   discountPrice,
		IsActive:        true,
	}
}

func TestListPoolForUpdate_NullAndZeroDiscountShareOnePool(t *testing.T) {
	// Ключ группировки Group() не различает NULL и 0 - запрос пула тоже не должен
	for _, discountPrice := range []*float64{nil, ptr.Ptr(0.0)} {
		executor := &captureExecutor{}
		repo := NewRepository(executor)

		_, err := repo.ListPoolForUpdate(context.Background(), poolMember(discountPrice))

		assert.ErrorIs(t, err, ErrExecQuery)
		assert.Contains(t, executor.query, "(discount_price IS NULL OR discount_price = 0)")
	}
}

func TestListPoolForUpdate_PositiveDiscountFiltersExactly(t *testing.T) {
	executor := &captureExecutor{}
	repo := NewRepository(executor)

	_, err := repo.ListPoolForUpdate(context.Background(), poolMember(ptr.Ptr(80.0)))

	assert.ErrorIs(t, err, ErrExecQuery)
	assert.Contains(t, executor.query, "discount_price =")
	assert.NotContains(t, executor.query, "IS NULL")
}
