package giftcard

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
	"owner_user_id",
	"initial_amount",
	"current_balance",
	"status",
	"applies_to",
	"transferable",
	"claimed",
	"valid_from",
	"valid_until",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с подарочными картами
// Лог транзакций карты append-only: баланс всегда восстановим из журнала
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория подарочных карт
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает подарочную карту по ID
// Внутри транзакции строка блокируется FOR UPDATE - конкурентные списания
// с одной карты сериализуются, баланс не может уйти в минус
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.GiftCard, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(selectColumns...).
		From("gift_cards").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var g domain.GiftCard
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&g.ID,
		&g.Code,
		&g.OwnerUserID,
		&g.InitialAmount,
		&g.CurrentBalance,
		&g.Status,
		&g.AppliesTo,
		&g.Transferable,
		&g.Claimed,
		&g.ValidFrom,
		&g.ValidUntil,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrGiftCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan gift card: %v", ErrScanRow, err)
	}

	g.CreatedAt = createdAt.Time
	g.UpdatedAt = updatedAt.Time

	return &g, nil
}

// Debit списывает сумму с карты и пишет неизменяемую запись в журнал транзакций
// Статус карты выводится из нового баланса; чужая transferable карта
// закрепляется за пользователем при первом использовании
func (r *Repository) Debit(ctx context.Context, card *domain.GiftCard, bookingID int64, amount float64, claim bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	newBalance := card.CurrentBalance - amount
	newStatus := domain.StatusForBalance(newBalance, card.InitialAmount)

	updateBuilder := psqlbuilder.Update("gift_cards").
		Set("current_balance", newBalance).
		Set("status", newStatus).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": card.ID})

	if claim {
		updateBuilder = updateBuilder.Set("claimed", true)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: Debit - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Debit - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Debit - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrGiftCardNotFound
	}

	query, args, err = psqlbuilder.Insert("gift_card_transactions").
		Columns("gift_card_id", "booking_id", "amount", "balance_after").
		Values(card.ID, bookingID, amount, newBalance).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Debit - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Debit - execute insert: %v", ErrExecQuery, err)
	}

	card.CurrentBalance = newBalance
	card.Status = newStatus
	if claim {
		card.Claimed = true
	}

	return nil
}

// ListTransactions возвращает журнал списаний карты в порядке создания
func (r *Repository) ListTransactions(ctx context.Context, giftCardID int64) ([]domain.GiftCardTransaction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "gift_card_id", "booking_id", "amount", "balance_after", "created_at").
		From("gift_card_transactions").
		Where(squirrel.Eq{"gift_card_id": giftCardID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListTransactions - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListTransactions - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	transactions := make([]domain.GiftCardTransaction, 0)
	for rows.Next() {
		var tx domain.GiftCardTransaction
		var createdAt sql.NullTime
		if err := rows.Scan(&tx.ID, &tx.GiftCardID, &tx.BookingID, &tx.Amount, &tx.BalanceAfter, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: ListTransactions - scan row: %v", ErrScanRow, err)
		}
		tx.CreatedAt = createdAt.Time
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListTransactions - rows error: %v", ErrScanRow, err)
	}

	return transactions, nil
}

// ExpireStale переводит в expired карты с истекшим окном действия
// Возвращает число обновленных строк
func (r *Repository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("gift_cards").
		Set("status", domain.GiftCardExpired).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": []domain.GiftCardStatus{
			domain.GiftCardActive,
			domain.GiftCardPartiallyUsed,
		}}).
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
