package discounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	giftcardRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/giftcard"
	voucherRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/voucher"
)

// Service композитор скидок: валидирует ваучер и подарочные карты,
// рассчитывает суммы и применяет их в транзакции бронирования.
// Validate и Commit должны вызываться внутри одной транзакции -
// репозитории блокируют строки инструментов FOR UPDATE
type Service struct {
	voucherRepo  VoucherRepository
	giftCardRepo GiftCardRepository
	bookingRepo  BookingRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр композитора скидок
func NewService(
	voucherRepo VoucherRepository,
	giftCardRepo GiftCardRepository,
	bookingRepo BookingRepository,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		voucherRepo:  voucherRepo,
		giftCardRepo: giftCardRepo,
		bookingRepo:  bookingRepo,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Validate проверяет инструменты скидки и строит план применения.
// Порядок проверок ваучера фиксирован, каждая причина отказа отличима:
// существует и активен → окно действия → минимальная сумма → область
// применения → глобальный лимит → лимит на пользователя → только для новых.
// Карты проверяются в порядке перечисления, списание = min(баланс, остаток)
func (s *Service) Validate(ctx context.Context, input *Input) (*Plan, error) {
	plan := &Plan{}

	if len(input.VoucherCodes) > 1 {
		s.logger.Warn("Validate: user=%d sent %d voucher codes", input.UserID, len(input.VoucherCodes))
		return nil, fmt.Errorf("%w: vouchers - stacking not supported", ErrDiscountRejected)
	}

	if len(input.VoucherCodes) == 1 {
		voucher, discount, err := s.validateVoucher(ctx, input.VoucherCodes[0], input)
		if err != nil {
			return nil, err
		}
		plan.Voucher = voucher
		plan.VoucherDiscount = discount
	}

	remaining := input.Subtotal - plan.VoucherDiscount
	if remaining < 0 {
		remaining = 0
	}

	for _, cardID := range input.GiftCardIDs {
		application, err := s.validateGiftCard(ctx, cardID, input, remaining)
		if err != nil {
			return nil, err
		}
		plan.GiftCards = append(plan.GiftCards, *application)
		plan.GiftCardTotal += application.Amount
		remaining -= application.Amount
	}

	s.logger.Info("Validate: user=%d subtotal=%.2f voucher_discount=%.2f gift_card_total=%.2f",
		input.UserID, input.Subtotal, plan.VoucherDiscount, plan.GiftCardTotal)

	return plan, nil
}

func (s *Service) validateVoucher(ctx context.Context, code string, input *Input) (*domain.Voucher, float64, error) {
	voucher, err := s.voucherRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, voucherRepo.ErrVoucherNotFound) {
			s.logger.Warn("validateVoucher: voucher code=%s not found", code)
			return nil, 0, ErrVoucherNotFound
		}
		s.logger.Error("validateVoucher: repository error for code=%s: %v", code, err)
		return nil, 0, fmt.Errorf("%w: validateVoucher - repository error: %v", ErrInternal, err)
	}

	if voucher.Status != domain.VoucherActive {
		return nil, 0, fmt.Errorf("%w: voucher %s - not active", ErrDiscountRejected, code)
	}

	now := s.timeProvider.Now()
	if !voucher.IsWithinWindow(now) {
		return nil, 0, fmt.Errorf("%w: voucher %s - outside validity window", ErrDiscountRejected, code)
	}

	if input.Subtotal < voucher.MinPurchaseAmount {
		return nil, 0, fmt.Errorf("%w: voucher %s - minimum purchase amount not reached", ErrDiscountRejected, code)
	}

	if !voucher.AppliesToScope(input.Scope) {
		return nil, 0, fmt.Errorf("%w: voucher %s - not applicable to this purchase", ErrDiscountRejected, code)
	}

	if !voucher.HasGlobalCapacity() {
		return nil, 0, fmt.Errorf("%w: voucher %s - usage limit reached", ErrDiscountRejected, code)
	}

	if voucher.MaxUsesPerUser != nil {
		used, err := s.voucherRepo.CountUserRedemptions(ctx, voucher.ID, input.UserID)
		if err != nil {
			s.logger.Error("validateVoucher: count redemptions failed for voucher=%d user=%d: %v", voucher.ID, input.UserID, err)
			return nil, 0, fmt.Errorf("%w: validateVoucher - count redemptions: %v", ErrInternal, err)
		}
		if used >= *voucher.MaxUsesPerUser {
			return nil, 0, fmt.Errorf("%w: voucher %s - per-user limit reached", ErrDiscountRejected, code)
		}
	}

	if voucher.FirstTimeOnly {
		hasCompleted, err := s.bookingRepo.HasCompletedBookings(ctx, input.UserID)
		if err != nil {
			s.logger.Error("validateVoucher: history check failed for user=%d: %v", input.UserID, err)
			return nil, 0, fmt.Errorf("%w: validateVoucher - history check: %v", ErrInternal, err)
		}
		if hasCompleted {
			return nil, 0, fmt.Errorf("%w: voucher %s - first-time customers only", ErrDiscountRejected, code)
		}
	}

	return voucher, voucher.Discount(input.Subtotal), nil
}

func (s *Service) validateGiftCard(ctx context.Context, cardID int64, input *Input, remaining float64) (*GiftCardApplication, error) {
	card, err := s.giftCardRepo.GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, giftcardRepo.ErrGiftCardNotFound) {
			s.logger.Warn("validateGiftCard: gift card id=%d not found", cardID)
			return nil, ErrGiftCardNotFound
		}
		s.logger.Error("validateGiftCard: repository error for card=%d: %v", cardID, err)
		return nil, fmt.Errorf("%w: validateGiftCard - repository error: %v", ErrInternal, err)
	}

	if !card.IsRedeemable() {
		return nil, fmt.Errorf("%w: gift card %d - not redeemable", ErrDiscountRejected, cardID)
	}

	if !card.IsWithinWindow(s.timeProvider.Now()) {
		return nil, fmt.Errorf("%w: gift card %d - outside validity window", ErrDiscountRejected, cardID)
	}

	if !card.AppliesToScope(input.Scope) {
		return nil, fmt.Errorf("%w: gift card %d - not applicable to this purchase", ErrDiscountRejected, cardID)
	}

	if !card.CanBeUsedBy(input.UserID) {
		return nil, fmt.Errorf("%w: gift card %d - not available to this user", ErrDiscountRejected, cardID)
	}

	amount := card.CurrentBalance
	if amount > remaining {
		amount = remaining
	}

	return &GiftCardApplication{
		Card:   card,
		Amount: amount,
		Claim:  card.OwnerUserID != input.UserID,
	}, nil
}

// Commit применяет план: пишет погашение ваучера и списания с карт
// с идентификатором созданного бронирования. Нулевые списания тоже
// логируются - журнал карты отражает каждое заявленное применение
func (s *Service) Commit(ctx context.Context, bookingID int64, userID int64, plan *Plan) error {
	if plan.Voucher != nil {
		if err := s.voucherRepo.Redeem(ctx, plan.Voucher.ID, userID, bookingID, plan.VoucherDiscount); err != nil {
			s.logger.Error("Commit: voucher redemption failed for booking=%d voucher=%d: %v", bookingID, plan.Voucher.ID, err)
			return fmt.Errorf("%w: Commit - voucher redemption: %v", ErrInternal, err)
		}
	}

	for i := range plan.GiftCards {
		application := &plan.GiftCards[i]
		if err := s.giftCardRepo.Debit(ctx, application.Card, bookingID, application.Amount, application.Claim); err != nil {
			s.logger.Error("Commit: gift card debit failed for booking=%d card=%d: %v", bookingID, application.Card.ID, err)
			return fmt.Errorf("%w: Commit - gift card debit: %v", ErrInternal, err)
		}
	}

	return nil
}
