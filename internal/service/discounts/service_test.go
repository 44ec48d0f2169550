package discounts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	giftcardRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/giftcard"
	voucherRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/voucher"
	"github.com/m04kA/SPA-BookingService/pkg/ptr"
)

// MockVoucherRepository мок репозитория ваучеров
type MockVoucherRepository struct {
	mock.Mock
}

func (m *MockVoucherRepository) GetByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherRepository) CountUserRedemptions(ctx context.Context, voucherID, userID int64) (int, error) {
	args := m.Called(ctx, voucherID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockVoucherRepository) Redeem(ctx context.Context, voucherID, userID, bookingID int64, discountAmount float64) error {
	args := m.Called(ctx, voucherID, userID, bookingID, discountAmount)
	return args.Error(0)
}

// MockGiftCardRepository мок репозитория подарочных карт
type MockGiftCardRepository struct {
	mock.Mock
}

func (m *MockGiftCardRepository) GetByID(ctx context.Context, id int64) (*domain.GiftCard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GiftCard), args.Error(1)
}

func (m *MockGiftCardRepository) Debit(ctx context.Context, card *domain.GiftCard, bookingID int64, amount float64, claim bool) error {
	args := m.Called(ctx, card, bookingID, amount, claim)
	return args.Error(0)
}

// MockBookingRepository мок репозитория бронирований
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) HasCompletedBookings(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// fixedTimeProvider провайдер фиксированного времени для тестов
type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

var testNow = time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *MockVoucherRepository, *MockGiftCardRepository, *MockBookingRepository) {
	vouchers := new(MockVoucherRepository)
	cards := new(MockGiftCardRepository)
	bookings := new(MockBookingRepository)
	svc := NewService(vouchers, cards, bookings, &fixedTimeProvider{now: testNow}, nopLogger{})
	return svc, vouchers, cards, bookings
}

func activeVoucher() *domain.Voucher {
	return &domain.Voucher{
		ID:            10,
		Code:          "WELCOME20",
		DiscountType:  domain.VoucherPercentage,
		DiscountValue: 20,
		AppliesTo:     domain.ScopeAll,
		ValidFrom:     testNow.AddDate(0, -1, 0),
		ValidUntil:    testNow.AddDate(0, 1, 0),
		Status:        domain.VoucherActive,
	}
}

func activeGiftCard(id int64, owner int64, balance float64) *domain.GiftCard {
	return &domain.GiftCard{
		ID:             id,
		OwnerUserID:    owner,
		InitialAmount:  balance,
		CurrentBalance: balance,
		Status:         domain.GiftCardActive,
		AppliesTo:      domain.ScopeAll,
		ValidFrom:      testNow.AddDate(0, -1, 0),
		ValidUntil:     testNow.AddDate(1, 0, 0),
	}
}

func TestValidate_EmptyInput(t *testing.T) {
	svc, _, _, _ := newTestService()

	plan, err := svc.Validate(context.Background(), &Input{UserID: 1, Subtotal: 100, Scope: domain.ScopeServices})

	require.NoError(t, err)
	assert.Nil(t, plan.Voucher)
	assert.Empty(t, plan.GiftCards)
	assert.Equal(t, 0.0, plan.TotalDiscount())
}

func TestValidate_VoucherStackingRejected(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Validate(context.Background(), &Input{
		UserID:       1,
		Subtotal:     100,
		Scope:        domain.ScopeServices,
		VoucherCodes: []string{"A", "B"},
	})

	assert.ErrorIs(t, err, ErrDiscountRejected)
}

func TestValidate_VoucherNotFound(t *testing.T) {
	svc, vouchers, _, _ := newTestService()
	vouchers.On("GetByCode", mock.Anything, "MISSING").Return(nil, voucherRepo.ErrVoucherNotFound)

	_, err := svc.Validate(context.Background(), &Input{
		UserID:       1,
		Subtotal:     100,
		Scope:        domain.ScopeServices,
		VoucherCodes: []string{"MISSING"},
	})

	assert.ErrorIs(t, err, ErrVoucherNotFound)
}

func TestValidate_VoucherPercentageWithCap(t *testing.T) {
	svc, vouchers, _, _ := newTestService()
	voucher := activeVoucher()
	voucher.MaxDiscountAmount = ptr.Ptr(15.0)
	vouchers.On("GetByCode", mock.Anything, "WELCOME20").Return(voucher, nil)

	plan, err := svc.Validate(context.Background(), &Input{
		UserID:       1,
		Subtotal:     200, // 20% = 40, но cap = 15
		Scope:        domain.ScopeServices,
		VoucherCodes: []string{"WELCOME20"},
	})

	require.NoError(t, err)
	assert.Equal(t, 15.0, plan.VoucherDiscount)
}

func TestValidate_VoucherFixedClampedToSubtotal(t *testing.T) {
	svc, vouchers, _, _ := newTestService()
	voucher := activeVoucher()
	voucher.DiscountType = domain.VoucherFixed
	voucher.DiscountValue = 500
	vouchers.On("GetByCode", mock.Anything, "WELCOME20").Return(voucher, nil)

	plan, err := svc.Validate(context.Background(), &Input{
		UserID:       1,
		Subtotal:     300,
		Scope:        domain.ScopeServices,
		VoucherCodes: []string{"WELCOME20"},
	})

	require.NoError(t, err)
	assert.Equal(t, 300.0, plan.VoucherDiscount)
}

func TestValidate_VoucherRejectionReasons(t *testing.T) {
	tests := []struct {
		name  string
		setup func(v *domain.Voucher)
	}{
		{"inactive", func(v *domain.Voucher) { v.Status = domain.VoucherInactive }},
		{"expired window", func(v *domain.Voucher) { v.ValidUntil = testNow.AddDate(0, 0, -1) }},
		{"not yet valid", func(v *domain.Voucher) { v.ValidFrom = testNow.AddDate(0, 0, 1) }},
		{"min purchase", func(v *domain.Voucher) { v.MinPurchaseAmount = 1000 }},
		{"wrong scope", func(v *domain.Voucher) { v.AppliesTo = domain.ScopeProducts }},
		{"global cap", func(v *domain.Voucher) { v.MaxUses = ptr.Ptr(5); v.CurrentUses = 5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, vouchers, _, _ := newTestService()
			voucher := activeVoucher()
			tt.setup(voucher)
			vouchers.On("GetByCode", mock.Anything, "WELCOME20").Return(voucher, nil)

			_, err := svc.Validate(context.Background(), &Input{
				UserID:       1,
				Subtotal:     100,
				Scope:        domain.ScopeServices,
				VoucherCodes: []string{"WELCOME20"},
			})

			assert.ErrorIs(t, err, ErrDiscountRejected)
		})
	}
}

func TestValidate_VoucherPerUserLimitReached(t *testing.T) {
	svc, vouchers, _, _ := newTestService()
	voucher := activeVoucher()
	voucher.MaxUsesPerUser = ptr.Ptr(1)
	vouchers.On("GetByCode", mock.Anything, "WELCOME20").Return(voucher, nil)
	vouchers.On("CountUserRedemptions", mock.Anything, int64(10), int64(1)).Return(1, nil)

	_, err := svc.Validate(context.Background(), &Input{
		UserID:       1,
		Subtotal:     100,
		Scope:        domain.ScopeServices,
		VoucherCodes: []string{"WELCOME20"},
	})

	assert.ErrorIs(t, err, ErrDiscountRejected)
}

func TestValidate_VoucherFirstTimeOnly(t *testing.T) {
	svc, vouchers, _, bookings := newTestService()
	voucher := activeVoucher()
	voucher.FirstTimeOnly = true
	vouchers.On("GetByCode", mock.Anything, "WELCOME20").Return(voucher, nil)
	bookings.On("HasCompletedBookings", mock.Anything, int64(1)).Return(true, nil)

	_, err := svc.Validate(context.Background(), &Input{
		UserID:       1,
		Subtotal:     100,
		Scope:        domain.ScopeServices,
		VoucherCodes: []string{"WELCOME20"},
	})

	assert.ErrorIs(t, err, ErrDiscountRejected)
	bookings.AssertCalled(t, "HasCompletedBookings", mock.Anything, int64(1))
}

func TestValidate_GiftCardNotFound(t *testing.T) {
	svc, _, cards, _ := newTestService()
	cards.On("GetByID", mock.Anything, int64(42)).Return(nil, giftcardRepo.ErrGiftCardNotFound)

	_, err := svc.Validate(context.Background(), &Input{
		UserID:      1,
		Subtotal:    100,
		Scope:       domain.ScopeServices,
		GiftCardIDs: []int64{42},
	})

	assert.ErrorIs(t, err, ErrGiftCardNotFound)
}

func TestValidate_GiftCardAmountClampedToRemaining(t *testing.T) {
	svc, _, cards, _ := newTestService()
	cards.On("GetByID", mock.Anything, int64(1)).Return(activeGiftCard(1, 1, 500), nil)

	plan, err := svc.Validate(context.Background(), &Input{
		UserID:      1,
		Subtotal:    120,
		Scope:       domain.ScopeServices,
		GiftCardIDs: []int64{1},
	})

	require.NoError(t, err)
	require.Len(t, plan.GiftCards, 1)
	assert.Equal(t, 120.0, plan.GiftCards[0].Amount)
	assert.Equal(t, 120.0, plan.GiftCardTotal)
}

func TestValidate_SequentialCardsExhaustRemaining(t *testing.T) {
	svc, _, cards, _ := newTestService()
	cards.On("GetByID", mock.Anything, int64(1)).Return(activeGiftCard(1, 1, 80), nil)
	cards.On("GetByID", mock.Anything, int64(2)).Return(activeGiftCard(2, 1, 100), nil)

	plan, err := svc.Validate(context.Background(), &Input{
		UserID:      1,
		Subtotal:    120,
		Scope:       domain.ScopeServices,
		GiftCardIDs: []int64{1, 2},
	})

	require.NoError(t, err)
	require.Len(t, plan.GiftCards, 2)
	assert.Equal(t, 80.0, plan.GiftCards[0].Amount)
	assert.Equal(t, 40.0, plan.GiftCards[1].Amount) // остаток после первой карты
	assert.Equal(t, 120.0, plan.GiftCardTotal)
}

func TestValidate_GiftCardAfterVoucherDiscount(t *testing.T) {
	svc, vouchers, cards, _ := newTestService()
	vouchers.On("GetByCode", mock.Anything, "WELCOME20").Return(activeVoucher(), nil)
	cards.On("GetByID", mock.Anything, int64(1)).Return(activeGiftCard(1, 1, 500), nil)

	plan, err := svc.Validate(context.Background(), &Input{
		UserID:       1,
		Subtotal:     100,
		Scope:        domain.ScopeServices,
		VoucherCodes: []string{"WELCOME20"},
		GiftCardIDs:  []int64{1},
	})

	require.NoError(t, err)
	assert.Equal(t, 20.0, plan.VoucherDiscount)
	assert.Equal(t, 80.0, plan.GiftCardTotal) // карта покрывает остаток после ваучера
	assert.Equal(t, 100.0, plan.TotalDiscount())
}

func TestValidate_TransferableCardClaimedByForeignUser(t *testing.T) {
	svc, _, cards, _ := newTestService()
	card := activeGiftCard(1, 99, 50)
	card.Transferable = true
	cards.On("GetByID", mock.Anything, int64(1)).Return(card, nil)

	plan, err := svc.Validate(context.Background(), &Input{
		UserID:      1,
		Subtotal:    100,
		Scope:       domain.ScopeServices,
		GiftCardIDs: []int64{1},
	})

	require.NoError(t, err)
	require.Len(t, plan.GiftCards, 1)
	assert.True(t, plan.GiftCards[0].Claim)
}

func TestValidate_ForeignNonTransferableCardRejected(t *testing.T) {
	svc, _, cards, _ := newTestService()
	cards.On("GetByID", mock.Anything, int64(1)).Return(activeGiftCard(1, 99, 50), nil)

	_, err := svc.Validate(context.Background(), &Input{
		UserID:      1,
		Subtotal:    100,
		Scope:       domain.ScopeServices,
		GiftCardIDs: []int64{1},
	})

	assert.ErrorIs(t, err, ErrDiscountRejected)
}

func TestValidate_FullyUsedCardRejected(t *testing.T) {
	svc, _, cards, _ := newTestService()
	card := activeGiftCard(1, 1, 0)
	card.Status = domain.GiftCardFullyUsed
	cards.On("GetByID", mock.Anything, int64(1)).Return(card, nil)

	_, err := svc.Validate(context.Background(), &Input{
		UserID:      1,
		Subtotal:    100,
		Scope:       domain.ScopeServices,
		GiftCardIDs: []int64{1},
	})

	assert.ErrorIs(t, err, ErrDiscountRejected)
}

func TestCommit_AppliesPlan(t *testing.T) {
	svc, vouchers, cards, _ := newTestService()

	card := activeGiftCard(1, 1, 80)
	plan := &Plan{
		Voucher:         activeVoucher(),
		VoucherDiscount: 20,
		GiftCards: []GiftCardApplication{
			{Card: card, Amount: 50, Claim: false},
		},
		GiftCardTotal: 50,
	}

	vouchers.On("Redeem", mock.Anything, int64(10), int64(1), int64(777), 20.0).Return(nil)
	cards.On("Debit", mock.Anything, card, int64(777), 50.0, false).Return(nil)

	err := svc.Commit(context.Background(), 777, 1, plan)

	require.NoError(t, err)
	vouchers.AssertExpectations(t)
	cards.AssertExpectations(t)
}

func TestCommit_NoVoucher(t *testing.T) {
	svc, vouchers, cards, _ := newTestService()

	card := activeGiftCard(1, 1, 80)
	plan := &Plan{
		GiftCards:     []GiftCardApplication{{Card: card, Amount: 30, Claim: true}},
		GiftCardTotal: 30,
	}

	cards.On("Debit", mock.Anything, card, int64(777), 30.0, true).Return(nil)

	err := svc.Commit(context.Background(), 777, 1, plan)

	require.NoError(t, err)
	vouchers.AssertNotCalled(t, "Redeem", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
