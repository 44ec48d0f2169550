package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/SPA-BookingService/internal/service/bookings/models"
	"github.com/m04kA/SPA-BookingService/pkg/ptr"
)

// MockBookingRepository мок репозитория бронирований
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByUserID(ctx context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockBookingRepository) Cancel(ctx context.Context, id int64, status domain.BookingStatus, reason *string) error {
	args := m.Called(ctx, id, status, reason)
	return args.Error(0)
}

// MockTimeSlotRepository мок леджера занятых слотов
type MockTimeSlotRepository struct {
	mock.Mock
}

func (m *MockTimeSlotRepository) DeleteByBookingID(ctx context.Context, bookingID int64) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

// MockEventPublisher мок издателя событий
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishBookingCancelled(ctx context.Context, booking *domain.Booking) {
	m.Called(ctx, booking)
}

// fakeTxManager выполняет функцию без реальной транзакции
type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func newTestService() (*Service, *MockBookingRepository, *MockTimeSlotRepository, *MockEventPublisher) {
	bookings := new(MockBookingRepository)
	slots := new(MockTimeSlotRepository)
	events := new(MockEventPublisher)
	svc := NewService(bookings, slots, events, fakeTxManager{}, nopLogger{})
	return svc, bookings, slots, events
}

func testBooking(id int64, userID int64, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:       id,
		UserID:   userID,
		Status:   status,
		SlotDate: time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC),
	}
}

func TestGetByID_OwnerOnly(t *testing.T) {
	svc, bookings, _, _ := newTestService()
	bookings.On("GetByID", mock.Anything, int64(1)).Return(testBooking(1, 10, domain.StatusConfirmed), nil)

	resp, err := svc.GetByID(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)

	_, err = svc.GetByID(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetByID_NotFound(t *testing.T) {
	svc, bookings, _, _ := newTestService()
	bookings.On("GetByID", mock.Anything, int64(1)).Return(nil, bookingRepo.ErrBookingNotFound)

	_, err := svc.GetByID(context.Background(), 1, 10)

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetUserBookings_StatusFilter(t *testing.T) {
	svc, bookings, _, _ := newTestService()
	status := domain.StatusConfirmed
	bookings.On("GetByUserID", mock.Anything, domain.UserBookingsFilter{UserID: 10, Status: &status}).
		Return([]*domain.Booking{testBooking(1, 10, domain.StatusConfirmed)}, nil)

	resp, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		UserID: 10,
		Status: ptr.Ptr("confirmed"),
	})

	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)
}

func TestGetUserBookings_InvalidStatus(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		UserID: 10,
		Status: ptr.Ptr("nonsense"),
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancel_ReleasesSlotAndPublishes(t *testing.T) {
	svc, bookings, slots, events := newTestService()
	reason := ptr.Ptr("плохое самочувствие")

	bookings.On("GetByID", mock.Anything, int64(1)).Return(testBooking(1, 10, domain.StatusConfirmed), nil)
	bookings.On("Cancel", mock.Anything, int64(1), domain.StatusCancelledByUser, reason).Return(nil)
	slots.On("DeleteByBookingID", mock.Anything, int64(1)).Return(nil)
	events.On("PublishBookingCancelled", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.ID == 1 && b.Status == domain.StatusCancelledByUser
	})).Return()

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{
		UserID:             10,
		CancellationReason: reason,
	})

	require.NoError(t, err)
	bookings.AssertExpectations(t)
	slots.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestCancel_ForeignBooking(t *testing.T) {
	svc, bookings, slots, _ := newTestService()
	bookings.On("GetByID", mock.Anything, int64(1)).Return(testBooking(1, 10, domain.StatusConfirmed), nil)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 99})

	assert.ErrorIs(t, err, ErrAccessDenied)
	slots.AssertNotCalled(t, "DeleteByBookingID", mock.Anything, mock.Anything)
}

func TestCancel_CompletedBookingRejected(t *testing.T) {
	svc, bookings, slots, events := newTestService()
	bookings.On("GetByID", mock.Anything, int64(1)).Return(testBooking(1, 10, domain.StatusCompleted), nil)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 10})

	assert.ErrorIs(t, err, ErrCannotCancel)
	slots.AssertNotCalled(t, "DeleteByBookingID", mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "PublishBookingCancelled", mock.Anything, mock.Anything)
}

func TestMarkPaymentSucceeded(t *testing.T) {
	svc, bookings, slots, _ := newTestService()
	bookings.On("GetByID", mock.Anything, int64(1)).Return(testBooking(1, 10, domain.StatusRequested), nil)
	bookings.On("UpdateStatus", mock.Anything, int64(1), domain.StatusPaymentSuccess).Return(nil)

	err := svc.MarkPaymentSucceeded(context.Background(), 1)

	require.NoError(t, err)
	slots.AssertNotCalled(t, "DeleteByBookingID", mock.Anything, mock.Anything)
}

func TestMarkPaymentFailed_ReleasesSlot(t *testing.T) {
	svc, bookings, slots, _ := newTestService()
	bookings.On("GetByID", mock.Anything, int64(1)).Return(testBooking(1, 10, domain.StatusRequested), nil)
	bookings.On("UpdateStatus", mock.Anything, int64(1), domain.StatusOnHold).Return(nil)
	slots.On("DeleteByBookingID", mock.Anything, int64(1)).Return(nil)

	err := svc.MarkPaymentFailed(context.Background(), 1)

	require.NoError(t, err)
	slots.AssertExpectations(t)
}

func TestConfirm_RequiresPaymentSuccess(t *testing.T) {
	svc, bookings, _, _ := newTestService()
	bookings.On("GetByID", mock.Anything, int64(1)).Return(testBooking(1, 10, domain.StatusRequested), nil)

	err := svc.Confirm(context.Background(), 1)

	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirm_FromPaymentSuccess(t *testing.T) {
	svc, bookings, _, _ := newTestService()
	bookings.On("GetByID", mock.Anything, int64(1)).Return(testBooking(1, 10, domain.StatusPaymentSuccess), nil)
	bookings.On("UpdateStatus", mock.Anything, int64(1), domain.StatusConfirmed).Return(nil)

	err := svc.Confirm(context.Background(), 1)

	require.NoError(t, err)
	bookings.AssertExpectations(t)
}
