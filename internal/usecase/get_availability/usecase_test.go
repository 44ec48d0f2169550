package get_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/ptr"
)

// MockCatalogRepository мок каталога услуг и филиалов
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *MockCatalogRepository) GetBranch(ctx context.Context, id int64) (*domain.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Branch), args.Error(1)
}

// MockArrangementRepository мок репозитория ресурсов
type MockArrangementRepository struct {
	mock.Mock
}

func (m *MockArrangementRepository) ListActive(ctx context.Context, serviceID, branchID int64) ([]*domain.Arrangement, error) {
	args := m.Called(ctx, serviceID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Arrangement), args.Error(1)
}

// MockTimeSlotRepository мок леджера занятых слотов
type MockTimeSlotRepository struct {
	mock.Mock
}

func (m *MockTimeSlotRepository) OccupiedIntervals(ctx context.Context, arrangementIDs []int64, dateFrom, dateTo time.Time) ([]domain.OccupiedInterval, error) {
	args := m.Called(ctx, arrangementIDs, dateFrom, dateTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OccupiedInterval), args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func newTestUseCase() (*UseCase, *MockCatalogRepository, *MockArrangementRepository, *MockTimeSlotRepository) {
	catalog := new(MockCatalogRepository)
	arrangements := new(MockArrangementRepository)
	slots := new(MockTimeSlotRepository)
	uc := NewUseCase(catalog, arrangements, slots, nopLogger{})
	return uc, catalog, arrangements, slots
}

func activeService() *domain.Service {
	return &domain.Service{ID: 5, Name: "Massage", DurationMinutes: 60, IsActive: true}
}

func activeBranch() *domain.Branch {
	return &domain.Branch{ID: 3, Name: "Central", OpenTime: "10:00", CloseTime: "13:00", IsActive: true}
}

func room(id int64, arrangementType string, basePrice float64, discountPrice *float64) *domain.Arrangement {
	return &domain.Arrangement{
		ID:              id,
		ServiceID:       5,
		BranchID:        3,
		ArrangementType: arrangementType,
		BasePrice:       basePrice,
		DiscountPrice:   discountPrice,
		IsActive:        true,
	}
}

func availabilityRequest() *Request {
	return &Request{
		BranchID:  3,
		ServiceID: 5,
		DateFrom:  testDate,
		DateTo:    testDate,
	}
}

func TestExecute_NoArrangements(t *testing.T) {
	uc, catalog, arrangements, _ := newTestUseCase()
	catalog.On("GetService", mock.Anything, int64(5)).Return(activeService(), nil)
	catalog.On("GetBranch", mock.Anything, int64(3)).Return(activeBranch(), nil)
	arrangements.On("ListActive", mock.Anything, int64(5), int64(3)).Return([]*domain.Arrangement{}, nil)

	resp, err := uc.Execute(context.Background(), availabilityRequest())

	require.NoError(t, err)
	assert.Empty(t, resp.Pools)
	assert.Empty(t, resp.Availability)
}

func TestExecute_GroupsInterchangeableRoomsIntoOnePool(t *testing.T) {
	uc, catalog, arrangements, slots := newTestUseCase()
	catalog.On("GetService", mock.Anything, int64(5)).Return(activeService(), nil)
	catalog.On("GetBranch", mock.Anything, int64(3)).Return(activeBranch(), nil)

	// Две одинаковые комнаты - один пул; третья дешевле - отдельный пул
	first := room(1, "single_room", 100, nil)
	first.RoomNumber = "101"
	second := room(2, "single_room", 100, nil)
	second.RoomNumber = "102"
	discounted := room(3, "single_room", 100, ptr.Ptr(80.0))
	discounted.RoomNumber = "103"

	arrangements.On("ListActive", mock.Anything, int64(5), int64(3)).
		Return([]*domain.Arrangement{first, second, discounted}, nil)
	slots.On("OccupiedIntervals", mock.Anything, []int64{1, 2, 3}, testDate, testDate).
		Return([]domain.OccupiedInterval{}, nil)

	resp, err := uc.Execute(context.Background(), availabilityRequest())

	require.NoError(t, err)
	require.Len(t, resp.Pools, 2)
	assert.Equal(t, 2, resp.Pools[0].MemberCount)
	assert.Equal(t, 1, resp.Pools[1].MemberCount)
	assert.NotEqual(t, resp.Pools[0].Key, resp.Pools[1].Key)
	// Представительная метка пула - номер первой комнаты
	assert.Equal(t, "101", resp.Pools[0].RoomNumber)
	assert.Equal(t, "103", resp.Pools[1].RoomNumber)
}

func TestExecute_PoolAvailableWhileAnyMemberFree(t *testing.T) {
	uc, catalog, arrangements, slots := newTestUseCase()
	catalog.On("GetService", mock.Anything, int64(5)).Return(activeService(), nil)
	catalog.On("GetBranch", mock.Anything, int64(3)).Return(activeBranch(), nil)
	arrangements.On("ListActive", mock.Anything, int64(5), int64(3)).Return([]*domain.Arrangement{
		room(1, "single_room", 100, nil),
		room(2, "single_room", 100, nil),
	}, nil)
	slots.On("OccupiedIntervals", mock.Anything, []int64{1, 2}, testDate, testDate).
		Return([]domain.OccupiedInterval{
			interval(1, "10:00", "13:00"), // комната 1 занята весь день
			interval(2, "11:00", "12:00"), // комната 2 занята только в 11
		}, nil)

	resp, err := uc.Execute(context.Background(), availabilityRequest())

	require.NoError(t, err)
	require.Len(t, resp.Pools, 1)

	hours := resp.Availability[resp.Pools[0].Key][testDate.Format(domain.DateFormat)]
	assert.Equal(t, SlotAvailable, hours["10:00"])
	assert.Equal(t, SlotBooked, hours["11:00"])
	assert.Equal(t, SlotAvailable, hours["12:00"])
}

func TestExecute_GridBoundedByWorkingHours(t *testing.T) {
	uc, catalog, arrangements, slots := newTestUseCase()
	catalog.On("GetService", mock.Anything, int64(5)).Return(activeService(), nil)
	catalog.On("GetBranch", mock.Anything, int64(3)).Return(activeBranch(), nil)
	arrangements.On("ListActive", mock.Anything, int64(5), int64(3)).
		Return([]*domain.Arrangement{room(1, "single_room", 100, nil)}, nil)
	slots.On("OccupiedIntervals", mock.Anything, []int64{1}, testDate, testDate).
		Return([]domain.OccupiedInterval{}, nil)

	resp, err := uc.Execute(context.Background(), availabilityRequest())

	require.NoError(t, err)
	hours := resp.Availability[resp.Pools[0].Key][testDate.Format(domain.DateFormat)]
	// Открыто 10:00-13:00: корзины 10, 11, 12
	assert.Len(t, hours, 3)
	assert.NotContains(t, hours, "09:00")
	assert.NotContains(t, hours, "13:00")
}

func TestExecute_InactiveServiceNotFound(t *testing.T) {
	uc, catalog, _, _ := newTestUseCase()
	service := activeService()
	service.IsActive = false
	catalog.On("GetService", mock.Anything, int64(5)).Return(service, nil)

	_, err := uc.Execute(context.Background(), availabilityRequest())

	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_InvalidDateRange(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	req := availabilityRequest()
	req.DateTo = testDate.AddDate(0, 0, -1)

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidInput)
}
