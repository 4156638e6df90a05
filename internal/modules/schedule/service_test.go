package schedule

import (
	"context"
	"testing"
	"time"

	"studiobook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockEntryRepo struct{ mock.Mock }

func (m *mockEntryRepo) ListByAddress(ctx context.Context, addressID int64) ([]domain.OperatingEntry, error) {
	args := m.Called(ctx, addressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OperatingEntry), args.Error(1)
}

func (m *mockEntryRepo) ReplaceForAddress(ctx context.Context, addressID int64, entries []domain.OperatingEntry) error {
	args := m.Called(ctx, addressID, entries)
	return args.Error(0)
}

type mockBookingQuery struct{ mock.Mock }

func (m *mockBookingQuery) ListActiveForRoomOn(ctx context.Context, roomID int64, day time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, roomID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *mockBookingQuery) ListActiveForRoomFrom(ctx context.Context, roomID int64, from time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, roomID, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type mockRoomResolver struct{ mock.Mock }

func (m *mockRoomResolver) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *mockRoomResolver) GetAddressForRoom(ctx context.Context, roomID int64) (*domain.Address, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

type mockOwnerResolver struct{ mock.Mock }

func (m *mockOwnerResolver) GetOwner(ctx context.Context, addressID int64) (*domain.Owner, error) {
	args := m.Called(ctx, addressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Owner), args.Error(1)
}

func newTestService() (*Service, *mockEntryRepo, *mockBookingQuery, *mockRoomResolver, *mockOwnerResolver) {
	entries := new(mockEntryRepo)
	bookings := new(mockBookingQuery)
	rooms := new(mockRoomResolver)
	owners := new(mockOwnerResolver)
	svc := NewService(entries, bookings, rooms, owners)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, entries, bookings, rooms, owners
}

func utcAddress() *domain.Address {
	return &domain.Address{ID: 1, Timezone: "UTC"}
}

func TestStartTimesHappyPath(t *testing.T) {
	svc, entries, bookings, rooms, _ := newTestService()

	rooms.On("GetAddressForRoom", mock.Anything, int64(5)).Return(utcAddress(), nil)
	entries.On("ListByAddress", mock.Anything, int64(1)).
		Return([]domain.OperatingEntry{fixedDaily("09:00", "12:00")}, nil)
	bookings.On("ListActiveForRoomOn", mock.Anything, int64(5), mock.Anything).
		Return([]domain.Booking{}, nil)

	slots, err := svc.StartTimes(context.Background(), 5, "2025-06-04")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, slotTimes(slots))
}

func TestStartTimesClosedDayReturnsEmptyList(t *testing.T) {
	svc, entries, _, rooms, _ := newTestService()

	rooms.On("GetAddressForRoom", mock.Anything, int64(5)).Return(utcAddress(), nil)
	entries.On("ListByAddress", mock.Anything, int64(1)).Return([]domain.OperatingEntry{}, nil)

	slots, err := svc.StartTimes(context.Background(), 5, "2025-06-04")
	require.NoError(t, err)
	require.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestStartTimesUnknownRoom(t *testing.T) {
	svc, _, _, rooms, _ := newTestService()

	rooms.On("GetAddressForRoom", mock.Anything, int64(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.StartTimes(context.Background(), 99, "2025-06-04")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStartTimesBadDate(t *testing.T) {
	svc, _, _, rooms, _ := newTestService()

	rooms.On("GetAddressForRoom", mock.Anything, int64(5)).Return(utcAddress(), nil)

	_, err := svc.StartTimes(context.Background(), 5, "04-06-2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestEndTimesHappyPath(t *testing.T) {
	svc, entries, bookings, rooms, _ := newTestService()

	rooms.On("GetAddressForRoom", mock.Anything, int64(5)).Return(utcAddress(), nil)
	entries.On("ListByAddress", mock.Anything, int64(1)).
		Return([]domain.OperatingEntry{fixedDaily("09:00", "12:00")}, nil)
	bookings.On("ListActiveForRoomFrom", mock.Anything, int64(5), mock.Anything).
		Return([]domain.Booking{}, nil)

	slots, err := svc.EndTimes(context.Background(), 5, "2025-06-04", "10:00")
	require.NoError(t, err)
	assert.Equal(t, []string{"11:00", "12:00"}, slotTimes(slots))
}

func TestEndTimesStartOutsideHours(t *testing.T) {
	svc, entries, bookings, rooms, _ := newTestService()

	rooms.On("GetAddressForRoom", mock.Anything, int64(5)).Return(utcAddress(), nil)
	entries.On("ListByAddress", mock.Anything, int64(1)).
		Return([]domain.OperatingEntry{fixedDaily("09:00", "12:00")}, nil)
	bookings.On("ListActiveForRoomFrom", mock.Anything, int64(5), mock.Anything).
		Return([]domain.Booking{}, nil)

	_, err := svc.EndTimes(context.Background(), 5, "2025-06-04", "13:00")
	assert.ErrorIs(t, err, ErrOutsideOperatingHours)
}

func TestReplaceHoursRequiresOwner(t *testing.T) {
	svc, _, _, _, owners := newTestService()

	owners.On("GetOwner", mock.Anything, int64(1)).
		Return(&domain.Owner{UserID: 7}, nil)

	err := svc.ReplaceHours(context.Background(), 1, 8, []domain.OperatingEntry{fixedDaily("09:00", "17:00")})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestReplaceHoursValidSet(t *testing.T) {
	svc, entries, _, _, owners := newTestService()

	owners.On("GetOwner", mock.Anything, int64(1)).
		Return(&domain.Owner{UserID: 7}, nil)
	entries.On("ReplaceForAddress", mock.Anything, int64(1), mock.Anything).Return(nil)

	set := []domain.OperatingEntry{
		variableDay(1, "09:00", "18:00"),
		variableDay(2, "09:00", "18:00"),
		{Mode: domain.ModeVariableByDay, DayOfWeek: intPtr(0), IsClosed: true},
	}
	err := svc.ReplaceHours(context.Background(), 1, 7, set)
	require.NoError(t, err)
	entries.AssertCalled(t, "ReplaceForAddress", mock.Anything, int64(1), mock.Anything)
}

func TestValidateEntrySetRejectsMixedModes(t *testing.T) {
	err := validateEntrySet([]domain.OperatingEntry{
		fixedDaily("09:00", "17:00"),
		variableDay(1, "10:00", "12:00"),
	})
	assert.ErrorIs(t, err, ErrInvalidHoursConfig)
}

func TestValidateEntrySetRejectsDuplicateDays(t *testing.T) {
	err := validateEntrySet([]domain.OperatingEntry{
		variableDay(1, "09:00", "17:00"),
		variableDay(1, "10:00", "12:00"),
	})
	assert.ErrorIs(t, err, ErrInvalidHoursConfig)
}

func TestValidateEntrySetRejectsInvertedHours(t *testing.T) {
	err := validateEntrySet([]domain.OperatingEntry{fixedDaily("17:00", "09:00")})
	assert.ErrorIs(t, err, ErrInvalidHoursConfig)
}

func TestValidateEntrySetAcceptsSingleAlwaysOpen(t *testing.T) {
	err := validateEntrySet([]domain.OperatingEntry{{Mode: domain.ModeAlwaysOpen}})
	assert.NoError(t, err)
}
