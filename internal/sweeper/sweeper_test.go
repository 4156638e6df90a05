package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"studiobook/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) ListStalePending(ctx context.Context, before time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *mockStore) ExpireBatch(ctx context.Context, ids []int64) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) NotifyBookingExpired(ctx context.Context, userID, bookingID int64) error {
	args := m.Called(ctx, userID, bookingID)
	return args.Error(0)
}

func newTestSweeper(store *mockStore, notifs *mockNotifier) *Sweeper {
	var n notifier
	if notifs != nil {
		n = notifs
	}
	s := New(store, n, zerolog.Nop(), RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
		BackoffFactor: 2,
	})
	s.sleep = func(time.Duration) {}
	return s
}

func staleBookings() []domain.Booking {
	return []domain.Booking{
		{ID: 1, UserID: 10, Status: domain.BookingPending},
		{ID: 2, UserID: 11, Status: domain.BookingPending},
	}
}

func TestRunNothingStale(t *testing.T) {
	store := new(mockStore)
	store.On("ListStalePending", mock.Anything, mock.Anything).Return([]domain.Booking{}, nil)

	n, err := newTestSweeper(store, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	store.AssertNotCalled(t, "ExpireBatch", mock.Anything, mock.Anything)
}

func TestRunExpiresBatchAndNotifies(t *testing.T) {
	store := new(mockStore)
	notifs := new(mockNotifier)
	store.On("ListStalePending", mock.Anything, mock.Anything).Return(staleBookings(), nil)
	store.On("ExpireBatch", mock.Anything, []int64{1, 2}).Return(nil)
	notifs.On("NotifyBookingExpired", mock.Anything, int64(10), int64(1)).Return(nil)
	notifs.On("NotifyBookingExpired", mock.Anything, int64(11), int64(2)).Return(nil)

	n, err := newTestSweeper(store, notifs).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	notifs.AssertExpectations(t)
}

func TestRunNotificationFailureDoesNotFailSweep(t *testing.T) {
	store := new(mockStore)
	notifs := new(mockNotifier)
	store.On("ListStalePending", mock.Anything, mock.Anything).Return(staleBookings(), nil)
	store.On("ExpireBatch", mock.Anything, []int64{1, 2}).Return(nil)
	notifs.On("NotifyBookingExpired", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	n, err := newTestSweeper(store, notifs).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRunRetriesTransientFailure(t *testing.T) {
	store := new(mockStore)
	store.On("ListStalePending", mock.Anything, mock.Anything).Return(nil, errors.New("db timeout")).Once()
	store.On("ListStalePending", mock.Anything, mock.Anything).Return(staleBookings(), nil)
	store.On("ExpireBatch", mock.Anything, []int64{1, 2}).Return(nil)

	n, err := newTestSweeper(store, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRunGivesUpAfterMaxRetries(t *testing.T) {
	store := new(mockStore)
	dbErr := errors.New("db down")
	store.On("ListStalePending", mock.Anything, mock.Anything).Return(nil, dbErr)

	_, err := newTestSweeper(store, nil).Run(context.Background())
	assert.ErrorIs(t, err, dbErr)
	store.AssertNumberOfCalls(t, "ListStalePending", 3)
}

func TestRetryPolicyBackoff(t *testing.T) {
	p := RetryPolicy{
		MaxRetries:    5,
		InitialDelay:  2 * time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2,
	}
	assert.Equal(t, 2*time.Second, p.NextDelay(1))
	assert.Equal(t, 4*time.Second, p.NextDelay(2))
	assert.Equal(t, 8*time.Second, p.NextDelay(3))
	assert.Equal(t, 10*time.Second, p.NextDelay(4))
	assert.Equal(t, 10*time.Second, p.NextDelay(5))
}
