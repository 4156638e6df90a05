package sweeper

import (
	"context"
	"time"

	"studiobook/internal/domain"
	"studiobook/internal/metrics"

	"github.com/rs/zerolog"
)

type bookingStore interface {
	ListStalePending(ctx context.Context, before time.Time) ([]domain.Booking, error)
	ExpireBatch(ctx context.Context, ids []int64) error
}

type notifier interface {
	NotifyBookingExpired(ctx context.Context, userID, bookingID int64) error
}

// Sweeper expires pending bookings whose payment link has lapsed. Expiry is a
// bulk guarded update, so overlapping runs and reruns over the same rows are
// harmless.
type Sweeper struct {
	store  bookingStore
	notifs notifier
	log    zerolog.Logger
	retry  RetryPolicy

	now   func() time.Time
	sleep func(time.Duration)
}

func New(store bookingStore, notifs notifier, log zerolog.Logger, retry RetryPolicy) *Sweeper {
	return &Sweeper{
		store:  store,
		notifs: notifs,
		log:    log,
		retry:  retry,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Run performs one sweep, retrying transient failures per the retry policy.
// Returns the number of bookings expired.
func (s *Sweeper) Run(ctx context.Context) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= s.retry.MaxRetries; attempt++ {
		n, err := s.sweepOnce(ctx)
		if err == nil {
			metrics.IncSweeperRun("ok")
			metrics.AddSweeperExpired(n)
			if n > 0 {
				s.log.Info().Int("expired", n).Msg("sweep completed")
			}
			return n, nil
		}
		lastErr = err
		s.log.Warn().Err(err).Int("attempt", attempt).Msg("sweep attempt failed")
		if attempt < s.retry.MaxRetries {
			s.sleep(s.retry.NextDelay(attempt))
		}
	}
	metrics.IncSweeperRun("failed")
	s.log.Error().Err(lastErr).Msg("sweep failed after retries")
	return 0, lastErr
}

func (s *Sweeper) sweepOnce(ctx context.Context) (int, error) {
	stale, err := s.store.ListStalePending(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(stale))
	for _, b := range stale {
		ids = append(ids, b.ID)
	}
	if err := s.store.ExpireBatch(ctx, ids); err != nil {
		return 0, err
	}

	// Notification failures do not fail the sweep; the bookings are already
	// expired at this point.
	if s.notifs != nil {
		for _, b := range stale {
			if err := s.notifs.NotifyBookingExpired(ctx, b.UserID, b.ID); err != nil {
				s.log.Warn().Err(err).Int64("booking_id", b.ID).Msg("expiry notification failed")
			}
		}
	}
	return len(stale), nil
}
