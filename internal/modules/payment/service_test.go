package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"studiobook/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeChargeRepo is an in-memory stand-in tracking read counts, so tests can
// assert the per-request cache actually short-circuits repeat lookups.
type fakeChargeRepo struct {
	charges map[string]*repository.Charge
	reads   map[string]int
}

func newFakeChargeRepo() *fakeChargeRepo {
	return &fakeChargeRepo{
		charges: make(map[string]*repository.Charge),
		reads:   make(map[string]int),
	}
}

func (f *fakeChargeRepo) Create(ctx context.Context, c *repository.Charge) error {
	f.charges[c.ID] = c
	return nil
}

func (f *fakeChargeRepo) GetByID(ctx context.Context, id string) (*repository.Charge, error) {
	f.reads[id]++
	c, ok := f.charges[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeChargeRepo) MarkPaidIdempotent(ctx context.Context, id string, rawBody string, paidAt time.Time) (bool, error) {
	c, ok := f.charges[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if c.Status != repository.ChargeCreated {
		return false, nil
	}
	c.Status = repository.ChargePaid
	c.RawBody = &rawBody
	c.PaidAt = &paidAt
	return true, nil
}

func (f *fakeChargeRepo) MarkRefunded(ctx context.Context, id string) error {
	c, ok := f.charges[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if c.Status == repository.ChargePaid {
		c.Status = repository.ChargeRefunded
	}
	return nil
}

func (f *fakeChargeRepo) MarkFailed(ctx context.Context, id string, rawBody string) error {
	c, ok := f.charges[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Status = repository.ChargeFailed
	c.RawBody = &rawBody
	return nil
}

type stubConfirmer struct {
	calls []int64
	err   error
}

func (s *stubConfirmer) ConfirmPayment(ctx context.Context, bookingID int64, paymentRef string) (bool, error) {
	s.calls = append(s.calls, bookingID)
	if s.err != nil {
		return false, s.err
	}
	return true, nil
}

func newTestGateway(repo *fakeChargeRepo) *HostedLinkGateway {
	return NewHostedLinkGateway(repo, "https://pay.test/checkout", "test-secret", 30*time.Minute)
}

func newTestService(repo *fakeChargeRepo, gw *HostedLinkGateway, confirmer *stubConfirmer) *Service {
	return &Service{
		charges:  repo,
		gateway:  gw,
		bookings: confirmer,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
}

func createSession(t *testing.T, gw *HostedLinkGateway) *repository.Charge {
	t.Helper()
	session, err := gw.CreateSession(context.Background(), 42, 200, "Booking #42")
	require.NoError(t, err)
	c, err := gw.charges.GetByID(context.Background(), session.Ref)
	require.NoError(t, err)
	return c
}

func TestCreateSessionPersistsCharge(t *testing.T) {
	repo := newFakeChargeRepo()
	gw := newTestGateway(repo)

	session, err := gw.CreateSession(context.Background(), 42, 200, "Booking #42")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Ref)
	assert.Contains(t, session.URL, "https://pay.test/checkout?")
	assert.Contains(t, session.URL, session.Ref)

	c := repo.charges[session.Ref]
	require.NotNil(t, c)
	assert.Equal(t, repository.ChargeCreated, c.Status)
	assert.Equal(t, int64(42), c.BookingID)
	assert.Equal(t, gw.Sign(session.Ref, 200), c.Signature)
}

func TestVerifySessionStates(t *testing.T) {
	repo := newFakeChargeRepo()
	gw := newTestGateway(repo)
	c := createSession(t, gw)

	st, err := gw.VerifySession(context.Background(), c.ID)
	require.NoError(t, err)
	assert.False(t, st.Completed)
	assert.False(t, st.Expired)

	repo.charges[c.ID].Status = repository.ChargePaid
	st, err = gw.VerifySession(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, st.Completed)

	repo.charges[c.ID].Status = repository.ChargeCreated
	repo.charges[c.ID].ExpiresAt = time.Now().UTC().Add(-time.Minute)
	st, err = gw.VerifySession(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, st.Expired)

	_, err = gw.VerifySession(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestRefundIdempotent(t *testing.T) {
	repo := newFakeChargeRepo()
	gw := newTestGateway(repo)
	c := createSession(t, gw)
	repo.charges[c.ID].Status = repository.ChargePaid

	require.NoError(t, gw.Refund(context.Background(), c.ID, 200))
	assert.Equal(t, repository.ChargeRefunded, repo.charges[c.ID].Status)

	// Second refund is a no-op.
	require.NoError(t, gw.Refund(context.Background(), c.ID, 200))
}

func TestRefundRejectsUnpaidCharge(t *testing.T) {
	repo := newFakeChargeRepo()
	gw := newTestGateway(repo)
	c := createSession(t, gw)

	assert.Error(t, gw.Refund(context.Background(), c.ID, 200))
}

func TestWebhookCompletedConfirmsBooking(t *testing.T) {
	repo := newFakeChargeRepo()
	gw := newTestGateway(repo)
	confirmer := &stubConfirmer{}
	svc := newTestService(repo, gw, confirmer)
	c := createSession(t, gw)

	resp := svc.ProcessWebhook(context.Background(), WebhookRequest{Events: []WebhookEvent{{
		SessionRef: c.ID,
		Event:      EventCompleted,
		Amount:     200,
		Signature:  gw.Sign(c.ID, 200),
	}}})

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "processed", resp.Results[0].Status)
	assert.Equal(t, []int64{42}, confirmer.calls)
	assert.Equal(t, repository.ChargePaid, repo.charges[c.ID].Status)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	repo := newFakeChargeRepo()
	gw := newTestGateway(repo)
	confirmer := &stubConfirmer{}
	svc := newTestService(repo, gw, confirmer)
	c := createSession(t, gw)

	resp := svc.ProcessWebhook(context.Background(), WebhookRequest{Events: []WebhookEvent{{
		SessionRef: c.ID,
		Event:      EventCompleted,
		Amount:     200,
		Signature:  "DEADBEEF",
	}}})

	assert.Equal(t, "rejected", resp.Results[0].Status)
	assert.Empty(t, confirmer.calls)
	assert.Equal(t, repository.ChargeCreated, repo.charges[c.ID].Status)
}

func TestWebhookUnknownSession(t *testing.T) {
	repo := newFakeChargeRepo()
	gw := newTestGateway(repo)
	svc := newTestService(repo, gw, &stubConfirmer{})

	resp := svc.ProcessWebhook(context.Background(), WebhookRequest{Events: []WebhookEvent{{
		SessionRef: "ghost",
		Event:      EventCompleted,
		Amount:     200,
		Signature:  gw.Sign("ghost", 200),
	}}})

	assert.Equal(t, "rejected", resp.Results[0].Status)
	assert.Equal(t, "unknown session", resp.Results[0].Detail)
}

func TestWebhookReplayedEventIsDuplicate(t *testing.T) {
	repo := newFakeChargeRepo()
	gw := newTestGateway(repo)
	confirmer := &stubConfirmer{}
	svc := newTestService(repo, gw, confirmer)
	c := createSession(t, gw)

	ev := WebhookEvent{
		SessionRef: c.ID,
		Event:      EventCompleted,
		Amount:     200,
		Signature:  gw.Sign(c.ID, 200),
	}
	// The same event twice in one batch: the second sees the cached paid
	// charge without another repository read.
	repo.reads = map[string]int{}
	resp := svc.ProcessWebhook(context.Background(), WebhookRequest{Events: []WebhookEvent{ev, ev}})

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "processed", resp.Results[0].Status)
	assert.Equal(t, "duplicate", resp.Results[1].Status)
	assert.Len(t, confirmer.calls, 1)
	assert.Equal(t, 1, repo.reads[c.ID])
}

func TestWebhookConfirmFailureSurfacesError(t *testing.T) {
	repo := newFakeChargeRepo()
	gw := newTestGateway(repo)
	confirmer := &stubConfirmer{err: errors.New("booking gone")}
	svc := newTestService(repo, gw, confirmer)
	c := createSession(t, gw)

	resp := svc.ProcessWebhook(context.Background(), WebhookRequest{Events: []WebhookEvent{{
		SessionRef: c.ID,
		Event:      EventCompleted,
		Amount:     200,
		Signature:  gw.Sign(c.ID, 200),
	}}})

	assert.Equal(t, "error", resp.Results[0].Status)
	// The charge stays paid: money moved even though the booking update
	// needs a retry.
	assert.Equal(t, repository.ChargePaid, repo.charges[c.ID].Status)
}

func TestWebhookFailedEvent(t *testing.T) {
	repo := newFakeChargeRepo()
	gw := newTestGateway(repo)
	svc := newTestService(repo, gw, &stubConfirmer{})
	c := createSession(t, gw)

	resp := svc.ProcessWebhook(context.Background(), WebhookRequest{Events: []WebhookEvent{{
		SessionRef: c.ID,
		Event:      EventFailed,
		Amount:     200,
		Signature:  gw.Sign(c.ID, 200),
	}}})

	assert.Equal(t, "processed", resp.Results[0].Status)
	assert.Equal(t, repository.ChargeFailed, repo.charges[c.ID].Status)
}
