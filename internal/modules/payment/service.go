package payment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"studiobook/internal/modules/booking"
	"studiobook/internal/repository"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	EventCompleted = "payment.completed"
	EventFailed    = "payment.failed"
)

type bookingConfirmer interface {
	ConfirmPayment(ctx context.Context, bookingID int64, paymentRef string) (bool, error)
}

// confirmAdapter narrows booking.Service for the webhook path.
type confirmAdapter struct {
	svc *booking.Service
}

func (a confirmAdapter) ConfirmPayment(ctx context.Context, bookingID int64, paymentRef string) (bool, error) {
	_, err := a.svc.ConfirmPayment(ctx, bookingID, paymentRef)
	if err != nil {
		return false, err
	}
	return true, nil
}

// statusCache memoizes charge lookups for the lifetime of one webhook
// request. Providers replay events and batch them after outages, so the same
// session ref often shows up several times in one payload; the cache keeps
// each ref to a single read. It is never shared across requests.
type statusCache struct {
	charges map[string]*repository.Charge
}

func newStatusCache() *statusCache {
	return &statusCache{charges: make(map[string]*repository.Charge)}
}

func (c *statusCache) get(ref string) (*repository.Charge, bool) {
	ch, ok := c.charges[ref]
	return ch, ok
}

func (c *statusCache) put(ref string, ch *repository.Charge) {
	c.charges[ref] = ch
}

// Service processes provider webhook callbacks: it verifies each event's
// signature, marks the charge paid or failed, and confirms the booking.
type Service struct {
	charges  chargeRepo
	gateway  *HostedLinkGateway
	bookings bookingConfirmer
	log      zerolog.Logger

	now func() time.Time
}

func NewService(charges *repository.ChargeRepository, gateway *HostedLinkGateway, bookings *booking.Service, log zerolog.Logger) *Service {
	return &Service{
		charges:  charges,
		gateway:  gateway,
		bookings: confirmAdapter{svc: bookings},
		log:      log,
		now:      time.Now,
	}
}

// ProcessWebhook handles a batch of callback events. Each event succeeds or
// fails independently; a bad event never blocks the rest of the batch.
func (s *Service) ProcessWebhook(ctx context.Context, req WebhookRequest) WebhookResponse {
	cache := newStatusCache()
	resp := WebhookResponse{Results: make([]WebhookEventResult, 0, len(req.Events))}
	for _, ev := range req.Events {
		resp.Results = append(resp.Results, s.processEvent(ctx, cache, ev))
	}
	return resp
}

func (s *Service) processEvent(ctx context.Context, cache *statusCache, ev WebhookEvent) WebhookEventResult {
	res := WebhookEventResult{SessionRef: ev.SessionRef}

	if !s.gateway.VerifyCallbackSignature(ev.SessionRef, ev.Amount, ev.Signature) {
		s.log.Warn().Str("session_ref", ev.SessionRef).Msg("webhook event with bad signature")
		res.Status = "rejected"
		res.Detail = "invalid signature"
		return res
	}

	charge, err := s.lookupCharge(ctx, cache, ev.SessionRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			res.Status = "rejected"
			res.Detail = "unknown session"
			return res
		}
		s.log.Error().Err(err).Str("session_ref", ev.SessionRef).Msg("charge lookup failed")
		res.Status = "error"
		res.Detail = "charge lookup failed"
		return res
	}

	switch ev.Event {
	case EventCompleted:
		return s.handleCompleted(ctx, cache, charge, ev)
	case EventFailed:
		return s.handleFailed(ctx, cache, charge, ev)
	default:
		res.Status = "ignored"
		res.Detail = "unsupported event type"
		return res
	}
}

func (s *Service) handleCompleted(ctx context.Context, cache *statusCache, charge *repository.Charge, ev WebhookEvent) WebhookEventResult {
	res := WebhookEventResult{SessionRef: ev.SessionRef}

	if charge.Status == repository.ChargePaid {
		// Replay of an already-processed event.
		res.Status = "duplicate"
		return res
	}

	raw := rawEventBody(ev)
	flipped, err := s.charges.MarkPaidIdempotent(ctx, charge.ID, raw, s.now().UTC())
	if err != nil {
		s.log.Error().Err(err).Str("session_ref", ev.SessionRef).Msg("mark charge paid failed")
		res.Status = "error"
		res.Detail = "persisting payment failed"
		return res
	}
	if !flipped {
		res.Status = "duplicate"
		return res
	}
	charge.Status = repository.ChargePaid
	cache.put(charge.ID, charge)

	if _, err := s.bookings.ConfirmPayment(ctx, charge.BookingID, charge.ID); err != nil {
		// The charge is recorded paid; booking confirmation errors are
		// surfaced so the provider retries the event.
		s.log.Error().Err(err).
			Int64("booking_id", charge.BookingID).
			Str("session_ref", ev.SessionRef).
			Msg("booking confirmation failed")
		res.Status = "error"
		res.Detail = "booking confirmation failed"
		return res
	}

	res.Status = "processed"
	return res
}

func (s *Service) handleFailed(ctx context.Context, cache *statusCache, charge *repository.Charge, ev WebhookEvent) WebhookEventResult {
	res := WebhookEventResult{SessionRef: ev.SessionRef}

	if charge.Status != repository.ChargeCreated {
		res.Status = "ignored"
		res.Detail = "charge not awaiting payment"
		return res
	}
	if err := s.charges.MarkFailed(ctx, charge.ID, rawEventBody(ev)); err != nil {
		s.log.Error().Err(err).Str("session_ref", ev.SessionRef).Msg("mark charge failed errored")
		res.Status = "error"
		res.Detail = "persisting failure failed"
		return res
	}
	charge.Status = repository.ChargeFailed
	cache.put(charge.ID, charge)

	res.Status = "processed"
	return res
}

func (s *Service) lookupCharge(ctx context.Context, cache *statusCache, ref string) (*repository.Charge, error) {
	if c, ok := cache.get(ref); ok {
		return c, nil
	}
	c, err := s.charges.GetByID(ctx, ref)
	if err != nil {
		return nil, err
	}
	cache.put(ref, c)
	return c, nil
}

func rawEventBody(ev WebhookEvent) string {
	b, _ := json.Marshal(ev)
	return string(b)
}
