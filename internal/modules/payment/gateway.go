package payment

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"studiobook/internal/modules/booking"
	"studiobook/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrUnknownSession   = errors.New("unknown payment session")
)

type chargeRepo interface {
	Create(ctx context.Context, c *repository.Charge) error
	GetByID(ctx context.Context, id string) (*repository.Charge, error)
	MarkPaidIdempotent(ctx context.Context, id string, rawBody string, paidAt time.Time) (bool, error)
	MarkRefunded(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, rawBody string) error
}

// HostedLinkGateway issues signed hosted-checkout links and answers
// session-status queries from the persisted charge records. The provider
// confirms completion through the webhook, which marks the charge paid.
type HostedLinkGateway struct {
	charges chargeRepo

	baseURL string
	secret  string
	linkTTL time.Duration

	now func() time.Time
}

var _ booking.PaymentGateway = (*HostedLinkGateway)(nil)

func NewHostedLinkGateway(charges chargeRepo, baseURL, secret string, linkTTL time.Duration) *HostedLinkGateway {
	if baseURL == "" {
		baseURL = "https://pay.studiobook.example/checkout"
	}
	return &HostedLinkGateway{
		charges: charges,
		baseURL: baseURL,
		secret:  secret,
		linkTTL: linkTTL,
		now:     time.Now,
	}
}

func (g *HostedLinkGateway) CreateSession(ctx context.Context, bookingID int64, amount float64, description string) (*booking.PaymentSession, error) {
	ref := uuid.NewString()
	expiresAt := g.now().UTC().Add(g.linkTTL)
	sig := g.Sign(ref, amount)

	u := url.Values{}
	u.Set("session", ref)
	u.Set("amount", formatAmount(amount))
	u.Set("description", description)
	u.Set("signature", sig)
	payURL := g.baseURL + "?" + u.Encode()

	c := &repository.Charge{
		ID:        ref,
		BookingID: bookingID,
		Amount:    amount,
		Status:    repository.ChargeCreated,
		PayURL:    payURL,
		Signature: sig,
		ExpiresAt: expiresAt,
	}
	if err := g.charges.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("save charge failed: %w", err)
	}

	return &booking.PaymentSession{Ref: ref, URL: payURL, ExpiresAt: expiresAt}, nil
}

func (g *HostedLinkGateway) VerifySession(ctx context.Context, ref string) (*booking.PaymentSessionStatus, error) {
	c, err := g.charges.GetByID(ctx, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownSession
		}
		return nil, err
	}

	st := &booking.PaymentSessionStatus{}
	switch c.Status {
	case repository.ChargePaid:
		st.Completed = true
	case repository.ChargeCreated:
		if g.now().UTC().After(c.ExpiresAt) {
			st.Expired = true
			st.Reason = "payment link expired"
		} else {
			st.Reason = "awaiting payment"
		}
	case repository.ChargeFailed:
		st.Reason = "payment failed at provider"
	case repository.ChargeRefunded:
		st.Reason = "charge already refunded"
	}
	return st, nil
}

// Refund marks the charge refunded. Idempotent: refunding an already
// refunded charge is a no-op.
func (g *HostedLinkGateway) Refund(ctx context.Context, ref string, amount float64) error {
	c, err := g.charges.GetByID(ctx, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownSession
		}
		return err
	}
	if c.Status == repository.ChargeRefunded {
		return nil
	}
	if c.Status != repository.ChargePaid {
		return fmt.Errorf("charge %s not refundable in status %s", ref, c.Status)
	}
	if amount > c.Amount {
		return fmt.Errorf("refund %s exceeds charged amount", formatAmount(amount))
	}
	return g.charges.MarkRefunded(ctx, ref)
}

// Sign computes the provider signature over session ref and amount.
func (g *HostedLinkGateway) Sign(ref string, amount float64) string {
	return md5Hex(strings.Join([]string{ref, formatAmount(amount), g.secret}, ":"))
}

// VerifyCallbackSignature checks a webhook event signature.
func (g *HostedLinkGateway) VerifyCallbackSignature(ref string, amount float64, signature string) bool {
	return strings.EqualFold(signature, g.Sign(ref, amount))
}

func formatAmount(a float64) string {
	return strconv.FormatFloat(a, 'f', 2, 64)
}

func md5Hex(s string) string {
	h := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(h[:]))
}
