package booking

import "errors"

var (
	ErrValidation              = errors.New("validation error")
	ErrNotFound                = errors.New("booking not found")
	ErrNotAvailable            = errors.New("booking not available")
	ErrOutsideOperatingHours   = errors.New("requested interval is outside operating hours")
	ErrOverbooking             = errors.New("overbooking constraint violation")
	ErrUnauthorized            = errors.New("not the booking customer or studio owner")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrCancellationTooLate     = errors.New("too close to booking start to cancel")
	ErrPaymentFailed           = errors.New("payment failed")
	ErrRefundFailed            = errors.New("refund failed")
)
