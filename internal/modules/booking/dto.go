package booking

import (
	"time"

	"studiobook/internal/domain"
)

type CreateBookingRequest struct {
	RoomID    int64  `json:"room_id" binding:"required"`
	Date      string `json:"date" binding:"required"`       // "2006-01-02"
	StartTime string `json:"start_time" binding:"required"` // "15:04"
	EndTime   string `json:"end_time" binding:"required"`   // "15:04"
	EndDate   string `json:"end_date,omitempty"`            // multi-day, 24/7 only

	// Filled from the auth context, not the body.
	UserID int64 `json:"-"`
}

// BookingResponse mirrors the original API envelope, including the legacy
// integer status code alongside the string status.
type BookingResponse struct {
	ID         int64   `json:"id"`
	RoomID     int64   `json:"room_id"`
	UserID     int64   `json:"user_id"`
	Status     string  `json:"status"`
	StatusCode int     `json:"status_code"`
	Date       string  `json:"date"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	EndDate    *string `json:"end_date,omitempty"`
	TotalPrice float64 `json:"total_price"`

	PaymentLink          string     `json:"payment_link,omitempty"`
	PaymentLinkExpiresAt *time.Time `json:"payment_link_expires_at,omitempty"`
}

type CancelResponse struct {
	Booking  BookingResponse `json:"booking"`
	Refunded float64         `json:"refunded"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	resp := BookingResponse{
		ID:                   b.ID,
		RoomID:               b.RoomID,
		UserID:               b.UserID,
		Status:               string(b.Status),
		StatusCode:           b.Status.Code(),
		Date:                 b.Date.Format("2006-01-02"),
		StartTime:            b.StartAt.Format("15:04"),
		EndTime:              b.EndAt.Format("15:04"),
		TotalPrice:           b.TotalPrice,
		PaymentLink:          b.PaymentLink,
		PaymentLinkExpiresAt: b.PaymentLinkExpiresAt,
	}
	if b.EndDate != nil {
		d := b.EndDate.Format("2006-01-02")
		resp.EndDate = &d
	}
	return resp
}
