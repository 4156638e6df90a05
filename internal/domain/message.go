package domain

import "time"

// Message is one entry in a booking's thread between the customer and the
// studio owner.
type Message struct {
	ID        int64      `json:"id"`
	BookingID int64      `json:"booking_id"`
	SenderID  int64      `json:"sender_id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}
