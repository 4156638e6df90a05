package messaging

import "time"

type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

type MessageResponse struct {
	ID        int64     `json:"id"`
	BookingID int64     `json:"booking_id"`
	SenderID  int64     `json:"sender_id"`
	Content   string    `json:"content"`
	IsMine    bool      `json:"is_mine"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

// WSEvent is the payload pushed over the websocket when a new message lands.
type WSEvent struct {
	Type    string          `json:"type"`
	Message MessageResponse `json:"message"`
}
