package messaging

import (
	"context"
	"errors"
	"strings"

	"studiobook/internal/domain"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	ErrNotParticipant = errors.New("not a participant of this booking")
	ErrEmptyContent   = errors.New("message content cannot be empty")
	ErrNotFound       = errors.New("booking not found")
)

type messageStore interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByBooking(ctx context.Context, bookingID int64, limit, offset int) ([]domain.Message, error)
	MarkRead(ctx context.Context, bookingID, readerID int64) error
}

type bookingStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

type roomStore interface {
	GetAddressForRoom(ctx context.Context, roomID int64) (*domain.Address, error)
}

type ownerStore interface {
	GetOwner(ctx context.Context, addressID int64) (*domain.Owner, error)
}

// Service handles the message thread attached to a booking. The only
// participants are the booking's customer and the studio owner.
type Service struct {
	messages messageStore
	bookings bookingStore
	rooms    roomStore
	owners   ownerStore
	hub      *Hub
	log      zerolog.Logger
}

func NewService(messages messageStore, bookings bookingStore, rooms roomStore, owners ownerStore, hub *Hub, log zerolog.Logger) *Service {
	return &Service{
		messages: messages,
		bookings: bookings,
		rooms:    rooms,
		owners:   owners,
		hub:      hub,
		log:      log,
	}
}

// Send appends a message to the booking thread and pushes it to the other
// participant's live connection when there is one.
func (s *Service) Send(ctx context.Context, bookingID, senderID int64, req SendMessageRequest) (*domain.Message, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyContent
	}

	customerID, ownerID, err := s.participants(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if senderID != customerID && senderID != ownerID {
		return nil, ErrNotParticipant
	}

	msg := &domain.Message{
		BookingID: bookingID,
		SenderID:  senderID,
		Content:   strings.TrimSpace(req.Content),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	recipientID := customerID
	if senderID == customerID {
		recipientID = ownerID
	}
	if s.hub != nil && recipientID != 0 {
		delivered := s.hub.SendToUser(recipientID, WSEvent{
			Type:    "message.new",
			Message: toMessageResponse(msg, false),
		})
		if !delivered {
			s.log.Debug().Int64("recipient_id", recipientID).Msg("recipient offline, message stored only")
		}
	}
	return msg, nil
}

// List returns the thread for the booking, newest first, and marks messages
// from the other party as read.
func (s *Service) List(ctx context.Context, bookingID, readerID int64, limit, offset int) ([]MessageResponse, error) {
	customerID, ownerID, err := s.participants(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if readerID != customerID && readerID != ownerID {
		return nil, ErrNotParticipant
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	msgs, err := s.messages.ListByBooking(ctx, bookingID, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := s.messages.MarkRead(ctx, bookingID, readerID); err != nil {
		s.log.Warn().Err(err).Int64("booking_id", bookingID).Msg("marking messages read failed")
	}

	out := make([]MessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, toMessageResponse(&msgs[i], msgs[i].SenderID == readerID))
	}
	return out, nil
}

func (s *Service) participants(ctx context.Context, bookingID int64) (customerID, ownerID int64, err error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, ErrNotFound
		}
		return 0, 0, err
	}

	addr, err := s.rooms.GetAddressForRoom(ctx, b.RoomID)
	if err != nil {
		return 0, 0, err
	}
	owner, err := s.owners.GetOwner(ctx, addr.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.UserID, 0, nil
		}
		return 0, 0, err
	}
	return b.UserID, owner.UserID, nil
}

func toMessageResponse(m *domain.Message, isMine bool) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		BookingID: m.BookingID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		IsMine:    isMine,
		CreatedAt: m.CreatedAt,
		Read:      m.ReadAt != nil,
	}
}
