package repository

import (
	"context"
	"time"

	"studiobook/internal/domain"

	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

type messageModel struct {
	ID        int64      `gorm:"column:id;primaryKey"`
	BookingID int64      `gorm:"column:booking_id"`
	SenderID  int64      `gorm:"column:sender_id"`
	Content   string     `gorm:"column:content"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	ReadAt    *time.Time `gorm:"column:read_at"`
}

func (messageModel) TableName() string { return "booking_messages" }

func toDomainMessage(m messageModel) *domain.Message {
	return &domain.Message{
		ID:        m.ID,
		BookingID: m.BookingID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		ReadAt:    m.ReadAt,
	}
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	m := messageModel{
		BookingID: msg.BookingID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*msg = *toDomainMessage(m)
	return nil
}

func (r *MessageRepository) ListByBooking(ctx context.Context, bookingID int64, limit, offset int) ([]domain.Message, error) {
	var ms []messageModel
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Message, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainMessage(m))
	}
	return out, nil
}

// MarkRead marks all messages in the thread sent by the other party as read.
func (r *MessageRepository) MarkRead(ctx context.Context, bookingID, readerID int64) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&messageModel{}).
		Where("booking_id = ? AND sender_id <> ? AND read_at IS NULL", bookingID, readerID).
		Update("read_at", now).Error
}
