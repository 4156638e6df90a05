package schedule

import (
	"context"
	"time"

	"studiobook/internal/domain"
)

// OperatingEntryRepository stores an address's configured hours. Entries are
// replaced wholesale when an owner saves a schedule.
type OperatingEntryRepository interface {
	ListByAddress(ctx context.Context, addressID int64) ([]domain.OperatingEntry, error)
	ReplaceForAddress(ctx context.Context, addressID int64, entries []domain.OperatingEntry) error
}

// BookingQuery is the read-side collaborator: bookings are fetched once per
// request and the slot math runs over the snapshot.
type BookingQuery interface {
	ListActiveForRoomOn(ctx context.Context, roomID int64, day time.Time) ([]domain.Booking, error)
	ListActiveForRoomFrom(ctx context.Context, roomID int64, from time.Time) ([]domain.Booking, error)
}

// RoomResolver resolves a room and its owning address (timezone source).
type RoomResolver interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	GetAddressForRoom(ctx context.Context, roomID int64) (*domain.Address, error)
}

// OwnerResolver resolves the studio owner for an address in one lookup.
type OwnerResolver interface {
	GetOwner(ctx context.Context, addressID int64) (*domain.Owner, error)
}
