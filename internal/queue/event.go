// Package queue carries booking domain events over RabbitMQ.
package queue

import (
	"context"
	"time"
)

// Event types published after a booking transaction commits.
const (
	EventRoomBooked         = "hotel_room.booked"
	EventRoomReleased       = "hotel_room.released"
	EventRestaurantReserved = "restaurant.reserved"
)

// BookingEvent describes a committed change to a booking or reservation.
// It carries enough for consumers to log or notify without querying the
// database.
type BookingEvent struct {
	Type        string `json:"type"`
	BookingID   uint64 `json:"booking_id"`
	UnitID      uint64 `json:"unit_id"` // room id or restaurant id
	UserID      uint64 `json:"user_id"`
	PaymentType uint64 `json:"payment_type,omitempty"`
	StartsAt    string `json:"starts_at,omitempty"`
	EndsAt      string `json:"ends_at,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}

// Stamp fills OccurredAt with the current UTC time.
func (e BookingEvent) Stamp() BookingEvent {
	e.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	return e
}

// Publisher sends events.  Implementations must not block a request for long
// and failures are never fatal to the caller.
type Publisher interface {
	Publish(ctx context.Context, ev BookingEvent) error
}

// Nop discards events; used when the broker is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, BookingEvent) error { return nil }
