// Package service holds the operations that span more than one table.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/tripadvisor-api/internal/model"
	"github.com/iliyamo/tripadvisor-api/internal/queue"
	"github.com/iliyamo/tripadvisor-api/internal/repository"
)

// Existence is the shared "does this row exist" capability.
type Existence interface {
	Require(ctx context.Context, id uint64) error
	RequireTx(ctx context.Context, q sqlx.QueryerContext, id uint64) error
}

// BookingCoordinator keeps hotel room availability consistent with the
// bookings that hold it.  Every operation touching both tables runs in one
// transaction with the room row locked, so concurrent reservations of the
// same room yield exactly one booking.
type BookingCoordinator struct {
	db           *sqlx.DB
	users        Existence
	restaurants  Existence
	rooms        *repository.RoomRepo
	bookings     *repository.BookingRepo
	reservations *repository.ReservationRepo
	events       queue.Publisher
	logger       *slog.Logger

	// deleteReleases frees the room when an active booking is deleted.
	deleteReleases bool
}

// CoordinatorDeps groups the collaborators of a BookingCoordinator.
type CoordinatorDeps struct {
	DB                 *sqlx.DB
	Users              Existence
	Restaurants        Existence
	Rooms              *repository.RoomRepo
	Bookings           *repository.BookingRepo
	Reservations       *repository.ReservationRepo
	Events             queue.Publisher
	Logger             *slog.Logger
	DeleteReleasesRoom bool
}

func NewBookingCoordinator(d CoordinatorDeps) *BookingCoordinator {
	if d.Events == nil {
		d.Events = queue.Nop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &BookingCoordinator{
		db:             d.DB,
		users:          d.Users,
		restaurants:    d.Restaurants,
		rooms:          d.Rooms,
		bookings:       d.Bookings,
		reservations:   d.Reservations,
		events:         d.Events,
		logger:         d.Logger,
		deleteReleases: d.DeleteReleasesRoom,
	}
}

// ReserveRequest asks for a room (or, for reservations, a restaurant) for
// one user over [Start, End).
type ReserveRequest struct {
	UnitID      uint64
	UserID      uint64
	PaymentType uint64
	Start, End  time.Time
}

func (r ReserveRequest) validate(unit string) error {
	switch {
	case r.UnitID == 0:
		return repository.Invalid(unit + " id is required")
	case r.UserID == 0:
		return repository.Invalid("userId is required")
	case r.PaymentType == 0:
		return repository.Invalid("paymentType is required")
	case !model.ValidWindow(r.Start, r.End):
		return repository.Invalid("booking end must be after booking start")
	}
	return nil
}

// BookingResult is a booking together with the room state it left behind.
type BookingResult struct {
	Booking model.HotelRoomBooking
	Room    model.Room
}

// Reserve books a free room.  The user is checked first; then, under the
// room's row lock, the flag is read, the booking inserted and the flag
// flipped.  A booked room yields Conflict and nothing is written.
func (c *BookingCoordinator) Reserve(ctx context.Context, req ReserveRequest) (BookingResult, error) {
	if err := req.validate("hotelRoomId"); err != nil {
		return BookingResult{}, err
	}
	if err := c.users.Require(ctx, req.UserID); err != nil {
		return BookingResult{}, err
	}

	var out BookingResult
	err := repository.WithTx(ctx, c.db, func(tx *sqlx.Tx) error {
		room, err := c.rooms.LockTx(ctx, tx, req.UnitID)
		if err != nil {
			return err
		}
		if room.IsBooked {
			return repository.Conflict(repository.MsgRoomBooked)
		}
		b, err := c.bookings.CreateTx(ctx, tx, model.HotelRoomBooking{
			HotelRoomID: room.ID,
			UserID:      req.UserID,
			PaymentType: req.PaymentType,
			StartTime:   req.Start.UTC(),
			EndTime:     req.End.UTC(),
		})
		if err != nil {
			return err
		}
		if err := c.rooms.MarkBookedTx(ctx, tx, room.ID); err != nil {
			return err
		}
		room.IsBooked = true
		out = BookingResult{Booking: b, Room: room}
		return nil
	})
	if err != nil {
		return BookingResult{}, err
	}
	c.publish(ctx, bookingEvent(queue.EventRoomBooked, out.Booking))
	return out, nil
}

// Release frees the room of a booking and keeps the booking row.  Releasing
// an already released booking changes nothing.
func (c *BookingCoordinator) Release(ctx context.Context, bookingID uint64) (BookingResult, error) {
	var (
		out     BookingResult
		changed bool
	)
	err := repository.WithTx(ctx, c.db, func(tx *sqlx.Tx) error {
		b, err := c.bookings.LockTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		room, err := c.rooms.LockTx(ctx, tx, b.HotelRoomID)
		if err != nil {
			return err
		}
		if b.Active() {
			if err := c.rooms.MarkFreeTx(ctx, tx, room.ID); err != nil {
				return err
			}
			if err := c.bookings.MarkReleasedTx(ctx, tx, b.ID); err != nil {
				return err
			}
			if b, err = c.bookings.GetTx(ctx, tx, b.ID); err != nil {
				return err
			}
			room.IsBooked = false
			changed = true
		}
		out = BookingResult{Booking: b, Room: room}
		return nil
	})
	if err != nil {
		return BookingResult{}, err
	}
	if changed {
		c.publish(ctx, bookingEvent(queue.EventRoomReleased, out.Booking))
	}
	return out, nil
}

// DeleteBooking removes a booking and returns the deleted row.  An active
// booking also frees its room unless that behaviour is switched off.
func (c *BookingCoordinator) DeleteBooking(ctx context.Context, bookingID uint64) (model.HotelRoomBooking, error) {
	var (
		out   model.HotelRoomBooking
		freed bool
	)
	err := repository.WithTx(ctx, c.db, func(tx *sqlx.Tx) error {
		var err error
		if out, err = c.bookings.LockTx(ctx, tx, bookingID); err != nil {
			return err
		}
		if err := c.bookings.DeleteTx(ctx, tx, bookingID); err != nil {
			return err
		}
		if c.deleteReleases && out.Active() {
			if err := c.rooms.MarkFreeTx(ctx, tx, out.HotelRoomID); err != nil {
				return err
			}
			freed = true
		}
		return nil
	})
	if err != nil {
		return model.HotelRoomBooking{}, err
	}
	if freed {
		c.publish(ctx, bookingEvent(queue.EventRoomReleased, out))
	}
	return out, nil
}

// UpdateBooking merges p into a booking.  The (possibly new) user must
// exist.  Moving an active booking to another room requires that room to be
// free; the flag moves with the booking.
func (c *BookingCoordinator) UpdateBooking(ctx context.Context, bookingID uint64, p model.BookingPatch) (model.HotelRoomBooking, error) {
	var out model.HotelRoomBooking
	err := repository.WithTx(ctx, c.db, func(tx *sqlx.Tx) error {
		cur, err := c.bookings.LockTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		oldRoom := cur.HotelRoomID
		p.Apply(&cur)
		if !model.ValidWindow(cur.StartTime, cur.EndTime) {
			return repository.Invalid("booking end must be after booking start")
		}
		if err := c.users.RequireTx(ctx, tx, cur.UserID); err != nil {
			return err
		}
		if cur.HotelRoomID != oldRoom {
			if _, err := c.rooms.LockTx(ctx, tx, cur.HotelRoomID); err != nil {
				return err
			}
			if cur.Active() {
				if err := c.rooms.MarkBookedTx(ctx, tx, cur.HotelRoomID); err != nil {
					return err
				}
				if err := c.rooms.MarkFreeTx(ctx, tx, oldRoom); err != nil {
					return err
				}
			}
		}
		if err := c.bookings.UpdateTx(ctx, tx, cur); err != nil {
			return err
		}
		out, err = c.bookings.GetTx(ctx, tx, bookingID)
		return err
	})
	return out, err
}

// ReserveUnbounded books a restaurant.  Restaurants have no availability
// flag: only the user and the restaurant are checked, and overlapping
// reservations are all accepted.
func (c *BookingCoordinator) ReserveUnbounded(ctx context.Context, req ReserveRequest) (model.RestaurantReservation, error) {
	if err := req.validate("restaurantId"); err != nil {
		return model.RestaurantReservation{}, err
	}
	if err := c.users.Require(ctx, req.UserID); err != nil {
		return model.RestaurantReservation{}, err
	}
	if err := c.restaurants.Require(ctx, req.UnitID); err != nil {
		return model.RestaurantReservation{}, err
	}
	res, err := c.reservations.Create(ctx, model.RestaurantReservation{
		RestaurantID: req.UnitID,
		UserID:       req.UserID,
		PaymentType:  req.PaymentType,
		StartTime:    req.Start.UTC(),
		EndTime:      req.End.UTC(),
	})
	if err != nil {
		return model.RestaurantReservation{}, err
	}
	c.publish(ctx, queue.BookingEvent{
		Type:        queue.EventRestaurantReserved,
		BookingID:   res.ID,
		UnitID:      res.RestaurantID,
		UserID:      res.UserID,
		PaymentType: res.PaymentType,
		StartsAt:    res.StartTime.Format(time.RFC3339),
		EndsAt:      res.EndTime.Format(time.RFC3339),
	})
	return res, nil
}

// UpdateReservation merges p into a reservation after checking the
// referenced user and restaurant.
func (c *BookingCoordinator) UpdateReservation(ctx context.Context, id uint64, p model.ReservationPatch) (model.RestaurantReservation, error) {
	var out model.RestaurantReservation
	err := repository.WithTx(ctx, c.reservations.DB(), func(tx *sqlx.Tx) error {
		cur, err := c.reservations.LockTx(ctx, tx, id)
		if err != nil {
			return err
		}
		p.Apply(&cur)
		if !model.ValidWindow(cur.StartTime, cur.EndTime) {
			return repository.Invalid("booking end must be after booking start")
		}
		if err := c.users.RequireTx(ctx, tx, cur.UserID); err != nil {
			return err
		}
		if err := c.restaurants.RequireTx(ctx, tx, cur.RestaurantID); err != nil {
			return err
		}
		if err := c.reservations.UpdateTx(ctx, tx, cur); err != nil {
			return err
		}
		out = cur
		return nil
	})
	return out, err
}

// DeleteReservation removes a reservation and returns it.
func (c *BookingCoordinator) DeleteReservation(ctx context.Context, id uint64) (model.RestaurantReservation, error) {
	return c.reservations.Delete(ctx, id)
}

// publish sends ev after commit.  The booking is already durable, so a
// broker failure is logged and otherwise ignored.
func (c *BookingCoordinator) publish(ctx context.Context, ev queue.BookingEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := c.events.Publish(ctx, ev.Stamp()); err != nil {
		c.logger.Warn("publish booking event failed",
			slog.String("type", ev.Type), slog.Uint64("booking_id", ev.BookingID), slog.Any("error", err))
	}
}

func bookingEvent(kind string, b model.HotelRoomBooking) queue.BookingEvent {
	return queue.BookingEvent{
		Type:        kind,
		BookingID:   b.ID,
		UnitID:      b.HotelRoomID,
		UserID:      b.UserID,
		PaymentType: b.PaymentType,
		StartsAt:    b.StartTime.Format(time.RFC3339),
		EndsAt:      b.EndTime.Format(time.RFC3339),
	}
}
