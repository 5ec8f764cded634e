package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/tripadvisor-api/internal/model"
)

const roomColumns = "id, hotel_id, price_per_day, capacity, category, is_booked"

// MsgRoomBooked is returned when a reservation targets an occupied room.
const MsgRoomBooked = "Hotel room is already booked"

type RoomRepo struct {
	db     *sqlx.DB
	exists ExistenceChecker
}

func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db, exists: NewExistenceChecker(db, "hotel_rooms", "hotel room")}
}

func (r *RoomRepo) Exists() ExistenceChecker { return r.exists }

func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	return selectAll[model.Room](ctx, r.db, "hotel room", "SELECT "+roomColumns+" FROM hotel_rooms ORDER BY id")
}

func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	return getOne[model.Room](ctx, r.db, "hotel room", "SELECT "+roomColumns+" FROM hotel_rooms WHERE id = ?", id)
}

// Create inserts a free room.
func (r *RoomRepo) Create(ctx context.Context, room model.Room) (model.Room, error) {
	id, err := insertID(ctx, r.db, "hotel room", `INSERT INTO hotel_rooms
		(hotel_id, price_per_day, capacity, category, is_booked)
		VALUES (:hotel_id, :price_per_day, :capacity, :category, FALSE)`, room)
	if err != nil {
		if isKind(err, ErrNotFound) {
			return model.Room{}, NotFound("hotel")
		}
		return model.Room{}, err
	}
	return r.GetByID(ctx, id)
}

// Update merges p into the room.  The availability flag is not part of the
// patch and is left to the booking coordinator.
func (r *RoomRepo) Update(ctx context.Context, id uint64, p model.RoomPatch) (model.Room, error) {
	var out model.Room
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		cur, err := r.LockTx(ctx, tx, id)
		if err != nil {
			return err
		}
		p.Apply(&cur)
		if err := execNamed(ctx, tx, "hotel room", `UPDATE hotel_rooms SET
			hotel_id = :hotel_id, price_per_day = :price_per_day, capacity = :capacity, category = :category
			WHERE id = :id`, cur); err != nil {
			if isKind(err, ErrNotFound) {
				return NotFound("hotel")
			}
			return err
		}
		out = cur
		return nil
	})
	return out, err
}

func (r *RoomRepo) Delete(ctx context.Context, id uint64) (model.Room, error) {
	var out model.Room
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		if out, err = r.LockTx(ctx, tx, id); err != nil {
			return err
		}
		if err := exec(ctx, tx, "hotel room", "DELETE FROM hotel_rooms WHERE id = ?", id); err != nil {
			if isKind(err, ErrReferentialConflict) {
				return ReferentialConflict("Cannot delete a hotel room that has bookings")
			}
			return err
		}
		return nil
	})
	return out, err
}

// LockTx reads the room and holds its row lock until tx ends, serialising
// every reservation attempt on the same room.
func (r *RoomRepo) LockTx(ctx context.Context, tx *sqlx.Tx, id uint64) (model.Room, error) {
	return getOne[model.Room](ctx, tx, "hotel room", "SELECT "+roomColumns+" FROM hotel_rooms WHERE id = ? FOR UPDATE", id)
}

// MarkBookedTx flips a free room to booked.  The WHERE clause makes the flip
// conditional: if the room is already booked no row changes and the result
// is a Conflict, so a double booking is impossible even without LockTx.
func (r *RoomRepo) MarkBookedTx(ctx context.Context, tx *sqlx.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, "UPDATE hotel_rooms SET is_booked = TRUE WHERE id = ? AND is_booked = FALSE", id)
	if err != nil {
		return classify("hotel room", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("hotel room", err)
	}
	if n == 0 {
		return Conflict(MsgRoomBooked)
	}
	return nil
}

// MarkFreeTx clears the availability flag.  Freeing a free room is a no-op.
func (r *RoomRepo) MarkFreeTx(ctx context.Context, tx *sqlx.Tx, id uint64) error {
	return exec(ctx, tx, "hotel room", "UPDATE hotel_rooms SET is_booked = FALSE WHERE id = ?", id)
}
