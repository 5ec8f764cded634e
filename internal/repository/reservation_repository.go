package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/tripadvisor-api/internal/model"
)

const reservationColumns = "id, restaurant_id, user_id, payment_type, start_time, end_time, created_at"

// ReservationRepo stores restaurant reservations.  Reservations carry no
// capacity check, so inserts need no locking.
type ReservationRepo struct{ db *sqlx.DB }

func NewReservationRepo(db *sqlx.DB) *ReservationRepo { return &ReservationRepo{db: db} }

func (r *ReservationRepo) List(ctx context.Context) ([]model.RestaurantReservation, error) {
	return selectAll[model.RestaurantReservation](ctx, r.db, "reservation",
		"SELECT "+reservationColumns+" FROM restaurant_reservations ORDER BY id")
}

func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.RestaurantReservation, error) {
	return selectAll[model.RestaurantReservation](ctx, r.db, "reservation",
		"SELECT "+reservationColumns+" FROM restaurant_reservations WHERE user_id = ? ORDER BY start_time DESC", userID)
}

// ListByVendor lists reservations for every restaurant owned by vendorID.
func (r *ReservationRepo) ListByVendor(ctx context.Context, vendorID uint64) ([]model.RestaurantReservation, error) {
	return selectAll[model.RestaurantReservation](ctx, r.db, "reservation",
		`SELECT rr.id, rr.restaurant_id, rr.user_id, rr.payment_type, rr.start_time, rr.end_time, rr.created_at
		FROM restaurant_reservations rr
		JOIN restaurants r ON r.id = rr.restaurant_id
		WHERE r.vendor_id = ?
		ORDER BY rr.created_at DESC LIMIT ?`, vendorID, vendorBookingLimit)
}

func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.RestaurantReservation, error) {
	return getOne[model.RestaurantReservation](ctx, r.db, "reservation",
		"SELECT "+reservationColumns+" FROM restaurant_reservations WHERE id = ?", id)
}

func (r *ReservationRepo) Create(ctx context.Context, res model.RestaurantReservation) (model.RestaurantReservation, error) {
	id, err := insertID(ctx, r.db, "reservation", `INSERT INTO restaurant_reservations
		(restaurant_id, user_id, payment_type, start_time, end_time)
		VALUES (:restaurant_id, :user_id, :payment_type, :start_time, :end_time)`, res)
	if err != nil {
		return model.RestaurantReservation{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *ReservationRepo) LockTx(ctx context.Context, tx *sqlx.Tx, id uint64) (model.RestaurantReservation, error) {
	return getOne[model.RestaurantReservation](ctx, tx, "reservation",
		"SELECT "+reservationColumns+" FROM restaurant_reservations WHERE id = ? FOR UPDATE", id)
}

func (r *ReservationRepo) UpdateTx(ctx context.Context, tx *sqlx.Tx, res model.RestaurantReservation) error {
	return execNamed(ctx, tx, "reservation", `UPDATE restaurant_reservations SET
		restaurant_id = :restaurant_id, user_id = :user_id, payment_type = :payment_type,
		start_time = :start_time, end_time = :end_time
		WHERE id = :id`, res)
}

func (r *ReservationRepo) Delete(ctx context.Context, id uint64) (model.RestaurantReservation, error) {
	var out model.RestaurantReservation
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		if out, err = r.LockTx(ctx, tx, id); err != nil {
			return err
		}
		return exec(ctx, tx, "reservation", "DELETE FROM restaurant_reservations WHERE id = ?", id)
	})
	return out, err
}

func (r *ReservationRepo) DB() *sqlx.DB { return r.db }
