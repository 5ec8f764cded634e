package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/tripadvisor-api/internal/model"
)

const bookingColumns = "id, hotel_room_id, user_id, payment_type, start_time, end_time, released_at, created_at"

// vendorBookingLimit caps the vendor dashboard listing.
const vendorBookingLimit = 100

// BookingRepo stores hotel room bookings.  Writes go through the booking
// coordinator, which owns the transaction; reads are used directly by
// controllers.
type BookingRepo struct{ db *sqlx.DB }

func NewBookingRepo(db *sqlx.DB) *BookingRepo { return &BookingRepo{db: db} }

func (r *BookingRepo) List(ctx context.Context) ([]model.HotelRoomBooking, error) {
	return selectAll[model.HotelRoomBooking](ctx, r.db, "booking", "SELECT "+bookingColumns+" FROM hotel_room_bookings ORDER BY id")
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.HotelRoomBooking, error) {
	return selectAll[model.HotelRoomBooking](ctx, r.db, "booking",
		"SELECT "+bookingColumns+" FROM hotel_room_bookings WHERE user_id = ? ORDER BY start_time DESC", userID)
}

const vendorBookingQuery = `SELECT b.id, b.hotel_room_id, b.user_id, b.payment_type, b.start_time, b.end_time, b.released_at, b.created_at,
	h.id AS hotel_id, h.title AS hotel_title, r.category AS room_category
	FROM hotel_room_bookings b
	JOIN hotel_rooms r ON r.id = b.hotel_room_id
	JOIN hotels h ON h.id = r.hotel_id
	WHERE h.vendor_id = ?`

// ListByVendor returns the newest bookings across every hotel of a vendor.
func (r *BookingRepo) ListByVendor(ctx context.Context, vendorID uint64) ([]model.VendorBooking, error) {
	return selectAll[model.VendorBooking](ctx, r.db, "booking",
		vendorBookingQuery+" ORDER BY b.created_at DESC LIMIT ?", vendorID, vendorBookingLimit)
}

// GetForVendor returns one booking if it belongs to one of the vendor's hotels.
func (r *BookingRepo) GetForVendor(ctx context.Context, vendorID, bookingID uint64) (model.VendorBooking, error) {
	return getOne[model.VendorBooking](ctx, r.db, "booking", vendorBookingQuery+" AND b.id = ?", vendorID, bookingID)
}

func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.HotelRoomBooking, error) {
	return getOne[model.HotelRoomBooking](ctx, r.db, "booking", "SELECT "+bookingColumns+" FROM hotel_room_bookings WHERE id = ?", id)
}

func (r *BookingRepo) LockTx(ctx context.Context, tx *sqlx.Tx, id uint64) (model.HotelRoomBooking, error) {
	return getOne[model.HotelRoomBooking](ctx, tx, "booking",
		"SELECT "+bookingColumns+" FROM hotel_room_bookings WHERE id = ? FOR UPDATE", id)
}

func (r *BookingRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, b model.HotelRoomBooking) (model.HotelRoomBooking, error) {
	id, err := insertID(ctx, tx, "booking", `INSERT INTO hotel_room_bookings
		(hotel_room_id, user_id, payment_type, start_time, end_time)
		VALUES (:hotel_room_id, :user_id, :payment_type, :start_time, :end_time)`, b)
	if err != nil {
		return model.HotelRoomBooking{}, err
	}
	return r.GetTx(ctx, tx, id)
}

func (r *BookingRepo) UpdateTx(ctx context.Context, tx *sqlx.Tx, b model.HotelRoomBooking) error {
	return execNamed(ctx, tx, "booking", `UPDATE hotel_room_bookings SET
		hotel_room_id = :hotel_room_id, user_id = :user_id, payment_type = :payment_type,
		start_time = :start_time, end_time = :end_time
		WHERE id = :id`, b)
}

// MarkReleasedTx stamps the booking as released.
func (r *BookingRepo) MarkReleasedTx(ctx context.Context, tx *sqlx.Tx, id uint64) error {
	return exec(ctx, tx, "booking", "UPDATE hotel_room_bookings SET released_at = UTC_TIMESTAMP() WHERE id = ? AND released_at IS NULL", id)
}

// GetTx re-reads a booking inside tx.
func (r *BookingRepo) GetTx(ctx context.Context, tx *sqlx.Tx, id uint64) (model.HotelRoomBooking, error) {
	return getOne[model.HotelRoomBooking](ctx, tx, "booking", "SELECT "+bookingColumns+" FROM hotel_room_bookings WHERE id = ?", id)
}

func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sqlx.Tx, id uint64) error {
	return exec(ctx, tx, "booking", "DELETE FROM hotel_room_bookings WHERE id = ?", id)
}

// DB exposes the handle the coordinator opens transactions on.
func (r *BookingRepo) DB() *sqlx.DB { return r.db }
