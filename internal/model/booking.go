package model

import "time"

// HotelRoomBooking is a row of `hotel_room_bookings`.  An active booking
// (ReleasedAt nil) holds its room's availability flag; releasing it frees
// the room but keeps the row.
type HotelRoomBooking struct {
	ID          uint64     `db:"id" json:"id"`
	HotelRoomID uint64     `db:"hotel_room_id" json:"hotelRoomId"`
	UserID      uint64     `db:"user_id" json:"userId"`
	PaymentType uint64     `db:"payment_type" json:"paymentType"`
	StartTime   time.Time  `db:"start_time" json:"BookingstartTime"`
	EndTime     time.Time  `db:"end_time" json:"bookingTimeEnd"`
	ReleasedAt  *time.Time `db:"released_at" json:"releasedAt"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}

// Active reports whether the booking still holds its room.
func (b HotelRoomBooking) Active() bool { return b.ReleasedAt == nil }

// VendorBooking is a booking joined with the room and hotel it belongs to,
// as listed on the vendor dashboard.
type VendorBooking struct {
	HotelRoomBooking
	HotelID      uint64 `db:"hotel_id" json:"hotelId"`
	HotelTitle   string `db:"hotel_title" json:"hotelTitle"`
	RoomCategory string `db:"room_category" json:"category"`
}

// RestaurantReservation is a row of `restaurant_reservations`.  Restaurants
// carry no capacity, so any number of reservations may overlap.
type RestaurantReservation struct {
	ID           uint64    `db:"id" json:"id"`
	RestaurantID uint64    `db:"restaurant_id" json:"restaurantId"`
	UserID       uint64    `db:"user_id" json:"userId"`
	PaymentType  uint64    `db:"payment_type" json:"paymentType"`
	StartTime    time.Time `db:"start_time" json:"bookingTimeStart"`
	EndTime      time.Time `db:"end_time" json:"bookingTimeEnd"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
