package model

// Room is a bookable unit of a hotel (`hotel_rooms` table).  IsBooked is the
// availability flag: false means free.  Only the booking coordinator changes
// it.
type Room struct {
	ID          uint64  `db:"id" json:"id"`
	HotelID     uint64  `db:"hotel_id" json:"hotelId"`
	PricePerDay float64 `db:"price_per_day" json:"pricePerDay"`
	Capacity    int     `db:"capacity" json:"noOfPerson"`
	Category    string  `db:"category" json:"category"`
	IsBooked    bool    `db:"is_booked" json:"resvStatus"`
}
