package model

import "time"

// Patch types describe partial-merge updates.  A nil field keeps the stored
// value; a non-nil field is applied as-is, including "", 0 and false.  JSON
// null decodes to nil and is therefore treated like an omitted field.

type UserPatch struct {
	FirstName     *string `json:"fName"`
	LastName      *string `json:"lName"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Phone         *string `json:"phone"`
	City          *string `json:"city"`
	StreetAddress *string `json:"stAdd"`
	Country       *string `json:"country"`
	// PasswordHash is filled by the handler after hashing a new password.
	PasswordHash *string `json:"-"`
}

func (p UserPatch) Apply(u *User) {
	set(&u.FirstName, p.FirstName)
	set(&u.LastName, p.LastName)
	set(&u.Email, p.Email)
	set(&u.Phone, p.Phone)
	set(&u.City, p.City)
	set(&u.StreetAddress, p.StreetAddress)
	set(&u.Country, p.Country)
	set(&u.PasswordHash, p.PasswordHash)
}

type VendorPatch struct {
	CNICNumber *string `json:"cnicNumber"`
}

func (p VendorPatch) Apply(v *Vendor) {
	set(&v.CNICNumber, p.CNICNumber)
}

type ListingPatch struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	City          *string `json:"city"`
	StreetAddress *string `json:"stAdd"`
	Country       *string `json:"country"`
	OpeningTime   *string `json:"openingTime"`
	ClosingTime   *string `json:"closingTime"`
}

func (p ListingPatch) Apply(l *Listing) {
	set(&l.Title, p.Title)
	set(&l.Description, p.Description)
	set(&l.City, p.City)
	set(&l.StreetAddress, p.StreetAddress)
	set(&l.Country, p.Country)
	set(&l.OpeningTime, p.OpeningTime)
	set(&l.ClosingTime, p.ClosingTime)
}

// RoomPatch deliberately has no availability field.
type RoomPatch struct {
	HotelID     *uint64  `json:"hotelId"`
	PricePerDay *float64 `json:"pricePerDay" validate:"omitempty,gte=0"`
	Capacity    *int     `json:"noOfPerson" validate:"omitempty,gte=0"`
	Category    *string  `json:"category"`
}

func (p RoomPatch) Apply(r *Room) {
	set(&r.HotelID, p.HotelID)
	set(&r.PricePerDay, p.PricePerDay)
	set(&r.Capacity, p.Capacity)
	set(&r.Category, p.Category)
}

type BookingPatch struct {
	HotelRoomID *uint64    `json:"hotelRoomId"`
	UserID      *uint64    `json:"userId"`
	PaymentType *uint64    `json:"paymentType"`
	StartTime   *time.Time `json:"BookingstartTime"`
	EndTime     *time.Time `json:"bookingTimeEnd"`
}

func (p BookingPatch) Apply(b *HotelRoomBooking) {
	set(&b.HotelRoomID, p.HotelRoomID)
	set(&b.UserID, p.UserID)
	set(&b.PaymentType, p.PaymentType)
	set(&b.StartTime, p.StartTime)
	set(&b.EndTime, p.EndTime)
}

type ReservationPatch struct {
	RestaurantID *uint64    `json:"restaurantId"`
	UserID       *uint64    `json:"userId"`
	PaymentType  *uint64    `json:"paymentType"`
	StartTime    *time.Time `json:"bookingTimeStart"`
	EndTime      *time.Time `json:"bookingTimeEnd"`
}

func (p ReservationPatch) Apply(r *RestaurantReservation) {
	set(&r.RestaurantID, p.RestaurantID)
	set(&r.UserID, p.UserID)
	set(&r.PaymentType, p.PaymentType)
	set(&r.StartTime, p.StartTime)
	set(&r.EndTime, p.EndTime)
}

type DishPatch struct {
	RestaurantID *uint64  `json:"restaurantId"`
	Name         *string  `json:"dishName"`
	Price        *float64 `json:"dishPrice" validate:"omitempty,gte=0"`
}

func (p DishPatch) Apply(d *Dish) {
	set(&d.RestaurantID, p.RestaurantID)
	set(&d.Name, p.Name)
	set(&d.Price, p.Price)
}

// ReviewPatch carries the target under a neutral name; handlers fill it from
// hotelId or restaurantId.
type ReviewPatch struct {
	TargetID *uint64 `json:"-"`
	UserID   *uint64 `json:"userId"`
	Content  *string `json:"reviews"`
}

func (p ReviewPatch) Apply(r *Review) {
	set(&r.TargetID, p.TargetID)
	set(&r.UserID, p.UserID)
	set(&r.Content, p.Content)
}

// ValidWindow reports whether end is strictly after start.
func ValidWindow(start, end time.Time) bool {
	return end.After(start)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
