package model

import "time"

// Listing is a vendor-owned venue.  Hotels (`hotels` table) and restaurants
// (`restaurants` table) share this shape and differ only in their picture
// limits and dependents.
//
// Fields:
//
//	ID          – primary key identifier.
//	VendorID    – owning vendor.
//	Title, Description – display text.
//	City, StreetAddress, Country – postal address parts.
//	OpeningTime, ClosingTime – "HH:MM" strings as entered by the vendor.
//	Pictures    – ordered picture URLs, stored as a JSON array.
type Listing struct {
	ID            uint64    `db:"id" json:"id"`
	VendorID      uint64    `db:"vendor_id" json:"vendorId"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description"`
	City          string    `db:"city" json:"city"`
	StreetAddress string    `db:"street_address" json:"stAdd"`
	Country       string    `db:"country" json:"country"`
	OpeningTime   string    `db:"opening_time" json:"openingTime"`
	ClosingTime   string    `db:"closing_time" json:"closingTime"`
	Pictures      URLList   `db:"pictures" json:"pictures"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// Dish is a menu entry of a restaurant (`dishes` table).
type Dish struct {
	ID           uint64  `db:"id" json:"id"`
	RestaurantID uint64  `db:"restaurant_id" json:"restaurantId"`
	Name         string  `db:"name" json:"dishName"`
	Price        float64 `db:"price" json:"dishPrice"`
}
