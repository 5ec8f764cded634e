package model

import "time"

// Review is free-text feedback by a user about a hotel (`hotel_reviews`) or
// a restaurant (`restaurant_reviews`).  TargetID is the reviewed listing.
type Review struct {
	ID        uint64    `db:"id" json:"id"`
	TargetID  uint64    `db:"target_id" json:"targetId"`
	UserID    uint64    `db:"user_id" json:"userId"`
	Content   string    `db:"content" json:"reviews"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Payment is read-only reference data naming a payment method.
type Payment struct {
	ID          uint64 `db:"id" json:"id"`
	PaymentType string `db:"payment_type" json:"paymentType"`
}
