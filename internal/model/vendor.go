package model

import "time"

// Vendor is the 1:1 vendor profile of a user (`vendors` table).  The CNIC
// number is the identity document checked again at vendor login.
type Vendor struct {
	ID         uint64    `db:"id" json:"id"`
	UserID     uint64    `db:"user_id" json:"userId"`
	CNICNumber string    `db:"cnic_number" json:"cnicNumber"`
	IsActive   bool      `db:"is_active" json:"activationStatus"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
