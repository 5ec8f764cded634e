package model

import "time"

// User represents a row in the `users` table.  Users sign up with an email
// and password and may later register as a vendor.  Deactivation only
// flips IsActive; hard deletion also removes the stored profile picture.
//
// Fields:
//
//	ID            – primary key identifier.
//	FirstName     – given name.
//	LastName      – family name.
//	Email         – unique, lower-cased login.
//	PasswordHash  – bcrypt hash, never serialised.
//	Phone         – contact number.
//	City, StreetAddress, Country – postal address parts.
//	ProfilePicURL – resolved URL of the stored picture (nullable).
//	IsActive      – activation status.
type User struct {
	ID            uint64    `db:"id" json:"id"`
	FirstName     string    `db:"first_name" json:"fName"`
	LastName      string    `db:"last_name" json:"lName"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	Phone         string    `db:"phone" json:"phone"`
	City          string    `db:"city" json:"city"`
	StreetAddress string    `db:"street_address" json:"stAdd"`
	Country       string    `db:"country" json:"country"`
	ProfilePicURL *string   `db:"profile_pic_url" json:"profilePicUrl"`
	IsActive      bool      `db:"is_active" json:"activationStatus"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token handed to the client is stored.
type RefreshToken struct {
	ID        uint64     `db:"id"`
	UserID    uint64     `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}
