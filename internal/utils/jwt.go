package utils // package utils provides helpers for token creation and hashing

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token audiences.  User and vendor tokens are signed with different keys
// and carry different audiences, so neither is accepted in place of the
// other.
const (
	AudienceUser   = "user"
	AudienceVendor = "vendor"
)

const issuer = "tripadvisor-api"

// Claims is the payload of an access token.  Subject holds the user id;
// vendor tokens also carry the vendor id.
type Claims struct {
	Email    string `json:"email"`
	VendorID uint64 `json:"vendorId,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the numeric subject.
func (c Claims) UserID() (uint64, error) {
	return strconv.ParseUint(c.Subject, 10, 64)
}

// AccessToken is a signed JWT and its expiry.
type AccessToken struct {
	Token string    `json:"token"`
	Exp   time.Time `json:"expires"`
}

// RefreshToken is the raw refresh token handed to the client.  Only its
// SHA-256 hash is stored.
type RefreshToken struct {
	Raw string    `json:"token"`
	Exp time.Time `json:"expires"`
}

// Principal identifies the caller of a protected route.
type Principal struct {
	UserID   uint64
	VendorID uint64
	Email    string
}

// NewAccessToken signs an HS256 token for audience.
func NewAccessToken(key, audience string, p Principal, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := Claims{
		Email:    p.Email,
		VendorID: p.VendorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(p.UserID, 10),
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ErrInvalidToken covers every reason a token is rejected.
var ErrInvalidToken = errors.New("invalid token")

// ParseAccessToken verifies signature, expiry, issuer and audience and
// returns the caller.
func ParseAccessToken(key, audience, raw string) (Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return []byte(key), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		return Principal{}, errors.Join(ErrInvalidToken, err)
	}
	uid, err := claims.UserID()
	if err != nil || uid == 0 {
		return Principal{}, ErrInvalidToken
	}
	if audience == AudienceVendor && claims.VendorID == 0 {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: uid, VendorID: claims.VendorID, Email: claims.Email}, nil
}

// NewRefreshToken returns a random token valid for ttlDays.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	raw, err := randomHex(48)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashRefreshRaw returns the hex SHA-256 of a raw refresh token.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
