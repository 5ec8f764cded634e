package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tripadvisor-api/internal/utils"
)

// Context keys under which the authenticated caller is stored.
const (
	UserDataKey   = "userData"
	VendorDataKey = "vendorData"
)

// UserAuth accepts only user access tokens signed with key and stores the
// caller under "userData".
func UserAuth(key string) echo.MiddlewareFunc {
	return bearerAuth(key, utils.AudienceUser, UserDataKey)
}

// VendorAuth accepts only vendor access tokens signed with key and stores
// the caller under "vendorData".  A user token is rejected even when both
// keys happen to verify it, since the audience differs.
func VendorAuth(key string) echo.MiddlewareFunc {
	return bearerAuth(key, utils.AudienceVendor, VendorDataKey)
}

func bearerAuth(key, audience, ctxKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return unauthorized(c, "missing bearer token")
			}
			p, err := utils.ParseAccessToken(key, audience, strings.TrimSpace(raw))
			if err != nil {
				return unauthorized(c, "invalid or expired token")
			}
			c.Set(ctxKey, p)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"message": msg, "error": "authentication_failed"})
}

// UserData returns the caller stored by UserAuth.
func UserData(c echo.Context) (utils.Principal, bool) {
	p, ok := c.Get(UserDataKey).(utils.Principal)
	return p, ok
}

// VendorData returns the caller stored by VendorAuth.
func VendorData(c echo.Context) (utils.Principal, bool) {
	p, ok := c.Get(VendorDataKey).(utils.Principal)
	return p, ok
}
