package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// principalID names the authenticated caller for rate-limit keys: "v<id>"
// for vendors, "u<id>" for users and "anon" otherwise.
func principalID(c echo.Context) string {
	if p, ok := VendorData(c); ok {
		return "v" + strconv.FormatUint(p.VendorID, 10)
	}
	if p, ok := UserData(c); ok {
		return "u" + strconv.FormatUint(p.UserID, 10)
	}
	return "anon"
}
