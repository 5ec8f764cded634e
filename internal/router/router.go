// Package router maps the API onto echo routes.
package router

import (
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tripadvisor-api/internal/handler"
	"github.com/iliyamo/tripadvisor-api/internal/middleware"
)

// Prefix is the mount point of every resource.
const Prefix = "/api/v1/tripadvisor"

// Deps carries the handlers and the middleware built at startup.  Nil
// middlewares are treated as pass-through.
type Deps struct {
	DB           *sqlx.DB
	UserKey      string
	VendorKey    string
	RateLimit    echo.MiddlewareFunc
	Cache        *middleware.ResponseCache // nil disables caching
	MediaDir     string                    // served under /media when set
	Users        *handler.UserHandler
	Vendors      *handler.VendorHandler
	Hotels       *handler.ListingHandler
	Restaurants  *handler.ListingHandler
	Rooms        *handler.RoomHandler
	Bookings     *handler.BookingHandler
	Dishes       *handler.DishHandler
	Reservations *handler.ReservationHandler
	HotelReviews *handler.ReviewHandler
	RestReviews  *handler.ReviewHandler
	Payments     *handler.PaymentHandler
}

// guards bundles the per-route middleware shared by the resource files.
type guards struct {
	user, vendor echo.MiddlewareFunc
	cache        *middleware.ResponseCache
}

// RegisterRoutes mounts health, media and every resource group.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.DB))
	if d.MediaDir != "" {
		e.Static("/media", d.MediaDir)
	}

	g := guards{
		user:   middleware.UserAuth(d.UserKey),
		vendor: middleware.VendorAuth(d.VendorKey),
		cache:  d.Cache,
	}
	api := e.Group(Prefix, orPass(d.RateLimit))

	registerAccounts(api, g, d)
	registerCatalog(api, g, d)
	registerBookings(api, g, d)
	registerReviews(api, g, d)
}

func orPass(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	if mw == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return mw
}
