package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tripadvisor-api/internal/handler"
)

// registerBookings mounts room bookings and restaurant reservations.
// Users create them; vendors manage them.
func registerBookings(api *echo.Group, g guards, d Deps) {
	b := api.Group("/hotel-room-bookings")
	b.GET("", d.Bookings.List)
	b.GET("/user/:id", d.Bookings.ListByUser, g.user)
	b.GET("/vendor/:id", d.Bookings.ListByVendor, g.vendor)
	b.GET("/vendor/:id/:bookId", d.Bookings.GetForVendor, g.vendor)
	b.POST("", d.Bookings.Create, g.user)
	b.PUT("/:id", d.Bookings.Update, g.vendor)
	b.PUT("/:id/unbook", d.Bookings.Unbook, g.vendor)
	b.DELETE("/:id", d.Bookings.Delete, g.vendor)

	r := api.Group("/restaurant-reservations")
	r.GET("", d.Reservations.List)
	r.GET("/user/:id", d.Reservations.ListByUser, g.user)
	r.GET("/vendor/:id", d.Reservations.ListByVendor, g.vendor)
	r.POST("", d.Reservations.Create, g.user)
	r.PUT("/:id", d.Reservations.Update, g.vendor)
	r.DELETE("/:id", d.Reservations.Delete, g.vendor)
}

// registerReviews mounts hotel and restaurant reviews.  Path parameters are
// named targetId and reviewId for both so one handler serves either.
func registerReviews(api *echo.Group, g guards, d Deps) {
	reviews(api.Group("/hotel-reviews"), g, d.HotelReviews, "hotel-reviews")
	reviews(api.Group("/restaurant-reviews"), g, d.RestReviews, "restaurant-reviews")
}

func reviews(grp *echo.Group, g guards, h *handler.ReviewHandler, group string) {
	read, write := g.cache.Reads(group), g.cache.Invalidates(group)
	grp.GET("", h.List, read)
	grp.GET("/:targetId", h.ListByTarget, read)
	grp.POST("", h.Create, g.user, write)
	grp.PUT("/:reviewId", h.Update, g.user, write)
	grp.DELETE("/:reviewId", h.Delete, g.user, write)
}
