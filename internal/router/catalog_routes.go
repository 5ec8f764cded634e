package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tripadvisor-api/internal/handler"
)

// registerCatalog mounts the vendor-managed catalogue.  Public reads of
// hotels, restaurants, dishes and payments go through the response cache,
// and each successful vendor write drops its group's entries.  Rooms are not
// cached since their availability flag changes with every booking.
func registerCatalog(api *echo.Group, g guards, d Deps) {
	listing(api.Group("/hotels"), g, d.Hotels, "hotels")
	listing(api.Group("/restaurants"), g, d.Restaurants, "restaurants")

	r := api.Group("/hotel-rooms")
	r.GET("", d.Rooms.List)
	r.GET("/:id", d.Rooms.Get)
	r.POST("", d.Rooms.Create, g.vendor)
	r.PUT("/:id", d.Rooms.Update, g.vendor)
	r.DELETE("/:id", d.Rooms.Delete, g.vendor)

	ds := api.Group("/dishes")
	read, write := g.cache.Reads("dishes"), g.cache.Invalidates("dishes")
	ds.GET("", d.Dishes.List, read)
	ds.GET("/:id", d.Dishes.Get, read)
	ds.GET("/restaurants/:id", d.Dishes.ListByRestaurant, read)
	ds.POST("", d.Dishes.Create, g.vendor, write)
	ds.PUT("/:id", d.Dishes.Update, g.vendor, write)
	ds.DELETE("/:id", d.Dishes.Delete, g.vendor, write)

	api.GET("/payments", d.Payments.List, g.cache.Reads("payments"))
}

func listing(grp *echo.Group, g guards, h *handler.ListingHandler, group string) {
	read, write := g.cache.Reads(group), g.cache.Invalidates(group)
	grp.GET("", h.List, read)
	grp.GET("/search", h.Search, read)
	grp.GET("/:id", h.Get, read)
	grp.POST("", h.Create, g.vendor, write)
	grp.PUT("/:id", h.Update, g.vendor, write)
	grp.PUT("/pictures/:id", h.AddPictures, g.vendor, write)
	grp.DELETE("/pictures/:id", h.RemovePictures, g.vendor, write)
	grp.DELETE("/:id", h.Delete, g.vendor, write)
}
