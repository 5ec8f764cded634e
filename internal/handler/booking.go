package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tripadvisor-api/internal/model"
	"github.com/iliyamo/tripadvisor-api/internal/repository"
	"github.com/iliyamo/tripadvisor-api/internal/service"
)

// BookingHandler serves /hotel-room-bookings.  Writes that touch room
// availability go through the coordinator.
type BookingHandler struct {
	*Responder
	Bookings    *repository.BookingRepo
	Coordinator *service.BookingCoordinator
}

func NewBookingHandler(r *Responder, b *repository.BookingRepo, co *service.BookingCoordinator) *BookingHandler {
	return &BookingHandler{Responder: r, Bookings: b, Coordinator: co}
}

type bookingCreateReq struct {
	HotelRoomID uint64    `json:"hotelRoomId" validate:"required"`
	UserID      uint64    `json:"userId"`
	PaymentType uint64    `json:"paymentType" validate:"required"`
	StartTime   time.Time `json:"BookingstartTime" validate:"required"`
	EndTime     time.Time `json:"bookingTimeEnd" validate:"required"`
}

func (h *BookingHandler) List(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	bs, err := h.Bookings.List(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(bs), "hotelRoomBookings": bs})
}

// ListByUser returns the caller's own bookings.
func (h *BookingHandler) ListByUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	p, err := userPrincipal(c)
	if err != nil {
		return h.fail(c, err)
	}
	if p.UserID != id {
		return h.fail(c, forbidden("cannot read another user's bookings"))
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	bs, err := h.Bookings.ListByUser(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(bs), "hotelRoomBookings": bs})
}

func (h *BookingHandler) vendorSelf(c echo.Context) (uint64, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return 0, err
	}
	p, err := vendorPrincipal(c)
	if err != nil {
		return 0, err
	}
	if p.VendorID != id {
		return 0, forbidden("cannot read another vendor's bookings")
	}
	return id, nil
}

// ListByVendor returns bookings of rooms in the vendor's hotels.
func (h *BookingHandler) ListByVendor(c echo.Context) error {
	vid, err := h.vendorSelf(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	bs, err := h.Bookings.ListByVendor(ctx, vid)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(bs), "hotelRoomBookings": bs})
}

func (h *BookingHandler) GetForVendor(c echo.Context) error {
	vid, err := h.vendorSelf(c)
	if err != nil {
		return h.fail(c, err)
	}
	bid, err := parseID(c, "bookId")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	b, err := h.Bookings.GetForVendor(ctx, vid, bid)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"hotelRoomBooking": b})
}

// Create books a room for the calling user.  A booked room answers 409.
func (h *BookingHandler) Create(c echo.Context) error {
	p, err := userPrincipal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req bookingCreateReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	uid := orDefault(req.UserID, p.UserID)
	if uid != p.UserID {
		return h.fail(c, forbidden("cannot book for another user"))
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	res, err := h.Coordinator.Reserve(ctx, service.ReserveRequest{
		UnitID:      req.HotelRoomID,
		UserID:      uid,
		PaymentType: req.PaymentType,
		Start:       req.StartTime,
		End:         req.EndTime,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"hotelRoomBooking": res.Booking,
		"roomStatus":       res.Room.IsBooked,
	})
}

func (h *BookingHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var patch model.BookingPatch
	if err := bind(c, &patch); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	b, err := h.Coordinator.UpdateBooking(ctx, id, patch)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Hotel room booking updated successfully", "hotelRoomBooking": b})
}

func (h *BookingHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	b, err := h.Coordinator.DeleteBooking(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Hotel room booking deleted successfully", "hotelRoomBooking": b})
}

// Unbook frees the booking's room and keeps the booking row.
func (h *BookingHandler) Unbook(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	res, err := h.Coordinator.Release(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":          "Hotel room unbooked successfully",
		"roomStatus":       res.Room.IsBooked,
		"hotelRoomBooking": res.Booking,
	})
}
