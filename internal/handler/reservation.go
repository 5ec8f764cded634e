package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tripadvisor-api/internal/model"
	"github.com/iliyamo/tripadvisor-api/internal/repository"
	"github.com/iliyamo/tripadvisor-api/internal/service"
)

// ReservationHandler serves /restaurant-reservations.
type ReservationHandler struct {
	*Responder
	Reservations *repository.ReservationRepo
	Coordinator  *service.BookingCoordinator
}

func NewReservationHandler(r *Responder, res *repository.ReservationRepo, co *service.BookingCoordinator) *ReservationHandler {
	return &ReservationHandler{Responder: r, Reservations: res, Coordinator: co}
}

type reservationCreateReq struct {
	RestaurantID uint64    `json:"restaurantId" validate:"required"`
	UserID       uint64    `json:"userId"`
	PaymentType  uint64    `json:"paymentType" validate:"required"`
	StartTime    time.Time `json:"bookingTimeStart" validate:"required"`
	EndTime      time.Time `json:"bookingTimeEnd" validate:"required"`
}

func (h *ReservationHandler) List(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	rs, err := h.Reservations.List(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rs), "restaurantReservations": rs})
}

func (h *ReservationHandler) ListByUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	p, err := userPrincipal(c)
	if err != nil {
		return h.fail(c, err)
	}
	if p.UserID != id {
		return h.fail(c, forbidden("cannot read another user's reservations"))
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	rs, err := h.Reservations.ListByUser(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rs), "restaurantReservations": rs})
}

func (h *ReservationHandler) ListByVendor(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	p, err := vendorPrincipal(c)
	if err != nil {
		return h.fail(c, err)
	}
	if p.VendorID != id {
		return h.fail(c, forbidden("cannot read another vendor's reservations"))
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	rs, err := h.Reservations.ListByVendor(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rs), "restaurantReservations": rs})
}

// Create reserves a restaurant.  Overlapping reservations are accepted.
func (h *ReservationHandler) Create(c echo.Context) error {
	p, err := userPrincipal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req reservationCreateReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	uid := orDefault(req.UserID, p.UserID)
	if uid != p.UserID {
		return h.fail(c, forbidden("cannot reserve for another user"))
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	res, err := h.Coordinator.ReserveUnbounded(ctx, service.ReserveRequest{
		UnitID:      req.RestaurantID,
		UserID:      uid,
		PaymentType: req.PaymentType,
		Start:       req.StartTime,
		End:         req.EndTime,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"newRestaurantReservation": res})
}

func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var patch model.ReservationPatch
	if err := bind(c, &patch); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	res, err := h.Coordinator.UpdateReservation(ctx, id, patch)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Restaurant reservation updated successfully", "restaurantReservation": res})
}

func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	res, err := h.Coordinator.DeleteReservation(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Restaurant reservation deleted successfully", "restaurantReservation": res})
}
