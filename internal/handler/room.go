package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tripadvisor-api/internal/model"
	"github.com/iliyamo/tripadvisor-api/internal/repository"
)

// RoomHandler serves /hotel-rooms.  The availability flag is read-only
// here; only bookings change it.
type RoomHandler struct {
	*Responder
	Rooms *repository.RoomRepo
}

func NewRoomHandler(r *Responder, rooms *repository.RoomRepo) *RoomHandler {
	return &RoomHandler{Responder: r, Rooms: rooms}
}

type roomCreateReq struct {
	HotelID     uint64  `json:"hotelId" validate:"required"`
	PricePerDay float64 `json:"pricePerDay" validate:"gte=0"`
	Capacity    int     `json:"noOfPerson" validate:"gte=1"`
	Category    string  `json:"category"`
}

func (h *RoomHandler) List(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rooms), "hotelRooms": rooms})
}

func (h *RoomHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"hotelRoom": room})
}

func (h *RoomHandler) Create(c echo.Context) error {
	var req roomCreateReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	room, err := h.Rooms.Create(ctx, model.Room{
		HotelID:     req.HotelID,
		PricePerDay: req.PricePerDay,
		Capacity:    req.Capacity,
		Category:    req.Category,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Hotel room created", "hotelRoom": room})
}

func (h *RoomHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var patch model.RoomPatch
	if err := bind(c, &patch); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	room, err := h.Rooms.Update(ctx, id, patch)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Hotel room updated successfully", "hotelRoom": room})
}

func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	room, err := h.Rooms.Delete(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Hotel room deleted successfully", "hotelRoom": room})
}
