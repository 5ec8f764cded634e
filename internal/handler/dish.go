package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tripadvisor-api/internal/model"
	"github.com/iliyamo/tripadvisor-api/internal/repository"
)

type DishHandler struct {
	*Responder
	Dishes      *repository.DishRepo
	Restaurants repository.ExistenceChecker
}

func NewDishHandler(r *Responder, dishes *repository.DishRepo, restaurants repository.ExistenceChecker) *DishHandler {
	return &DishHandler{Responder: r, Dishes: dishes, Restaurants: restaurants}
}

type dishCreateReq struct {
	RestaurantID uint64  `json:"restaurantId" validate:"required"`
	Name         string  `json:"dishName" validate:"required"`
	Price        float64 `json:"dishPrice" validate:"gte=0"`
}

func (h *DishHandler) List(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	dishes, err := h.Dishes.List(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(dishes), "dishes": dishes})
}

func (h *DishHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	d, err := h.Dishes.GetByID(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"dish": d})
}

// ListByRestaurant answers 404 for an unknown restaurant and an empty list
// for a restaurant without dishes.
func (h *DishHandler) ListByRestaurant(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	if err := h.Restaurants.Require(ctx, id); err != nil {
		return h.fail(c, err)
	}
	dishes, err := h.Dishes.ListByRestaurant(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(dishes), "dishes": dishes})
}

func (h *DishHandler) Create(c echo.Context) error {
	var req dishCreateReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	d, err := h.Dishes.Create(ctx, model.Dish{RestaurantID: req.RestaurantID, Name: req.Name, Price: req.Price})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Dish created", "dish": d})
}

func (h *DishHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var patch model.DishPatch
	if err := bind(c, &patch); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	d, err := h.Dishes.Update(ctx, id, patch)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Dish updated successfully", "dish": d})
}

func (h *DishHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	d, err := h.Dishes.Delete(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Dish deleted successfully", "dish": d})
}
