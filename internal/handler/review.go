package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tripadvisor-api/internal/model"
	"github.com/iliyamo/tripadvisor-api/internal/repository"
)

// ReviewHandler serves hotel and restaurant reviews.  The two differ only in
// the body key naming the target and in the response envelopes.
type ReviewHandler struct {
	*Responder
	Reviews *repository.ReviewRepo
	Targets repository.ExistenceChecker

	targetKey string // "hotelId" or "restaurantId"
	one, many string
	title     string
}

func NewHotelReviewHandler(r *Responder, reviews *repository.ReviewRepo, hotels repository.ExistenceChecker) *ReviewHandler {
	return &ReviewHandler{Responder: r, Reviews: reviews, Targets: hotels,
		targetKey: "hotelId", one: "hotelReview", many: "hotelReviews", title: "Hotel review"}
}

func NewRestaurantReviewHandler(r *Responder, reviews *repository.ReviewRepo, restaurants repository.ExistenceChecker) *ReviewHandler {
	return &ReviewHandler{Responder: r, Reviews: reviews, Targets: restaurants,
		targetKey: "restaurantId", one: "restaurantReview", many: "restaurantReviews", title: "Restaurant review"}
}

// reviewReq accepts either target key; only the handler's own is read.
type reviewReq struct {
	HotelID      *uint64 `json:"hotelId"`
	RestaurantID *uint64 `json:"restaurantId"`
	UserID       *uint64 `json:"userId"`
	Content      *string `json:"reviews"`
}

func (h *ReviewHandler) target(req reviewReq) *uint64 {
	if h.targetKey == "hotelId" {
		return req.HotelID
	}
	return req.RestaurantID
}

func (h *ReviewHandler) List(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	rs, err := h.Reviews.List(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rs), h.many: rs})
}

// ListByTarget lists the reviews of one hotel or restaurant, newest first.
func (h *ReviewHandler) ListByTarget(c echo.Context) error {
	id, err := parseID(c, "targetId")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	if err := h.Targets.Require(ctx, id); err != nil {
		return h.fail(c, err)
	}
	rs, err := h.Reviews.ListByTarget(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(rs), h.many: rs})
}

func (h *ReviewHandler) Create(c echo.Context) error {
	p, err := userPrincipal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req reviewReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	tid := h.target(req)
	if tid == nil || *tid == 0 {
		return h.fail(c, repository.Invalid(h.targetKey+" is required"))
	}
	if req.Content == nil || *req.Content == "" {
		return h.fail(c, repository.Invalid("reviews is required"))
	}
	uid := p.UserID
	if req.UserID != nil && *req.UserID != 0 {
		uid = *req.UserID
	}
	if uid != p.UserID {
		return h.fail(c, forbidden("cannot review as another user"))
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	if err := h.Targets.Require(ctx, *tid); err != nil {
		return h.fail(c, err)
	}
	rv, err := h.Reviews.Create(ctx, model.Review{TargetID: *tid, UserID: uid, Content: *req.Content})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": h.title + " created", h.one: rv})
}

// own loads a review written by the calling user.
func (h *ReviewHandler) own(c echo.Context) (model.Review, error) {
	p, err := userPrincipal(c)
	if err != nil {
		return model.Review{}, err
	}
	id, err := parseID(c, "reviewId")
	if err != nil {
		return model.Review{}, err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	rv, err := h.Reviews.GetByID(ctx, id)
	if err != nil {
		return model.Review{}, err
	}
	if rv.UserID != p.UserID {
		return model.Review{}, forbidden("cannot change another user's review")
	}
	return rv, nil
}

func (h *ReviewHandler) Update(c echo.Context) error {
	rv, err := h.own(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req reviewReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	if req.UserID != nil && *req.UserID != rv.UserID {
		return h.fail(c, forbidden("cannot reassign a review"))
	}
	patch := model.ReviewPatch{TargetID: h.target(req), Content: req.Content}
	ctx, cancel := h.ctx(c)
	defer cancel()
	if patch.TargetID != nil {
		if err := h.Targets.Require(ctx, *patch.TargetID); err != nil {
			return h.fail(c, err)
		}
	}
	out, err := h.Reviews.Update(ctx, rv.ID, patch)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": h.title + " updated successfully", h.one: out})
}

func (h *ReviewHandler) Delete(c echo.Context) error {
	rv, err := h.own(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	out, err := h.Reviews.Delete(ctx, rv.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": h.title + " deleted successfully", h.one: out})
}
