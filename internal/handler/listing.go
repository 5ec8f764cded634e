package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tripadvisor-api/internal/media"
	"github.com/iliyamo/tripadvisor-api/internal/model"
	"github.com/iliyamo/tripadvisor-api/internal/repository"
)

// ListingHandler serves /hotels and /restaurants.  The two differ only in
// their repository, picture policy and response keys.
type ListingHandler struct {
	*Responder
	Listings *repository.ListingRepo
	Media    media.Store
	policy   PicturePolicy
	one      string // response key for a single listing, e.g. "hotel"
	many     string
	title    string // capitalised name used in messages
}

func NewHotelHandler(r *Responder, repo *repository.ListingRepo, m media.Store) *ListingHandler {
	return &ListingHandler{Responder: r, Listings: repo, Media: m, policy: hotelPictures, one: "hotel", many: "hotels", title: "Hotel"}
}

func NewRestaurantHandler(r *Responder, repo *repository.ListingRepo, m media.Store) *ListingHandler {
	return &ListingHandler{Responder: r, Listings: repo, Media: m, policy: restaurantPictures, one: "restaurant", many: "restaurants", title: "Restaurant"}
}

type listingCreateReq struct {
	VendorID      uint64 `json:"vendorId"`
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description"`
	City          string `json:"city"`
	StreetAddress string `json:"stAdd"`
	Country       string `json:"country"`
	OpeningTime   string `json:"openingTime"`
	ClosingTime   string `json:"closingTime"`
}

type pictureRemoveReq struct {
	Pictures []string `json:"pictures" validate:"required,min=1"`
}

func (h *ListingHandler) List(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	ls, err := h.Listings.List(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(ls), h.many: ls})
}

func (h *ListingHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	l, err := h.Listings.GetByID(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{h.one: l})
}

// Search pages through listings matching ?title=&city=&country=.
func (h *ListingHandler) Search(c echo.Context) error {
	q := repository.ListingSearchQuery{
		Title:   c.QueryParam("title"),
		City:    c.QueryParam("city"),
		Country: c.QueryParam("country"),
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.PageSize, _ = strconv.Atoi(c.QueryParam("pageSize"))
	q = q.Normalize()

	ctx, cancel := h.ctx(c)
	defer cancel()
	ls, total, err := h.Listings.Search(ctx, q)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count":    len(ls),
		"total":    total,
		"page":     q.Page,
		"pageSize": q.PageSize,
		h.many:     ls,
	})
}

// Create stores a listing owned by the calling vendor.
func (h *ListingHandler) Create(c echo.Context) error {
	p, err := vendorPrincipal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req listingCreateReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	if orDefault(req.VendorID, p.VendorID) != p.VendorID {
		return h.fail(c, forbidden("cannot create a listing for another vendor"))
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	l, err := h.Listings.Create(ctx, model.Listing{
		VendorID:      p.VendorID,
		Title:         req.Title,
		Description:   req.Description,
		City:          req.City,
		StreetAddress: req.StreetAddress,
		Country:       req.Country,
		OpeningTime:   req.OpeningTime,
		ClosingTime:   req.ClosingTime,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": h.title + " created", h.one: l})
}

// owned loads :id and checks that the calling vendor owns it.
func (h *ListingHandler) owned(c echo.Context) (model.Listing, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return model.Listing{}, err
	}
	p, err := vendorPrincipal(c)
	if err != nil {
		return model.Listing{}, err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	l, err := h.Listings.GetByID(ctx, id)
	if err != nil {
		return model.Listing{}, err
	}
	if l.VendorID != p.VendorID {
		return model.Listing{}, forbidden("listing belongs to another vendor")
	}
	return l, nil
}

func (h *ListingHandler) Update(c echo.Context) error {
	cur, err := h.owned(c)
	if err != nil {
		return h.fail(c, err)
	}
	var patch model.ListingPatch
	if err := bind(c, &patch); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	l, err := h.Listings.Update(ctx, cur.ID, patch)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": h.title + " updated successfully", h.one: l})
}

// AddPictures uploads the files of the "pictures" field and appends their
// URLs.  Limits are checked before anything is stored; uploads that end up
// unreferenced are removed.
func (h *ListingHandler) AddPictures(c echo.Context) error {
	cur, err := h.owned(c)
	if err != nil {
		return h.fail(c, err)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return h.fail(c, repository.Invalid("No pictures provided"))
	}
	files := form.File["pictures"]
	if err := h.policy.check(files, len(cur.Pictures)); err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	urls, err := storeFiles(ctx, h.Media, h.logger, h.policy.Prefix, cur.ID, files)
	if err != nil {
		return h.fail(c, err)
	}
	l, err := h.Listings.ChangePictures(ctx, cur.ID, func(stored model.URLList) (model.URLList, error) {
		// re-check under the row lock: a concurrent upload may have landed
		if h.policy.MaxTotal > 0 && len(stored)+len(urls) > h.policy.MaxTotal {
			return nil, h.policy.check(files, len(stored))
		}
		return append(stored, urls...), nil
	})
	if err != nil {
		dropObjects(ctx, h.Media, h.logger, urls)
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    h.title + " pictures updated successfully",
		h.one + "Id": l.ID,
		"pictures":   l.Pictures,
	})
}

// RemovePictures drops the listed URLs from the listing, then deletes the
// objects.  URLs the listing does not hold are ignored.
func (h *ListingHandler) RemovePictures(c echo.Context) error {
	cur, err := h.owned(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req pictureRemoveReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, repository.Invalid("No pictures provided"))
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	var removed []string
	l, err := h.Listings.ChangePictures(ctx, cur.ID, func(stored model.URLList) (model.URLList, error) {
		next := stored.Without(req.Pictures)
		removed = stored.Without(next)
		return next, nil
	})
	if err != nil {
		return h.fail(c, err)
	}
	dropObjects(ctx, h.Media, h.logger, removed)
	return c.JSON(http.StatusOK, echo.Map{
		"message":    h.title + " pictures deleted successfully",
		h.one + "Id": l.ID,
		"pictures":   l.Pictures,
	})
}

// Delete removes the listing row and then its pictures.
func (h *ListingHandler) Delete(c echo.Context) error {
	cur, err := h.owned(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	l, err := h.Listings.Delete(ctx, cur.ID)
	if err != nil {
		return h.fail(c, err)
	}
	dropObjects(ctx, h.Media, h.logger, l.Pictures)
	return c.JSON(http.StatusOK, echo.Map{"message": h.title + " deleted successfully", h.one: l})
}
