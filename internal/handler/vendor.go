package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tripadvisor-api/internal/config"
	"github.com/iliyamo/tripadvisor-api/internal/model"
	"github.com/iliyamo/tripadvisor-api/internal/repository"
	"github.com/iliyamo/tripadvisor-api/internal/utils"
)

// VendorHandler serves /vendors.  Signing up and logging in as a vendor
// requires a user token; everything else a vendor does requires the vendor
// token issued here.
type VendorHandler struct {
	*Responder
	Cfg     config.Config
	Users   *repository.UserRepo
	Vendors *repository.VendorRepo
}

func NewVendorHandler(r *Responder, cfg config.Config, u *repository.UserRepo, v *repository.VendorRepo) *VendorHandler {
	return &VendorHandler{Responder: r, Cfg: cfg, Users: u, Vendors: v}
}

type vendorAuthReq struct {
	UserID uint64 `json:"userId"`
	CNIC   string `json:"cnic" validate:"required"`
}

func (h *VendorHandler) List(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	vendors, err := h.Vendors.List(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(vendors), "vendors": vendors})
}

func (h *VendorHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	v, err := h.Vendors.GetByID(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"vendor": v})
}

// caller resolves the user a vendor request acts for.  The body may name
// it, but only as the authenticated user.
func (h *VendorHandler) caller(c echo.Context, req vendorAuthReq) (uint64, error) {
	p, err := userPrincipal(c)
	if err != nil {
		return 0, err
	}
	uid := orDefault(req.UserID, p.UserID)
	if uid != p.UserID {
		return 0, forbidden("cannot act for another user")
	}
	return uid, nil
}

// Signup registers the calling user as a vendor and returns a vendor token.
func (h *VendorHandler) Signup(c echo.Context) error {
	var req vendorAuthReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	uid, err := h.caller(c, req)
	if err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return h.fail(c, err)
	}
	v, err := h.Vendors.Create(ctx, uid, strings.TrimSpace(req.CNIC))
	if err != nil {
		return h.fail(c, err)
	}
	token, err := h.token(u, v)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Vendor created successfully", "vendor": v, "token": token})
}

// Login exchanges a user token plus the vendor's CNIC number for a vendor
// token.
func (h *VendorHandler) Login(c echo.Context) error {
	var req vendorAuthReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	uid, err := h.caller(c, req)
	if err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return h.fail(c, err)
	}
	v, err := h.Vendors.GetByUserAndCNIC(ctx, uid, strings.TrimSpace(req.CNIC))
	if err != nil {
		if isNotFound(err) {
			return h.fail(c, repository.Unauthenticated("Authentication failed"))
		}
		return h.fail(c, err)
	}
	if !v.IsActive {
		return h.fail(c, repository.Unauthenticated("vendor is deactivated"))
	}
	token, err := h.token(u, v)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Authentication successful", "token": token})
}

func (h *VendorHandler) token(u model.User, v model.Vendor) (string, error) {
	tok, err := utils.NewAccessToken(h.Cfg.JWTVendorKey, utils.AudienceVendor,
		utils.Principal{UserID: u.ID, VendorID: v.ID, Email: u.Email}, h.Cfg.AccessTTLMin)
	if err != nil {
		return "", err
	}
	return tok.Token, nil
}

// self checks that :id is the calling vendor.
func (h *VendorHandler) self(c echo.Context) (uint64, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return 0, err
	}
	p, err := vendorPrincipal(c)
	if err != nil {
		return 0, err
	}
	if p.VendorID != id {
		return 0, forbidden("cannot modify another vendor")
	}
	return id, nil
}

func (h *VendorHandler) Update(c echo.Context) error {
	id, err := h.self(c)
	if err != nil {
		return h.fail(c, err)
	}
	var patch model.VendorPatch
	if err := bind(c, &patch); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	v, err := h.Vendors.Update(ctx, id, patch)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Vendor updated successfully", "vendor": v})
}

func (h *VendorHandler) Deactivate(c echo.Context) error {
	id, err := h.self(c)
	if err != nil {
		return h.fail(c, err)
	}
	return h.setActive(c, id, false)
}

// Reactivate is reached with a user token, since a deactivated vendor cannot
// log in to obtain a vendor token.  The vendor must belong to the caller.
func (h *VendorHandler) Reactivate(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	p, err := userPrincipal(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	v, err := h.Vendors.GetByID(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	if v.UserID != p.UserID {
		return h.fail(c, forbidden("cannot modify another vendor"))
	}
	return h.setActive(c, id, true)
}

func (h *VendorHandler) setActive(c echo.Context, id uint64, active bool) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	v, err := h.Vendors.SetActive(ctx, id, active)
	if err != nil {
		return h.fail(c, err)
	}
	msg := "Vendor deactivated successfully"
	if active {
		msg = "Vendor reactivated successfully"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "vendor": v})
}

func (h *VendorHandler) Delete(c echo.Context) error {
	id, err := h.self(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	v, err := h.Vendors.Delete(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Vendor deleted successfully", "vendor": v})
}
