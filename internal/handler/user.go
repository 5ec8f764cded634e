package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tripadvisor-api/internal/model"
	"github.com/iliyamo/tripadvisor-api/internal/repository"
	"github.com/iliyamo/tripadvisor-api/internal/utils"
)

type userUpdateReq struct {
	model.UserPatch
	Password *string `json:"password" validate:"omitempty,min=6"`
}

func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(users), "users": users})
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// self resolves :id and checks that it names the caller.
func (h *UserHandler) self(c echo.Context) (uint64, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return 0, err
	}
	p, err := userPrincipal(c)
	if err != nil {
		return 0, err
	}
	if p.UserID != id {
		return 0, forbidden("cannot modify another user's account")
	}
	return id, nil
}

// Update merges the body into the account.  A supplied password is hashed;
// an omitted one keeps the stored hash.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := h.self(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req userUpdateReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	patch := req.UserPatch
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return h.fail(c, err)
		}
		patch.PasswordHash = &hash
	}

	ctx, cancel := h.ctx(c)
	defer cancel()
	u, err := h.Users.Update(ctx, id, patch)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User updated successfully", "user": u})
}

// UpdateProfilePic replaces the profile picture with the single file in
// the "profilePic" field.  The old picture is removed after the row points
// at the new one.
func (h *UserHandler) UpdateProfilePic(c echo.Context) error {
	id, err := h.self(c)
	if err != nil {
		return h.fail(c, err)
	}
	fh, err := c.FormFile("profilePic")
	if err != nil {
		return h.fail(c, repository.Invalid("Please select an image to upload"))
	}
	if fh.Size > profilePictures.MaxBytes {
		return h.fail(c, repository.Invalid("File size cannot exceed 2MB"))
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Users.Exists().Require(ctx, id); err != nil {
		return h.fail(c, err)
	}
	url, err := storeFile(ctx, h.Media, profilePictures.Prefix, id, fh)
	if err != nil {
		return h.fail(c, err)
	}
	u, prev, err := h.Users.SetProfilePic(ctx, id, url)
	if err != nil {
		dropObjects(ctx, h.Media, h.logger, []string{url})
		return h.fail(c, err)
	}
	if prev != nil && *prev != "" && *prev != url {
		dropObjects(ctx, h.Media, h.logger, []string{*prev})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile picture updated successfully", "user": u})
}

func (h *UserHandler) Deactivate(c echo.Context) error { return h.setActive(c, false) }
func (h *UserHandler) Reactivate(c echo.Context) error { return h.setActive(c, true) }

func (h *UserHandler) setActive(c echo.Context, active bool) error {
	id, err := h.self(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	u, err := h.Users.SetActive(ctx, id, active)
	if err != nil {
		return h.fail(c, err)
	}
	msg := "User deactivated successfully"
	if active {
		msg = "User reactivated successfully"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "user": u})
}

// Delete removes the account, its refresh tokens and then its stored
// profile picture.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := h.self(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	u, err := h.Users.Delete(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	if u.ProfilePicURL != nil && *u.ProfilePicURL != "" {
		dropObjects(ctx, h.Media, h.logger, []string{*u.ProfilePicURL})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully", "user": u})
}
