package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tripadvisor-api/internal/config"
	"github.com/iliyamo/tripadvisor-api/internal/media"
	"github.com/iliyamo/tripadvisor-api/internal/model"
	"github.com/iliyamo/tripadvisor-api/internal/repository"
	"github.com/iliyamo/tripadvisor-api/internal/utils"
)

// UserHandler serves /users: account CRUD, the profile picture and the
// user token flows.
type UserHandler struct {
	*Responder
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Media  media.Store
}

func NewUserHandler(r *Responder, cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, m media.Store) *UserHandler {
	return &UserHandler{Responder: r, Cfg: cfg, Users: u, Tokens: t, Media: m}
}

// ----- DTOs -----

type signupReq struct {
	FirstName     string `json:"fName" validate:"required"`
	LastName      string `json:"lName"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	Phone         string `json:"phone"`
	City          string `json:"city"`
	StreetAddress string `json:"stAdd"`
	Country       string `json:"country"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

// tokenPair is returned by signup, login and refresh.  Token is the bearer
// access token.
type tokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Signup creates an account and signs the caller in.
func (h *UserHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.Users.Create(ctx, model.User{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         req.Email,
		PasswordHash:  hash,
		Phone:         req.Phone,
		City:          req.City,
		StreetAddress: req.StreetAddress,
		Country:       req.Country,
	})
	if err != nil {
		return h.fail(c, err)
	}
	pair, err := h.issue(ctx, u)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":      "User created successfully",
		"user":         u,
		"token":        pair.Token,
		"refreshToken": pair.RefreshToken,
	})
}

// Login verifies email and password.  Unknown emails and wrong passwords
// get the same answer; deactivated accounts are refused.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if isNotFound(err) {
			return h.fail(c, repository.Unauthenticated("Authentication failed"))
		}
		return h.fail(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return h.fail(c, repository.Unauthenticated("Authentication failed"))
	}
	if !u.IsActive {
		return h.fail(c, repository.Unauthenticated("account is deactivated"))
	}
	pair, err := h.issue(ctx, u)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Authentication successful",
		"token":        pair.Token,
		"refreshToken": pair.RefreshToken,
	})
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (h *UserHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return h.fail(c, repository.Invalid("refreshToken is required"))
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := h.ctx(c)
	defer cancel()

	uid, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return h.fail(c, err)
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return h.fail(c, err)
	}
	if !u.IsActive {
		return h.fail(c, repository.Unauthenticated("account is deactivated"))
	}
	pair, err := h.issue(ctx, u)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Logout revokes the given refresh token, or every refresh token of the
// caller when none is given.
func (h *UserHandler) Logout(c echo.Context) error {
	p, err := userPrincipal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req refreshReq
	_ = c.Bind(&req)

	ctx, cancel := h.ctx(c)
	defer cancel()

	if raw := strings.TrimSpace(req.RefreshToken); raw != "" {
		err = h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw))
	} else {
		err = h.Tokens.RevokeAllForUser(ctx, p.UserID)
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

func (h *UserHandler) issue(ctx context.Context, u model.User) (tokenPair, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTUserKey, utils.AudienceUser,
		utils.Principal{UserID: u.ID, Email: u.Email}, h.Cfg.AccessTTLMin)
	if err != nil {
		return tokenPair{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return tokenPair{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return tokenPair{}, err
	}
	return tokenPair{Token: access.Token, RefreshToken: refresh.Raw}, nil
}
