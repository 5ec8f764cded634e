package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tripadvisor-api/internal/httputil"
	"github.com/iliyamo/tripadvisor-api/internal/middleware"
	"github.com/iliyamo/tripadvisor-api/internal/repository"
	"github.com/iliyamo/tripadvisor-api/internal/utils"
)

// Responder holds what every resource handler needs to answer a request:
// the error mapping, a logger for unexpected failures and the per-request
// database deadline.
type Responder struct {
	errs    *httputil.ErrorMapper
	logger  *slog.Logger
	timeout time.Duration
}

func NewResponder(logger *slog.Logger, timeout time.Duration) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Responder{errs: httputil.DomainMapper(), logger: logger, timeout: timeout}
}

// ctx bounds the store calls of one request.
func (r *Responder) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), r.timeout)
}

// fail writes err as {"message", "error"} with the status of its kind.
// Unexpected errors are logged and their text is withheld.
func (r *Responder) fail(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, _ := he.Message.(string)
		if msg == "" {
			msg = http.StatusText(he.Code)
		}
		kind := strings.ToLower(strings.ReplaceAll(http.StatusText(he.Code), " ", "_"))
		return c.JSON(he.Code, echo.Map{"message": msg, "error": kind})
	}
	info := r.errs.Map(err)
	if info.Unexpected || info.Status >= http.StatusInternalServerError {
		r.logger.Error("request failed",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Request().URL.Path),
			slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			slog.Any("error", err))
	}
	return c.JSON(info.Status, echo.Map{"message": info.Message, "error": info.Kind})
}

// bind decodes the body into dst and runs its validate tags.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return repository.Invalid("invalid request body")
	}
	if err := c.Validate(dst); err != nil {
		return err
	}
	return nil
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, repository.Invalid("invalid " + name)
	}
	return id, nil
}

func userPrincipal(c echo.Context) (utils.Principal, error) {
	p, ok := middleware.UserData(c)
	if !ok {
		return utils.Principal{}, repository.Unauthenticated("user authentication required")
	}
	return p, nil
}

func vendorPrincipal(c echo.Context) (utils.Principal, error) {
	p, ok := middleware.VendorData(c)
	if !ok {
		return utils.Principal{}, repository.Unauthenticated("vendor authentication required")
	}
	return p, nil
}

// forbidden rejects an authenticated caller acting on someone else's record.
func forbidden(msg string) error {
	return echo.NewHTTPError(http.StatusForbidden, msg)
}

// orDefault returns v, or def when v is zero.
func orDefault(v, def uint64) uint64 {
	if v == 0 {
		return def
	}
	return v
}

func isNotFound(err error) bool { return errors.Is(err, repository.ErrNotFound) }
