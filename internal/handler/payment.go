package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tripadvisor-api/internal/repository"
)

type PaymentHandler struct {
	*Responder
	Payments *repository.PaymentRepo
}

func NewPaymentHandler(r *Responder, p *repository.PaymentRepo) *PaymentHandler {
	return &PaymentHandler{Responder: r, Payments: p}
}

func (h *PaymentHandler) List(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	ps, err := h.Payments.List(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(ps), "payments": ps})
}
