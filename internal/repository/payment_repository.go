package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/tripadvisor-api/internal/model"
)

// PaymentRepo reads the payment method reference table.
type PaymentRepo struct{ db *sqlx.DB }

func NewPaymentRepo(db *sqlx.DB) *PaymentRepo { return &PaymentRepo{db: db} }

func (r *PaymentRepo) List(ctx context.Context) ([]model.Payment, error) {
	return selectAll[model.Payment](ctx, r.db, "payment", "SELECT id, payment_type FROM payments ORDER BY id")
}
