package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// ExistenceChecker answers "does row id exist" for one table.  Booking
// coordination, vendor signup and the controllers share these instead of
// each issuing their own lookup.
type ExistenceChecker struct {
	db     sqlx.QueryerContext
	query  string
	entity string
}

// NewExistenceChecker builds a checker for table.  table is always a
// compile-time constant of this package, never request input.
func NewExistenceChecker(db sqlx.QueryerContext, table, entity string) ExistenceChecker {
	return ExistenceChecker{
		db:     db,
		query:  "SELECT EXISTS(SELECT 1 FROM " + table + " WHERE id = ?)",
		entity: entity,
	}
}

// Require returns NotFound(entity) when the row is absent.
func (c ExistenceChecker) Require(ctx context.Context, id uint64) error {
	return c.RequireTx(ctx, c.db, id)
}

// RequireTx is Require issued on q, typically an open transaction.
func (c ExistenceChecker) RequireTx(ctx context.Context, q sqlx.QueryerContext, id uint64) error {
	ok, err := c.existsIn(ctx, q, id)
	if err != nil {
		return err
	}
	if !ok {
		return NotFound(c.entity)
	}
	return nil
}

func (c ExistenceChecker) existsIn(ctx context.Context, q sqlx.QueryerContext, id uint64) (bool, error) {
	if id == 0 {
		return false, nil
	}
	var ok bool
	if err := sqlx.GetContext(ctx, q, &ok, c.query, id); err != nil {
		return false, classify(c.entity, err)
	}
	return ok, nil
}
