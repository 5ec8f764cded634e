package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// WithTx runs fn inside a transaction.  The transaction commits only when fn
// returns nil; any error, or a failed commit, rolls everything back so a
// multi-step operation never leaves half its writes behind.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return classify("transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify("transaction", err)
	}
	committed = true
	return nil
}

func getOne[T any](ctx context.Context, q sqlx.QueryerContext, entity, query string, args ...any) (T, error) {
	var out T
	if err := sqlx.GetContext(ctx, q, &out, query, args...); err != nil {
		return out, classify(entity, err)
	}
	return out, nil
}

func selectAll[T any](ctx context.Context, q sqlx.QueryerContext, entity, query string, args ...any) ([]T, error) {
	out := []T{}
	if err := sqlx.SelectContext(ctx, q, &out, query, args...); err != nil {
		return nil, classify(entity, err)
	}
	return out, nil
}

// insertID executes a named INSERT and returns the generated key.
func insertID(ctx context.Context, e sqlx.ExtContext, entity, query string, arg any) (uint64, error) {
	res, err := sqlx.NamedExecContext(ctx, e, query, arg)
	if err != nil {
		return 0, classify(entity, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify(entity, err)
	}
	return uint64(id), nil
}

func execNamed(ctx context.Context, e sqlx.ExtContext, entity, query string, arg any) error {
	if _, err := sqlx.NamedExecContext(ctx, e, query, arg); err != nil {
		return classify(entity, err)
	}
	return nil
}

func exec(ctx context.Context, e sqlx.ExecerContext, entity, query string, args ...any) error {
	if _, err := e.ExecContext(ctx, query, args...); err != nil {
		return classify(entity, err)
	}
	return nil
}
