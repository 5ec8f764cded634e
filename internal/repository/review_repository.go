package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/tripadvisor-api/internal/model"
)

// ReviewRepo serves hotel and restaurant reviews; the target column is
// exposed as target_id so both share model.Review.
type ReviewRepo struct {
	db      *sqlx.DB
	table   string
	target  string // target entity name, e.g. "hotel"
	columns string
}

func NewHotelReviewRepo(db *sqlx.DB) *ReviewRepo {
	return newReviewRepo(db, "hotel_reviews", "hotel_id", "hotel")
}

func NewRestaurantReviewRepo(db *sqlx.DB) *ReviewRepo {
	return newReviewRepo(db, "restaurant_reviews", "restaurant_id", "restaurant")
}

func newReviewRepo(db *sqlx.DB, table, targetCol, target string) *ReviewRepo {
	return &ReviewRepo{
		db:      db,
		table:   table,
		target:  target,
		columns: fmt.Sprintf("id, %s AS target_id, user_id, content, created_at", targetCol),
	}
}

func (r *ReviewRepo) targetCol() string { return r.target + "_id" }

func (r *ReviewRepo) List(ctx context.Context) ([]model.Review, error) {
	return selectAll[model.Review](ctx, r.db, "review", "SELECT "+r.columns+" FROM "+r.table+" ORDER BY id")
}

func (r *ReviewRepo) ListByTarget(ctx context.Context, targetID uint64) ([]model.Review, error) {
	return selectAll[model.Review](ctx, r.db, "review",
		"SELECT "+r.columns+" FROM "+r.table+" WHERE "+r.targetCol()+" = ? ORDER BY created_at DESC", targetID)
}

func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (model.Review, error) {
	return getOne[model.Review](ctx, r.db, "review", "SELECT "+r.columns+" FROM "+r.table+" WHERE id = ?", id)
}

// Create inserts a review.  An unknown user or target surfaces as NotFound
// through the foreign keys.
func (r *ReviewRepo) Create(ctx context.Context, rv model.Review) (model.Review, error) {
	id, err := insertID(ctx, r.db, "review",
		"INSERT INTO "+r.table+" ("+r.targetCol()+", user_id, content) VALUES (:target_id, :user_id, :content)", rv)
	if err != nil {
		return model.Review{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *ReviewRepo) Update(ctx context.Context, id uint64, p model.ReviewPatch) (model.Review, error) {
	var out model.Review
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		cur, err := getOne[model.Review](ctx, tx, "review", "SELECT "+r.columns+" FROM "+r.table+" WHERE id = ? FOR UPDATE", id)
		if err != nil {
			return err
		}
		p.Apply(&cur)
		if err := execNamed(ctx, tx, "review",
			"UPDATE "+r.table+" SET "+r.targetCol()+" = :target_id, user_id = :user_id, content = :content WHERE id = :id", cur); err != nil {
			return err
		}
		out = cur
		return nil
	})
	return out, err
}

func (r *ReviewRepo) Delete(ctx context.Context, id uint64) (model.Review, error) {
	var out model.Review
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		if out, err = getOne[model.Review](ctx, tx, "review", "SELECT "+r.columns+" FROM "+r.table+" WHERE id = ? FOR UPDATE", id); err != nil {
			return err
		}
		return exec(ctx, tx, "review", "DELETE FROM "+r.table+" WHERE id = ?", id)
	})
	return out, err
}
