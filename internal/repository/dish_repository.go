package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/tripadvisor-api/internal/model"
)

const dishColumns = "id, restaurant_id, name, price"

type DishRepo struct{ db *sqlx.DB }

func NewDishRepo(db *sqlx.DB) *DishRepo { return &DishRepo{db: db} }

func (r *DishRepo) List(ctx context.Context) ([]model.Dish, error) {
	return selectAll[model.Dish](ctx, r.db, "dish", "SELECT "+dishColumns+" FROM dishes ORDER BY id")
}

func (r *DishRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]model.Dish, error) {
	return selectAll[model.Dish](ctx, r.db, "dish",
		"SELECT "+dishColumns+" FROM dishes WHERE restaurant_id = ? ORDER BY id", restaurantID)
}

func (r *DishRepo) GetByID(ctx context.Context, id uint64) (model.Dish, error) {
	return getOne[model.Dish](ctx, r.db, "dish", "SELECT "+dishColumns+" FROM dishes WHERE id = ?", id)
}

func (r *DishRepo) Create(ctx context.Context, d model.Dish) (model.Dish, error) {
	id, err := insertID(ctx, r.db, "dish",
		"INSERT INTO dishes (restaurant_id, name, price) VALUES (:restaurant_id, :name, :price)", d)
	if err != nil {
		if isKind(err, ErrNotFound) {
			return model.Dish{}, NotFound("restaurant")
		}
		return model.Dish{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *DishRepo) Update(ctx context.Context, id uint64, p model.DishPatch) (model.Dish, error) {
	var out model.Dish
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		cur, err := getOne[model.Dish](ctx, tx, "dish", "SELECT "+dishColumns+" FROM dishes WHERE id = ? FOR UPDATE", id)
		if err != nil {
			return err
		}
		p.Apply(&cur)
		if err := execNamed(ctx, tx, "dish",
			"UPDATE dishes SET restaurant_id = :restaurant_id, name = :name, price = :price WHERE id = :id", cur); err != nil {
			if isKind(err, ErrNotFound) {
				return NotFound("restaurant")
			}
			return err
		}
		out = cur
		return nil
	})
	return out, err
}

func (r *DishRepo) Delete(ctx context.Context, id uint64) (model.Dish, error) {
	var out model.Dish
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		if out, err = getOne[model.Dish](ctx, tx, "dish", "SELECT "+dishColumns+" FROM dishes WHERE id = ? FOR UPDATE", id); err != nil {
			return err
		}
		return exec(ctx, tx, "dish", "DELETE FROM dishes WHERE id = ?", id)
	})
	return out, err
}
