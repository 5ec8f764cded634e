package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/tripadvisor-api/internal/model"
)

const listingColumns = "id, vendor_id, title, description, city, street_address, country, opening_time, closing_time, pictures, created_at, updated_at"

// dependent is a table whose rows reference a listing through column.
type dependent struct{ table, column string }

// ListingRepo serves hotels and restaurants, which share one row shape.
type ListingRepo struct {
	db         *sqlx.DB
	table      string
	entity     string
	dependents []dependent
	inUseMsg   string
	exists     ExistenceChecker
}

func NewHotelRepo(db *sqlx.DB) *ListingRepo {
	return &ListingRepo{
		db:     db,
		table:  "hotels",
		entity: "hotel",
		dependents: []dependent{
			{"hotel_rooms", "hotel_id"},
			{"hotel_reviews", "hotel_id"},
		},
		inUseMsg: "Cannot delete a hotel that has rooms or reviews",
		exists:   NewExistenceChecker(db, "hotels", "hotel"),
	}
}

func NewRestaurantRepo(db *sqlx.DB) *ListingRepo {
	return &ListingRepo{
		db:     db,
		table:  "restaurants",
		entity: "restaurant",
		dependents: []dependent{
			{"dishes", "restaurant_id"},
			{"restaurant_reservations", "restaurant_id"},
			{"restaurant_reviews", "restaurant_id"},
		},
		inUseMsg: "Cannot delete a restaurant that has active reservations, dishes or reviews",
		exists:   NewExistenceChecker(db, "restaurants", "restaurant"),
	}
}

func (r *ListingRepo) Exists() ExistenceChecker { return r.exists }

func (r *ListingRepo) List(ctx context.Context) ([]model.Listing, error) {
	return selectAll[model.Listing](ctx, r.db, r.entity, "SELECT "+listingColumns+" FROM "+r.table+" ORDER BY id")
}

func (r *ListingRepo) GetByID(ctx context.Context, id uint64) (model.Listing, error) {
	return getOne[model.Listing](ctx, r.db, r.entity, "SELECT "+listingColumns+" FROM "+r.table+" WHERE id = ?", id)
}

// Create inserts l without pictures; pictures are attached afterwards.
func (r *ListingRepo) Create(ctx context.Context, l model.Listing) (model.Listing, error) {
	l.Pictures = model.URLList{}
	id, err := insertID(ctx, r.db, r.entity, `INSERT INTO `+r.table+`
		(vendor_id, title, description, city, street_address, country, opening_time, closing_time, pictures)
		VALUES (:vendor_id, :title, :description, :city, :street_address, :country, :opening_time, :closing_time, :pictures)`, l)
	if err != nil {
		if isKind(err, ErrNotFound) {
			return model.Listing{}, NotFound("vendor")
		}
		return model.Listing{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *ListingRepo) Update(ctx context.Context, id uint64, p model.ListingPatch) (model.Listing, error) {
	var out model.Listing
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		cur, err := r.lockTx(ctx, tx, id)
		if err != nil {
			return err
		}
		p.Apply(&cur)
		if err := execNamed(ctx, tx, r.entity, `UPDATE `+r.table+` SET
			title = :title, description = :description, city = :city, street_address = :street_address,
			country = :country, opening_time = :opening_time, closing_time = :closing_time
			WHERE id = :id`, cur); err != nil {
			return err
		}
		out, err = r.getTx(ctx, tx, id)
		return err
	})
	return out, err
}

// ChangePictures rewrites the picture list under a row lock.  change gets the
// current list and returns the new one, or an error to abort.
func (r *ListingRepo) ChangePictures(ctx context.Context, id uint64, change func(model.URLList) (model.URLList, error)) (model.Listing, error) {
	var out model.Listing
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		cur, err := r.lockTx(ctx, tx, id)
		if err != nil {
			return err
		}
		next, err := change(cur.Pictures)
		if err != nil {
			return err
		}
		if err := exec(ctx, tx, r.entity, "UPDATE "+r.table+" SET pictures = ? WHERE id = ?", next, id); err != nil {
			return err
		}
		out, err = r.getTx(ctx, tx, id)
		return err
	})
	return out, err
}

// Delete removes a listing that nothing references and returns it.  Rows in
// dependent tables block the delete with a ReferentialConflict; stored
// pictures are the caller's to remove.
func (r *ListingRepo) Delete(ctx context.Context, id uint64) (model.Listing, error) {
	var out model.Listing
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		if out, err = r.lockTx(ctx, tx, id); err != nil {
			return err
		}
		for _, d := range r.dependents {
			var n int
			q := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", d.table, d.column)
			if err := sqlx.GetContext(ctx, tx, &n, q, id); err != nil {
				return classify(r.entity, err)
			}
			if n > 0 {
				return ReferentialConflict(r.inUseMsg)
			}
		}
		if err := exec(ctx, tx, r.entity, "DELETE FROM "+r.table+" WHERE id = ?", id); err != nil {
			if isKind(err, ErrReferentialConflict) {
				return ReferentialConflict(r.inUseMsg)
			}
			return err
		}
		return nil
	})
	return out, err
}

func (r *ListingRepo) lockTx(ctx context.Context, tx *sqlx.Tx, id uint64) (model.Listing, error) {
	return getOne[model.Listing](ctx, tx, r.entity, "SELECT "+listingColumns+" FROM "+r.table+" WHERE id = ? FOR UPDATE", id)
}

func (r *ListingRepo) getTx(ctx context.Context, tx *sqlx.Tx, id uint64) (model.Listing, error) {
	return getOne[model.Listing](ctx, tx, r.entity, "SELECT "+listingColumns+" FROM "+r.table+" WHERE id = ?", id)
}
