package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/tripadvisor-api/internal/model"
)

const vendorColumns = "id, user_id, cnic_number, is_active, created_at"

type VendorRepo struct {
	db     *sqlx.DB
	exists ExistenceChecker
}

func NewVendorRepo(db *sqlx.DB) *VendorRepo {
	return &VendorRepo{db: db, exists: NewExistenceChecker(db, "vendors", "vendor")}
}

func (r *VendorRepo) Exists() ExistenceChecker { return r.exists }

func (r *VendorRepo) List(ctx context.Context) ([]model.Vendor, error) {
	return selectAll[model.Vendor](ctx, r.db, "vendor", "SELECT "+vendorColumns+" FROM vendors ORDER BY id")
}

func (r *VendorRepo) GetByID(ctx context.Context, id uint64) (model.Vendor, error) {
	return getOne[model.Vendor](ctx, r.db, "vendor", "SELECT "+vendorColumns+" FROM vendors WHERE id = ?", id)
}

// GetByUserAndCNIC finds the vendor profile matching both the user and the
// identity document, as checked at vendor login.
func (r *VendorRepo) GetByUserAndCNIC(ctx context.Context, userID uint64, cnic string) (model.Vendor, error) {
	return getOne[model.Vendor](ctx, r.db, "vendor",
		"SELECT "+vendorColumns+" FROM vendors WHERE user_id = ? AND cnic_number = ? LIMIT 1", userID, cnic)
}

// Create registers userID as a vendor.  A user can hold one vendor profile
// and a CNIC number belongs to one vendor; both collisions are a Conflict.
func (r *VendorRepo) Create(ctx context.Context, userID uint64, cnic string) (model.Vendor, error) {
	v := model.Vendor{UserID: userID, CNICNumber: cnic}
	id, err := insertID(ctx, r.db, "vendor",
		"INSERT INTO vendors (user_id, cnic_number, is_active) VALUES (:user_id, :cnic_number, TRUE)", v)
	if err != nil {
		if isKind(err, ErrConflict) {
			return model.Vendor{}, Conflict("vendor already registered for this user or CNIC number")
		}
		return model.Vendor{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *VendorRepo) Update(ctx context.Context, id uint64, p model.VendorPatch) (model.Vendor, error) {
	var out model.Vendor
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		cur, err := getOne[model.Vendor](ctx, tx, "vendor", "SELECT "+vendorColumns+" FROM vendors WHERE id = ? FOR UPDATE", id)
		if err != nil {
			return err
		}
		p.Apply(&cur)
		if err := execNamed(ctx, tx, "vendor", "UPDATE vendors SET cnic_number = :cnic_number WHERE id = :id", cur); err != nil {
			return err
		}
		out = cur
		return nil
	})
	return out, err
}

// SetActive toggles the activation flag; repeating a toggle is not an error.
func (r *VendorRepo) SetActive(ctx context.Context, id uint64, active bool) (model.Vendor, error) {
	if err := r.exists.Require(ctx, id); err != nil {
		return model.Vendor{}, err
	}
	if err := exec(ctx, r.db, "vendor", "UPDATE vendors SET is_active = ? WHERE id = ?", active, id); err != nil {
		return model.Vendor{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *VendorRepo) Delete(ctx context.Context, id uint64) (model.Vendor, error) {
	var out model.Vendor
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		out, err = getOne[model.Vendor](ctx, tx, "vendor", "SELECT "+vendorColumns+" FROM vendors WHERE id = ? FOR UPDATE", id)
		if err != nil {
			return err
		}
		return exec(ctx, tx, "vendor", "DELETE FROM vendors WHERE id = ?", id)
	})
	return out, err
}
