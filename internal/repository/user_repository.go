package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/tripadvisor-api/internal/model"
)

const userColumns = "id, first_name, last_name, email, password_hash, phone, city, street_address, country, profile_pic_url, is_active, created_at, updated_at"

type UserRepo struct {
	db     *sqlx.DB
	exists ExistenceChecker
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db, exists: NewExistenceChecker(db, "users", "user")}
}

// Exists is the shared user existence check.
func (r *UserRepo) Exists() ExistenceChecker { return r.exists }

func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	return selectAll[model.User](ctx, r.db, "user", "SELECT "+userColumns+" FROM users ORDER BY id")
}

func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return getOne[model.User](ctx, r.db, "user", "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return getOne[model.User](ctx, r.db, "user",
		"SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", normalizeEmail(email))
}

// Create inserts u (PasswordHash already set) and returns the stored row.  A
// duplicate email is a Conflict.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	u.Email = normalizeEmail(u.Email)
	id, err := insertID(ctx, r.db, "user", `INSERT INTO users
		(first_name, last_name, email, password_hash, phone, city, street_address, country, is_active)
		VALUES (:first_name, :last_name, :email, :password_hash, :phone, :city, :street_address, :country, TRUE)`, u)
	if err != nil {
		if isKind(err, ErrConflict) {
			return model.User{}, Conflict("email already exists")
		}
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// Update merges p into the stored row.
func (r *UserRepo) Update(ctx context.Context, id uint64, p model.UserPatch) (model.User, error) {
	var out model.User
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		cur, err := r.lockTx(ctx, tx, id)
		if err != nil {
			return err
		}
		p.Apply(&cur)
		cur.Email = normalizeEmail(cur.Email)
		if err := execNamed(ctx, tx, "user", `UPDATE users SET
			first_name = :first_name, last_name = :last_name, email = :email, password_hash = :password_hash,
			phone = :phone, city = :city, street_address = :street_address, country = :country
			WHERE id = :id`, cur); err != nil {
			if isKind(err, ErrConflict) {
				return Conflict("email already exists")
			}
			return err
		}
		out, err = getOne[model.User](ctx, tx, "user", "SELECT "+userColumns+" FROM users WHERE id = ?", id)
		return err
	})
	return out, err
}

// SetProfilePic stores url and returns the updated row together with the
// URL it replaced, so the caller can drop the old object.
func (r *UserRepo) SetProfilePic(ctx context.Context, id uint64, url string) (model.User, *string, error) {
	var (
		out  model.User
		prev *string
	)
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		cur, err := r.lockTx(ctx, tx, id)
		if err != nil {
			return err
		}
		prev = cur.ProfilePicURL
		if err := exec(ctx, tx, "user", "UPDATE users SET profile_pic_url = ? WHERE id = ?", url, id); err != nil {
			return err
		}
		out, err = getOne[model.User](ctx, tx, "user", "SELECT "+userColumns+" FROM users WHERE id = ?", id)
		return err
	})
	return out, prev, err
}

// SetActive sets the activation flag.  Setting it to its current value is
// not an error.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) (model.User, error) {
	if err := r.exists.Require(ctx, id); err != nil {
		return model.User{}, err
	}
	if err := exec(ctx, r.db, "user", "UPDATE users SET is_active = ? WHERE id = ?", active, id); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes the user and returns the deleted row.
func (r *UserRepo) Delete(ctx context.Context, id uint64) (model.User, error) {
	var out model.User
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		if out, err = r.lockTx(ctx, tx, id); err != nil {
			return err
		}
		return exec(ctx, tx, "user", "DELETE FROM users WHERE id = ?", id)
	})
	return out, err
}

func (r *UserRepo) lockTx(ctx context.Context, tx *sqlx.Tx, id uint64) (model.User, error) {
	return getOne[model.User](ctx, tx, "user", "SELECT "+userColumns+" FROM users WHERE id = ? FOR UPDATE", id)
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
