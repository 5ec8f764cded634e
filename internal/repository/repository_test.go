package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/tripadvisor-api/internal/model"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = raw.Close() })
	return sqlx.NewDb(raw, "mysql"), mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

var listingCols = []string{"id", "vendor_id", "title", "description", "city", "street_address", "country", "opening_time", "closing_time", "pictures", "created_at", "updated_at"}

func listingRow(id uint64, title string) []driver.Value {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []driver.Value{id, uint64(2), title, "desc", "Lahore", "Mall Road", "PK", "09:00", "23:00", []byte(`["https://cdn/a.jpg"]`), now, now}
}

func TestClassify(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		err  error
		kind error
	}{
		{"duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, ErrConflict},
		{"parent row", &mysql.MySQLError{Number: 1451}, ErrReferentialConflict},
		{"child row", &mysql.MySQLError{Number: 1452}, ErrNotFound},
		{"null column", &mysql.MySQLError{Number: 1048}, ErrValidation},
		{"timeout", context.DeadlineExceeded, ErrUnavailable},
		{"bad conn", driver.ErrBadConn, ErrUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify("hotel", tc.err)
			if !errors.Is(got, tc.kind) {
				t.Fatalf("classify(%v) = %v, want kind %v", tc.err, got, tc.kind)
			}
			if !errors.Is(got, tc.err) {
				t.Fatalf("cause lost in %v", got)
			}
		})
	}

	plain := errors.New("boom")
	if got := classify("hotel", plain); got != plain {
		t.Fatalf("unknown errors must pass through, got %v", got)
	}
	if got := classify("hotel", NotFound("room")); !errors.Is(got, ErrNotFound) || got.Error() != "room not found" {
		t.Fatalf("classified errors must pass through unchanged, got %v", got)
	}
}

func TestExistenceCheckerRequire(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	chk := NewExistenceChecker(db, "users", "user")

	mock.ExpectQuery(q("SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(true))
	mock.ExpectQuery(q("SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(false))

	if err := chk.Require(context.Background(), 3); err != nil {
		t.Fatalf("Require(3) = %v", err)
	}
	err := chk.Require(context.Background(), 4)
	if !errors.Is(err, ErrNotFound) || err.Error() != "user not found" {
		t.Fatalf("Require(4) = %v", err)
	}
	if err := chk.Require(context.Background(), 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Require(0) = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRoomMarkBookedIsConditional(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	rooms := NewRoomRepo(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE hotel_rooms SET is_booked = TRUE WHERE id = ? AND is_booked = FALSE")).
		WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE hotel_rooms SET is_booked = TRUE WHERE id = ? AND is_booked = FALSE")).
		WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := rooms.MarkBookedTx(ctx, tx, 7); err != nil {
		t.Fatalf("first flip: %v", err)
	}
	err = rooms.MarkBookedTx(ctx, tx, 7)
	if !errors.Is(err, ErrConflict) || err.Error() != MsgRoomBooked {
		t.Fatalf("second flip = %v, want conflict", err)
	}
	_ = tx.Rollback()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListingUpdateMergesPartialFields(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	hotels := NewHotelRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM hotels WHERE id = ? FOR UPDATE")).WithArgs(5).
		WillReturnRows(sqlmock.NewRows(listingCols).AddRow(listingRow(5, "Old Name")...))
	mock.ExpectExec(q("UPDATE hotels SET")).
		WithArgs("New Name", "desc", "Lahore", "Mall Road", "PK", "09:00", "23:00", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("FROM hotels WHERE id = ?")).WithArgs(5).
		WillReturnRows(sqlmock.NewRows(listingCols).AddRow(listingRow(5, "New Name")...))
	mock.ExpectCommit()

	title := "New Name"
	got, err := hotels.Update(context.Background(), 5, model.ListingPatch{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != "New Name" || got.City != "Lahore" || len(got.Pictures) != 1 {
		t.Fatalf("unexpected row %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListingUpdateMissingRow(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	hotels := NewHotelRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM hotels WHERE id = ? FOR UPDATE")).WithArgs(9).
		WillReturnRows(sqlmock.NewRows(listingCols))
	mock.ExpectRollback()

	_, err := hotels.Update(context.Background(), 9, model.ListingPatch{})
	if !errors.Is(err, ErrNotFound) || err.Error() != "hotel not found" {
		t.Fatalf("Update = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRestaurantDeleteBlockedByDependents(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	restaurants := NewRestaurantRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM restaurants WHERE id = ? FOR UPDATE")).WithArgs(4).
		WillReturnRows(sqlmock.NewRows(listingCols).AddRow(listingRow(4, "Cafe")...))
	mock.ExpectQuery(q("SELECT COUNT(*) FROM dishes WHERE restaurant_id = ?")).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	mock.ExpectRollback()

	_, err := restaurants.Delete(context.Background(), 4)
	if !errors.Is(err, ErrReferentialConflict) {
		t.Fatalf("Delete = %v, want referential conflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRestaurantDeleteWithoutDependents(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	restaurants := NewRestaurantRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM restaurants WHERE id = ? FOR UPDATE")).WithArgs(4).
		WillReturnRows(sqlmock.NewRows(listingCols).AddRow(listingRow(4, "Cafe")...))
	for _, table := range []string{"dishes", "restaurant_reservations", "restaurant_reviews"} {
		mock.ExpectQuery(q("SELECT COUNT(*) FROM " + table + " WHERE restaurant_id = ?")).WithArgs(4).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	}
	mock.ExpectExec(q("DELETE FROM restaurants WHERE id = ?")).WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := restaurants.Delete(context.Background(), 4)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got.ID != 4 || got.Title != "Cafe" {
		t.Fatalf("deleted row = %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	users := NewUserRepo(db)

	mock.ExpectExec(q("INSERT INTO users")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.c' for key 'uq_users_email'"})

	_, err := users.Create(context.Background(), model.User{Email: " A@B.c ", FirstName: "A", PasswordHash: "x"})
	if !errors.Is(err, ErrConflict) || err.Error() != "email already exists" {
		t.Fatalf("Create = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUserSetActiveIsRepeatable(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	users := NewUserRepo(db)
	cols := []string{"id", "first_name", "last_name", "email", "password_hash", "phone", "city", "street_address", "country", "profile_pic_url", "is_active", "created_at", "updated_at"}
	now := time.Now().UTC()

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(q("SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)")).WithArgs(3).
			WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(true))
		// MySQL reports zero affected rows when the flag already has the value.
		mock.ExpectExec(q("UPDATE users SET is_active = ? WHERE id = ?")).WithArgs(false, 3).
			WillReturnResult(sqlmock.NewResult(0, int64(1-i)))
		mock.ExpectQuery(q("FROM users WHERE id = ?")).WithArgs(3).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(uint64(3), "A", "B", "a@b.c", "hash", "", "", "", "", nil, false, now, now))
	}

	for i := 0; i < 2; i++ {
		u, err := users.SetActive(context.Background(), 3, false)
		if err != nil {
			t.Fatalf("deactivate #%d: %v", i+1, err)
		}
		if u.IsActive {
			t.Fatalf("deactivate #%d left user active", i+1)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTokenValidateRefreshRejectsRevoked(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	tokens := NewTokenRepo(db)
	cols := []string{"id", "user_id", "token_hash", "expires_at", "revoked_at", "created_at"}
	now := time.Now().UTC()

	mock.ExpectQuery(q("FROM refresh_tokens WHERE token_hash = ?")).WithArgs("live").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(uint64(1), uint64(3), "live", now.Add(time.Hour), nil, now))
	mock.ExpectQuery(q("FROM refresh_tokens WHERE token_hash = ?")).WithArgs("revoked").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(uint64(2), uint64(3), "revoked", now.Add(time.Hour), now, now))
	mock.ExpectQuery(q("FROM refresh_tokens WHERE token_hash = ?")).WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows(cols))

	if uid, err := tokens.ValidateRefresh(context.Background(), "live"); err != nil || uid != 3 {
		t.Fatalf("live = %d, %v", uid, err)
	}
	for _, h := range []string{"revoked", "unknown"} {
		if _, err := tokens.ValidateRefresh(context.Background(), h); !errors.Is(err, ErrAuthentication) {
			t.Fatalf("%s = %v, want authentication failure", h, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListingSearchPagesAndEscapes(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	restaurants := NewRestaurantRepo(db)

	mock.ExpectQuery(q("SELECT COUNT(*) FROM restaurants WHERE LOWER(title) LIKE ? AND LOWER(city) LIKE ?")).
		WithArgs(`%50\% off%`, "%lahore%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(q("FROM restaurants WHERE LOWER(title) LIKE ? AND LOWER(city) LIKE ? ORDER BY title, id LIMIT ? OFFSET ?")).
		WithArgs(`%50\% off%`, "%lahore%", 2, 2).
		WillReturnRows(sqlmock.NewRows(listingCols).AddRow(listingRow(9, "50% Off Grill")...))

	got, total, err := restaurants.Search(context.Background(), ListingSearchQuery{
		Title: "50% OFF", City: " Lahore ", Page: 2, PageSize: 2,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 3 || len(got) != 1 || got[0].ID != 9 {
		t.Fatalf("total=%d rows=%+v", total, got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListingSearchEmptySkipsPageQuery(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	hotels := NewHotelRepo(db)

	mock.ExpectQuery(q("SELECT COUNT(*) FROM hotels WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	got, total, err := hotels.Search(context.Background(), ListingSearchQuery{})
	if err != nil || total != 0 || got == nil || len(got) != 0 {
		t.Fatalf("got %v %d %v", got, total, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListingSearchQueryNormalize(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in             ListingSearchQuery
		page, pageSize int
	}{
		{ListingSearchQuery{}, 1, 20},
		{ListingSearchQuery{Page: -3, PageSize: 500}, 1, 100},
		{ListingSearchQuery{Page: 4, PageSize: 10}, 4, 10},
		{ListingSearchQuery{Page: math.MaxInt, PageSize: 100}, math.MaxInt / 100, 100},
	}
	for _, tc := range cases {
		got := tc.in.Normalize()
		if got.Page != tc.page || got.PageSize != tc.pageSize {
			t.Errorf("Normalize(%+v) = %d/%d, want %d/%d", tc.in, got.Page, got.PageSize, tc.page, tc.pageSize)
		}
		if off := got.Offset(); off < 0 {
			t.Errorf("Normalize(%+v).Offset() = %d, overflowed", tc.in, off)
		}
	}
}
