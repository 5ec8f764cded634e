package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tripadvisor-api/internal/config"
	"github.com/iliyamo/tripadvisor-api/internal/middleware"
	"github.com/iliyamo/tripadvisor-api/internal/repository"
	"github.com/iliyamo/tripadvisor-api/internal/service"
	"github.com/iliyamo/tripadvisor-api/internal/utils"
)

var (
	t0 = time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	t1 = time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC)

	roomCols    = []string{"id", "hotel_id", "price_per_day", "capacity", "category", "is_booked"}
	bookingCols = []string{"id", "hotel_room_id", "user_id", "payment_type", "start_time", "end_time", "released_at", "created_at"}
	listingCols = []string{"id", "vendor_id", "title", "description", "city", "street_address", "country", "opening_time", "closing_time", "pictures", "created_at", "updated_at"}
)

func q(s string) string { return regexp.QuoteMeta(s) }

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = raw.Close() })
	return sqlx.NewDb(raw, "mysql"), mock
}

func testResponder() *Responder {
	return NewResponder(slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second)
}

type call struct {
	method, target string
	body           io.Reader
	contentType    string
	params         map[string]string
	user, vendor   *utils.Principal
}

func serve(t *testing.T, h echo.HandlerFunc, cl call) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(cl.method, cl.target, cl.body)
	if cl.contentType == "" {
		cl.contentType = echo.MIMEApplicationJSON
	}
	req.Header.Set(echo.HeaderContentType, cl.contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(cl.params) > 0 {
		var names, values []string
		for k, v := range cl.params {
			names = append(names, k)
			values = append(values, v)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if cl.user != nil {
		c.Set(middleware.UserDataKey, *cl.user)
	}
	if cl.vendor != nil {
		c.Set(middleware.VendorDataKey, *cl.vendor)
	}
	if err := h(c); err != nil {
		t.Fatalf("handler returned %v", err)
	}
	var body map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
	}
	return rec, body
}

func newBookingHandler(t *testing.T) (*BookingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMock(t)
	bookings := repository.NewBookingRepo(db)
	co := service.NewBookingCoordinator(service.CoordinatorDeps{
		DB:           db,
		Users:        repository.NewExistenceChecker(db, "users", "user"),
		Restaurants:  repository.NewExistenceChecker(db, "restaurants", "restaurant"),
		Rooms:        repository.NewRoomRepo(db),
		Bookings:     bookings,
		Reservations: repository.NewReservationRepo(db),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return NewBookingHandler(testResponder(), bookings, co), mock
}

const bookingBody = `{"hotelRoomId":7,"paymentType":1,"BookingstartTime":"2026-03-01T14:00:00Z","bookingTimeEnd":"2026-03-03T11:00:00Z"}`

func TestBookingCreateReturnsBookingAndRoomStatus(t *testing.T) {
	t.Parallel()
	h, mock := newBookingHandler(t)

	mock.ExpectQuery(q("SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)")).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM hotel_rooms WHERE id = ? FOR UPDATE")).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(7, 2, 120.5, 2, "deluxe", false))
	mock.ExpectExec(q("INSERT INTO hotel_room_bookings")).WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(q("FROM hotel_room_bookings WHERE id = ?")).WithArgs(11).
		WillReturnRows(sqlmock.NewRows(bookingCols).AddRow(11, 7, 3, 1, t0, t1, nil, t0))
	mock.ExpectExec(q("UPDATE hotel_rooms SET is_booked = TRUE WHERE id = ? AND is_booked = FALSE")).
		WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, body := serve(t, h.Create, call{
		method: http.MethodPost, target: "/hotel-room-bookings",
		body: strings.NewReader(bookingBody),
		user: &utils.Principal{UserID: 3},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	if body["roomStatus"] != true {
		t.Fatalf("roomStatus = %v", body["roomStatus"])
	}
	b, _ := body["hotelRoomBooking"].(map[string]any)
	if b["id"] != float64(11) || b["userId"] != float64(3) {
		t.Fatalf("booking = %v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestBookingCreateOnBookedRoomIs409(t *testing.T) {
	t.Parallel()
	h, mock := newBookingHandler(t)

	mock.ExpectQuery(q("SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)")).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM hotel_rooms WHERE id = ? FOR UPDATE")).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(7, 2, 120.5, 2, "deluxe", true))
	mock.ExpectRollback()

	rec, body := serve(t, h.Create, call{
		method: http.MethodPost, target: "/hotel-room-bookings",
		body: strings.NewReader(bookingBody),
		user: &utils.Principal{UserID: 3},
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["message"] != repository.MsgRoomBooked || body["error"] != "conflict" {
		t.Fatalf("body = %v", body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestBookingCreateRejectsBadInput(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		body   string
		user   *utils.Principal
		status int
	}{
		{"reversed window", `{"hotelRoomId":7,"paymentType":1,"BookingstartTime":"2026-03-03T11:00:00Z","bookingTimeEnd":"2026-03-01T14:00:00Z"}`, &utils.Principal{UserID: 3}, http.StatusBadRequest},
		{"missing room", `{"paymentType":1,"BookingstartTime":"2026-03-01T14:00:00Z","bookingTimeEnd":"2026-03-03T11:00:00Z"}`, &utils.Principal{UserID: 3}, http.StatusBadRequest},
		{"malformed json", `{"hotelRoomId":`, &utils.Principal{UserID: 3}, http.StatusBadRequest},
		{"other user", `{"hotelRoomId":7,"userId":9,"paymentType":1,"BookingstartTime":"2026-03-01T14:00:00Z","bookingTimeEnd":"2026-03-03T11:00:00Z"}`, &utils.Principal{UserID: 3}, http.StatusForbidden},
		{"anonymous", bookingBody, nil, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			h, mock := newBookingHandler(t)
			rec, body := serve(t, h.Create, call{
				method: http.MethodPost, target: "/hotel-room-bookings",
				body: strings.NewReader(tc.body), user: tc.user,
			})
			if rec.Code != tc.status {
				t.Fatalf("status = %d body = %v", rec.Code, body)
			}
			if body["message"] == nil || body["error"] == nil {
				t.Fatalf("error body = %v", body)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("no store call expected: %v", err)
			}
		})
	}
}

func TestBookingVendorListIsScopedToCaller(t *testing.T) {
	t.Parallel()
	h, mock := newBookingHandler(t)
	rec, _ := serve(t, h.ListByVendor, call{
		method: http.MethodGet, target: "/hotel-room-bookings/vendor/4",
		params: map[string]string{"id": "4"},
		vendor: &utils.Principal{UserID: 3, VendorID: 5},
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUnbookReportsFreedRoom(t *testing.T) {
	t.Parallel()
	h, mock := newBookingHandler(t)
	released := t1

	mock.ExpectBegin()
	mock.ExpectQuery(q("FROM hotel_room_bookings WHERE id = ? FOR UPDATE")).WithArgs(11).
		WillReturnRows(sqlmock.NewRows(bookingCols).AddRow(11, 7, 3, 1, t0, t1, nil, t0))
	mock.ExpectQuery(q("FROM hotel_rooms WHERE id = ? FOR UPDATE")).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(7, 2, 120.5, 2, "deluxe", true))
	mock.ExpectExec(q("UPDATE hotel_rooms SET is_booked = FALSE WHERE id = ?")).WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE hotel_room_bookings SET released_at")).WithArgs(11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("FROM hotel_room_bookings WHERE id = ?")).WithArgs(11).
		WillReturnRows(sqlmock.NewRows(bookingCols).AddRow(11, 7, 3, 1, t0, t1, released, t0))
	mock.ExpectCommit()

	rec, body := serve(t, h.Unbook, call{
		method: http.MethodPut, target: "/hotel-room-bookings/11/unbook",
		params: map[string]string{"id": "11"},
		vendor: &utils.Principal{VendorID: 5},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	if body["message"] != "Hotel room unbooked successfully" || body["roomStatus"] != false {
		t.Fatalf("body = %v", body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

type fakeStore struct{ puts, deletes []string }

func (s *fakeStore) Put(_ context.Context, key, _ string, _ io.Reader) (string, error) {
	s.puts = append(s.puts, key)
	return "https://cdn.test/" + key, nil
}

func (s *fakeStore) Delete(_ context.Context, url string) error {
	s.deletes = append(s.deletes, url)
	return nil
}

func multipartBody(t *testing.T, field string, n int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	for i := 0; i < n; i++ {
		part, err := w.CreateFormFile(field, "room.png")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write(png)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func TestHotelPicturesRespectTotalLimit(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	store := &fakeStore{}
	h := NewHotelHandler(testResponder(), repository.NewHotelRepo(db), store)

	four := []byte(`["https://cdn.test/1","https://cdn.test/2","https://cdn.test/3","https://cdn.test/4"]`)
	mock.ExpectQuery(q("FROM hotels WHERE id = ?")).WithArgs(5).
		WillReturnRows(sqlmock.NewRows(listingCols).AddRow(5, 2, "Pearl", "", "Lahore", "", "PK", "", "", four, t0, t0))

	body, ct := multipartBody(t, "pictures", 2)
	rec, resp := serve(t, h.AddPictures, call{
		method: http.MethodPut, target: "/hotels/pictures/5",
		body: body, contentType: ct,
		params: map[string]string{"id": "5"},
		vendor: &utils.Principal{VendorID: 2},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %v", rec.Code, resp)
	}
	if resp["message"] != "Will exceed maximum limit of 5 pictures" {
		t.Fatalf("message = %v", resp["message"])
	}
	if len(store.puts) != 0 {
		t.Fatalf("nothing should be uploaded, got %v", store.puts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListingChangesRequireOwner(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	h := NewRestaurantHandler(testResponder(), repository.NewRestaurantRepo(db), &fakeStore{})

	mock.ExpectQuery(q("FROM restaurants WHERE id = ?")).WithArgs(8).
		WillReturnRows(sqlmock.NewRows(listingCols).AddRow(8, 2, "Cafe", "", "", "", "", "", "", []byte(`[]`), t0, t0))

	rec, _ := serve(t, h.Delete, call{
		method: http.MethodDelete, target: "/restaurants/8",
		params: map[string]string{"id": "8"},
		vendor: &utils.Principal{VendorID: 99},
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDishesOfUnknownRestaurantIs404(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	h := NewDishHandler(testResponder(), repository.NewDishRepo(db), repository.NewExistenceChecker(db, "restaurants", "restaurant"))

	mock.ExpectQuery(q("SELECT EXISTS(SELECT 1 FROM restaurants WHERE id = ?)")).WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	rec, body := serve(t, h.ListByRestaurant, call{
		method: http.MethodGet, target: "/dishes/restaurants/42",
		params: map[string]string{"id": "42"},
	})
	if rec.Code != http.StatusNotFound || body["message"] != "restaurant not found" || body["error"] != "not_found" {
		t.Fatalf("status = %d body = %v", rec.Code, body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestParseIDRejectsNonPositive(t *testing.T) {
	t.Parallel()
	h := NewPaymentHandler(testResponder(), nil)
	for _, raw := range []string{"0", "-1", "abc", ""} {
		rec, body := serve(t, func(c echo.Context) error {
			if _, err := parseID(c, "id"); err != nil {
				return h.fail(c, err)
			}
			return c.NoContent(http.StatusNoContent)
		}, call{method: http.MethodGet, target: "/", params: map[string]string{"id": raw}})
		if rec.Code != http.StatusBadRequest || body["error"] != "validation_failed" {
			t.Errorf("id %q: status = %d body = %v", raw, rec.Code, body)
		}
	}
}

func TestFailHidesUnexpectedErrors(t *testing.T) {
	t.Parallel()
	r := testResponder()
	rec, body := serve(t, func(c echo.Context) error {
		return r.fail(c, errors.New("dial tcp 10.0.0.3:3306: secret detail"))
	}, call{method: http.MethodGet, target: "/"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["message"] != "internal server error" {
		t.Fatalf("message leaked: %v", body["message"])
	}
}

func TestFailMapsTaxonomy(t *testing.T) {
	t.Parallel()
	cases := []struct {
		err    error
		status int
	}{
		{repository.NotFound("hotel"), http.StatusNotFound},
		{repository.Conflict("taken"), http.StatusConflict},
		{repository.ReferentialConflict("in use"), http.StatusBadRequest},
		{repository.Invalid("bad"), http.StatusBadRequest},
		{repository.Unauthenticated("no"), http.StatusUnauthorized},
		{repository.Unavailable("database", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{forbidden("not yours"), http.StatusForbidden},
	}
	r := testResponder()
	for _, tc := range cases {
		rec, _ := serve(t, func(c echo.Context) error { return r.fail(c, tc.err) }, call{method: http.MethodGet, target: "/"})
		if rec.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.status)
		}
	}
}

func TestValidatorNamesJSONFields(t *testing.T) {
	t.Parallel()
	err := NewValidator().Validate(&dishCreateReq{Price: -1})
	if !errors.Is(err, repository.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "restaurantId is required") || !strings.Contains(msg, "dishName is required") || !strings.Contains(msg, "dishPrice failed gte") {
		t.Fatalf("message = %q", msg)
	}
}

var userCols = []string{"id", "first_name", "last_name", "email", "password_hash", "phone", "city", "street_address", "country", "profile_pic_url", "is_active", "created_at", "updated_at"}

func TestLoginRefusals(t *testing.T) {
	t.Parallel()
	hash, err := utils.HashPassword("secret1", 4)
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name     string
		password string
		active   bool
		message  string
	}{
		{"wrong password", "nope123", true, "Authentication failed"},
		{"deactivated", "secret1", false, "account is deactivated"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			db, mock := newMock(t)
			h := NewUserHandler(testResponder(), config.Config{BcryptCost: 4}, repository.NewUserRepo(db), repository.NewTokenRepo(db), &fakeStore{})
			mock.ExpectQuery(q("FROM users WHERE email = ? LIMIT 1")).WithArgs("ali@example.com").
				WillReturnRows(sqlmock.NewRows(userCols).AddRow(3, "Ali", "Raza", "ali@example.com", hash, "", "", "", "", nil, tc.active, t0, t0))

			rec, body := serve(t, h.Login, call{
				method: http.MethodPost, target: "/users/login",
				body: strings.NewReader(`{"email":"Ali@Example.com","password":"` + tc.password + `"}`),
			})
			if rec.Code != http.StatusUnauthorized || body["message"] != tc.message || body["error"] != "authentication_failed" {
				t.Fatalf("status = %d body = %v", rec.Code, body)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestLoginUnknownEmailLooksLikeBadPassword(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	h := NewUserHandler(testResponder(), config.Config{BcryptCost: 4}, repository.NewUserRepo(db), repository.NewTokenRepo(db), &fakeStore{})
	mock.ExpectQuery(q("FROM users WHERE email = ? LIMIT 1")).WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	rec, body := serve(t, h.Login, call{
		method: http.MethodPost, target: "/users/login",
		body: strings.NewReader(`{"email":"ghost@example.com","password":"whatever"}`),
	})
	if rec.Code != http.StatusUnauthorized || body["message"] != "Authentication failed" {
		t.Fatalf("status = %d body = %v", rec.Code, body)
	}
}
