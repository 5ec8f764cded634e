package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestListingPatchKeepsOmittedFields(t *testing.T) {
	t.Parallel()
	h := Listing{Title: "Old", City: "Lahore", Country: "PK", OpeningTime: "09:00", ClosingTime: "23:00"}

	var p ListingPatch
	if err := json.Unmarshal([]byte(`{"title":"New Name","city":null}`), &p); err != nil {
		t.Fatal(err)
	}
	p.Apply(&h)

	if h.Title != "New Name" {
		t.Fatalf("title = %q", h.Title)
	}
	if h.City != "Lahore" || h.Country != "PK" || h.OpeningTime != "09:00" || h.ClosingTime != "23:00" {
		t.Fatalf("untouched fields changed: %+v", h)
	}
}

func TestPatchAppliesExplicitZeroValues(t *testing.T) {
	t.Parallel()
	u := User{Phone: "0300", City: "Karachi"}
	var p UserPatch
	if err := json.Unmarshal([]byte(`{"phone":""}`), &p); err != nil {
		t.Fatal(err)
	}
	p.Apply(&u)
	if u.Phone != "" || u.City != "Karachi" {
		t.Fatalf("got %+v", u)
	}

	r := Room{PricePerDay: 100, Capacity: 2}
	var rp RoomPatch
	if err := json.Unmarshal([]byte(`{"noOfPerson":0}`), &rp); err != nil {
		t.Fatal(err)
	}
	rp.Apply(&r)
	if r.Capacity != 0 || r.PricePerDay != 100 {
		t.Fatalf("got %+v", r)
	}
}

func TestBookingPatchTimes(t *testing.T) {
	t.Parallel()
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b := HotelRoomBooking{HotelRoomID: 7, UserID: 3, StartTime: t0, EndTime: t0.Add(24 * time.Hour)}

	var p BookingPatch
	if err := json.Unmarshal([]byte(`{"bookingTimeEnd":"2026-01-03T12:00:00Z"}`), &p); err != nil {
		t.Fatal(err)
	}
	p.Apply(&b)
	if !b.StartTime.Equal(t0) || !b.EndTime.Equal(t0.Add(48*time.Hour)) || b.HotelRoomID != 7 {
		t.Fatalf("got %+v", b)
	}
	if !ValidWindow(b.StartTime, b.EndTime) || ValidWindow(b.EndTime, b.StartTime) {
		t.Fatal("ValidWindow mismatch")
	}
}

func TestURLList(t *testing.T) {
	t.Parallel()
	var l URLList
	if err := l.Scan([]byte(`["a","b","c"]`)); err != nil {
		t.Fatal(err)
	}
	if got := l.Without([]string{"b", "x"}); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("Without = %v", got)
	}
	if err := l.Scan(nil); err != nil || len(l) != 0 {
		t.Fatalf("Scan(nil) = %v, %v", l, err)
	}
	v, err := URLList(nil).Value()
	if err != nil || v != "[]" {
		t.Fatalf("Value(nil) = %v, %v", v, err)
	}
	if err := l.Scan(42); err == nil {
		t.Fatal("expected error for int source")
	}
}
