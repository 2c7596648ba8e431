package post

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-01-01", " 2024-01-01 ", "2024-01-01T15:04:05Z", "2024-01-01T23:00:00+00:00"} {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", in, err)
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseDate("01/01/2024"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestFilterDateRange(t *testing.T) {
	_, _, ok, err := Filter{StartDate: "2024-01-01"}.DateRange()
	if ok || err != nil {
		t.Fatalf("start only: ok=%v err=%v", ok, err)
	}
	from, until, ok, err := Filter{StartDate: "2024-01-01", EndDate: "2024-01-31"}.DateRange()
	if !ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if !from.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) || !until.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("range = [%v, %v)", from, until)
	}
}

func TestFilterQueryRoundTrip(t *testing.T) {
	f := Filter{Status: StatusInactive, StartDate: "2024-01-01", EndDate: "2024-01-02"}
	if got := FilterFromQuery(f.Query()); got != f {
		t.Fatalf("got %+v", got)
	}
	if q := (Filter{}).Query(); len(q) != 0 {
		t.Fatalf("empty filter encodes %v", q)
	}
}

func TestInputFullReplacesEveryField(t *testing.T) {
	in := Input{Title: "t", Description: "d", Status: StatusActive, Date: "2024-03-04", ImageURL: "/uploads/x.png"}
	c, err := in.Full().changes()
	if err != nil {
		t.Fatal(err)
	}
	if *c.Title != "t" || *c.Description != "d" || *c.Status != StatusActive || *c.ImageURL != "/uploads/x.png" ||
		FormatDate(*c.Date) != "2024-03-04" {
		t.Fatalf("changes = %+v", c)
	}
}
