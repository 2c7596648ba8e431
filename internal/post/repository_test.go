package post

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"postboard/internal/shared/db"
)

type staticConn struct{ s *db.Store }

func (c staticConn) Connect(context.Context) (*db.Store, error) { return c.s, nil }

func newSQLiteRepo(t *testing.T) Repository {
	t.Helper()
	uri := fmt.Sprintf("file:%s?mode=memory", t.Name())
	s, err := db.Dial(context.Background(), uri)
	if err != nil {
		t.Fatal(err)
	}
	g, _ := s.Gorm()
	if err := g.AutoMigrate(&Record{}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := g.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewRepository(staticConn{s}, db.SQLite)
}

func mustCreate(t *testing.T, r Repository, title string, st Status, date string) *Post {
	t.Helper()
	d, err := ParseDate(date)
	if err != nil {
		t.Fatal(err)
	}
	p, err := r.Create(context.Background(), &Post{
		Title: title, Description: title + " body", Status: st, Date: d,
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestGormRepoRoundTrip(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	created := mustCreate(t, r, "Hello", StatusActive, "2024-01-01")
	if created.ID == "" {
		t.Fatal("id not assigned")
	}

	got, err := r.Get(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("post not found")
	}
	if got.Title != "Hello" || got.Description != "Hello body" || got.Status != StatusActive ||
		!got.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) || got.ImageURL != "" {
		t.Fatalf("got %+v", got)
	}

	items, err := r.List(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != created.ID {
		t.Fatalf("list = %+v", items)
	}
}

func TestGormRepoFilters(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()
	mustCreate(t, r, "a", StatusActive, "2024-01-01")
	mustCreate(t, r, "b", StatusInactive, "2024-01-15")
	mustCreate(t, r, "c", StatusActive, "2024-01-31")
	mustCreate(t, r, "d", StatusActive, "2024-02-01")

	tests := []struct {
		name string
		f    Filter
		want int
	}{
		{"none", Filter{}, 4},
		{"active", Filter{Status: StatusActive}, 3},
		{"inactive", Filter{Status: StatusInactive}, 1},
		{"inclusive range", Filter{StartDate: "2024-01-01", EndDate: "2024-01-31"}, 3},
		{"single day", Filter{StartDate: "2024-01-15", EndDate: "2024-01-15"}, 1},
		{"start only", Filter{StartDate: "2024-01-20"}, 4},
		{"status and range", Filter{Status: StatusActive, StartDate: "2024-01-01", EndDate: "2024-01-31"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := r.List(ctx, tt.f)
			if err != nil {
				t.Fatal(err)
			}
			if len(items) != tt.want {
				t.Fatalf("got %d posts, want %d", len(items), tt.want)
			}
		})
	}
}

func TestGormRepoPartialUpdate(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()
	p := mustCreate(t, r, "Hello", StatusActive, "2024-01-01")

	title := "Changed"
	st := StatusInactive
	got, err := r.Update(ctx, p.ID, Changes{Title: &title, Status: &st})
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != p.ID || got.Title != "Changed" || got.Status != StatusInactive {
		t.Fatalf("got %+v", got)
	}
	if got.Description != p.Description || !got.Date.Equal(p.Date) {
		t.Fatalf("untouched fields changed: %+v", got)
	}

	img := "/uploads/1.png"
	got, err = r.Update(ctx, p.ID, Changes{ImageURL: &img})
	if err != nil {
		t.Fatal(err)
	}
	if got.ImageURL != img || got.Title != "Changed" {
		t.Fatalf("got %+v", got)
	}
}

func TestGormRepoUnknownID(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()
	title := "x"

	got, err := r.Update(ctx, "does-not-exist", Changes{Title: &title})
	if err != nil || got != nil {
		t.Fatalf("update = %+v, %v; want nil, nil", got, err)
	}
	got, err = r.Get(ctx, "does-not-exist")
	if err != nil || got != nil {
		t.Fatalf("get = %+v, %v; want nil, nil", got, err)
	}
}

func TestGormRepoDeleteIsIdempotent(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()
	p := mustCreate(t, r, "Hello", StatusActive, "2024-01-01")

	for i := 0; i < 2; i++ {
		if err := r.Delete(ctx, p.ID); err != nil {
			t.Fatalf("delete #%d: %v", i+1, err)
		}
	}
	got, err := r.Get(ctx, p.ID)
	if err != nil || got != nil {
		t.Fatalf("get after delete = %+v, %v", got, err)
	}
}

func TestMongoFilter(t *testing.T) {
	m, err := mongoFilter(Filter{})
	if err != nil || len(m) != 0 {
		t.Fatalf("empty filter = %v, %v", m, err)
	}

	m, err = mongoFilter(Filter{Status: StatusActive, StartDate: "2024-01-01", EndDate: "2024-01-31"})
	if err != nil {
		t.Fatal(err)
	}
	if m["status"] != "active" {
		t.Fatalf("status = %v", m["status"])
	}
	rng, ok := m["date"].(bson.M)
	if !ok {
		t.Fatalf("date = %T", m["date"])
	}
	if !rng["$gte"].(time.Time).Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) ||
		!rng["$lt"].(time.Time).Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("range = %v", rng)
	}

	m, err = mongoFilter(Filter{StartDate: "2024-01-01"})
	if err != nil || len(m) != 0 {
		t.Fatalf("start only = %v, %v", m, err)
	}

	if _, err := mongoFilter(Filter{StartDate: "jan", EndDate: "feb"}); err == nil {
		t.Fatal("want error for bad dates")
	}
}

func TestMongoRepoMalformedIDIsNotFound(t *testing.T) {
	r := NewRepository(staticConn{&db.Store{Driver: db.Mongo}}, db.Mongo)
	title := "x"
	got, err := r.Update(context.Background(), "not-hex", Changes{Title: &title})
	if err != nil || got != nil {
		t.Fatalf("update = %+v, %v", got, err)
	}
	if err := r.Delete(context.Background(), "not-hex"); err != nil {
		t.Fatal(err)
	}
}
