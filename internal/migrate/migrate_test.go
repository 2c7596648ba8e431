package migrate

import (
	"context"
	"testing"

	"postboard/internal/post"
	"postboard/internal/shared/db"
)

func TestHookMigratesSQLite(t *testing.T) {
	s, err := db.Dial(context.Background(), "file:migratetest?mode=memory")
	if err != nil {
		t.Fatal(err)
	}
	if err := Hook(false)(s); err != nil {
		t.Fatal(err)
	}
	g, _ := s.Gorm()
	if !g.Migrator().HasTable(&post.Record{}) {
		t.Fatal("posts table not created")
	}
}

func TestHookSkipsMongo(t *testing.T) {
	if err := Hook(true)(&db.Store{Driver: db.Mongo}); err != nil {
		t.Fatal(err)
	}
}
