package migrate

import (
	"postboard/internal/post"
	"postboard/internal/shared/db"
)

// AutoMigrateAll brings the relational schema up to date. Mongo needs no
// schema and is skipped.
func AutoMigrateAll(store *db.Store) error {
	if store.Driver == db.Mongo {
		return nil
	}
	g, err := store.Gorm()
	if err != nil {
		return err
	}
	return g.AutoMigrate(&post.Record{})
}

// Hook returns the db.WithOnConnect callback for the given settings. SQLite
// is always migrated since it is only used for local runs and tests.
func Hook(auto bool) func(*db.Store) error {
	return func(s *db.Store) error {
		if !auto && s.Driver != db.SQLite {
			return nil
		}
		return AutoMigrateAll(s)
	}
}
