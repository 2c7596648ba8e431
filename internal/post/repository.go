package post

import (
	"context"

	"postboard/internal/shared/db"
)

// Repository is a direct pass-through to the store. Update returns (nil, nil)
// and Delete returns nil when the id does not exist.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Post, error)
	Get(ctx context.Context, id string) (*Post, error)
	Create(ctx context.Context, p *Post) (*Post, error)
	Update(ctx context.Context, id string, c Changes) (*Post, error)
	Delete(ctx context.Context, id string) error
}

// Connector yields the shared store handle; *db.Lazy implements it.
type Connector interface {
	Connect(ctx context.Context) (*db.Store, error)
}

// NewRepository picks the implementation matching the configured driver.
func NewRepository(conn Connector, drv db.Driver) Repository {
	if drv == db.Mongo {
		return &mongoRepo{conn: conn}
	}
	return &gormRepo{conn: conn}
}
