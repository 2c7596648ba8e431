package store

import (
	"context"
	"sync"

	"postboard/internal/post"
)

// API is the subset of the posts client the cache needs.
type API interface {
	List(ctx context.Context, f post.Filter) ([]post.Post, error)
	Create(ctx context.Context, in post.Input) (*post.Post, error)
	Update(ctx context.Context, id string, req post.UpdateReq) (*post.Post, error)
	Delete(ctx context.Context, id string) error
}

// Cache holds the last fetched post list. Writes go straight to the API and
// only mark the list stale; callers refresh when they want the new state.
type Cache struct {
	api API

	mu     sync.RWMutex
	items  []post.Post
	filter post.Filter
	stale  bool
}

func New(api API) *Cache { return &Cache{api: api, stale: true} }

// Read returns a copy of the cached list as of the last Refresh.
func (c *Cache) Read() []post.Post {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]post.Post, len(c.items))
	copy(out, c.items)
	return out
}

// Filter is the criteria of the last successful Refresh.
func (c *Cache) Filter() post.Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

func (c *Cache) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stale
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.stale = true
	c.mu.Unlock()
}

// Refresh refetches with f and replaces the cached list. On error the
// previous list is kept.
func (c *Cache) Refresh(ctx context.Context, f post.Filter) ([]post.Post, error) {
	items, err := c.api.List(ctx, f)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.items, c.filter, c.stale = items, f, false
	c.mu.Unlock()
	return c.Read(), nil
}

func (c *Cache) Create(ctx context.Context, in post.Input) (*post.Post, error) {
	p, err := c.api.Create(ctx, in)
	if err == nil {
		c.Invalidate()
	}
	return p, err
}

func (c *Cache) Update(ctx context.Context, id string, req post.UpdateReq) (*post.Post, error) {
	p, err := c.api.Update(ctx, id, req)
	if err == nil {
		c.Invalidate()
	}
	return p, err
}

func (c *Cache) Delete(ctx context.Context, id string) error {
	err := c.api.Delete(ctx, id)
	if err == nil {
		c.Invalidate()
	}
	return err
}
