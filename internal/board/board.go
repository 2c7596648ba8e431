package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"postboard/internal/form"
	"postboard/internal/post"
	"postboard/internal/store"
)

var (
	ErrUnknownFilter = errors.New("unknown filter")
	ErrNotFound      = errors.New("post not in the current list")
)

// Board ties the cached list, the active filters and the form together.
// Every write is followed by a refetch with the active filters.
type Board struct {
	cache *store.Cache
	form  *form.Form

	mu     sync.Mutex
	filter post.Filter
}

func New(cache *store.Cache, f *form.Form) *Board {
	return &Board{cache: cache, form: f}
}

func (b *Board) Form() *form.Form { return b.form }

func (b *Board) Posts() []post.Post { return b.cache.Read() }

// Filter is the active criteria, including changes whose refetch failed.
func (b *Board) Filter() post.Filter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// Refresh refetches with the active filters.
func (b *Board) Refresh(ctx context.Context) ([]post.Post, error) {
	return b.cache.Refresh(ctx, b.Filter())
}

// SetFilter merges one criterion into the active filters and refetches.
// name is one of status, startDate or endDate; an empty value clears it.
// The merged criteria stay active even when the refetch fails.
func (b *Board) SetFilter(ctx context.Context, name, value string) ([]post.Post, error) {
	b.mu.Lock()
	f := b.filter
	switch name {
	case "status":
		f.Status = post.Status(value)
	case "startDate":
		f.StartDate = value
	case "endDate":
		f.EndDate = value
	default:
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	b.filter = f
	b.mu.Unlock()
	return b.cache.Refresh(ctx, f)
}

// Edit binds the form to a post from the current list.
func (b *Board) Edit(id string) error {
	for _, p := range b.cache.Read() {
		if p.ID == id {
			b.form.BeginEdit(p)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Submit sends the form as a create or an update, then refetches. A failed
// refetch is reported after the write has already happened.
func (b *Board) Submit(ctx context.Context) error {
	if err := b.form.Submit(ctx, b.write); err != nil {
		return err
	}
	_, err := b.Refresh(ctx)
	return err
}

func (b *Board) write(ctx context.Context, in post.Input, editID string) error {
	if editID != "" {
		_, err := b.cache.Update(ctx, editID, in.Full())
		return err
	}
	_, err := b.cache.Create(ctx, in)
	return err
}

func (b *Board) Delete(ctx context.Context, id string) error {
	if err := b.cache.Delete(ctx, id); err != nil {
		return err
	}
	_, err := b.Refresh(ctx)
	return err
}
