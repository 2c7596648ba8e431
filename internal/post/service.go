package post

import (
	"context"
	"log"
	"time"

	"postboard/internal/shared/telemetry"
)

type Service interface {
	List(ctx context.Context, f Filter) ([]Post, error)
	Get(ctx context.Context, id string) (*Post, error)
	Create(ctx context.Context, uid string, in Input) (*Post, error)
	Update(ctx context.Context, uid, id string, req UpdateReq) (*Post, error)
	Delete(ctx context.Context, uid, id string) error
}

// Publisher receives post events; kafka.Writer satisfies it.
type Publisher interface {
	WriteJSON(ctx context.Context, v any) error
}

const (
	EventCreated = "post.created"
	EventUpdated = "post.updated"
	EventDeleted = "post.deleted"
)

type Event struct {
	Type   string    `json:"type"`
	PostID string    `json:"post_id"`
	UserID string    `json:"user_id"`
	Post   *Post     `json:"post,omitempty"`
	At     time.Time `json:"at"`
}

func (e Event) Key() string { return e.PostID }

type service struct {
	repo Repository
	pub  Publisher
}

func NewService(repo Repository, pub Publisher) Service {
	return &service{repo: repo, pub: pub}
}

func (s *service) List(ctx context.Context, f Filter) ([]Post, error) {
	if _, _, _, err := f.DateRange(); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, f)
	telemetry.PostOps.WithLabelValues("list", telemetry.Outcome(err)).Inc()
	return items, err
}

func (s *service) Get(ctx context.Context, id string) (*Post, error) {
	p, err := s.repo.Get(ctx, id)
	telemetry.PostOps.WithLabelValues("get", telemetry.Outcome(err)).Inc()
	return p, err
}

func (s *service) Create(ctx context.Context, uid string, in Input) (*Post, error) {
	p, err := in.toPost()
	if err != nil {
		return nil, err
	}
	out, err := s.repo.Create(ctx, p)
	telemetry.PostOps.WithLabelValues("create", telemetry.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	s.publish(ctx, Event{Type: EventCreated, PostID: out.ID, UserID: uid, Post: out})
	return out, nil
}

func (s *service) Update(ctx context.Context, uid, id string, req UpdateReq) (*Post, error) {
	c, err := req.changes()
	if err != nil {
		return nil, err
	}
	out, err := s.repo.Update(ctx, id, c)
	telemetry.PostOps.WithLabelValues("update", telemetry.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	if out != nil {
		s.publish(ctx, Event{Type: EventUpdated, PostID: out.ID, UserID: uid, Post: out})
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, uid, id string) error {
	err := s.repo.Delete(ctx, id)
	telemetry.PostOps.WithLabelValues("delete", telemetry.Outcome(err)).Inc()
	if err != nil {
		return err
	}
	s.publish(ctx, Event{Type: EventDeleted, PostID: id, UserID: uid})
	return nil
}

// publish never fails the write that triggered it.
func (s *service) publish(ctx context.Context, e Event) {
	if s.pub == nil {
		return
	}
	e.At = time.Now().UTC()
	if err := s.pub.WriteJSON(ctx, e); err != nil {
		log.Printf("publish %s %s: %v", e.Type, e.PostID, err)
	}
}
