package post

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record is the relational row for a Post.
type Record struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Title       string    `gorm:"size:512"`
	Description string    `gorm:"type:text"`
	Status      string    `gorm:"size:16;index"`
	Date        time.Time `gorm:"index"`
	ImageURL    string    `gorm:"size:512"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Record) TableName() string { return "posts" }

func (r *Record) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r *Record) toPost() Post {
	return Post{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      Status(r.Status),
		Date:        r.Date.UTC(),
		ImageURL:    r.ImageURL,
	}
}

type gormRepo struct{ conn Connector }

func (r *gormRepo) db(ctx context.Context) (*gorm.DB, error) {
	s, err := r.conn.Connect(ctx)
	if err != nil {
		return nil, err
	}
	g, err := s.Gorm()
	if err != nil {
		return nil, err
	}
	return g.WithContext(ctx), nil
}

func (r *gormRepo) List(ctx context.Context, f Filter) ([]Post, error) {
	q, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	from, until, ok, err := f.DateRange()
	if err != nil {
		return nil, err
	}
	if ok {
		q = q.Where("date >= ? AND date < ?", from, until)
	}

	var rows []Record
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Post, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toPost())
	}
	return out, nil
}

func (r *gormRepo) Get(ctx context.Context, id string) (*Post, error) {
	q, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	return r.find(q, id)
}

func (r *gormRepo) find(q *gorm.DB, id string) (*Post, error) {
	var rec Record
	if err := q.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	p := rec.toPost()
	return &p, nil
}

func (r *gormRepo) Create(ctx context.Context, p *Post) (*Post, error) {
	q, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	rec := &Record{
		Title:       p.Title,
		Description: p.Description,
		Status:      string(p.Status),
		Date:        p.Date,
		ImageURL:    p.ImageURL,
	}
	if err := q.Create(rec).Error; err != nil {
		return nil, err
	}
	out := rec.toPost()
	return &out, nil
}

func (r *gormRepo) Update(ctx context.Context, id string, c Changes) (*Post, error) {
	q, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	if !c.Empty() {
		if err := q.Model(&Record{}).Where("id = ?", id).Updates(gormUpdates(c)).Error; err != nil {
			return nil, err
		}
	}
	return r.find(q, id)
}

func gormUpdates(c Changes) map[string]any {
	m := map[string]any{}
	if c.Title != nil {
		m["title"] = *c.Title
	}
	if c.Description != nil {
		m["description"] = *c.Description
	}
	if c.Status != nil {
		m["status"] = string(*c.Status)
	}
	if c.Date != nil {
		m["date"] = *c.Date
	}
	if c.ImageURL != nil {
		m["image_url"] = *c.ImageURL
	}
	return m
}

func (r *gormRepo) Delete(ctx context.Context, id string) error {
	q, err := r.db(ctx)
	if err != nil {
		return err
	}
	return q.Delete(&Record{}, "id = ?", id).Error
}
