package post

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool { return s == StatusActive || s == StatusInactive }

// DateLayout is the wire format of calendar dates in requests and filters.
const DateLayout = "2006-01-02"

type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Date        time.Time `json:"date"`
	ImageURL    string    `json:"imageUrl"`
}

// Input is a full post payload without id. It is what the form submits for
// both create and update.
type Input struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	Date        string `json:"date"`
	ImageURL    string `json:"imageUrl"`
}

// UpdateReq carries only the fields present in a PUT body.
type UpdateReq struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
	Date        *string `json:"date,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

// Full turns an Input into an UpdateReq that replaces every field.
func (in Input) Full() UpdateReq {
	return UpdateReq{
		Title:       &in.Title,
		Description: &in.Description,
		Status:      &in.Status,
		Date:        &in.Date,
		ImageURL:    &in.ImageURL,
	}
}

// Changes is an UpdateReq with the date already parsed.
type Changes struct {
	Title       *string
	Description *string
	Status      *Status
	Date        *time.Time
	ImageURL    *string
}

func (c Changes) Empty() bool {
	return c.Title == nil && c.Description == nil && c.Status == nil && c.Date == nil && c.ImageURL == nil
}

var ErrInvalidInput = errors.New("invalid input")

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns UTC midnight of that
// calendar day. Time of day is dropped.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidInput, s)
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// FormatDate renders the calendar day of t.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

func (in Input) toPost() (*Post, error) {
	p := &Post{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		ImageURL:    in.ImageURL,
	}
	if in.Date != "" {
		d, err := ParseDate(in.Date)
		if err != nil {
			return nil, err
		}
		p.Date = d
	}
	return p, nil
}

func (u UpdateReq) changes() (Changes, error) {
	c := Changes{
		Title:       u.Title,
		Description: u.Description,
		Status:      u.Status,
		ImageURL:    u.ImageURL,
	}
	if u.Date != nil {
		d, err := ParseDate(*u.Date)
		if err != nil {
			return Changes{}, err
		}
		c.Date = &d
	}
	return c, nil
}

// Filter narrows a listing. The date range only applies when both bounds are
// set; both ends are inclusive.
type Filter struct {
	Status    Status `json:"status"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// DateRange returns [from, until) covering the inclusive calendar range.
// ok is false when the range is not active.
func (f Filter) DateRange() (from, until time.Time, ok bool, err error) {
	if f.StartDate == "" || f.EndDate == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	if from, err = ParseDate(f.StartDate); err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	end, err := ParseDate(f.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	return from, end.AddDate(0, 0, 1), true, nil
}

func FilterFromQuery(q url.Values) Filter {
	return Filter{
		Status:    Status(q.Get("status")),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}
}

// Query encodes the non-empty criteria.
func (f Filter) Query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	return q
}
