package form

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"postboard/internal/post"
)

// Values are the editable fields of the form.
type Values struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Status      string `json:"status" validate:"required,oneof=active inactive"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldErrors maps a field name to its message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

var messages = map[string]map[string]string{
	"title":       {"required": "Title is required"},
	"description": {"required": "Description is required"},
	"status":      {"required": "Status is required", "oneof": "Status must be active or inactive"},
	"date":        {"required": "Date is required", "datetime": "Date must be YYYY-MM-DD"},
}

// Validate checks v and returns FieldErrors keyed by lowercase field name.
func (v Values) Validate() error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	fe := FieldErrors{}
	for _, e := range ves {
		field := strings.ToLower(e.Field())
		msg := messages[field][e.Tag()]
		if msg == "" {
			msg = e.Error()
		}
		if _, seen := fe[field]; !seen {
			fe[field] = msg
		}
	}
	return fe
}

func (v Values) input(imageURL string) post.Input {
	return post.Input{
		Title:       v.Title,
		Description: v.Description,
		Status:      post.Status(v.Status),
		Date:        v.Date,
		ImageURL:    imageURL,
	}
}
