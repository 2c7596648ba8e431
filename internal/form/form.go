package form

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"postboard/internal/post"
	"postboard/internal/upload"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Image is a file picked by the user but not uploaded yet.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

func (img Image) Size() int64 { return int64(len(img.Data)) }

type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// SubmitFunc persists the assembled payload. editID is empty in create mode.
type SubmitFunc func(ctx context.Context, in post.Input, editID string) error

var (
	ErrUnknownField = errors.New("unknown form field")
	ErrBusy         = errors.New("submission already in progress")
)

// Form is the create/edit state machine. Submit runs upload then persist
// strictly in order and leaves the form untouched when either step fails.
type Form struct {
	up       Uploader
	previews *Previews

	mu      sync.Mutex
	mode    Mode
	editing *post.Post
	values  Values
	image   *Image
	preview string
	errs    FieldErrors
	busy    bool
}

func New(up Uploader, previews *Previews) *Form {
	if previews == nil {
		previews = NewPreviews()
	}
	return &Form{up: up, previews: previews}
}

func (f *Form) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// EditingID is the bound post id, empty in create mode.
func (f *Form) EditingID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editing == nil {
		return ""
	}
	return f.editing.ID
}

func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Preview is the image currently shown: a blob handle for a new selection,
// the bound post's URL in edit mode, or "".
func (f *Form) Preview() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preview
}

func (f *Form) Errors() FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := FieldErrors{}
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

// Set assigns one field by name. A field that already shows an error is
// checked again and keeps its error until the new value is valid.
func (f *Form) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(field)
	switch key {
	case "title":
		f.values.Title = value
	case "description":
		f.values.Description = value
	case "status":
		f.values.Status = value
	case "date":
		f.values.Date = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if _, shown := f.errs[key]; !shown {
		return nil
	}
	var fe FieldErrors
	if errors.As(f.values.Validate(), &fe) && fe[key] != "" {
		f.errs[key] = fe[key]
	} else {
		delete(f.errs, key)
	}
	return nil
}

func (f *Form) SetValues(v Values) {
	f.mu.Lock()
	f.values = v
	f.errs = nil
	f.mu.Unlock()
}

// BeginEdit binds the form to p and fills in its fields. The stored image is
// shown as the preview; it is not uploaded again.
func (f *Form) BeginEdit(p post.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropImage()
	cp := p
	f.mode, f.editing = ModeEdit, &cp
	f.values = Values{
		Title:       p.Title,
		Description: p.Description,
		Status:      string(p.Status),
		Date:        post.FormatDate(p.Date),
	}
	f.preview = p.ImageURL
	f.errs = nil
}

// SelectImage checks img against the upload rules and makes it the pending
// image. A rejected image leaves the previous selection in place.
func (f *Form) SelectImage(img Image) error {
	if err := upload.Check(img.ContentType, img.Size()); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropImage()
	f.image = &img
	f.preview = f.previews.Acquire(img)
	return nil
}

// RemoveImage clears the pending image and the preview.
func (f *Form) RemoveImage() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropImage()
	f.preview = ""
}

// Cancel resets the form to an empty create form.
func (f *Form) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

func (f *Form) reset() {
	f.dropImage()
	f.mode, f.editing = ModeCreate, nil
	f.values = Values{}
	f.preview = ""
	f.errs = nil
}

// dropImage releases the pending image's preview handle. Caller holds mu.
func (f *Form) dropImage() {
	if IsPreview(f.preview) {
		f.previews.Release(f.preview)
		f.preview = ""
	}
	f.image = nil
}

// Submit validates, uploads the pending image if any, then calls onSubmit.
// Validation errors are returned as FieldErrors and make no network call.
// On success the form returns to an empty create form.
func (f *Form) Submit(ctx context.Context, onSubmit SubmitFunc) error {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return ErrBusy
	}
	if err := f.values.Validate(); err != nil {
		var fe FieldErrors
		if errors.As(err, &fe) {
			f.errs = fe
		}
		f.mu.Unlock()
		return err
	}
	f.errs = nil
	f.busy = true
	values, img, editing := f.values, f.image, f.editing
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.busy = false
		f.mu.Unlock()
	}()

	imageURL := ""
	switch {
	case img != nil:
		u, err := f.up.Upload(ctx, img.Name, img.ContentType, bytes.NewReader(img.Data))
		if err != nil {
			return fmt.Errorf("image upload: %w", err)
		}
		imageURL = u
	case editing != nil:
		imageURL = editing.ImageURL
	}

	editID := ""
	if editing != nil {
		editID = editing.ID
	}
	if err := onSubmit(ctx, values.input(imageURL), editID); err != nil {
		return err
	}

	f.mu.Lock()
	f.reset()
	f.mu.Unlock()
	return nil
}
