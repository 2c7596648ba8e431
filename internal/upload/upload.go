package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxSize is the largest accepted image, inclusive.
const MaxSize int64 = 2 << 20

// URLPrefix is where stored images are served.
const URLPrefix = "/uploads/"

// AllowedTypes is shared by the server handler and the client form.
var AllowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

var (
	ErrNoFile      = errors.New("no file uploaded")
	ErrInvalidType = errors.New("invalid file type")
	ErrTooLarge    = errors.New("file too large")
	ErrExists      = errors.New("file already exists")
)

// Check validates a candidate image by declared content type and size.
func Check(contentType string, size int64) error {
	if !AllowedTypes[mediaType(contentType)] {
		return fmt.Errorf("%w: %q", ErrInvalidType, contentType)
	}
	if size > MaxSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, size, MaxSize)
	}
	return nil
}

func mediaType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}

// Storage keeps uploaded images and serves them back under URLPrefix.
// Save must fail with ErrExists rather than replace an existing name.
type Storage interface {
	Save(ctx context.Context, name, contentType string, r io.Reader, size int64) error
	Open(ctx context.Context, name string) (io.ReadCloser, Info, error)
}

type Info struct {
	ContentType string
	Size        int64
	ModTime     time.Time
}

var ErrNotFound = errors.New("file not found")

var extRe = regexp.MustCompile(`^\.[a-z0-9]+$`)

// Ext returns the lowercased extension of original, or "" when it has
// characters outside [a-z0-9].
func Ext(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if !extRe.MatchString(ext) {
		return ""
	}
	return ext
}

// fileName builds the stored name from a timestamp and the original extension.
func fileName(now time.Time, original string) string {
	return strconv.FormatInt(now.UnixNano(), 10) + Ext(original)
}

// URL is the public path of a stored name.
func URL(name string) string { return URLPrefix + name }
