package form

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

const blobPrefix = "blob:"

// Previews hands out client-local handles for selected images. Every handle
// must be released once the image is replaced, removed or submitted.
type Previews struct {
	mu   sync.Mutex
	live map[string]Image
}

func NewPreviews() *Previews { return &Previews{live: map[string]Image{}} }

func (p *Previews) Acquire(img Image) string {
	h := blobPrefix + uuid.NewString()
	p.mu.Lock()
	p.live[h] = img
	p.mu.Unlock()
	return h
}

// Release frees h. Non-blob values and unknown handles are ignored.
func (p *Previews) Release(h string) {
	if !IsPreview(h) {
		return
	}
	p.mu.Lock()
	delete(p.live, h)
	p.mu.Unlock()
}

func (p *Previews) Lookup(h string) (Image, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	img, ok := p.live[h]
	return img, ok
}

// Live is the number of handles not yet released.
func (p *Previews) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

func IsPreview(s string) bool { return strings.HasPrefix(s, blobPrefix) }
