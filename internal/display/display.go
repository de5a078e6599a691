// Package display keeps downloaded images in memory behind opaque handles that
// front ends can render or serve, much like a browser object URL.
package display

import (
	"mime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Handle struct {
	ID          string    `json:"id"`
	ContentType string    `json:"contentType"`
	Size        int       `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
	Data        []byte    `json:"-"`
}

// Path is where the web front end serves the handle.
func (h Handle) Path() string {
	return "/images/" + h.ID
}

// Ext returns a file extension for the handle's content type, with the leading dot.
func (h Handle) Ext() string {
	switch h.ContentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	exts, _ := mime.ExtensionsByType(h.ContentType)
	return lo.Ternary(len(exts) > 0, lo.LastOrEmpty(exts), ".bin")
}

type Registry struct {
	mu      sync.RWMutex
	handles map[string]Handle
	now     func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{handles: map[string]Handle{}, now: time.Now}
}

func (r *Registry) Create(data []byte, contentType string) Handle {
	h := Handle{
		ID:          uuid.NewString(),
		ContentType: contentType,
		Size:        len(data),
		CreatedAt:   r.now().UTC(),
		Data:        data,
	}
	r.mu.Lock()
	r.handles[h.ID] = h
	r.mu.Unlock()
	return h
}

func (r *Registry) Get(id string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[id]
	return h, ok
}

// Release drops the handle. Releasing an unknown id is a no-op.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	delete(r.handles, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Shutdown releases every handle.
func (r *Registry) Shutdown() error {
	r.mu.Lock()
	clear(r.handles)
	r.mu.Unlock()
	return nil
}
