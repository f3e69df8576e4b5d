// Package blob holds in-memory objects addressable by short-lived URLs of the
// form /blob/<uuid>. The web front uses it to preview resumes without
// exposing the API's resume endpoint to the browser.
package blob

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"lifewood/internal/middleware"
	"lifewood/internal/observability"

	"github.com/google/uuid"
)

// URLPrefix is the path every blob URL starts with.
const URLPrefix = "/blob/"

// DefaultMaxLive caps how many blobs a registry holds at once.
const DefaultMaxLive = 256

var (
	// ErrLimit is returned when the registry is full.
	ErrLimit = errors.New("blob registry is full")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("blob registry is closed")
)

// Object is a registered blob.
type Object struct {
	Data        []byte
	ContentType string
}

// Registry maps blob URLs to their data. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	objects map[string]Object
	maxLive int
	closed  bool
}

// NewRegistry returns a registry holding at most maxLive blobs. maxLive <= 0
// selects DefaultMaxLive.
func NewRegistry(maxLive int) *Registry {
	if maxLive <= 0 {
		maxLive = DefaultMaxLive
	}
	return &Registry{objects: make(map[string]Object), maxLive: maxLive}
}

// Register stores data and returns its URL.
func (r *Registry) Register(data []byte, contentType string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", ErrClosed
	}
	if len(r.objects) >= r.maxLive {
		return "", ErrLimit
	}
	url := URLPrefix + uuid.NewString()
	r.objects[url] = Object{Data: data, ContentType: contentType}
	observability.LiveBlobs.Inc()
	return url, nil
}

// Revoke forgets url. Unknown URLs are ignored.
func (r *Registry) Revoke(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.objects[url]; ok {
		delete(r.objects, url)
		observability.LiveBlobs.Dec()
	}
}

// Get looks up a blob by URL or by its bare id.
func (r *Registry) Get(url string) (Object, bool) {
	if !strings.HasPrefix(url, URLPrefix) {
		url = URLPrefix + url
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.objects[url]
	return obj, ok
}

// Live is the number of registered blobs.
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}

// Close drops every blob. Blobs still registered at this point were never
// released by their owner and are logged as leaks.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if n := len(r.objects); n > 0 {
		middleware.Logger.Warn("blob registry closed with live blobs", slog.Int("leaked", n))
		observability.LiveBlobs.Sub(float64(n))
	}
	r.objects = nil
}
