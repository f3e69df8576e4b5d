package blob

import "sync"

// Lease owns at most one blob URL at a time. Replacing the contents revokes
// the previous URL before registering the new one. The zero value is not
// usable; create leases with NewLease.
type Lease struct {
	mu       sync.Mutex
	registry *Registry
	url      string
}

// NewLease returns an empty lease on r.
func NewLease(r *Registry) *Lease {
	return &Lease{registry: r}
}

// Replace releases the current URL and registers data under a new one.
func (l *Lease) Replace(data []byte, contentType string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releaseLocked()
	url, err := l.registry.Register(data, contentType)
	if err != nil {
		return "", err
	}
	l.url = url
	return url, nil
}

// URL is the current blob URL, or "" when nothing is held.
func (l *Lease) URL() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.url
}

// Release revokes the current URL. It is safe to call repeatedly.
func (l *Lease) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releaseLocked()
}

func (l *Lease) releaseLocked() {
	if l.url != "" {
		l.registry.Revoke(l.url)
		l.url = ""
	}
}
