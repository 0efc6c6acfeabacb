// Package ratelimit implements per-user fixed-window admission control
// for completion requests.
package ratelimit

import (
	"sync"
	"time"
)

// window tracks one user's remaining quota until resetAt. Expired
// windows are dropped whole and replaced, never partially refilled.
type window struct {
	remaining int
	resetAt   time.Time
}

// Limiter holds one fixed window per active user. Windows are created
// by RegisterWindow on the first admitted request and removed on Reset
// or expiry, so a user with no window is always admitted.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{windows: make(map[string]*window), now: time.Now}
}

// Limited reports whether the user is currently over quota. When a live
// window with remaining quota exists, one request is consumed as a side
// effect. No window, or an expired one, means the request is admitted
// without consuming anything.
func (l *Limiter) Limited(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[userID]
	if !ok {
		return false
	}
	if !l.now().Before(w.resetAt) {
		delete(l.windows, userID)
		return false
	}
	if w.remaining <= 0 {
		return true
	}
	w.remaining--
	return false
}

// RegisterWindow starts a fresh window for the user only if none exists.
// The request that triggered registration is not counted against the new
// window, so each window cycle effectively begins with one free request.
func (l *Limiter) RegisterWindow(userID string, maxRequests int, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.windows[userID]; ok {
		return
	}
	l.windows[userID] = &window{remaining: maxRequests, resetAt: l.now().Add(d)}
}

// Reset removes the user's window entirely; the next request is admitted
// regardless of prior exhaustion. Idempotent.
func (l *Limiter) Reset(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, userID)
}

// UntilReset returns how long until the user's window expires, for the
// "try again in N seconds" denial message. Zero when no live window
// exists.
func (l *Limiter) UntilReset(userID string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[userID]
	if !ok {
		return 0
	}
	d := w.resetAt.Sub(l.now())
	if d < 0 {
		return 0
	}
	return d
}
