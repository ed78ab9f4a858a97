// Package ratelimit implements a process-wide fixed window rate limiter.
// Requests are counted per client identifier within non-overlapping windows,
// the counter resets entirely at window boundaries.
//
// The store is in-memory only. If this ever runs as more than one replica the
// limit becomes per-replica, a shared store would be needed to make it global.
package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	DefaultMaxRequests   = 30
	DefaultWindow        = time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

// TimeAPI is the interface anything depending on the system clock should use.
type TimeAPI interface {
	Now() time.Time
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

func (StandardTime) Now() time.Time {
	return time.Now()
}

// Result reports the outcome of a single Check call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type entry struct {
	count   int
	resetAt time.Time
}

type Options struct {
	// MaxRequests per window, defaults to DefaultMaxRequests.
	MaxRequests int
	// Window length, defaults to DefaultWindow.
	Window time.Duration
	// SweepInterval between expired-entry sweeps, defaults to DefaultSweepInterval.
	SweepInterval time.Duration
	// Time defaults to StandardTime, inject a fake in tests.
	Time TimeAPI
}

// Store tracks per-client request counts. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	opts    Options
}

func NewStore(opts Options) *Store {
	if opts.MaxRequests <= 0 {
		opts.MaxRequests = DefaultMaxRequests
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Time == nil {
		opts.Time = StandardTime{}
	}
	return &Store{
		entries: map[string]*entry{},
		opts:    opts,
	}
}

// Check records one request for clientID and reports whether it is allowed.
// Every call mutates the counter, including disallowed ones, so callers must
// invoke it exactly once per inbound request.
func (s *Store) Check(clientID string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Time.Now()

	e, ok := s.entries[clientID]
	if !ok || now.After(e.resetAt) {
		e = &entry{
			count:   1,
			resetAt: now.Add(s.opts.Window),
		}
		s.entries[clientID] = e
		return Result{
			Allowed:   true,
			Limit:     s.opts.MaxRequests,
			Remaining: s.opts.MaxRequests - 1,
			ResetAt:   e.resetAt,
		}
	}

	e.count++

	remaining := s.opts.MaxRequests - e.count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   e.count <= s.opts.MaxRequests,
		Limit:     s.opts.MaxRequests,
		Remaining: remaining,
		ResetAt:   e.resetAt,
	}
}

// Reset forcibly deletes the entry for clientID.
func (s *Store) Reset(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, clientID)
}

// StartSweeper deletes expired entries on a fixed interval until ctx is
// cancelled, bounding memory growth under id churn.
func (s *Store) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.opts.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				removed := s.sweep()
				if removed > 0 {
					slog.Debug("swept expired rate limit entries", "removed", removed)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *Store) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Time.Now()
	removed := 0
	for id, e := range s.entries {
		if now.After(e.resetAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func (s *Store) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// ClientIdentifier derives a rate limit bucket key from request headers.
// It prefers the first address in X-Forwarded-For, then X-Real-IP. Clients
// behind neither header all share the "unknown" bucket, an accepted
// limitation of running without a trusted proxy.
func ClientIdentifier(headers http.Header) string {
	forwarded := headers.Get("X-Forwarded-For")
	if forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	realIp := headers.Get("X-Real-IP")
	if realIp != "" {
		return realIp
	}
	return "unknown"
}
