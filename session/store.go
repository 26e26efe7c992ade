// Package session tracks live authenticated browser sessions. A session
// is created once the operator has logged in, claimed by exactly one
// harvest job at a time, and swept when it outlives its maximum age.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/austral-data/cosecha/browser"
)

var (
	// ErrNotFound reports an unknown session id.
	ErrNotFound = errors.New("session: not found")

	// ErrBusy reports a session already claimed by another owner.
	ErrBusy = errors.New("session: claimed by another owner")

	// ErrExists reports a duplicate session id on Create.
	ErrExists = errors.New("session: already exists")
)

// Session is one live authenticated page.
type Session struct {
	ID        string
	Surface   browser.Surface
	CreatedAt time.Time
}

type entry struct {
	session *Session
	owner   string
}

// Store holds live sessions keyed by id. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry), now: time.Now}
}

// Create registers a new session. The id must be unused.
func (st *Store) Create(id string, surface browser.Surface) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.entries[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrExists, id)
	}
	s := &Session{ID: id, Surface: surface, CreatedAt: st.now()}
	st.entries[id] = &entry{session: s}
	return s, nil
}

// Get claims the session for the given owner. A session has at most one
// owner at a time; a second claim fails with ErrBusy until Release.
// Re-claiming by the current owner is allowed.
func (st *Store) Get(id, owner string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if e.owner != "" && e.owner != owner {
		return nil, fmt.Errorf("%w: %s held by %s", ErrBusy, id, e.owner)
	}
	e.owner = owner
	return e.session, nil
}

// Release drops the session's owner claim without closing it.
func (st *Store) Release(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if e, ok := st.entries[id]; ok {
		e.owner = ""
	}
}

// Close removes the session and closes its surface when closable.
func (st *Store) Close(id string) error {
	st.mu.Lock()
	e, ok := st.entries[id]
	delete(st.entries, id)
	st.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if closer, ok := e.session.Surface.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Sweep closes every unclaimed session older than maxAge and returns
// how many were removed. Claimed sessions are never swept out from
// under their owner.
func (st *Store) Sweep(maxAge time.Duration) int {
	st.mu.Lock()
	var stale []string
	cutoff := st.now().Add(-maxAge)
	for id, e := range st.entries {
		if e.owner == "" && e.session.CreatedAt.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	st.mu.Unlock()

	for _, id := range stale {
		st.Close(id)
	}
	return len(stale)
}

// Len reports how many sessions are live.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}

// WaitReady polls the surface until its URL contains the dashboard
// pattern, signalling that the operator has completed the login. The
// poll interval is fixed; the ceiling is the caller's timeout.
func WaitReady(ctx context.Context, surface browser.Surface, urlPattern string, poll, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		url, err := surface.CurrentURL(ctx)
		if err == nil && strings.Contains(url, urlPattern) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("session: login not detected within %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(poll):
		}
	}
}
