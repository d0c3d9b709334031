// Package session holds the signed-in identity and notifies subscribers
// when it changes. Exactly one Store exists per request; the HTTP layer
// binds it to the session cookie.
package session

import (
	"sync"

	"github.com/iliyamo/justloook-provider-portal/internal/model"
)

// Kind is the type of an auth-state change.
type Kind int

const (
	SignedIn Kind = iota + 1
	SignedOut
	TokenRefreshed
)

func (k Kind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	case TokenRefreshed:
		return "token_refreshed"
	}
	return "unknown"
}

// Event is delivered to listeners after the store has been updated.
// Identity is the zero value for SignedOut.
type Event struct {
	Kind     Kind
	Identity model.Identity
}

type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Store is safe for concurrent use. Listeners run synchronously in
// subscription order and must not call Publish.
type Store struct {
	mu        sync.Mutex
	current   *model.Identity
	listeners []subscription
	nextID    int
}

// New returns a store holding id, or an empty store when id is nil.
func New(id *model.Identity) *Store {
	s := &Store{}
	if id != nil {
		cp := *id
		s.current = &cp
	}
	return s
}

// Current returns the signed-in identity, if any.
func (s *Store) Current() (model.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return model.Identity{}, false
	}
	return *s.current, true
}

// Subscribe registers fn and returns a func that removes it. Calling the
// returned func more than once is harmless.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish applies ev to the store, then notifies current listeners.
func (s *Store) Publish(ev Event) {
	s.mu.Lock()
	switch ev.Kind {
	case SignedIn, TokenRefreshed:
		id := ev.Identity
		s.current = &id
	case SignedOut:
		s.current = nil
		ev.Identity = model.Identity{}
	}
	listeners := make([]Listener, 0, len(s.listeners))
	for _, sub := range s.listeners {
		listeners = append(listeners, sub.fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}
