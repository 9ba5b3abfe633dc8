// Package fixture resolves named, test-scoped dependencies.
//
// A Registry holds providers by name. Each test gets its own Scope; a value is
// constructed the first time it is requested and torn down when the scope
// closes, in reverse construction order. Providers request their own
// dependencies from the scope, so a dependency is always constructed, and
// registered for teardown, before its dependents.
package fixture

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/samber/lo"
)

var (
	// ErrUnknown is returned when no provider is registered for a name.
	ErrUnknown = errors.New("unknown fixture")
	// ErrCycle is returned when a fixture (transitively) depends on itself.
	ErrCycle = errors.New("fixture dependency cycle")
	// ErrClosed is returned when resolving from a closed scope.
	ErrClosed = errors.New("fixture scope closed")
	// ErrType is returned by Get when a value has an unexpected type.
	ErrType = errors.New("fixture type mismatch")
)

// Teardown releases a fixture value. It may be nil.
type Teardown func() error

// Provider constructs a fixture value. It resolves its dependencies from s.
// A provider that fails after partially constructing its value may return a
// teardown for the partial value along with the error; it runs immediately.
type Provider func(s *Scope) (any, Teardown, error)

// Registry maps fixture names to providers. It is safe to share a registry
// between tests once registration is done.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider. Registering a name twice panics.
func (r *Registry) Register(name string, p Provider) {
	if _, exists := r.providers[name]; exists {
		panic(fmt.Sprintf("fixture %q already registered", name))
	}
	r.providers[name] = p
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := lo.Keys(r.providers)
	slices.Sort(names)
	return names
}

type entry struct {
	name     string
	teardown Teardown
}

// Scope holds the fixture values of one test.
type Scope struct {
	registry *Registry

	mu        sync.Mutex
	values    map[string]any
	resolving map[string]bool
	stack     []entry
	closed    bool
}

// NewScope creates a scope that must be closed by the caller.
func NewScope(r *Registry) *Scope {
	return &Scope{
		registry:  r,
		values:    make(map[string]any),
		resolving: make(map[string]bool),
	}
}

// New creates a scope whose teardown is registered with t.Cleanup, so it runs
// whether the test passes, fails or calls t.FailNow.
func New(t testing.TB, r *Registry) *Scope {
	t.Helper()

	s := NewScope(r)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("fixture teardown: %v", err)
		}
	})
	return s
}

// Resolve returns the value for name, constructing it on first request.
//
// Providers run without the scope lock held because they resolve their own
// dependencies; a scope is meant to be used by one test goroutine.
func (s *Scope) Resolve(name string) (any, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("resolving %q: %w", name, ErrClosed)
	}
	if v, ok := s.values[name]; ok {
		s.mu.Unlock()
		return v, nil
	}
	if s.resolving[name] {
		s.mu.Unlock()
		return nil, fmt.Errorf("resolving %q: %w", name, ErrCycle)
	}
	p, ok := s.registry.providers[name]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("resolving %q: %w", name, ErrUnknown)
	}
	s.resolving[name] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.resolving, name)
		s.mu.Unlock()
	}()

	v, teardown, err := p(s)
	if err != nil {
		err = fmt.Errorf("setting up %q: %w", name, err)
		return nil, joinTeardown(err, name, teardown)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, joinTeardown(fmt.Errorf("resolving %q: %w", name, ErrClosed), name, teardown)
	}
	s.values[name] = v
	s.stack = append(s.stack, entry{name: name, teardown: teardown})
	s.mu.Unlock()
	return v, nil
}

// joinTeardown runs the teardown of a value that will not be kept and joins
// its failure into err.
func joinTeardown(err error, name string, teardown Teardown) error {
	if teardown == nil {
		return err
	}
	if terr := teardown(); terr != nil {
		return errors.Join(err, fmt.Errorf("tearing down %q: %w", name, terr))
	}
	return err
}

// Resolved returns the names constructed so far, in construction order.
func (s *Scope) Resolved() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Map(s.stack, func(e entry, _ int) string { return e.name })
}

// Close tears down all constructed values in reverse construction order.
// Every teardown runs even if an earlier one fails; the failures are joined.
// Closing twice is a no-op.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	stack := s.stack
	s.stack = nil
	s.values = nil
	s.mu.Unlock()

	var errs []error
	for i := len(stack) - 1; i >= 0; i-- {
		e := stack[i]
		if e.teardown == nil {
			continue
		}
		if err := e.teardown(); err != nil {
			errs = append(errs, fmt.Errorf("tearing down %q: %w", e.name, err))
		}
	}
	return errors.Join(errs...)
}

// Get resolves name and asserts its type.
func Get[T any](s *Scope, name string) (T, error) {
	var zero T
	v, err := s.Resolve(name)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("fixture %q is %T, want %T: %w", name, v, zero, ErrType)
	}
	return typed, nil
}

// MustGet resolves name and fails the test immediately on error. Setup
// failures are fatal and never retried.
func MustGet[T any](t testing.TB, s *Scope, name string) T {
	t.Helper()

	v, err := Get[T](s, name)
	if err != nil {
		t.Fatalf("fixture setup: %v", err)
	}
	return v
}
