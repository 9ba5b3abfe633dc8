// Package session provides the authenticated browser session shared by the
// page objects of one test.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/crmsuite/pages"
)

// ErrInvalidTransition is returned when an operation is not allowed in the
// session's current state.
var ErrInvalidTransition = errors.New("invalid session state transition")

// Credentials identify the administrator account.
type Credentials = pages.Credentials

// State of a session.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
	Closed
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// CanTransition reports whether a session may move from one state to another.
func CanTransition(from, to State) bool {
	switch {
	case from == Closed:
		return false
	case to == Closed:
		return true
	case from == Unauthenticated && to == Authenticating:
		return true
	case from == Authenticating && (to == Authenticated || to == Unauthenticated):
		return true
	default:
		return false
	}
}

// Session owns one browser page and its authentication state.
type Session struct {
	page   playwright.Page
	logger *slog.Logger

	mu    sync.Mutex
	state State
}

type Option func(*Session)

// WithLogger sets the logger of the session and its login page.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New wraps an unauthenticated page.
func New(page playwright.Page, opts ...Option) *Session {
	s := &Session{
		page:   page,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "session"))
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) transition(to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !CanTransition(s.state, to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, s.state, to)
	}
	s.logger.Debug("Session state changed", slog.String("from", s.state.String()), slog.String("to", to.String()))
	s.state = to
	return nil
}

// Authenticate logs in and opens the admin view. It makes a single attempt;
// on failure the session returns to Unauthenticated and the error is meant to
// fail test setup.
func (s *Session) Authenticate(creds Credentials) error {
	if err := s.transition(Authenticating); err != nil {
		return err
	}

	loginPage := pages.NewLoginPage(s.page, s.logger)
	if err := loginPage.Login(creds); err != nil {
		if terr := s.transition(Unauthenticated); terr != nil {
			return errors.Join(err, terr)
		}
		return fmt.Errorf("authenticating %s: %w", creds.Username, err)
	}

	if err := s.transition(Authenticated); err != nil {
		return err
	}
	s.logger.Info("Authenticated", slog.String("user", creds.Username))
	return nil
}

// Page returns the page the page objects of this session act on.
func (s *Session) Page() playwright.Page {
	return s.page
}

// Close closes the page. Closing a closed session is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return nil
	}
	s.state = Closed
	s.mu.Unlock()

	if s.page.IsClosed() {
		return nil
	}
	if err := s.page.Close(); err != nil {
		return fmt.Errorf("closing page: %w", err)
	}
	return nil
}
