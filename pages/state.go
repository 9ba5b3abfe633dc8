package pages

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// State is the lifecycle state of a page object.
type State int

const (
	// StateUnbound means no screen has been displayed through this object yet.
	StateUnbound State = iota
	StateScreenDisplayed
	StateActionInFlight
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateScreenDisplayed:
		return "screen displayed"
	case StateActionInFlight:
		return "action in flight"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrActionInFlight is returned when an action starts while another one
	// on the same page object has not finished. Actions are sequential.
	ErrActionInFlight = errors.New("another action is in flight")
	// ErrPageClosed is returned for actions on a closed page.
	ErrPageClosed = errors.New("page is closed")
)

// base is embedded by page objects. It holds the page handle, never a
// resolved frame or element.
type base struct {
	page   playwright.Page
	logger *slog.Logger

	mu    sync.Mutex
	state State
}

func newBase(page playwright.Page, logger *slog.Logger, component string) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		page:   page,
		logger: logger.With(slog.String("component", component)),
	}
}

// State returns the current lifecycle state.
func (b *base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Page returns the underlying page handle.
func (b *base) Page() playwright.Page {
	return b.page
}

// do runs one action. It rejects overlapping actions and wraps errors with the
// action name.
func (b *base) do(action string, fn func() error) error {
	b.mu.Lock()
	switch {
	case b.state == StateClosed || b.page.IsClosed():
		b.state = StateClosed
		b.mu.Unlock()
		return fmt.Errorf("%s: %w", action, ErrPageClosed)
	case b.state == StateActionInFlight:
		b.mu.Unlock()
		return fmt.Errorf("%s: %w", action, ErrActionInFlight)
	}
	b.state = StateActionInFlight
	b.mu.Unlock()

	b.logger.Debug("Action", slog.String("action", action))
	err := fn()

	b.mu.Lock()
	if b.page.IsClosed() {
		b.state = StateClosed
	} else {
		b.state = StateScreenDisplayed
	}
	b.mu.Unlock()

	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return nil
}

// markClosed is called when the page is closed through this object.
func (b *base) markClosed() {
	b.mu.Lock()
	b.state = StateClosed
	b.mu.Unlock()
}

func (b *base) content() playwright.FrameLocator {
	return ContentArea.In(b.page)
}

func waitVisible(l playwright.Locator) error {
	return l.WaitFor(playwright.LocatorWaitForOptions{
		State: playwright.WaitForSelectorStateVisible,
	})
}

func waitHidden(l playwright.Locator) error {
	return l.WaitFor(playwright.LocatorWaitForOptions{
		State: playwright.WaitForSelectorStateHidden,
	})
}

// Close closes the underlying page. Further actions fail with ErrPageClosed.
func (b *base) Close() error {
	b.markClosed()
	if b.page.IsClosed() {
		return nil
	}
	return b.page.Close()
}
