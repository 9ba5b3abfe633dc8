package pages

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPage only answers IsClosed and Close; any other call panics through the
// nil embedded interface.
type stubPage struct {
	playwright.Page
	closed atomic.Bool
}

func (p *stubPage) IsClosed() bool { return p.closed.Load() }

func (p *stubPage) Close(...playwright.PageCloseOptions) error {
	p.closed.Store(true)
	return nil
}

func TestBase_Lifecycle(t *testing.T) {
	page := &stubPage{}
	b := newBase(page, nil, "test")
	assert.Equal(t, StateUnbound, b.State())

	err := b.do("first", func() error {
		assert.Equal(t, StateActionInFlight, b.State())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateScreenDisplayed, b.State())

	require.NoError(t, b.Close())
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, page.IsClosed())

	err = b.do("after close", func() error {
		t.Fatal("action must not run on a closed page")
		return nil
	})
	assert.ErrorIs(t, err, ErrPageClosed)
	assert.ErrorContains(t, err, "after close")
}

func TestBase_RejectsOverlappingActions(t *testing.T) {
	b := newBase(&stubPage{}, nil, "test")

	var inner error
	err := b.do("outer", func() error {
		inner = b.do("inner", func() error { return nil })
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, inner, ErrActionInFlight)
	assert.Equal(t, StateScreenDisplayed, b.State())
}

func TestBase_WrapsActionErrors(t *testing.T) {
	b := newBase(&stubPage{}, nil, "test")
	boom := errors.New("boom")

	err := b.do("click Save", func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "click Save: boom")
	assert.Equal(t, StateScreenDisplayed, b.State(), "failed action leaves the page usable")
}

func TestBase_PageClosedDuringAction(t *testing.T) {
	page := &stubPage{}
	b := newBase(page, nil, "test")

	err := b.do("close from inside", func() error {
		page.closed.Store(true)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, b.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unbound", StateUnbound.String())
	assert.Equal(t, "action in flight", StateActionInFlight.String())
	assert.Equal(t, "State(9)", State(9).String())
}
