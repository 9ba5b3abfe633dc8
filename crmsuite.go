// Package crmsuite composes the fixtures of the CRM console suite: browser,
// page, authenticated session, page objects and generated test data.
package crmsuite

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/playwright-community/playwright-go"
	slogmulti "github.com/samber/slog-multi"

	"github.com/networkteam/crmsuite/browser"
	"github.com/networkteam/crmsuite/config"
	"github.com/networkteam/crmsuite/contact"
	"github.com/networkteam/crmsuite/diagnostics"
	"github.com/networkteam/crmsuite/fixture"
	"github.com/networkteam/crmsuite/pages"
	"github.com/networkteam/crmsuite/session"
)

// Fixture names.
const (
	FixtureConfig       = "config"
	FixtureRecorder     = "recorder"
	FixtureLogger       = "logger"
	FixtureRuntime      = "runtime"
	FixtureContext      = "context"
	FixturePage         = "page"
	FixtureSession      = "session"
	FixtureLoginPage    = "loginPage"
	FixtureContactsPage = "contactsPage"
	FixtureTestContact  = "testContact"
)

type Options struct {
	// Config is required.
	Config *config.Config

	// Runtime is a browser shared by all tests. If nil, every test launches
	// and closes its own.
	Runtime *browser.Runtime

	// Faker generates test contacts. Default: a randomly seeded faker.
	Faker *gofakeit.Faker

	// Now is used for screenshot names. Default: time.Now
	Now func() time.Time
}

// Suite builds per-test fixture scopes.
type Suite struct {
	options Options
}

func New(options Options) *Suite {
	if options.Config == nil {
		panic("crmsuite: Options.Config is required")
	}
	if options.Faker == nil {
		options.Faker = gofakeit.New(0)
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	return &Suite{options: options}
}

// Registry returns the fixture providers for test t. The providers capture t
// to name artifacts and to check for failure during teardown.
func (s *Suite) Registry(t testing.TB) *fixture.Registry {
	cfg := s.options.Config
	r := fixture.NewRegistry()

	r.Register(FixtureConfig, func(*fixture.Scope) (any, fixture.Teardown, error) {
		return cfg, nil, nil
	})

	r.Register(FixtureRecorder, func(*fixture.Scope) (any, fixture.Teardown, error) {
		return diagnostics.NewRecorder(cfg.DiagnosticsCapacity), nil, nil
	})

	r.Register(FixtureLogger, func(sc *fixture.Scope) (any, fixture.Teardown, error) {
		rec, err := fixture.Get[*diagnostics.Recorder](sc, FixtureRecorder)
		if err != nil {
			return nil, nil, err
		}
		logger := slog.New(slogmulti.Fanout(
			cfg.LogHandler(),
			rec.Handler(slog.LevelDebug),
		)).With(slog.String("test", t.Name()))
		return logger, nil, nil
	})

	r.Register(FixtureRuntime, func(sc *fixture.Scope) (any, fixture.Teardown, error) {
		if s.options.Runtime != nil {
			return s.options.Runtime, nil, nil
		}
		logger, err := fixture.Get[*slog.Logger](sc, FixtureLogger)
		if err != nil {
			return nil, nil, err
		}
		rt, err := browser.Launch(browser.OptionsFromConfig(cfg, logger))
		if err != nil {
			return nil, nil, err
		}
		return rt, rt.Close, nil
	})

	r.Register(FixtureContext, func(sc *fixture.Scope) (any, fixture.Teardown, error) {
		rt, err := fixture.Get[*browser.Runtime](sc, FixtureRuntime)
		if err != nil {
			return nil, nil, err
		}
		bctx, err := rt.NewContext()
		if err != nil {
			return nil, nil, err
		}
		return bctx, func() error { return bctx.Close() }, nil
	})

	r.Register(FixturePage, func(sc *fixture.Scope) (any, fixture.Teardown, error) {
		bctx, err := fixture.Get[playwright.BrowserContext](sc, FixtureContext)
		if err != nil {
			return nil, nil, err
		}
		rec, err := fixture.Get[*diagnostics.Recorder](sc, FixtureRecorder)
		if err != nil {
			return nil, nil, err
		}
		page, err := bctx.NewPage()
		if err != nil {
			return nil, nil, fmt.Errorf("opening page: %w", err)
		}
		rec.Attach(page, cfg.AnalyticsCommandPath)

		// Cleanups run last-registered first, so this runs before the scope
		// tears down the session and closes the page.
		t.Cleanup(func() {
			if t.Failed() {
				s.captureFailure(t, page, rec)
			}
		})

		return page, func() error {
			if page.IsClosed() {
				return nil
			}
			return page.Close()
		}, nil
	})

	r.Register(FixtureSession, func(sc *fixture.Scope) (any, fixture.Teardown, error) {
		page, err := fixture.Get[playwright.Page](sc, FixturePage)
		if err != nil {
			return nil, nil, err
		}
		logger, err := fixture.Get[*slog.Logger](sc, FixtureLogger)
		if err != nil {
			return nil, nil, err
		}
		sess := session.New(page, session.WithLogger(logger))
		if err := sess.Authenticate(session.Credentials{
			BaseURL:  cfg.BaseURL,
			Username: cfg.Username,
			Password: cfg.Password,
		}); err != nil {
			return nil, sess.Close, err
		}
		return sess, sess.Close, nil
	})

	r.Register(FixtureLoginPage, func(sc *fixture.Scope) (any, fixture.Teardown, error) {
		page, err := fixture.Get[playwright.Page](sc, FixturePage)
		if err != nil {
			return nil, nil, err
		}
		logger, err := fixture.Get[*slog.Logger](sc, FixtureLogger)
		if err != nil {
			return nil, nil, err
		}
		return pages.NewLoginPage(page, logger), nil, nil
	})

	r.Register(FixtureContactsPage, func(sc *fixture.Scope) (any, fixture.Teardown, error) {
		sess, err := fixture.Get[*session.Session](sc, FixtureSession)
		if err != nil {
			return nil, nil, err
		}
		logger, err := fixture.Get[*slog.Logger](sc, FixtureLogger)
		if err != nil {
			return nil, nil, err
		}
		cp := pages.NewContactsPage(sess.Page(), logger, pages.AnalyticsSync{Path: cfg.AnalyticsCommandPath})
		return cp, cp.Close, nil
	})

	r.Register(FixtureTestContact, func(*fixture.Scope) (any, fixture.Teardown, error) {
		return contact.Generate(s.options.Faker), nil, nil
	})

	return r
}

// captureFailure saves a screenshot and writes the recorded diagnostics to
// the test log.
func (s *Suite) captureFailure(t testing.TB, page playwright.Page, rec *diagnostics.Recorder) {
	if page.IsClosed() {
		t.Log("page already closed, no screenshot taken")
	} else {
		path := browser.ScreenshotPath(s.options.Config.ScreenshotDir, t.Name(), s.options.Now())
		if err := browser.Screenshot(page, path); err != nil {
			t.Logf("screenshot failed: %v", err)
		} else {
			t.Logf("screenshot saved to %s", path)
		}
	}

	var buf bytes.Buffer
	if err := s.DumpDiagnostics(&buf, rec); err != nil {
		t.Logf("dumping diagnostics failed: %v", err)
		return
	}
	t.Log("\n" + buf.String())
}

// DumpDiagnostics writes the entries of rec to w, highlighted if the
// configuration asks for color.
func (s *Suite) DumpDiagnostics(w io.Writer, rec *diagnostics.Recorder) error {
	return rec.Dump(w, diagnostics.DumpOptions{Color: s.options.Config.DiagnosticsColor})
}

// Fixtures gives typed access to the fixtures of one test.
type Fixtures struct {
	t     testing.TB
	scope *fixture.Scope
}

// Fixtures creates the fixture scope of t. Fixtures are constructed on first
// access and torn down in reverse order when t finishes.
func (s *Suite) Fixtures(t testing.TB) *Fixtures {
	t.Helper()
	return &Fixtures{t: t, scope: fixture.New(t, s.Registry(t))}
}

// Scope returns the underlying fixture scope.
func (f *Fixtures) Scope() *fixture.Scope { return f.scope }

func (f *Fixtures) Config() *config.Config {
	f.t.Helper()
	return fixture.MustGet[*config.Config](f.t, f.scope, FixtureConfig)
}

func (f *Fixtures) Logger() *slog.Logger {
	f.t.Helper()
	return fixture.MustGet[*slog.Logger](f.t, f.scope, FixtureLogger)
}

func (f *Fixtures) Recorder() *diagnostics.Recorder {
	f.t.Helper()
	return fixture.MustGet[*diagnostics.Recorder](f.t, f.scope, FixtureRecorder)
}

// Page returns the test's page. It is not authenticated unless Session or
// ContactsPage was requested.
func (f *Fixtures) Page() playwright.Page {
	f.t.Helper()
	return fixture.MustGet[playwright.Page](f.t, f.scope, FixturePage)
}

// Session returns the authenticated session on the admin view.
func (f *Fixtures) Session() *session.Session {
	f.t.Helper()
	return fixture.MustGet[*session.Session](f.t, f.scope, FixtureSession)
}

func (f *Fixtures) LoginPage() *pages.LoginPage {
	f.t.Helper()
	return fixture.MustGet[*pages.LoginPage](f.t, f.scope, FixtureLoginPage)
}

// ContactsPage returns the contacts page object on the authenticated session.
func (f *Fixtures) ContactsPage() *pages.ContactsPage {
	f.t.Helper()
	return fixture.MustGet[*pages.ContactsPage](f.t, f.scope, FixtureContactsPage)
}

func (f *Fixtures) TestContact() contact.Contact {
	f.t.Helper()
	return fixture.MustGet[contact.Contact](f.t, f.scope, FixtureTestContact)
}
