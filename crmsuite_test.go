package crmsuite_test

import (
	"bytes"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/crmsuite"
	"github.com/networkteam/crmsuite/config"
	"github.com/networkteam/crmsuite/contact"
	"github.com/networkteam/crmsuite/diagnostics"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.FromEnv(func(key string) (string, bool) {
		v, ok := map[string]string{
			"URL":                  "http://console.invalid/",
			"EMAIL":                "admin@example.test",
			"PASSWORD":             "secret",
			"DIAGNOSTICS_CAPACITY": "10",
			"LOG_LEVEL":            "error",
		}[key]
		return v, ok
	})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestSuite_RegistersAllFixtures(t *testing.T) {
	suite := crmsuite.New(crmsuite.Options{Config: testConfig(t)})

	assert.Equal(t, []string{
		crmsuite.FixtureConfig,
		crmsuite.FixtureContactsPage,
		crmsuite.FixtureContext,
		crmsuite.FixtureLogger,
		crmsuite.FixtureLoginPage,
		crmsuite.FixturePage,
		crmsuite.FixtureRecorder,
		crmsuite.FixtureRuntime,
		crmsuite.FixtureSession,
		crmsuite.FixtureTestContact,
	}, suite.Registry(t).Names())
}

func TestNew_RequiresConfig(t *testing.T) {
	assert.Panics(t, func() { crmsuite.New(crmsuite.Options{}) })
}

func TestFixtures_TestContact(t *testing.T) {
	suite := crmsuite.New(crmsuite.Options{
		Config: testConfig(t),
		Faker:  gofakeit.New(11),
	})
	f := suite.Fixtures(t)

	c := f.TestContact()
	assert.Equal(t, contact.EmailFor(c.FirstName, c.LastName), c.Email)
	assert.Equal(t, c, f.TestContact(), "memoised within a test")

	assert.Equal(t, []string{crmsuite.FixtureTestContact}, f.Scope().Resolved(), "no browser is started for data fixtures")
}

func TestFixtures_LoggerRecordsDiagnostics(t *testing.T) {
	cfg := testConfig(t)
	suite := crmsuite.New(crmsuite.Options{Config: cfg})
	f := suite.Fixtures(t)

	f.Logger().Debug("Searching", "query", "@test")

	entries := f.Recorder().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, diagnostics.KindLog, entries[0].Kind)
	assert.Contains(t, entries[0].Text, "DEBUG Searching")
	assert.Contains(t, entries[0].Text, "query=@test")
	assert.Contains(t, entries[0].Text, "test="+t.Name())

	assert.Same(t, cfg, f.Config())
	assert.Equal(t, []string{crmsuite.FixtureRecorder, crmsuite.FixtureLogger, crmsuite.FixtureConfig}, f.Scope().Resolved())
}

func TestSuite_DumpDiagnosticsHonoursColor(t *testing.T) {
	rec := diagnostics.NewRecorder(4)
	rec.Record(diagnostics.KindResponse, "200 /rte/v1/command", `{"cmd":"track"}`)

	cfg := testConfig(t)
	var plain bytes.Buffer
	require.NoError(t, crmsuite.New(crmsuite.Options{Config: cfg}).DumpDiagnostics(&plain, rec))
	assert.Contains(t, plain.String(), `"cmd": "track"`)
	assert.NotContains(t, plain.String(), "\x1b[")

	cfg.DiagnosticsColor = true
	var colored bytes.Buffer
	require.NoError(t, crmsuite.New(crmsuite.Options{Config: cfg}).DumpDiagnostics(&colored, rec))
	assert.Contains(t, colored.String(), "\x1b[")
	assert.Contains(t, colored.String(), "track")
}
