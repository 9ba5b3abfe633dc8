//go:build acceptance
// +build acceptance

package acceptance

import (
	"log/slog"
	"net/http/httptest"
	"os"

	"github.com/networkteam/crmsuite/config"
	"github.com/networkteam/crmsuite/internal/fakeconsole"
)

// Credentials and default password of the stand-in console.
const (
	standInUsername        = "admin@crmsuite.test"
	standInPassword        = "Sample#Pass1"
	standInDefaultPassword = "Sample#Pass1"
)

// TestApp is the stand-in console served on a local test server when no
// console URL is configured.
type TestApp struct {
	Server  *httptest.Server
	Console *fakeconsole.Console
}

// NewTestApp starts the stand-in console with seeded contacts.
func NewTestApp(logger *slog.Logger) *TestApp {
	console := fakeconsole.New(fakeconsole.Options{
		Username: standInUsername,
		Password: standInPassword,
		Logger:   logger,
	})
	return &TestApp{
		Server:  httptest.NewServer(console),
		Console: console,
	}
}

// Config returns suite configuration pointing at the stand-in. Variables from
// the environment still apply for everything the stand-in does not dictate.
func (a *TestApp) Config() (*config.Config, error) {
	overrides := map[string]string{
		"URL":                         a.Server.URL + "/",
		"EMAIL":                       standInUsername,
		"PASSWORD":                    standInPassword,
		"REGISTERED_DEFAULT_PASSWORD": standInDefaultPassword,
		"ANALYTICS_COMMAND_PATH":      fakeconsole.AnalyticsCommandPath,
	}
	cfg, err := config.FromEnv(func(key string) (string, bool) {
		if v, ok := overrides[key]; ok {
			return v, true
		}
		return os.LookupEnv(key)
	})
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Close shuts down the test server.
func (a *TestApp) Close() {
	a.Server.Close()
}
