// Package browser manages the Playwright runtime and browser instances used
// by the suite.
package browser

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/crmsuite/config"
)

// Options configures the launched browser and new contexts.
type Options struct {
	Headless bool
	SlowMo   time.Duration
	// Timeout is the default timeout for page actions and navigations.
	Timeout time.Duration
	// Viewport defaults to 1280x720.
	Viewport *playwright.Size
	Logger   *slog.Logger
}

// OptionsFromConfig maps suite configuration to browser options.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		Headless: cfg.Headless,
		SlowMo:   cfg.SlowMo,
		Timeout:  cfg.Timeout,
		Logger:   logger,
	}
}

// Install downloads the Playwright driver and Chromium unless
// PLAYWRIGHT_PREINSTALLED=1.
func Install() error {
	if os.Getenv("PLAYWRIGHT_PREINSTALLED") == "1" {
		return nil
	}
	return playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	})
}

// Runtime owns a Playwright driver and one Chromium browser.
type Runtime struct {
	PW      *playwright.Playwright
	Browser playwright.Browser

	options Options
}

// Launch starts Playwright and a Chromium browser.
func Launch(opts Options) (*Runtime, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Viewport == nil {
		opts.Viewport = &playwright.Size{Width: 1280, Height: 720}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(config.Milliseconds(opts.SlowMo)),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launching chromium: %w", err)
	}

	opts.Logger.Debug("Browser launched",
		slog.String("component", "browser"),
		slog.String("version", browser.Version()),
		slog.Bool("headless", opts.Headless),
	)

	return &Runtime{PW: pw, Browser: browser, options: opts}, nil
}

// NewContext creates a browser context with isolated cookies and storage.
func (r *Runtime) NewContext() (playwright.BrowserContext, error) {
	ctx, err := r.Browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: r.options.Viewport,
	})
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	if r.options.Timeout > 0 {
		ctx.SetDefaultTimeout(config.Milliseconds(r.options.Timeout))
		ctx.SetDefaultNavigationTimeout(config.Milliseconds(r.options.Timeout))
	}
	return ctx, nil
}

// Close releases the browser and the driver.
func (r *Runtime) Close() error {
	var browserErr error
	if r.Browser != nil {
		browserErr = r.Browser.Close()
	}
	if err := r.PW.Stop(); err != nil {
		return fmt.Errorf("stopping playwright: %w", err)
	}
	if browserErr != nil {
		return fmt.Errorf("closing browser: %w", browserErr)
	}
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ScreenshotPath builds a file path for a screenshot of testName taken at ts.
func ScreenshotPath(dir, testName string, ts time.Time) string {
	name := unsafeFileChars.ReplaceAllString(testName, "_")
	return filepath.Join(dir, fmt.Sprintf("%s_%d.png", name, ts.Unix()))
}

// Screenshot captures a full-page screenshot of page to path, creating the
// directory if needed.
func Screenshot(page playwright.Page, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating screenshot dir: %w", err)
	}
	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("taking screenshot: %w", err)
	}
	return nil
}
