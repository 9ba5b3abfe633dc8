package pages

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// AnalyticsSync waits for the console's analytics command request. The
// console sends it once an asynchronous screen update has finished; its
// payload is never inspected.
type AnalyticsSync struct {
	// Path is matched as a substring of the response URL.
	Path string
}

// Matches reports whether resp is a successful analytics command response.
func (a AnalyticsSync) Matches(url string, status int) bool {
	return status == 200 && strings.Contains(url, a.Path)
}

// Around runs action and waits for the analytics response it triggers. The
// waiter is registered before the action runs so a fast response is not
// missed.
func (a AnalyticsSync) Around(page playwright.Page, action func() error) error {
	_, err := page.ExpectResponse(func(resp playwright.Response) bool {
		return a.Matches(resp.URL(), resp.Status())
	}, action)
	if err != nil {
		return fmt.Errorf("waiting for analytics command %q: %w", a.Path, err)
	}
	return nil
}

// AcceptDialog runs action, waits for the native dialog it opens, accepts it
// and returns its message. An unhandled confirmation dialog blocks every
// further interaction with the page.
func AcceptDialog(page playwright.Page, logger *slog.Logger, action func() error) (string, error) {
	ev, err := page.ExpectEvent("dialog", action)
	if err != nil {
		return "", fmt.Errorf("waiting for dialog: %w", err)
	}
	dialog, ok := ev.(playwright.Dialog)
	if !ok {
		return "", fmt.Errorf("unexpected dialog event %T", ev)
	}

	message := dialog.Message()
	logger.Info("Dialog message", slog.String("type", dialog.Type()), slog.String("message", message))

	if err := dialog.Accept(); err != nil {
		return message, fmt.Errorf("accepting dialog: %w", err)
	}
	return message, nil
}

// listFilterSettle is how long the list screen gets to apply a typed filter.
// The screen filters as the user types and renders no marker when the
// filtered rows arrive, and the rows of the previous filter stay visible until
// then, so a fixed delay is the only available signal.
const listFilterSettle = time.Second

func settleListFilter(page playwright.Page) {
	page.WaitForTimeout(float64(listFilterSettle.Milliseconds()))
}
