package pages

import (
	"fmt"
	"log/slog"

	"github.com/playwright-community/playwright-go"
)

// Credentials identify the administrator account.
type Credentials struct {
	BaseURL  string
	Username string
	Password string
}

// LoginPage drives the console's login screen.
type LoginPage struct {
	base
}

// NewLoginPage binds a login page object to page.
func NewLoginPage(page playwright.Page, logger *slog.Logger) *LoginPage {
	return &LoginPage{base: newBase(page, logger, "login-page")}
}

// Login opens the base URL, submits the credentials and switches to the admin
// view, returning once its navigation is shown. Rejected credentials are not detected here; the console shows its own
// error and later navigation fails.
func (lp *LoginPage) Login(creds Credentials) error {
	return lp.do("login", func() error {
		if _, err := lp.page.Goto(creds.BaseURL); err != nil {
			return fmt.Errorf("opening %s: %w", creds.BaseURL, err)
		}

		userName := lp.page.Locator(byID(IDLoginUserName))
		if err := userName.Click(); err != nil {
			return err
		}
		if err := userName.Fill(creds.Username); err != nil {
			return fmt.Errorf("filling user name: %w", err)
		}

		password := lp.page.Locator(byID(IDLoginPassword))
		if err := password.Click(); err != nil {
			return err
		}
		if err := password.Fill(creds.Password); err != nil {
			return fmt.Errorf("filling password: %w", err)
		}

		if err := lp.page.GetByRole("button", playwright.PageGetByRoleOptions{Name: "Log in"}).Click(); err != nil {
			return fmt.Errorf("submitting login: %w", err)
		}

		if err := lp.page.GetByRole("link", playwright.PageGetByRoleOptions{Name: "Admin view"}).Click(); err != nil {
			return fmt.Errorf("switching to admin view: %w", err)
		}

		// The admin navigation only exists on the admin landing screen.
		landing := lp.page.GetByRole("link", playwright.PageGetByRoleOptions{
			Name:  "Contacts",
			Exact: playwright.Bool(true),
		})
		if err := waitVisible(landing); err != nil {
			return fmt.Errorf("waiting for admin view: %w", err)
		}

		lp.logger.Info("Logged in", slog.String("user", creds.Username))
		return nil
	})
}
