package pages

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/playwright-community/playwright-go"
	"github.com/samber/lo"

	"github.com/networkteam/crmsuite/contact"
)

// Details are the fields shown on a contact's detail screen.
type Details struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// ContactsPage drives the contacts area of the admin console: the outer
// navigation and toolbar, and the screens loaded into the content frame.
type ContactsPage struct {
	base
	analytics AnalyticsSync
}

// NewContactsPage binds a contacts page object to page. Asynchronous screen
// updates are awaited through analytics.
func NewContactsPage(page playwright.Page, logger *slog.Logger, analytics AnalyticsSync) *ContactsPage {
	return &ContactsPage{
		base:      newBase(page, logger, "contacts-page"),
		analytics: analytics,
	}
}

func (cp *ContactsPage) link(name string) playwright.Locator {
	return cp.page.GetByRole("link", playwright.PageGetByRoleOptions{Name: name, Exact: playwright.Bool(true)})
}

func (cp *ContactsPage) button(name string) playwright.Locator {
	return cp.page.GetByRole("button", playwright.PageGetByRoleOptions{Name: name, Exact: playwright.Bool(true)})
}

func (cp *ContactsPage) contentByID(id string) playwright.Locator {
	return cp.content().Locator(byID(id))
}

func (cp *ContactsPage) contentRole(role playwright.AriaRole, name string) playwright.Locator {
	return cp.content().GetByRole(role, playwright.FrameLocatorGetByRoleOptions{Name: name, Exact: playwright.Bool(true)})
}

// ResultRows locates the rows of the result table on the current screen.
func (cp *ContactsPage) ResultRows() playwright.Locator {
	return cp.content().Locator(resultRowsSelector)
}

// --- Navigation

func (cp *ContactsPage) clickLink(name string) error {
	return cp.do("open "+name, func() error {
		return cp.link(name).Click()
	})
}

// NavigateToContacts opens the contacts area.
func (cp *ContactsPage) NavigateToContacts() error { return cp.clickLink("Contacts") }

// NavigateToList opens the contact list.
func (cp *ContactsPage) NavigateToList() error { return cp.clickLink("List") }

func (cp *ContactsPage) NavigateToAdvancedSearch() error { return cp.clickLink("Advanced search") }

func (cp *ContactsPage) NavigateToSavedSearches() error { return cp.clickLink("Saved searches") }

func (cp *ContactsPage) NavigateToImport() error { return cp.clickLink("Import") }

func (cp *ContactsPage) NavigateToContactFields() error { return cp.clickLink("Contact fields") }

func (cp *ContactsPage) clickButton(name string) error {
	return cp.do("click "+name, func() error {
		return cp.button(name).Click()
	})
}

// ClickAddContact opens the new contact form.
func (cp *ContactsPage) ClickAddContact() error { return cp.clickButton("Add contact") }

// ClickAddMember opens the new member form.
func (cp *ContactsPage) ClickAddMember() error { return cp.clickButton("Add member") }

// Save clicks the toolbar Save button of the current form.
func (cp *ContactsPage) Save() error { return cp.clickButton("Save") }

// --- Forms

// FillPassword sets both password fields of the new contact form.
func (cp *ContactsPage) FillPassword(password string) error {
	return cp.do("fill password", func() error {
		if err := cp.contentByID(IDPasswordInput).Fill(password); err != nil {
			return err
		}
		return cp.contentByID(IDConfirmPasswordInput).Fill(password)
	})
}

// FillContactForm fills the contact fields and confirms the terms checkbox.
func (cp *ContactsPage) FillContactForm(c contact.Contact) error {
	return cp.do("fill contact form", func() error {
		fields := []struct{ id, value string }{
			{IDFirstNameInput, c.FirstName},
			{IDLastNameInput, c.LastName},
			{IDOrganizationInput, c.Company},
			{IDEmailInput, c.Email},
			{IDPhoneInput, c.Phone},
		}
		for _, f := range fields {
			if err := cp.contentByID(f.id).Fill(f.value); err != nil {
				return fmt.Errorf("filling #%s: %w", f.id, err)
			}
		}
		return cp.content().
			GetByRole("checkbox", playwright.FrameLocatorGetByRoleOptions{Name: "I confirm I have read and"}).
			Check()
	})
}

// VerifyFileUploadVisible waits for the upload widget of the contact form.
func (cp *ContactsPage) VerifyFileUploadVisible() error {
	return cp.do("verify file upload", func() error {
		return waitVisible(Uploader.In(cp.page).GetByRole("button", playwright.FrameLocatorGetByRoleOptions{Name: "Choose File"}))
	})
}

// SelectMembershipLevel selects a membership level by option value, see
// MembershipLevelBasic.
func (cp *ContactsPage) SelectMembershipLevel(level string) error {
	return cp.do("select membership level", func() error {
		_, err := cp.contentByID(IDMembershipLevel).SelectOption(playwright.SelectOptionValues{
			Values: playwright.StringSlice(level),
		})
		return err
	})
}

func (cp *ContactsPage) CheckSendNotification() error {
	return cp.do("check send notification", func() error {
		return cp.contentByID(IDNotifyMember).Check()
	})
}

// SelectMemberSinceDate picks day of the displayed month in the member since
// date picker.
func (cp *ContactsPage) SelectMemberSinceDate(day int) error {
	return cp.do("select member since date", func() error {
		if err := cp.contentByID(IDMemberSinceToggle).Click(); err != nil {
			return err
		}
		if err := waitVisible(cp.contentByID(IDMemberSinceWeekRows)); err != nil {
			return err
		}
		return cp.content().Locator("."+ClassCalendarDay, playwright.FrameLocatorLocatorOptions{
			HasText: regexp.MustCompile(fmt.Sprintf(`^\s*%d\s*$`, day)),
		}).First().Click()
	})
}

func (cp *ContactsPage) CheckBoardMembers() error {
	return cp.do("check board members", func() error {
		return cp.contentRole("checkbox", "SAMPLE - Board Members").Check()
	})
}

// ClickContactDetailsTab switches a member's detail screen to the contact
// details tab.
func (cp *ContactsPage) ClickContactDetailsTab() error {
	return cp.do("open contact details tab", func() error {
		tab := cp.contentRole("tab", "Contact details")
		if err := waitVisible(tab); err != nil {
			return err
		}
		return tab.Click()
	})
}

// --- Reading

func (cp *ContactsPage) fieldValue(label string) (string, error) {
	sel := fmt.Sprintf(`.%s:has-text(%q) .%s span`, ClassLabeledField, label, ClassFieldBody)
	text, err := cp.content().Locator(sel).TextContent()
	if err != nil {
		return "", fmt.Errorf("reading field %q: %w", label, err)
	}
	return strings.TrimSpace(text), nil
}

// ContactFieldValue returns the value shown for label on the detail screen.
func (cp *ContactsPage) ContactFieldValue(label string) (value string, err error) {
	err = cp.do("read field", func() error {
		value, err = cp.fieldValue(label)
		return err
	})
	return value, err
}

// ContactDetails reads the detail screen of the current contact.
func (cp *ContactsPage) ContactDetails() (Details, error) {
	var d Details
	err := cp.do("read contact details", func() error {
		for _, f := range []struct {
			label string
			dst   *string
		}{
			{"First name", &d.FirstName},
			{"Last name", &d.LastName},
			{"Email", &d.Email},
			{"Phone", &d.Phone},
		} {
			v, err := cp.fieldValue(f.label)
			if err != nil {
				return err
			}
			*f.dst = v
		}
		return nil
	})
	return d, err
}

// --- Simple search

func (cp *ContactsPage) searchContact(text string) error {
	if err := playwright.NewPlaywrightAssertions().Locator(cp.content().Locator("." + ClassTabContent)).ToBeVisible(); err != nil {
		return err
	}
	box := cp.contentByID(IDSearchBox)
	if err := box.Click(); err != nil {
		return err
	}
	if err := box.Fill(text); err != nil {
		return err
	}
	settleListFilter(cp.page)
	return nil
}

// SearchContact types text into the list filter and waits for the list to
// apply it.
func (cp *ContactsPage) SearchContact(text string) error {
	return cp.do("search contact", func() error {
		return cp.searchContact(text)
	})
}

// SelectFirstContact opens the first row of the current result list.
func (cp *ContactsPage) SelectFirstContact() error {
	return cp.do("select first contact", func() error {
		return cp.ResultRows().First().Click()
	})
}

// resultTitles waits for ready, then returns the title of the result link in
// each row, skipping rows without one. Waiting on ready instead of the first
// row lets an empty result return no names instead of timing out.
func (cp *ContactsPage) resultTitles(ready playwright.Locator, linkClass string) ([]string, error) {
	if err := waitVisible(ready); err != nil {
		return nil, fmt.Errorf("waiting for results: %w", err)
	}
	raw, err := cp.ResultRows().EvaluateAll(`(rows, linkClass) => rows.map(row => {
		const link = row.querySelector("a.HyperLink." + linkClass);
		return link ? link.getAttribute("title") || "" : "";
	})`, linkClass)
	if err != nil {
		return nil, err
	}
	values, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected result %T", raw)
	}
	return lo.FilterMap(values, func(v interface{}, _ int) (string, bool) {
		s, _ := v.(string)
		return s, s != ""
	}), nil
}

// SimpleSearchResults filters the list by text and returns the result names
// in "Last, First" form, or none if nothing matches. The simple search never
// lists archived contacts.
func (cp *ContactsPage) SimpleSearchResults(text string) (names []string, err error) {
	err = cp.do("simple search", func() error {
		if err := cp.searchContact(text); err != nil {
			return err
		}
		table := cp.content().Locator("." + ClassResultTable).First()
		names, err = cp.resultTitles(table, ClassSimpleResultLink)
		return err
	})
	if err == nil {
		cp.logger.Info("Simple search results", slog.String("query", text), slog.Any("names", names))
	}
	return names, err
}

// --- Advanced search

func (cp *ContactsPage) clickAdvancedSearchTab() error {
	err := cp.analytics.Around(cp.page, func() error {
		return cp.contentRole("tab", "Advanced search").Click()
	})
	if err != nil {
		return err
	}
	// The analytics command of the screen the tab was clicked on may still be
	// in flight, so the header confirms which screen is loaded.
	return playwright.NewPlaywrightAssertions().
		Locator(cp.contentByID(IDInnerHeaderAlternate)).
		ToHaveText("Advanced search")
}

// ClickAdvancedSearchTab switches the list to advanced search and waits until
// the screen has loaded.
func (cp *ContactsPage) ClickAdvancedSearchTab() error {
	return cp.do("open advanced search tab", cp.clickAdvancedSearchTab)
}

func (cp *ContactsPage) clearAllCriteria() error {
	// "Clear all" precedes "Add criteria", so once the latter is shown the
	// former is rendered if there is anything to clear.
	if err := waitVisible(cp.contentRole("link", "Add criteria")); err != nil {
		return err
	}
	clearAll := cp.contentRole("link", "Clear all")
	visible, err := clearAll.IsVisible()
	if err != nil {
		return err
	}
	if !visible {
		return nil
	}
	if err := clearAll.Click(); err != nil {
		return err
	}
	return waitHidden(clearAll)
}

// ClearAllCriteria removes all advanced search criteria. Without criteria the
// console shows no "Clear all" link and nothing is done.
func (cp *ContactsPage) ClearAllCriteria() error {
	return cp.do("clear criteria", cp.clearAllCriteria)
}

func (cp *ContactsPage) addCriteria(fields ...string) error {
	add := cp.contentRole("link", "Add criteria")
	if err := waitVisible(add); err != nil {
		return err
	}
	if err := add.Click(); err != nil {
		return err
	}

	list := CriteriaFields.In(cp.page)
	for _, field := range fields {
		box := list.GetByRole("checkbox", playwright.FrameLocatorGetByRoleOptions{Name: field, Exact: playwright.Bool(true)})
		if err := box.Check(); err != nil {
			return fmt.Errorf("selecting criterion %q: %w", field, err)
		}
	}
	ok := CriteriaDialog.In(cp.page).GetByRole("button", playwright.FrameLocatorGetByRoleOptions{Name: "OK", Exact: playwright.Bool(true)})
	if err := ok.Click(); err != nil {
		return err
	}
	return waitHidden(cp.page.Locator(frameByName(CriteriaDialogFrameName)))
}

// AddCriteria adds one criterion per field through the "Add criteria" dialog.
// Criteria inputs are numbered in the order the fields are given, after any
// criteria already present.
func (cp *ContactsPage) AddCriteria(fields ...string) error {
	return cp.do("add criteria", func() error {
		return cp.addCriteria(fields...)
	})
}

// AddEmailCriteria adds the Email criterion.
func (cp *ContactsPage) AddEmailCriteria() error {
	return cp.AddCriteria("Email")
}

func (cp *ContactsPage) fillCriterion(index int, value string) error {
	input := cp.contentByID(CriteriaInputID(index))
	if err := input.Click(); err != nil {
		return err
	}
	return input.Fill(value)
}

// FillCriterion sets the value of the index-th criterion.
func (cp *ContactsPage) FillCriterion(index int, value string) error {
	return cp.do("fill criterion", func() error {
		return cp.fillCriterion(index, value)
	})
}

// FillSearchCriteria sets the value of the first criterion.
func (cp *ContactsPage) FillSearchCriteria(value string) error {
	return cp.FillCriterion(0, value)
}

func (cp *ContactsPage) clickSearch() error {
	if err := cp.contentRole("button", "Search").Click(); err != nil {
		return err
	}
	settleListFilter(cp.page)
	return nil
}

// ClickSearch runs the advanced search.
func (cp *ContactsPage) ClickSearch() error {
	return cp.do("search", cp.clickSearch)
}

// RecordsFoundCount returns the record count reported by the advanced search.
func (cp *ContactsPage) RecordsFoundCount() (count int, err error) {
	err = cp.do("read records found", func() error {
		el := cp.contentByID(IDRecordsFound)
		if err := waitVisible(el); err != nil {
			return err
		}
		text, err := el.TextContent()
		if err != nil {
			return err
		}
		count, err = strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return fmt.Errorf("parsing records found %q: %w", text, err)
		}
		return nil
	})
	return count, err
}

// AdvancedSearchResults runs an advanced search for text on the email field
// and returns the result names. Unlike the simple search the result includes
// archived contacts.
func (cp *ContactsPage) AdvancedSearchResults(text string) (names []string, err error) {
	err = cp.do("advanced search", func() error {
		steps := []func() error{
			cp.clickAdvancedSearchTab,
			cp.clearAllCriteria,
			func() error { return cp.addCriteria("Email") },
			func() error { return cp.fillCriterion(0, text) },
			cp.clickSearch,
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		names, err = cp.resultTitles(cp.contentByID(IDRecordsFound), ClassAdvancedResultLink)
		return err
	})
	if err == nil {
		cp.logger.Info("Advanced search results", slog.String("query", text), slog.Any("names", names))
	}
	return names, err
}

// SearchByFullName runs an advanced search on first and last name for a
// result list name in "Last, First" form.
func (cp *ContactsPage) SearchByFullName(listName string) error {
	first, last, err := ParseListName(listName)
	if err != nil {
		return err
	}
	return cp.do("search by full name", func() error {
		steps := []func() error{
			func() error { return cp.link("List").Click() },
			cp.clickAdvancedSearchTab,
			cp.clearAllCriteria,
			func() error { return cp.addCriteria("First name", "Last name") },
			func() error { return cp.fillCriterion(0, first) },
			func() error { return cp.fillCriterion(1, last) },
			cp.clickSearch,
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	})
}

// SearchResultCount returns the number of rows in the current result table.
func (cp *ContactsPage) SearchResultCount() (count int, err error) {
	err = cp.do("count results", func() error {
		count, err = cp.ResultRows().Count()
		return err
	})
	return count, err
}

// --- Saved searches

// SaveSearch stores the current advanced search under name.
func (cp *ContactsPage) SaveSearch(name string) error {
	return cp.do("save search", func() error {
		input := cp.contentByID(IDSavedSearchName)
		if err := input.Click(); err != nil {
			return err
		}
		if err := input.Fill(name); err != nil {
			return err
		}
		return cp.analytics.Around(cp.page, func() error {
			return cp.contentRole("button", "Save").Click()
		})
	})
}

func (cp *ContactsPage) ClickSavedSearchesTab() error {
	return cp.do("open saved searches tab", func() error {
		return cp.contentRole("tab", "Saved searches").Click()
	})
}

// RunSavedSearch runs the saved search called name and waits for its results.
func (cp *ContactsPage) RunSavedSearch(name string) error {
	return cp.do("run saved search", func() error {
		row := cp.ResultRows().Filter(playwright.LocatorFilterOptions{HasText: name})
		return cp.analytics.Around(cp.page, func() error {
			return row.Locator(`input[type="submit"][value="Run"]`).Click()
		})
	})
}

// --- Record actions

// Archive archives the open contact and waits until the console has
// processed it.
func (cp *ContactsPage) Archive() error {
	return cp.do("archive", func() error {
		archive := cp.button("Archive")
		if err := waitVisible(archive); err != nil {
			return err
		}
		return cp.analytics.Around(cp.page, func() error { return archive.Click() })
	})
}

// DeleteFirstResult opens the first result, deletes it and accepts the
// confirmation. It returns once the console is back on the advanced search
// screen.
func (cp *ContactsPage) DeleteFirstResult() error {
	return cp.do("delete first result", func() error {
		row := cp.ResultRows().First()
		if err := waitVisible(row); err != nil {
			return err
		}
		if err := row.Click(); err != nil {
			return err
		}

		del := cp.button("Delete")
		if err := waitVisible(del); err != nil {
			return err
		}
		if _, err := AcceptDialog(cp.page, cp.logger, func() error { return del.Click() }); err != nil {
			return err
		}

		expect := playwright.NewPlaywrightAssertions()
		if err := expect.Locator(cp.contentByID(IDInnerHeader)).ToHaveText("Contacts -"); err != nil {
			return fmt.Errorf("waiting for contacts header: %w", err)
		}
		if err := expect.Locator(cp.contentByID(IDInnerHeaderAlternate)).ToHaveText("Advanced search"); err != nil {
			return fmt.Errorf("waiting for advanced search header: %w", err)
		}
		cp.logger.Info("Returned to advanced search after deletion")
		return nil
	})
}

// SubmitEmptyContactForm saves the current form without input and returns
// the message of the alert the console raises.
func (cp *ContactsPage) SubmitEmptyContactForm() (message string, err error) {
	err = cp.do("submit empty form", func() error {
		message, err = AcceptDialog(cp.page, cp.logger, func() error {
			return cp.button("Save").Click()
		})
		return err
	})
	return message, err
}

// --- Validation

// PasswordComplexityError is the inline complexity message of the password
// field.
func (cp *ContactsPage) PasswordComplexityError() playwright.Locator {
	return cp.contentByID(IDPasswordComplexity)
}

// PasswordMismatchError is the inline message shown when both password fields
// differ.
func (cp *ContactsPage) PasswordMismatchError() playwright.Locator {
	return cp.contentByID(IDPasswordMismatch)
}

func (cp *ContactsPage) InvalidEmailError() playwright.Locator {
	return cp.contentByID(IDInvalidEmail)
}

// EnterPassword fills both password fields and leaves the confirmation field
// so the console validates them.
func (cp *ContactsPage) EnterPassword(password, confirm string) error {
	return cp.do("enter password", func() error {
		if err := cp.contentByID(IDPasswordInput).Fill(password); err != nil {
			return err
		}
		confirmInput := cp.contentByID(IDConfirmPasswordInput)
		if err := confirmInput.Fill(confirm); err != nil {
			return err
		}
		return confirmInput.Blur()
	})
}

// EnterEmail fills the email field and moves focus to the first name field so
// the console validates it.
func (cp *ContactsPage) EnterEmail(value string) error {
	return cp.do("enter email", func() error {
		email := cp.contentByID(IDEmailInput)
		if err := email.Fill(""); err != nil {
			return err
		}
		if err := email.Fill(value); err != nil {
			return err
		}
		return cp.contentByID(IDFirstNameInput).Click()
	})
}
