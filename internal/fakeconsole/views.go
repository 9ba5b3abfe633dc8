package fakeconsole

import (
	"context"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/networkteam/crmsuite/pages"
)

// elementIDs are the fixed element ids the client side scripts address.
var elementIDs = map[string]string{
	"password":     pages.IDPasswordInput,
	"confirm":      pages.IDConfirmPasswordInput,
	"complexity":   pages.IDPasswordComplexity,
	"mismatch":     pages.IDPasswordMismatch,
	"firstName":    pages.IDFirstNameInput,
	"lastName":     pages.IDLastNameInput,
	"organization": pages.IDOrganizationInput,
	"email":        pages.IDEmailInput,
	"invalidEmail": pages.IDInvalidEmail,
	"toggle":       pages.IDMemberSinceToggle,
	"weeks":        pages.IDMemberSinceWeekRows,
}

// markup writes the output of one component. Dynamic values go through
// templ's escapers; the first write error sticks.
type markup struct {
	w   io.Writer
	err error
}

func (m *markup) raw(parts ...string) {
	for _, p := range parts {
		if m.err != nil {
			return
		}
		_, m.err = io.WriteString(m.w, p)
	}
}

func (m *markup) text(s string) {
	m.raw(templ.EscapeString(s))
}

func (m *markup) attr(name, value string) {
	m.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// json writes v as a JavaScript literal for use inside a script element.
func (m *markup) json(v any) {
	if m.err != nil {
		return
	}
	s, err := templ.JSONString(v)
	if err != nil {
		m.err = err
		return
	}
	m.raw(s)
}

func (m *markup) render(ctx context.Context, c templ.Component) {
	if m.err != nil {
		return
	}
	m.err = c.Render(ctx, m.w)
}

// component adapts a markup writing function to templ.
func component(fn func(ctx context.Context, m *markup)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &markup{w: w}
		fn(ctx, m)
		return m.err
	})
}

// inScreen renders body as the children of the content screen layout.
func inScreen(s screen, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return contentScreen(s).Render(templ.WithChildren(ctx, body), w)
	})
}

// AnalyticsCommandPath is pinged by every content screen once it has loaded.
const AnalyticsCommandPath = "/rte/v1/command"

// DeleteConfirmation is the message of the native confirm dialog raised by
// the Delete toolbar button.
const DeleteConfirmation = "Are you sure you want to delete this contact?"

// toolbarButtons are the outer page buttons in display order. Each content
// screen lists the ones it enables in its data-toolbar attribute.
var toolbarButtons = []string{"Add contact", "Add member", "Save", "Archive", "Delete"}

// screen is embedded in the data of every content screen.
type screen struct {
	Name          string
	Header        string
	Alternate     string
	Toolbar       string
	Tab           string
	AnalyticsPath string
}

func newScreen(name, alternate, toolbar string) screen {
	return screen{
		Name:          name,
		Header:        "Contacts -",
		Alternate:     alternate,
		Toolbar:       toolbar,
		AnalyticsPath: AnalyticsCommandPath,
	}
}

type loginView struct {
	UserName string
	Error    string
}

type shellView struct {
	Toolbar            []string
	DeleteConfirmation string
}

type simpleView struct {
	screen
	Text string
}

type listView struct {
	screen
	Query string
	Rows  []Record
}

type detailView struct {
	screen
	Record Record
}

type messages struct {
	PasswordComplexity string
	PasswordMismatch   string
	InvalidEmail       string
	EmptyContactForm   string
}

type option struct {
	Value string
	Label string
}

type calendarDay struct {
	Day  int
	Date string
}

type formView struct {
	screen
	Member          bool
	Levels          []option
	Month           string
	Weeks           [][]calendarDay
	Messages        messages
	PasswordPattern string
	EmailPattern    string
}

type advancedView struct {
	screen
	Criteria []Criterion
	Searched bool
	Results  []Record
	Message  string
}

type savedView struct {
	screen
	Searches []SavedSearch
}

type criteriaFieldsView struct {
	Fields []string
}

var membershipLevels = []option{
	{Value: pages.MembershipLevelBasic, Label: "Basic"},
	{Value: pages.MembershipLevelCorporate, Label: "Corporate or Family"},
}

func levelName(value string) string {
	for _, l := range membershipLevels {
		if l.Value == value {
			return l.Label
		}
	}
	return value
}

// Client side validation patterns of the contact form.
const (
	passwordPattern = `^(?=.*[a-z])(?=.*[A-Z])(?=.*[0-9])(?=.*[^A-Za-z0-9]).{8,}$`
	emailPattern    = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
)

var formMessages = messages{
	PasswordComplexity: pages.MessagePasswordComplexity,
	PasswordMismatch:   pages.MessagePasswordMismatch,
	InvalidEmail:       pages.MessageInvalidEmail,
	EmptyContactForm:   pages.MessageEmptyContactForm,
}

// monthWeeks lays out the month of t as weeks starting on Monday. Days
// outside the month have Day 0.
func monthWeeks(t time.Time) [][]calendarDay {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	offset := (int(first.Weekday()) + 6) % 7

	var weeks [][]calendarDay
	week := make([]calendarDay, offset, 7)
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		week = append(week, calendarDay{Day: d.Day(), Date: d.Format(time.DateOnly)})
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = make([]calendarDay, 0, 7)
		}
	}
	if len(week) > 0 {
		week = append(week, make([]calendarDay, 7-len(week))...)
		weeks = append(weeks, week)
	}
	return weeks
}
