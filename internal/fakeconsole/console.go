// Package fakeconsole serves an in-process stand-in for the CRM admin console.
// It renders the same element ids, roles, frames and dialogs the page objects
// rely on, backed by an in-memory store.
package fakeconsole

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/gofrs/uuid"
	"github.com/samber/lo"

	"github.com/networkteam/crmsuite/contact"
)

const sessionCookieName = "crm_session"

// Options configures a Console.
type Options struct {
	// Username and Password are the accepted credentials. If both are empty
	// any credentials are accepted.
	Username string
	Password string

	// RequestLogCapacity is the number of served requests kept for
	// inspection. Defaults to 1000.
	RequestLogCapacity uint64
	// RequestLogSkipPaths are path prefixes left out of the request log.
	RequestLogSkipPaths []string

	// SkipSeed starts with an empty store.
	SkipSeed bool

	Logger *slog.Logger
}

// Console is the stand-in admin console. It implements http.Handler.
type Console struct {
	options Options
	store   *Store
	log     *RequestLog
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*consoleSession

	handler http.Handler
}

// consoleSession is the server side state of one logged in browser.
type consoleSession struct {
	userName string
	criteria []Criterion
}

func New(options Options) *Console {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.RequestLogCapacity == 0 {
		options.RequestLogCapacity = 1000
	}
	logger := options.Logger.With(slog.String("component", "fakeconsole"))

	c := &Console{
		options:  options,
		store:    NewStore(),
		log:      NewRequestLog(options.RequestLogCapacity, logger, options.RequestLogSkipPaths...),
		logger:   logger,
		sessions: make(map[uuid.UUID]*consoleSession),
	}
	if !options.SkipSeed {
		c.store.Seed()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", c.getLogin)
	mux.HandleFunc("POST /login", c.postLogin)
	mux.HandleFunc("GET /member", c.requireSession(c.getMember))
	mux.HandleFunc("POST "+AnalyticsCommandPath, c.postAnalyticsCommand)

	mux.HandleFunc("GET /admin", c.requireSession(c.getShell))
	mux.HandleFunc("GET /admin/home", c.requireSession(c.getHome))
	mux.HandleFunc("GET /admin/uploader", c.requireSession(c.getUploader))
	mux.HandleFunc("GET /admin/criteria", c.requireSession(c.getCriteriaDialog))
	mux.HandleFunc("GET /admin/criteria/fields", c.requireSession(c.getCriteriaFields))

	mux.HandleFunc("GET /admin/contacts", c.requireSession(c.getList))
	mux.HandleFunc("GET /admin/contacts/rows", c.requireSession(c.getListRows))
	mux.HandleFunc("GET /admin/contacts/new", c.requireSession(c.getNewContact))
	mux.HandleFunc("POST /admin/contacts/new", c.requireSession(c.postNewContact))
	mux.HandleFunc("GET /admin/contacts/advanced", c.requireSession(c.getAdvanced))
	mux.HandleFunc("POST /admin/contacts/advanced", c.requireSession(c.postAdvanced))
	mux.HandleFunc("GET /admin/contacts/saved", c.requireSession(c.getSaved))
	mux.HandleFunc("POST /admin/contacts/saved/run", c.requireSession(c.postRunSaved))
	mux.HandleFunc("GET /admin/contacts/import", c.requireSession(c.getImport))
	mux.HandleFunc("GET /admin/contacts/fields", c.requireSession(c.getContactFields))
	mux.HandleFunc("GET /admin/contacts/{id}", c.requireSession(c.getDetail))
	mux.HandleFunc("POST /admin/contacts/{id}/archive", c.requireSession(c.postArchive))
	mux.HandleFunc("POST /admin/contacts/{id}/delete", c.requireSession(c.postDelete))

	c.handler = c.log.Middleware(mux)
	return c
}

func (c *Console) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.handler.ServeHTTP(w, r)
}

// Store returns the console's record store.
func (c *Console) Store() *Store {
	return c.store
}

// RequestLog returns the log of served requests.
func (c *Console) RequestLog() *RequestLog {
	return c.log
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, s *consoleSession)

func (c *Console) requireSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := c.session(r)
		if !ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next(w, r, s)
	}
}

func (c *Console) session(r *http.Request) (*consoleSession, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, false
	}
	id, err := uuid.FromString(cookie.Value)
	if err != nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	return s, ok
}

func render(w http.ResponseWriter, r *http.Request, component templ.Component, options ...func(*templ.ComponentHandler)) {
	templ.Handler(component, options...).ServeHTTP(w, r)
}

func (c *Console) getLogin(w http.ResponseWriter, r *http.Request) {
	render(w, r, loginPage(loginView{}))
}

func (c *Console) postLogin(w http.ResponseWriter, r *http.Request) {
	userName := r.PostFormValue("userName")
	password := r.PostFormValue("password")

	if !c.acceptCredentials(userName, password) {
		c.logger.Info("Rejected login", slog.String("user", userName))
		render(w, r, loginPage(loginView{
			UserName: userName,
			Error:    "Invalid email or password",
		}), templ.WithStatus(http.StatusUnauthorized))
		return
	}

	id := uuid.Must(uuid.NewV4())
	c.mu.Lock()
	c.sessions[id] = &consoleSession{userName: userName}
	c.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.logger.Info("Logged in", slog.String("user", userName))
	http.Redirect(w, r, "/member", http.StatusSeeOther)
}

func (c *Console) acceptCredentials(userName, password string) bool {
	if c.options.Username == "" && c.options.Password == "" {
		return userName != ""
	}
	return userName == c.options.Username && password == c.options.Password
}

func (c *Console) getMember(w http.ResponseWriter, r *http.Request, s *consoleSession) {
	render(w, r, memberPage(loginView{UserName: s.userName}))
}

func (c *Console) postAnalyticsCommand(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (c *Console) getShell(w http.ResponseWriter, r *http.Request, _ *consoleSession) {
	render(w, r, shellPage(shellView{
		Toolbar:            toolbarButtons,
		DeleteConfirmation: DeleteConfirmation,
	}))
}

func (c *Console) getHome(w http.ResponseWriter, r *http.Request, s *consoleSession) {
	render(w, r, simpleScreen(simpleView{
		screen: newScreen("home", "Dashboard", ""),
		Text:   fmt.Sprintf("Welcome, %s.", s.userName),
	}))
}

func (c *Console) getImport(w http.ResponseWriter, r *http.Request, _ *consoleSession) {
	render(w, r, simpleScreen(simpleView{
		screen: newScreen("import", "Import", ""),
		Text:   "Upload a CSV file to import contacts.",
	}))
}

func (c *Console) getContactFields(w http.ResponseWriter, r *http.Request, _ *consoleSession) {
	render(w, r, simpleScreen(simpleView{
		screen: newScreen("contact-fields", "Contact fields", ""),
		Text:   strings.Join(CriteriaFields, ", "),
	}))
}

func (c *Console) getUploader(w http.ResponseWriter, r *http.Request, _ *consoleSession) {
	render(w, r, uploaderPage())
}

func (c *Console) getCriteriaDialog(w http.ResponseWriter, r *http.Request, _ *consoleSession) {
	render(w, r, criteriaDialogPage())
}

func (c *Console) getCriteriaFields(w http.ResponseWriter, r *http.Request, _ *consoleSession) {
	render(w, r, criteriaFieldsPage(criteriaFieldsView{Fields: CriteriaFields}))
}

// --- List and detail

func (c *Console) getList(w http.ResponseWriter, r *http.Request, _ *consoleSession) {
	query := r.URL.Query().Get("q")
	v := listView{
		screen: newScreen("contacts-list", "List", "Add contact,Add member"),
		Query:  query,
		Rows:   c.store.Search(query),
	}
	v.Tab = "list"
	render(w, r, listScreen(v))
}

func (c *Console) getListRows(w http.ResponseWriter, r *http.Request, _ *consoleSession) {
	render(w, r, listRows(c.store.Search(r.URL.Query().Get("q"))))
}

func (c *Console) record(w http.ResponseWriter, r *http.Request) (Record, bool) {
	id, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid contact id", http.StatusBadRequest)
		return Record{}, false
	}
	rec, ok := c.store.Get(id)
	if !ok {
		http.NotFound(w, r)
		return Record{}, false
	}
	return rec, true
}

func (c *Console) getDetail(w http.ResponseWriter, r *http.Request, _ *consoleSession) {
	rec, ok := c.record(w, r)
	if !ok {
		return
	}
	toolbar := "Archive,Delete"
	if rec.Archived {
		toolbar = "Delete"
	}
	render(w, r, detailScreen(detailView{
		screen: newScreen("contact-details", rec.ListName(), toolbar),
		Record: rec,
	}))
}

func (c *Console) postArchive(w http.ResponseWriter, r *http.Request, _ *consoleSession) {
	rec, ok := c.record(w, r)
	if !ok {
		return
	}
	c.store.Archive(rec.ID)
	c.logger.Info("Archived contact", slog.String("name", rec.ListName()))
	http.Redirect(w, r, "/admin/contacts/"+rec.ID.String(), http.StatusSeeOther)
}

func (c *Console) postDelete(w http.ResponseWriter, r *http.Request, _ *consoleSession) {
	rec, ok := c.record(w, r)
	if !ok {
		return
	}
	c.store.Delete(rec.ID)
	c.logger.Info("Deleted contact", slog.String("name", rec.ListName()))
	http.Redirect(w, r, "/admin/contacts/advanced", http.StatusSeeOther)
}

// --- New contact and member

func (c *Console) getNewContact(w http.ResponseWriter, r *http.Request, _ *consoleSession) {
	member := r.URL.Query().Get("member") != ""
	alternate := "New contact"
	if member {
		alternate = "New member"
	}
	now := time.Now()
	render(w, r, contactFormScreen(formView{
		screen:          newScreen("contact-form", alternate, "Save"),
		Member:          member,
		Levels:          membershipLevels,
		Month:           now.Format("January 2006"),
		Weeks:           monthWeeks(now),
		Messages:        formMessages,
		PasswordPattern: passwordPattern,
		EmailPattern:    emailPattern,
	}))
}

// errEmptyContact mirrors the form's client side check.
var errEmptyContact = errors.New(formMessages.EmptyContactForm)

func parseContactForm(r *http.Request) (Record, error) {
	if err := r.ParseForm(); err != nil {
		return Record{}, err
	}
	f := r.PostForm
	rec := Record{
		Contact: contact.Contact{
			FirstName: strings.TrimSpace(f.Get("firstName")),
			LastName:  strings.TrimSpace(f.Get("lastName")),
			Company:   strings.TrimSpace(f.Get("organization")),
			Email:     strings.TrimSpace(f.Get("email")),
			Phone:     strings.TrimSpace(f.Get("phone")),
		},
		Member:          f.Get("member") != "",
		MembershipLevel: f.Get("membershipLevel"),
		NotifyMember:    f.Get("notifyMember") != "",
		Groups:          f["group"],
	}
	if lo.EveryBy([]string{rec.FirstName, rec.LastName, rec.Company, rec.Email}, func(v string) bool { return v == "" }) {
		return Record{}, errEmptyContact
	}
	if since := f.Get("memberSince"); since != "" {
		t, err := time.Parse(time.DateOnly, since)
		if err != nil {
			return Record{}, fmt.Errorf("invalid member since date %q", since)
		}
		rec.MemberSince = t
	}
	return rec, nil
}

func (c *Console) postNewContact(w http.ResponseWriter, r *http.Request, _ *consoleSession) {
	rec, err := parseContactForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec = c.store.Add(rec)
	c.logger.Info("Created contact", slog.String("name", rec.ListName()), slog.Bool("member", rec.Member))
	http.Redirect(w, r, "/admin/contacts/"+rec.ID.String(), http.StatusSeeOther)
}

// --- Advanced and saved searches

func (c *Console) criteria(s *consoleSession) []Criterion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(s.criteria)
}

func (c *Console) setCriteria(s *consoleSession, criteria []Criterion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s.criteria = criteria
}

func (c *Console) renderAdvanced(w http.ResponseWriter, r *http.Request, v advancedView) {
	v.screen = newScreen("advanced-search", "Advanced search", "")
	v.Tab = "advanced"
	render(w, r, advancedScreen(v))
}

func (c *Console) getAdvanced(w http.ResponseWriter, r *http.Request, s *consoleSession) {
	q := r.URL.Query()
	criteria := c.criteria(s)
	if q.Has("clear") {
		criteria = nil
	}
	for _, field := range q["add"] {
		if !slices.Contains(CriteriaFields, field) {
			http.Error(w, fmt.Sprintf("Unknown field %q", field), http.StatusBadRequest)
			return
		}
		criteria = append(criteria, Criterion{Field: field})
	}
	c.setCriteria(s, criteria)

	c.renderAdvanced(w, r, advancedView{Criteria: criteria})
}

func (c *Console) postAdvanced(w http.ResponseWriter, r *http.Request, s *consoleSession) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	criteria := c.criteria(s)
	for i, value := range r.PostForm["criterion"] {
		if i < len(criteria) {
			criteria[i].Value = strings.TrimSpace(value)
		}
	}
	c.setCriteria(s, criteria)

	v := advancedView{Criteria: criteria}
	switch r.PostFormValue("action") {
	case "save":
		name := strings.TrimSpace(r.PostFormValue("savedSearchName"))
		if name == "" {
			v.Message = "Enter a name for the saved search"
			break
		}
		c.store.SaveSearch(name, criteria)
		c.logger.Info("Saved search", slog.String("name", name))
		v.Message = fmt.Sprintf("Saved search %q", name)
	default:
		v.Searched = true
		v.Results = c.store.Match(criteria)
	}
	c.renderAdvanced(w, r, v)
}

func (c *Console) getSaved(w http.ResponseWriter, r *http.Request, _ *consoleSession) {
	v := savedView{
		screen:   newScreen("saved-searches", "Saved searches", ""),
		Searches: c.store.SavedSearches(),
	}
	v.Tab = "saved"
	render(w, r, savedScreen(v))
}

func (c *Console) postRunSaved(w http.ResponseWriter, r *http.Request, s *consoleSession) {
	ss, ok := c.store.SavedSearch(r.PostFormValue("name"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	criteria := slices.Clone(ss.Criteria)
	c.setCriteria(s, criteria)
	c.renderAdvanced(w, r, advancedView{
		Criteria: criteria,
		Searched: true,
		Results:  c.store.Match(criteria),
	})
}
