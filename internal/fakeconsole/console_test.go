package fakeconsole_test

import (
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/crmsuite/internal/fakeconsole"
	"github.com/networkteam/crmsuite/pages"
)

type testClient struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

func newTestConsole(t *testing.T) (*fakeconsole.Console, *testClient) {
	t.Helper()

	console := fakeconsole.New(fakeconsole.Options{
		Username: "admin@example.test",
		Password: "Sample#Pass1",
	})
	server := httptest.NewServer(console)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return console, &testClient{
		t:      t,
		server: server,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *testClient) do(req *http.Request) (*http.Response, string) {
	c.t.Helper()
	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, string(body)
}

func (c *testClient) get(path string) (*http.Response, string) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.server.URL+path, nil)
	require.NoError(c.t, err)
	return c.do(req)
}

func (c *testClient) post(path string, form url.Values) (*http.Response, string) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *testClient) login() {
	c.t.Helper()
	resp, _ := c.post("/login", url.Values{
		"userName": {"admin@example.test"},
		"password": {"Sample#Pass1"},
	})
	require.Equal(c.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(c.t, "/member", resp.Header.Get("Location"))
}

func TestConsole_Login(t *testing.T) {
	_, c := newTestConsole(t)

	resp, body := c.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `id="`+pages.IDLoginUserName+`"`)
	assert.Contains(t, body, `id="`+pages.IDLoginPassword+`"`)
	assert.Contains(t, body, "Log in")

	resp, _ = c.get("/admin")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode, "admin view requires a login")

	resp, body = c.post("/login", url.Values{"userName": {"admin@example.test"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid email or password")

	c.login()

	_, body = c.get("/member")
	assert.Contains(t, body, `<a href="/admin">Admin view</a>`)

	resp, body = c.get("/admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `<iframe name="contentarea"`)
	assert.Contains(t, body, `name="`+pages.CriteriaDialogFrameName+`"`)
	for _, link := range []string{"Contacts", "List", "Advanced search", "Saved searches", "Import", "Contact fields"} {
		assert.Contains(t, body, `target="contentarea">`+link+`</a>`)
	}
	for _, button := range []string{"Add contact", "Add member", "Save", "Archive", "Delete"} {
		assert.Contains(t, body, `data-button="`+button+`">`+button+`</button>`)
	}
}

var (
	shellButtonPattern = regexp.MustCompile(`<button type="button" class="hidden" data-button="([^"]*)">`)
	toolbarPattern     = regexp.MustCompile(`data-toolbar="([^"]*)"`)
)

func TestConsole_ScreenToolbarsMatchShellButtons(t *testing.T) {
	console, c := newTestConsole(t)
	c.login()

	_, shell := c.get("/admin")
	var buttons []string
	for _, m := range shellButtonPattern.FindAllStringSubmatch(shell, -1) {
		buttons = append(buttons, html.UnescapeString(m[1]))
	}
	require.NotEmpty(t, buttons)

	lovelace := console.Store().Search("lovelace")
	require.Len(t, lovelace, 1)

	for _, path := range []string{
		"/admin/contacts",
		"/admin/contacts/new",
		"/admin/contacts/new?member=1",
		"/admin/contacts/" + lovelace[0].ID.String(),
	} {
		_, body := c.get(path)
		m := toolbarPattern.FindStringSubmatch(body)
		require.NotNil(t, m, path)
		toolbar := html.UnescapeString(m[1])
		require.NotEmpty(t, toolbar, path)
		for _, entry := range strings.Split(toolbar, ",") {
			assert.Contains(t, buttons, entry, "%s shows a toolbar button the shell does not have", path)
		}
	}
}

func TestConsole_AcceptsAnyUserWithoutConfiguredCredentials(t *testing.T) {
	server := httptest.NewServer(fakeconsole.New(fakeconsole.Options{}))
	t.Cleanup(server.Close)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.PostForm(server.URL+"/login", url.Values{"userName": {"someone"}, "password": {"x"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestConsole_ListSearchExcludesArchived(t *testing.T) {
	_, c := newTestConsole(t)
	c.login()

	_, body := c.get("/admin/contacts")
	assert.Contains(t, body, `data-toolbar="Add contact,Add member"`)
	assert.Contains(t, body, `class="tab-content"`)
	assert.Contains(t, body, `id="`+pages.IDSearchBox+`"`)
	assert.NotContains(t, body, "HyperLink listMain", "empty filter lists nothing")

	_, rows := c.get("/admin/contacts/rows?q=%40test")
	assert.Equal(t, 4, strings.Count(rows, `class="HyperLink listMain"`))
	assert.Contains(t, rows, `title="Lovelace, Ada"`)
	assert.NotContains(t, rows, "Liskov")
	assert.NotContains(t, rows, "Wirth")
}

func TestConsole_NewContact(t *testing.T) {
	console, c := newTestConsole(t)
	c.login()

	_, body := c.get("/admin/contacts/new")
	assert.Contains(t, body, `data-toolbar="Save"`)
	for _, id := range []string{
		pages.IDPasswordInput, pages.IDConfirmPasswordInput, pages.IDPasswordComplexity, pages.IDPasswordMismatch,
		pages.IDFirstNameInput, pages.IDLastNameInput, pages.IDOrganizationInput, pages.IDEmailInput,
		pages.IDInvalidEmail, pages.IDPhoneInput,
	} {
		assert.Contains(t, body, `id="`+id+`"`)
	}
	assert.Contains(t, body, `name="`+pages.UploaderFrameName+`"`)
	assert.Contains(t, body, pages.MessagePasswordComplexity)
	assert.NotContains(t, body, pages.IDMembershipLevel)

	resp, _ := c.post("/admin/contacts/new", url.Values{"phone": {"123"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "first name, last name, organization or email is required")

	resp, _ = c.post("/admin/contacts/new", url.Values{
		"firstName":    {"Katherine"},
		"lastName":     {"Johnson"},
		"organization": {"NACA"},
		"email":        {"katherine.johnson@test.com"},
		"phone":        {"+1 757 555 0199"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	location := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(location, "/admin/contacts/"))

	_, body = c.get(location)
	assert.Contains(t, body, `data-toolbar="Archive,Delete"`)
	assert.Contains(t, body, `<label>First name</label><div class="fieldBody"><span>Katherine</span>`)
	assert.Contains(t, body, `<label>Email</label><div class="fieldBody"><span>katherine.johnson@test.com</span>`)
	assert.Contains(t, html.UnescapeString(body), `<label>Phone</label><div class="fieldBody"><span>+1 757 555 0199</span>`)

	assert.Len(t, console.Store().Search("katherine"), 1)
}

func TestConsole_NewMember(t *testing.T) {
	console, c := newTestConsole(t)
	c.login()

	_, body := c.get("/admin/contacts/new?member=1")
	assert.Contains(t, body, `id="`+pages.IDMembershipLevel+`"`)
	assert.Contains(t, body, `<option value="`+pages.MembershipLevelBasic+`">Basic</option>`)
	assert.Contains(t, body, `id="`+pages.IDNotifyMember+`"`)
	assert.Contains(t, body, `id="`+pages.IDMemberSinceToggle+`"`)
	assert.Contains(t, body, `class="DES_CalDay"`)
	assert.Contains(t, body, "SAMPLE - Board Members")

	resp, _ := c.post("/admin/contacts/new", url.Values{
		"member":          {"1"},
		"membershipLevel": {pages.MembershipLevelBasic},
		"notifyMember":    {"1"},
		"memberSince":     {"2026-10-05"},
		"group":           {"SAMPLE - Board Members"},
		"firstName":       {"Mary"},
		"lastName":        {"Jackson"},
		"email":           {"mary.jackson@test.com"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = c.get(resp.Header.Get("Location"))
	assert.Contains(t, body, `role="tab"`)
	assert.Contains(t, body, "Contact details")
	assert.Contains(t, body, "5 Oct 2026")
	assert.Contains(t, body, "<span>Mary</span>")

	recs := console.Store().Search("mary.jackson")
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Member)
	assert.True(t, recs[0].NotifyMember)
	assert.Equal(t, []string{"SAMPLE - Board Members"}, recs[0].Groups)
}

func TestConsole_AdvancedSearch(t *testing.T) {
	_, c := newTestConsole(t)
	c.login()

	_, body := c.get("/admin/contacts/advanced")
	assert.Contains(t, body, `<span id="`+pages.IDInnerHeader+`">Contacts -</span>`)
	assert.Contains(t, body, `<span id="`+pages.IDInnerHeaderAlternate+`">Advanced search</span>`)
	assert.Contains(t, body, "Add criteria")
	assert.NotContains(t, body, "Clear all", "no criteria yet")

	_, body = c.get("/admin/contacts/advanced?add=Email")
	assert.Contains(t, body, "Clear all")
	assert.Contains(t, body, `id="`+pages.CriteriaInputID(0)+`"`)

	resp, _ := c.get("/admin/contacts/advanced?add=Shoe+size")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body = c.post("/admin/contacts/advanced", url.Values{"criterion": {"@test"}, "action": {"search"}})
	assert.Contains(t, body, `<span id="`+pages.IDRecordsFound+`">6</span>`)
	assert.Equal(t, 6, strings.Count(body, `class="HyperLink bold"`))
	assert.Contains(t, body, `title="Liskov, Barbara"`, "advanced search includes archived contacts")

	_, body = c.get("/admin/contacts/advanced")
	assert.Contains(t, body, `value="@test"`, "criteria are kept for the session")
	assert.NotContains(t, body, pages.IDRecordsFound)

	_, body = c.get("/admin/contacts/advanced?clear=1")
	assert.NotContains(t, body, "Clear all")
	assert.NotContains(t, body, pages.CriteriaInputID(0))

	_, body = c.get("/admin/contacts/advanced?add=First+name&add=Last+name")
	assert.Contains(t, body, pages.CriteriaInputID(0))
	assert.Contains(t, body, pages.CriteriaInputID(1))

	_, body = c.post("/admin/contacts/advanced", url.Values{"criterion": {"Grace", "Hopper"}, "action": {"search"}})
	assert.Contains(t, body, `<span id="`+pages.IDRecordsFound+`">1</span>`)
	assert.Contains(t, body, `title="Hopper, Grace"`)
}

func TestConsole_SavedSearch(t *testing.T) {
	console, c := newTestConsole(t)
	c.login()

	c.get("/admin/contacts/advanced?add=Email")
	_, body := c.post("/admin/contacts/advanced", url.Values{
		"criterion":       {"@test"},
		"action":          {"save"},
		"savedSearchName": {"@test-1a2b3c4d"},
	})
	assert.Contains(t, body, "Saved search &#34;@test-1a2b3c4d&#34;")

	ss, ok := console.Store().SavedSearch("@test-1a2b3c4d")
	require.True(t, ok)
	assert.Equal(t, []fakeconsole.Criterion{{Field: "Email", Value: "@test"}}, ss.Criteria)

	_, body = c.get("/admin/contacts/saved")
	assert.Contains(t, body, "<td>@test-1a2b3c4d</td>")
	assert.Contains(t, body, `<input type="submit" value="Run">`)

	c.get("/admin/contacts/advanced?clear=1")
	_, body = c.post("/admin/contacts/saved/run", url.Values{"name": {"@test-1a2b3c4d"}})
	assert.Contains(t, body, `<span id="`+pages.IDRecordsFound+`">6</span>`)

	resp, _ := c.post("/admin/contacts/saved/run", url.Values{"name": {"missing"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConsole_ArchiveAndDelete(t *testing.T) {
	console, c := newTestConsole(t)
	c.login()

	target := console.Store().Search("hopper")[0]
	path := "/admin/contacts/" + target.ID.String()

	resp, _ := c.post(path+"/archive", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, path, resp.Header.Get("Location"))
	assert.Empty(t, console.Store().Search("hopper"))

	_, body := c.get(path)
	assert.Contains(t, body, `data-toolbar="Delete"`)
	assert.Contains(t, body, "This contact is archived.")

	resp, _ = c.post(path+"/delete", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/contacts/advanced", resp.Header.Get("Location"))

	_, ok := console.Store().Get(target.ID)
	assert.False(t, ok)

	resp, _ = c.get(path)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = c.get("/admin/contacts/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConsole_ScreensPingAnalytics(t *testing.T) {
	console, c := newTestConsole(t)
	c.login()

	for _, path := range []string{
		"/admin/home", "/admin/contacts", "/admin/contacts/new", "/admin/contacts/advanced",
		"/admin/contacts/saved", "/admin/contacts/import", "/admin/contacts/fields",
	} {
		_, body := c.get(path)
		assert.Regexp(t, `fetch\("\\?/rte\\?/v1\\?/command"`, body, path)
	}

	resp, body := c.post(fakeconsole.AnalyticsCommandPath, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	assert.Equal(t, 1, console.RequestLog().Count(http.MethodPost, fakeconsole.AnalyticsCommandPath))
	assert.Equal(t, 1, console.RequestLog().Count(http.MethodGet, "/admin/contacts/advanced"))
}

func TestConsole_RequestLogSkipsPaths(t *testing.T) {
	console := fakeconsole.New(fakeconsole.Options{
		RequestLogSkipPaths: []string{fakeconsole.AnalyticsCommandPath},
	})
	server := httptest.NewServer(console)
	t.Cleanup(server.Close)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Post(server.URL+fakeconsole.AnalyticsCommandPath, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "skipped paths are still served")

	resp, err = client.Get(server.URL + "/admin/contacts")
	require.NoError(t, err)
	resp.Body.Close()

	requests := console.RequestLog().Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodGet, requests[0].Method)
	assert.Equal(t, "/admin/contacts", requests[0].Path)
	assert.Equal(t, http.StatusSeeOther, requests[0].StatusCode)
	assert.False(t, requests[0].ResponseTime.Before(requests[0].RequestTime))
}
