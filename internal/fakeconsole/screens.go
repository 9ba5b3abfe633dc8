package fakeconsole

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/networkteam/crmsuite/pages"
)

// --- Login

func loginPage(v loginView) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Log in</title></head>
<body>
<form method="post" action="/login">
<h1>Member login</h1>
`)
		if v.Error != "" {
			m.raw(`<p class="validation">`)
			m.text(v.Error)
			m.raw("</p>\n")
		}
		m.raw(`<p><label for="`, pages.IDLoginUserName, `">Email</label>
<input type="text" id="`, pages.IDLoginUserName, `" name="userName"`)
		m.attr("value", v.UserName)
		m.raw(`></p>
<p><label for="`, pages.IDLoginPassword, `">Password</label>
<input type="password" id="`, pages.IDLoginPassword, `" name="password"></p>
<button type="submit">Log in</button>
</form>
</body>
</html>
`)
	})
}

func memberPage(v loginView) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Member area</title></head>
<body>
<p>Logged in as `)
		m.text(v.UserName)
		m.raw(`</p>
<a href="/admin">Admin view</a>
</body>
</html>
`)
	})
}

// --- Admin shell and dialogs

func shellPage(v shellView) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Admin view</title>
<style>
.hidden { display: none; }
#contentarea { width: 100%; height: 640px; border: 0; }
#criteriaDialog { position: fixed; top: 80px; left: 25%; width: 50%; height: 360px; background: #fff; border: 1px solid #888; }
</style>
</head>
<body>
<nav>
<a href="/admin/contacts" target="contentarea">Contacts</a>
<a href="/admin/contacts" target="contentarea">List</a>
<a href="/admin/contacts/advanced" target="contentarea">Advanced search</a>
<a href="/admin/contacts/saved" target="contentarea">Saved searches</a>
<a href="/admin/contacts/import" target="contentarea">Import</a>
<a href="/admin/contacts/fields" target="contentarea">Contact fields</a>
</nav>
<div class="toolbar">
`)
		for _, b := range v.Toolbar {
			m.raw(`<button type="button" class="hidden"`)
			m.attr("data-button", b)
			m.raw(">")
			m.text(b)
			m.raw("</button>\n")
		}
		m.raw(`</div>
<iframe name="contentarea" id="contentarea" src="/admin/home" title="Content"></iframe>
<iframe name="`, pages.CriteriaDialogFrameName, `" id="criteriaDialog" class="hidden" title="Add criteria"></iframe>
<script>
const deleteConfirmation = `)
		m.json(v.DeleteConfirmation)
		m.raw(";\n", shellScript, "</script>\n</body>\n</html>\n")
	})
}

const shellScript = `const content = document.getElementById("contentarea");
const dialog = document.getElementById("criteriaDialog");
const buttons = Array.from(document.querySelectorAll(".toolbar button"));

function navigate(url) {
  content.contentWindow.location.href = url;
}

function submitContentForm(id) {
  content.contentDocument.getElementById(id).submit();
}

function saveForm() {
  const w = content.contentWindow;
  const message = w.validateContactForm ? w.validateContactForm() : "";
  if (message) {
    alert(message);
    return;
  }
  w.document.getElementById("contactForm").submit();
}

const actions = {
  "Add contact": function () { navigate("/admin/contacts/new"); },
  "Add member": function () { navigate("/admin/contacts/new?member=1"); },
  "Save": saveForm,
  "Archive": function () { submitContentForm("archiveForm"); },
  "Delete": function () {
    if (confirm(deleteConfirmation)) {
      submitContentForm("deleteForm");
    }
  }
};

buttons.forEach(function (b) {
  b.addEventListener("click", function () { actions[b.dataset.button](); });
});

content.addEventListener("load", function () {
  const body = content.contentDocument && content.contentDocument.body;
  const visible = body && body.dataset.toolbar ? body.dataset.toolbar.split(",") : [];
  buttons.forEach(function (b) {
    b.classList.toggle("hidden", !visible.includes(b.dataset.button));
  });
});

window.openCriteriaDialog = function () {
  dialog.src = "/admin/criteria?ts=" + Date.now();
  dialog.classList.remove("hidden");
};

window.addCriteria = function (fields) {
  dialog.classList.add("hidden");
  if (fields.length === 0) {
    return;
  }
  const params = new URLSearchParams();
  fields.forEach(function (f) { params.append("add", f); });
  navigate("/admin/contacts/advanced?" + params.toString());
};
`

func criteriaDialogPage() templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Add criteria</title></head>
<body>
<h2>Add criteria</h2>
<iframe name="`, pages.CriteriaFieldsFrameName, `" src="/admin/criteria/fields" title="Fields"></iframe>
<p>
<button type="button" id="ok">OK</button>
<button type="button" id="cancel">Cancel</button>
</p>
<script>
document.getElementById("ok").addEventListener("click", function () {
  const checked = frames[0].document.querySelectorAll("input[type=checkbox]:checked");
  parent.addCriteria(Array.from(checked, function (el) { return el.value; }));
});
document.getElementById("cancel").addEventListener("click", function () {
  parent.addCriteria([]);
});
</script>
</body>
</html>
`)
	})
}

func criteriaFieldsPage(v criteriaFieldsView) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Fields</title></head>
<body>
<ul>
`)
		for _, f := range v.Fields {
			m.raw(`<li><label><input type="checkbox"`)
			m.attr("value", f)
			m.raw("> ")
			m.text(f)
			m.raw("</label></li>\n")
		}
		m.raw("</ul>\n</body>\n</html>\n")
	})
}

func uploaderPage() templ.Component {
	return templ.Raw(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Upload</title></head>
<body>
<button type="button">Choose File</button> <span>No file chosen</span>
</body>
</html>
`)
}

// --- Content screen layout

// contentScreen is the layout of every screen shown in the content frame. It
// renders its children between the header and the analytics ping.
func contentScreen(s screen) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		m.raw(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>`)
		m.text(s.Header + " " + s.Alternate)
		m.raw(`</title>
<style>
.hidden { display: none; }
.validation { color: #b00020; }
.genericListTable tbody tr { cursor: pointer; }
</style>
</head>
<body`)
		m.attr("data-toolbar", s.Toolbar)
		m.raw(">\n<h1><span id=\"", pages.IDInnerHeader, `">`)
		m.text(s.Header)
		m.raw(`</span> <span id="`, pages.IDInnerHeaderAlternate, `">`)
		m.text(s.Alternate)
		m.raw("</span></h1>\n")
		if s.Tab != "" {
			m.render(ctx, tabs(s.Tab))
		}

		m.render(ctx, templ.GetChildren(ctx))

		m.raw("<script>\nfetch(")
		m.json(s.AnalyticsPath)
		m.raw(`, {
  method: "POST",
  headers: {"Content-Type": "application/json"},
  body: JSON.stringify({type: "page", screen: `)
		m.json(s.Name)
		m.raw(`, url: location.pathname})
});
</script>
</body>
</html>
`)
	})
}

func tabs(selected string) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<div role="tablist">` + "\n")
		for _, t := range []struct{ key, href, label string }{
			{"list", "/admin/contacts", "List"},
			{"advanced", "/admin/contacts/advanced", "Advanced search"},
			{"saved", "/admin/contacts/saved", "Saved searches"},
		} {
			m.raw(`<a role="tab" href="`, t.href, `"`)
			if t.key == selected {
				m.raw(` aria-selected="true"`)
			}
			m.raw(">", t.label, "</a>\n")
		}
		m.raw("</div>\n")
	})
}

func simpleScreen(v simpleView) templ.Component {
	return inScreen(v.screen, component(func(_ context.Context, m *markup) {
		m.raw("<p>")
		m.text(v.Text)
		m.raw("</p>\n")
	}))
}

// --- List and detail

func listScreen(v listView) templ.Component {
	return inScreen(v.screen, component(func(ctx context.Context, m *markup) {
		m.raw(`<div class="tab-content">
<p><input type="text" id="`, pages.IDSearchBox, `"`)
		m.attr("value", v.Query)
		m.raw(` placeholder="Search contacts" autocomplete="off"></p>
<table class="`, pages.ClassResultTable, `">
<thead><tr><th>Name</th><th>Email</th><th>Organization</th></tr></thead>
<tbody id="results">`)
		m.render(ctx, listRows(v.Rows))
		m.raw(`</tbody>
</table>
</div>
<script>
const box = document.getElementById(`)
		m.json(pages.IDSearchBox)
		m.raw(`);
let pending;
box.addEventListener("input", function () {
  clearTimeout(pending);
  pending = setTimeout(async function () {
    const resp = await fetch("/admin/contacts/rows?q=" + encodeURIComponent(box.value));
    document.getElementById("results").innerHTML = await resp.text();
  }, 150);
});
</script>
`)
	}))
}

// resultRow renders one clickable result row whose first cell links the
// record with the given link class.
func resultRow(m *markup, rec Record, linkClass string, cells ...string) {
	href := "/admin/contacts/" + rec.ID.String()
	m.raw(`<tr data-href="`, href, `" onclick="location.href = this.dataset.href">`+"\n")
	m.raw(`<td><a class="HyperLink `, linkClass, `"`)
	m.attr("title", rec.ListName())
	m.raw(` href="`, href, `">`)
	m.text(rec.ListName())
	m.raw("</a></td>\n")
	for _, c := range cells {
		m.raw("<td>")
		m.text(c)
		m.raw("</td>\n")
	}
	m.raw("</tr>\n")
}

func listRows(rows []Record) templ.Component {
	return component(func(_ context.Context, m *markup) {
		for _, rec := range rows {
			resultRow(m, rec, pages.ClassSimpleResultLink, rec.Email, rec.Company)
		}
	})
}

func detailScreen(v detailView) templ.Component {
	rec := v.Record
	return inScreen(v.screen, component(func(ctx context.Context, m *markup) {
		if rec.Archived {
			m.raw(`<p class="archived">This contact is archived.</p>` + "\n")
		}
		if rec.Member {
			m.raw(`<div role="tablist">
<a role="tab" href="#panel-membership" data-panel="panel-membership" aria-selected="true">Membership details</a>
<a role="tab" href="#panel-contact" data-panel="panel-contact">Contact details</a>
</div>
<div id="panel-membership" class="tab-panel">
<dl class="membership">
<dt>Membership level</dt><dd>`)
			m.text(levelName(rec.MembershipLevel))
			m.raw("</dd>\n<dt>Member since</dt><dd>")
			if !rec.MemberSince.IsZero() {
				m.text(rec.MemberSince.Format("2 Jan 2006"))
			}
			m.raw("</dd>\n<dt>Groups</dt><dd>")
			for _, g := range rec.Groups {
				m.raw("<span>")
				m.text(g)
				m.raw("</span> ")
			}
			m.raw(`</dd>
</dl>
</div>
<div id="panel-contact" class="tab-panel hidden">
`)
			m.render(ctx, contactFields(rec))
			m.raw("</div>\n<script>\n", detailTabsScript, "</script>\n")
		} else {
			m.render(ctx, contactFields(rec))
		}
		base := "/admin/contacts/" + rec.ID.String()
		m.raw(`<form id="archiveForm" method="post" action="`, base, `/archive"></form>
<form id="deleteForm" method="post" action="`, base, `/delete"></form>
`)
	}))
}

const detailTabsScript = `document.querySelectorAll("[role=tab]").forEach(function (tab) {
  tab.addEventListener("click", function (ev) {
    ev.preventDefault();
    document.querySelectorAll(".tab-panel").forEach(function (p) {
      p.classList.toggle("hidden", p.id !== tab.dataset.panel);
    });
    document.querySelectorAll("[role=tab]").forEach(function (t) {
      t.setAttribute("aria-selected", t === tab ? "true" : "false");
    });
  });
});
`

func labeledText(label, value string) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<div class="labeledTextContainer"><label>`)
		m.text(label)
		m.raw(`</label><div class="fieldBody"><span>`)
		m.text(value)
		m.raw("</span></div></div>\n")
	})
}

func contactFields(rec Record) templ.Component {
	return templ.Join(
		labeledText("First name", rec.FirstName),
		labeledText("Last name", rec.LastName),
		labeledText("Organization", rec.Company),
		labeledText("Email", rec.Email),
		labeledText("Phone", rec.Phone),
	)
}

// --- Contact form

// formScriptConfig is handed to the form script as a JSON literal.
type formScriptConfig struct {
	IDs              map[string]string `json:"ids"`
	EmptyContactForm string            `json:"emptyContactForm"`
	PasswordPattern  string            `json:"passwordPattern"`
	EmailPattern     string            `json:"emailPattern"`
}

func contactFormScreen(v formView) templ.Component {
	return inScreen(v.screen, component(func(ctx context.Context, m *markup) {
		m.raw(`<form id="contactForm" method="post" action="/admin/contacts/new">` + "\n")
		if v.Member {
			m.render(ctx, membershipFieldset(v))
		}
		m.raw(`<fieldset>
<legend>Password</legend>
<p><label for="`, pages.IDPasswordInput, `">Password</label>
<input type="password" id="`, pages.IDPasswordInput, `" name="password">
<span id="`, pages.IDPasswordComplexity, `" class="validation hidden">`)
		m.text(v.Messages.PasswordComplexity)
		m.raw(`</span></p>
<p><label for="`, pages.IDConfirmPasswordInput, `">Confirm password</label>
<input type="password" id="`, pages.IDConfirmPasswordInput, `" name="confirmPassword">
<span id="`, pages.IDPasswordMismatch, `" class="validation hidden">`)
		m.text(v.Messages.PasswordMismatch)
		m.raw(`</span></p>
</fieldset>
<fieldset>
<legend>Contact details</legend>
<p><label for="`, pages.IDFirstNameInput, `">First name</label>
<input type="text" id="`, pages.IDFirstNameInput, `" name="firstName"></p>
<p><label for="`, pages.IDLastNameInput, `">Last name</label>
<input type="text" id="`, pages.IDLastNameInput, `" name="lastName"></p>
<p><label for="`, pages.IDOrganizationInput, `">Organization</label>
<input type="text" id="`, pages.IDOrganizationInput, `" name="organization"></p>
<p><label for="`, pages.IDEmailInput, `">Email</label>
<input type="text" id="`, pages.IDEmailInput, `" name="email">
<span id="`, pages.IDInvalidEmail, `" class="validation hidden">`)
		m.text(v.Messages.InvalidEmail)
		m.raw(`</span></p>
<p><label for="`, pages.IDPhoneInput, `">Phone</label>
<input type="text" id="`, pages.IDPhoneInput, `" name="phone"></p>
<p>Photo <iframe name="`, pages.UploaderFrameName, `" src="/admin/uploader" title="Photo upload"></iframe></p>
<p><label><input type="checkbox" name="terms" value="1"> I confirm I have read and accept the terms of use</label></p>
</fieldset>
</form>
<script>
const cfg = `)
		m.json(formScriptConfig{
			IDs:              elementIDs,
			EmptyContactForm: v.Messages.EmptyContactForm,
			PasswordPattern:  v.PasswordPattern,
			EmailPattern:     v.EmailPattern,
		})
		m.raw(";\n", formScript, "</script>\n")
	}))
}

func membershipFieldset(v formView) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<input type="hidden" name="member" value="1">
<fieldset>
<legend>Membership</legend>
<p><label for="`, pages.IDMembershipLevel, `">Membership level</label>
<select id="`, pages.IDMembershipLevel, `" name="membershipLevel">
`)
		for _, l := range v.Levels {
			m.raw("<option")
			m.attr("value", l.Value)
			m.raw(">")
			m.text(l.Label)
			m.raw("</option>\n")
		}
		m.raw(`</select></p>
<p><label><input type="checkbox" id="`, pages.IDNotifyMember, `" name="notifyMember" value="1"> Send notification email to member</label></p>
<div class="datePicker">
<label for="memberSince">Member since</label>
<input type="text" id="memberSince" name="memberSince" readonly>
<span id="`, pages.IDMemberSinceToggle, `" role="button" tabindex="0" title="Pick a date">&#128197;</span>
<table id="`, pages.IDMemberSinceWeekRows, `" class="hidden">
<caption>`)
		m.text(v.Month)
		m.raw("</caption>\n")
		for _, week := range v.Weeks {
			m.raw("<tr>")
			for _, day := range week {
				if day.Day == 0 {
					m.raw("<td></td>")
					continue
				}
				m.raw(`<td class="DES_CalDay"`)
				m.attr("data-date", day.Date)
				m.raw(">", strconv.Itoa(day.Day), "</td>")
			}
			m.raw("</tr>\n")
		}
		m.raw(`</table>
</div>
<p><label><input type="checkbox" name="group" value="SAMPLE - Board Members"> SAMPLE - Board Members</label></p>
</fieldset>
`)
	})
}

const formScript = `const ids = cfg.ids;
const complexPassword = new RegExp(cfg.passwordPattern);
const validEmail = new RegExp(cfg.emailPattern);

function byId(id) {
  return document.getElementById(id);
}

function show(el, visible) {
  el.classList.toggle("hidden", !visible);
}

function validatePasswords() {
  const password = byId(ids.password).value;
  const confirm = byId(ids.confirm).value;
  const weak = password !== "" && !complexPassword.test(password);
  show(byId(ids.complexity), weak);
  show(byId(ids.mismatch), !weak && password !== "" && confirm !== "" && password !== confirm);
}

function validateEmail() {
  const email = byId(ids.email).value;
  show(byId(ids.invalidEmail), email !== "" && !validEmail.test(email));
}

[ids.password, ids.confirm].forEach(function (id) {
  byId(id).addEventListener("blur", validatePasswords);
  byId(id).addEventListener("change", validatePasswords);
});
byId(ids.email).addEventListener("blur", validateEmail);
byId(ids.email).addEventListener("change", validateEmail);

window.validateContactForm = function () {
  const filled = [ids.firstName, ids.lastName, ids.organization, ids.email].some(function (id) {
    return byId(id).value.trim() !== "";
  });
  return filled ? "" : cfg.emptyContactForm;
};

const toggle = byId(ids.toggle);
if (toggle) {
  const weeks = byId(ids.weeks);
  toggle.addEventListener("click", function () {
    show(weeks, weeks.classList.contains("hidden"));
  });
  weeks.querySelectorAll(".DES_CalDay").forEach(function (day) {
    day.addEventListener("click", function () {
      byId("memberSince").value = day.dataset.date;
      show(weeks, false);
    });
  });
}
`

// --- Advanced and saved searches

func advancedScreen(v advancedView) templ.Component {
	return inScreen(v.screen, component(func(ctx context.Context, m *markup) {
		m.raw(`<div class="tab-content">
<p class="criteriaLinks">
`)
		if len(v.Criteria) > 0 {
			m.raw(`<a href="/admin/contacts/advanced?clear=1">Clear all</a>` + "\n")
		}
		m.raw(`<a href="#" onclick="parent.openCriteriaDialog(); return false;">Add criteria</a>
</p>
<form method="post" action="/admin/contacts/advanced">
<table class="criteriaList">
`)
		for i, c := range v.Criteria {
			id := pages.CriteriaInputID(i)
			m.raw(`<tr>
<td><label for="`, id, `">`)
			m.text(c.Field)
			m.raw(` contains</label></td>
<td><input type="text" id="`, id, `" name="criterion"`)
			m.attr("value", c.Value)
			m.raw("></td>\n</tr>\n")
		}
		m.raw(`</table>
<p><button type="submit" name="action" value="search">Search</button></p>
<p><label for="`, pages.IDSavedSearchName, `">Save search as</label>
<input type="text" id="`, pages.IDSavedSearchName, `" name="savedSearchName">
<button type="submit" name="action" value="save">Save</button></p>
`)
		if v.Message != "" {
			m.raw(`<p class="message">`)
			m.text(v.Message)
			m.raw("</p>\n")
		}
		m.raw("</form>\n")
		if v.Searched {
			m.raw(`<p>Records found: <span id="`, pages.IDRecordsFound, `">`, strconv.Itoa(len(v.Results)), "</span></p>\n")
		}
		m.raw(`<table class="`, pages.ClassResultTable, `">
<thead><tr><th>Name</th><th>Email</th><th>Status</th></tr></thead>
<tbody>
`)
		for _, rec := range v.Results {
			status := "Active"
			if rec.Archived {
				status = "Archived"
			}
			resultRow(m, rec, pages.ClassAdvancedResultLink, rec.Email, status)
		}
		m.raw("</tbody>\n</table>\n</div>\n")
	}))
}

func savedScreen(v savedView) templ.Component {
	return inScreen(v.screen, component(func(_ context.Context, m *markup) {
		m.raw(`<div class="tab-content">
<table class="`, pages.ClassResultTable, `">
<thead><tr><th>Name</th><th>Criteria</th><th></th></tr></thead>
<tbody>
`)
		for _, ss := range v.Searches {
			m.raw("<tr>\n<td>")
			m.text(ss.Name)
			m.raw("</td>\n<td>")
			for _, c := range ss.Criteria {
				m.raw("<span>")
				m.text(c.Field + ` contains "` + c.Value + `"`)
				m.raw("</span> ")
			}
			m.raw(`</td>
<td><form method="post" action="/admin/contacts/saved/run">
<input type="hidden" name="name"`)
			m.attr("value", ss.Name)
			m.raw(`>
<input type="submit" value="Run">
</form></td>
</tr>
`)
		}
		m.raw("</tbody>\n</table>\n</div>\n")
	}))
}
