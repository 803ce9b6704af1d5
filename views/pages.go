// Package views holds the server-rendered pages of the dashboard.
package views

import (
	"github.com/a-h/templ"
	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"
)

// Login renders the sign-in form.
func Login(v LoginPage) templ.Component {
	return Component(layout(layoutProps{Site: v.Site, Title: "Sign in"},
		Main(Class("auth"),
			H1(g.Text("Sign in")),
			formError(v.Error),
			FormEl(Method("post"), Action("/login/"),
				csrfField(v.CSRFToken),
				field("Email", "email", "email", v.Email, ""),
				field("Password", "password", "password", "", ""),
				Button(Type("submit"), g.Text("Sign in")),
			),
			g.If(v.AllowSignup,
				P(g.Text("No account? "), A(Href("/register/"), g.Text("Register"))),
			),
		),
	))
}

// Register renders the sign-up form.
func Register(v RegisterPage) templ.Component {
	return Component(layout(layoutProps{Site: v.Site, Title: "Register"},
		Main(Class("auth"),
			H1(g.Text("Create an account")),
			FormEl(Method("post"), Action("/register/"),
				csrfField(v.CSRFToken),
				field("First name", "text", "firstName", v.Values.FirstName, v.Errors["firstName"]),
				field("Last name", "text", "lastName", v.Values.LastName, v.Errors["lastName"]),
				field("Email", "email", "email", v.Values.Email, v.Errors["email"]),
				field("Password", "password", "password", "", v.Errors["password"]),
				field("Confirm password", "password", "confirmPassword", "", v.Errors["confirmPassword"]),
				Label(
					Input(Type("checkbox"), Name("terms"), Value("true"), g.If(v.Values.Terms, Checked())),
					g.Text(" I accept the terms and conditions"),
				),
				fieldError(v.Errors["terms"]),
				formError(v.Errors["form"]),
				Button(Type("submit"), g.Text("Register")),
			),
			P(g.Text("Already registered? "), A(Href("/login/"), g.Text("Sign in"))),
		),
	))
}

// Dashboard renders the guarded shell. It listens on the session event
// stream and returns to the login page once the session is signed out.
func Dashboard(v DashboardPage) templ.Component {
	links := make([]g.Node, 0, len(v.Sections))
	for _, s := range v.Sections {
		links = append(links, Li(A(Href(s.Path), g.Text(s.Title))))
	}
	return Component(layout(layoutProps{
		Site:      v.Site,
		Title:     "Dashboard",
		BodyAttrs: []g.Node{g.Attr("data-session-events", "/admin/api/session/events")},
	},
		Header(
			Strong(g.Text(v.Site.Name)),
			Span(Class("user"), g.Text(v.User.FullName)),
			FormEl(Method("post"), Action("/logout/"),
				csrfField(v.CSRFToken),
				Button(Type("submit"), g.Text("Sign out")),
			),
		),
		Nav(Ul(links...)),
		Main(
			H1(g.Text("Overview")),
			Div(ID("stats"), g.Attr("data-fragment", "/admin/api/stats/fragment"),
				Div(Class("loading"), g.Text("Loading…")),
			),
		),
	))
}

// NotFound renders the 404 page.
func NotFound(site SiteConfig) templ.Component {
	return Component(layout(layoutProps{Site: site, Title: "Not found"},
		Main(Class("error"),
			H1(g.Text("404")),
			P(g.Text("The page you are looking for does not exist.")),
			A(Href("/admin/"), g.Text("Back to the dashboard")),
		),
	))
}

// ServerError renders the 5xx page.
func ServerError(site SiteConfig) templ.Component {
	return Component(layout(layoutProps{Site: site, Title: "Error"},
		Main(Class("error"),
			H1(g.Text("Something went wrong")),
			P(g.Text("Please try again in a moment.")),
		),
	))
}
