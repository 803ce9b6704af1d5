package views

import "github.com/eringen/contentdesk/auth"

// SiteConfig carries the site-wide settings every page needs.
type SiteConfig struct {
	Name string
	URL  string
}

// LoginPage is the sign-in form. Error is shown above the form when set.
type LoginPage struct {
	Site        SiteConfig
	CSRFToken   string
	Email       string
	Error       string
	AllowSignup bool
}

// RegisterPage is the sign-up form with per-field errors keyed by json name.
type RegisterPage struct {
	Site      SiteConfig
	CSRFToken string
	Values    auth.Registration
	Errors    map[string]string
}

// NavLink links one collection from the dashboard shell.
type NavLink struct {
	Title string
	Path  string
}

// DashboardPage is the guarded shell. Statistics load into it as a fragment.
type DashboardPage struct {
	Site      SiteConfig
	CSRFToken string
	User      auth.User
	Sections  []NavLink
}
