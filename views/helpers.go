package views

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"
	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"
)

// Component adapts a node tree to the templ.Component the handlers render.
func Component(n g.Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return n.Render(w)
	})
}

type layoutProps struct {
	Site      SiteConfig
	Title     string
	BodyAttrs []g.Node
}

func layout(props layoutProps, children ...g.Node) g.Node {
	body := append([]g.Node{}, props.BodyAttrs...)
	body = append(body, children...)
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				Meta(Name("robots"), Content("noindex, nofollow")),
				TitleEl(g.Text(props.Title+" | "+props.Site.Name)),
				Link(Rel("stylesheet"), Href("/public/dashboard.css")),
				Script(Src("/public/dashboard.js"), Defer()),
			),
			Body(body...),
		),
	)
}

func csrfField(token string) g.Node {
	return Input(Type("hidden"), Name("_csrf"), Value(token))
}

// field is a labelled input followed by its error message, if any.
// Passwords are never echoed back.
func field(label, typ, name, value, errMsg string) g.Node {
	return g.Group([]g.Node{
		Label(
			g.Text(label),
			Input(Type(typ), Name(name), g.If(typ != "password", Value(value))),
		),
		fieldError(errMsg),
	})
}

func fieldError(msg string) g.Node {
	return g.If(msg != "", P(Class("field-error"), g.Text(msg)))
}

func formError(msg string) g.Node {
	return g.If(msg != "", P(Class("form-error"), Role("alert"), g.Text(msg)))
}

// PathEscape wraps url.PathEscape for use in links.
func PathEscape(s string) string {
	return url.PathEscape(s)
}
