package contentdesk

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/contentdesk/logger"
	"github.com/eringen/contentdesk/views"
)

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleDashboard(c echo.Context) error {
	s := CurrentSession(c)
	return Render(c, a.Views.Dashboard(views.DashboardPage{
		Site:      a.site(),
		CSRFToken: CsrfToken(c),
		User:      s.User,
		Sections: []views.NavLink{
			{Title: "Blogs", Path: "/admin/api/blogs"},
			{Title: "SEO Banners", Path: "/admin/api/seo-banners"},
			{Title: "Portfolios", Path: "/admin/api/portfolios"},
			{Title: "Contacts", Path: "/admin/api/contacts"},
			{Title: "Sitemap", Path: "/admin/sitemap.xml"},
		},
	}))
}

func handleSession(c echo.Context) error {
	return c.JSON(http.StatusOK, CurrentSession(c))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if code >= 500 {
		a.Log.Error("Server error",
			logger.String("method", c.Request().Method),
			logger.String("uri", c.Request().RequestURI),
			logger.Error(err),
		)
	}
	if isAPI(c) {
		_ = c.JSON(code, map[string]string{"error": msg})
		return
	}
	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, code, a.Views.NotFound(a.site()))
	case code >= 500:
		_ = RenderStatus(c, code, a.Views.ServerError(a.site()))
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}
