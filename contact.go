package contentdesk

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/contentdesk/content"
	"github.com/eringen/contentdesk/events"
	"github.com/eringen/contentdesk/store"
)

// handleContactSubmit stores a public contact-form entry. Submissions are
// rate limited per client address.
func (a *App) handleContactSubmit(c echo.Context) error {
	if !a.contactLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many submissions. Try again later.")
	}
	msg, err := bindValid(c, content.ValidateContactSubmission)
	if err != nil {
		return writeError(c, err)
	}
	msg.Meta = content.Meta{}
	saved, err := store.Create(c.Request().Context(), a.Docs, content.ContactsCollection, msg)
	if err != nil {
		return writeError(c, err)
	}
	a.documentWritten(content.ContactsCollection, "insert", events.DocumentCreated, saved.ID)
	return c.JSON(http.StatusCreated, map[string]int64{"id": saved.ID})
}
