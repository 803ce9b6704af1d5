package contentdesk

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/contentdesk/auth"
)

// handleSessionEvents streams session changes to the open dashboard. It
// subscribes when the stream opens and unsubscribes when the client goes
// away. A sign-out or expiry of the viewer's own session sends one
// signed_out event and ends the stream.
func (a *App) handleSessionEvents(c echo.Context) error {
	s := CurrentSession(c)

	signedOut := make(chan struct{}, 1)
	sub := a.Auth.OnSessionChange(func(ev auth.Event) {
		if ev.Type != auth.SignedOut || ev.SessionID != s.ID {
			return
		}
		select {
		case signedOut <- struct{}{}:
		default:
		}
	})
	defer sub.Unsubscribe()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := writeEvent(w, "ready", `{"session":"`+s.ID+`"}`); err != nil {
		return nil
	}

	heartbeat := time.NewTicker(a.heartbeat)
	defer heartbeat.Stop()
	expiry := time.NewTimer(time.Until(s.ExpiresAt))
	defer expiry.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-signedOut:
			_ = writeEvent(w, string(auth.SignedOut), "{}")
			return nil
		case <-expiry.C:
			_ = writeEvent(w, string(auth.SignedOut), `{"reason":"expired"}`)
			return nil
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

func writeEvent(w *echo.Response, name, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	w.Flush()
	return nil
}
