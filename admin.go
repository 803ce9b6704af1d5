package contentdesk

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/contentdesk/auth"
	"github.com/eringen/contentdesk/logger"
	"github.com/eringen/contentdesk/views"
)

const tooManyAttempts = "Too many login attempts. Try again later."

func (a *App) handleLoginPage(c echo.Context) error {
	if s, err := a.Auth.CurrentSession(c.Request().Context(), accessToken(c)); err == nil && s != nil {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.Login(a.loginPage(c, "", "")))
}

func (a *App) loginPage(c echo.Context, email, msg string) views.LoginPage {
	return views.LoginPage{
		Site:        a.site(),
		CSRFToken:   CsrfToken(c),
		Email:       email,
		Error:       msg,
		AllowSignup: a.Config.AllowSignup,
	}
}

// signIn runs one rate-limited sign-in attempt. Only failures count
// against the caller's address.
func (a *App) signIn(c echo.Context, email, password string) (*auth.Session, error) {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		a.metrics.signIns.WithLabelValues("limited").Inc()
		return nil, echo.NewHTTPError(http.StatusTooManyRequests, tooManyAttempts)
	}
	s, err := a.Auth.SignIn(c.Request().Context(), email, password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		a.loginLimiter.Record(ip)
		a.metrics.signIns.WithLabelValues("invalid").Inc()
		return nil, err
	case err != nil:
		a.metrics.signIns.WithLabelValues("error").Inc()
		a.Log.Error("Sign-in failed", logger.Error(err))
		return nil, err
	}
	a.loginLimiter.Reset(ip)
	a.metrics.signIns.WithLabelValues("ok").Inc()
	a.Log.Info("Signed in", logger.String("user_id", s.User.ID), logger.String("session_id", s.ID))
	return s, nil
}

func (a *App) handleLogin(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	s, err := a.signIn(c, email, c.FormValue("password"))
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return c.String(he.Code, tooManyAttempts)
		}
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return Render(c, a.Views.Login(a.loginPage(c, email, "Invalid email or password")))
		}
		return err
	}
	if err := setAccessToken(c, s.AccessToken); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleRegisterPage(c echo.Context) error {
	if !a.Config.AllowSignup {
		return echo.ErrNotFound
	}
	return Render(c, a.Views.Register(views.RegisterPage{Site: a.site(), CSRFToken: CsrfToken(c)}))
}

func (a *App) handleRegister(c echo.Context) error {
	if !a.Config.AllowSignup {
		return echo.ErrNotFound
	}
	var r auth.Registration
	if err := c.Bind(&r); err != nil {
		return err
	}
	_, err := a.Auth.SignUp(c.Request().Context(), r)
	if err == nil {
		return c.Redirect(http.StatusSeeOther, "/login/")
	}

	page := views.RegisterPage{Site: a.site(), CSRFToken: CsrfToken(c), Values: r}
	var ferrs auth.FieldErrors
	switch {
	case errors.As(err, &ferrs):
		page.Errors = ferrs
	case errors.Is(err, auth.ErrEmailTaken):
		page.Errors = map[string]string{"email": "Email is already registered"}
	default:
		a.Log.Error("Sign-up failed", logger.Error(err))
		page.Errors = map[string]string{"form": err.Error()}
	}
	return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.Register(page))
}

func (a *App) handleLogout(c echo.Context) error {
	if err := a.Auth.SignOut(c.Request().Context(), accessToken(c)); err != nil {
		return err
	}
	if err := clearSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/login/")
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *App) handleAPISignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	s, err := a.signIn(c, req.Email, req.Password)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (a *App) handleAPISignUp(c echo.Context) error {
	if !a.Config.AllowSignup {
		return echo.ErrNotFound
	}
	var r auth.Registration
	if err := c.Bind(&r); err != nil {
		return err
	}
	u, err := a.Auth.SignUp(c.Request().Context(), r)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (a *App) handleAPISignOut(c echo.Context) error {
	if err := a.Auth.SignOut(c.Request().Context(), accessToken(c)); err != nil {
		return writeError(c, err)
	}
	if bearerToken(c) == "" {
		if err := clearSession(c); err != nil {
			return err
		}
	}
	return c.NoContent(http.StatusNoContent)
}
