package contentdesk

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/contentdesk/auth"
	"github.com/eringen/contentdesk/content"
	"github.com/eringen/contentdesk/logger"
	"github.com/eringen/contentdesk/store"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "Secret123"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()

	docs, err := store.OpenSQLite(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { docs.Close() })

	provider, err := auth.NewLocal(docs.DB(), auth.NewTokenManager("test-jwt-secret", "contentdesk"), time.Hour,
		auth.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)

	app := New(SiteConfig{
		SessionSecret: "test-session-secret",
		JWTSecret:     "test-jwt-secret",
		MediaBackend:  "disk",
		UploadDir:     filepath.Join(dir, "uploads"),
		AllowSignup:   true,
	}, WithDocumentStore(docs), WithAuthProvider(provider), WithLogger(logger.NewNop()))
	require.NoError(t, app.Init(context.Background()))
	t.Cleanup(func() { app.Close() })

	_, err = provider.SignUp(context.Background(), auth.Registration{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           testEmail,
		Password:        testPassword,
		ConfirmPassword: testPassword,
		Terms:           true,
	})
	require.NoError(t, err)
	return app
}

// client drives the app in-process and keeps cookies between requests.
type client struct {
	t       *testing.T
	app     *App
	token   string
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, app *App) *client {
	return &client{t: t, app: app, cookies: map[string]*http.Cookie{}}
}

// signedIn returns a client carrying a bearer token.
func signedIn(t *testing.T, app *App) *client {
	t.Helper()
	s, err := app.Auth.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	cl := newClient(t, app)
	cl.token = s.AccessToken
	return cl
}

func (cl *client) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if cl.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+cl.token)
	}
	for _, ck := range cl.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	cl.app.Echo.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(cl.cookies, ck.Name)
			continue
		}
		cl.cookies[ck.Name] = ck
	}
	return rec
}

func (cl *client) json(method, target string, v any) *httptest.ResponseRecorder {
	var body io.Reader
	if v != nil {
		raw, err := json.Marshal(v)
		require.NoError(cl.t, err)
		body = bytes.NewReader(raw)
	}
	return cl.do(method, target, body, echo.MIMEApplicationJSON)
}

func (cl *client) form(target string, values url.Values) *httptest.ResponseRecorder {
	return cl.do(http.MethodPost, target, strings.NewReader(values.Encode()), echo.MIMEApplicationForm)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func validSEO() content.SEO {
	s := content.NewSEO()
	s.Title = "Title"
	s.Description = "Description"
	s.Keywords = "go, cms"
	s.CanonicalURL = "https://example.com/work"
	s.OpenGraph = content.OpenGraph{
		Title:       "OG",
		Description: "OG description",
		URL:         "https://example.com/work",
		Type:        content.DefaultOGType,
		Image:       "https://example.com/og.jpg",
	}
	return s
}

func validBanner() content.Banner {
	return content.Banner{
		Title:       "Banner",
		Description: "Banner text",
		VideoURL:    "https://example.com/hero.mp4",
		Poster:      "https://example.com/hero.jpg",
	}
}

func validDraft() content.PortfolioDraft {
	d := content.NewPortfolioDraft()
	d.SEO = validSEO()
	d.Banner = validBanner()
	d.Key = content.ImageGalleryKind
	d.Content.Card = content.Card{CardTitle: "Card", CTAText: "See more", PageURL: "work", CardBackgroundImage: "https://example.com/bg.jpg"}
	d.Content.ImageGallery = []content.ImageItem{{Image: "https://example.com/a.jpg", Alt: "A"}}
	d.Content.VideoGallery = []content.VideoItem{{Video: "https://example.com/v.mp4", Poster: "https://example.com/p.jpg"}}
	return d
}

func TestGuardRedirectsPagesAndRejectsAPI(t *testing.T) {
	app := newTestApp(t)
	cl := newClient(t, app)

	rec := cl.do(http.MethodGet, "/admin/", nil, "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login/", rec.Header().Get(echo.HeaderLocation))
	assert.NotContains(t, rec.Body.String(), "Overview")

	rec = cl.do(http.MethodGet, "/admin/api/blogs", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decode[map[string]string](t, rec)["error"])

	cl.token = "not-a-token"
	rec = cl.do(http.MethodGet, "/admin/api/session", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionEndpoint(t *testing.T) {
	app := newTestApp(t)
	rec := signedIn(t, app).do(http.MethodGet, "/admin/api/session", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	s := decode[auth.Session](t, rec)
	assert.Equal(t, testEmail, s.User.Email)
	assert.Equal(t, "Ada Lovelace", s.User.FullName)
	assert.Empty(t, s.AccessToken)
}

func TestLoginFormFlow(t *testing.T) {
	app := newTestApp(t)
	cl := newClient(t, app)

	rec := cl.do(http.MethodGet, "/login/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	csrf := cl.cookies["_csrf"]
	require.NotNil(t, csrf)

	rec = cl.form("/login/", url.Values{"_csrf": {csrf.Value}, "email": {testEmail}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")

	rec = cl.form("/login/", url.Values{"_csrf": {csrf.Value}, "email": {testEmail}, "password": {testPassword}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/", rec.Header().Get(echo.HeaderLocation))

	rec = cl.do(http.MethodGet, "/admin/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ada Lovelace")

	rec = cl.form("/logout/", url.Values{"_csrf": {csrf.Value}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = cl.do(http.MethodGet, "/admin/", nil, "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestLoginRequiresCSRF(t *testing.T) {
	app := newTestApp(t)
	rec := newClient(t, app).form("/login/", url.Values{"email": {testEmail}, "password": {testPassword}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAPISignInAndRateLimit(t *testing.T) {
	app := newTestApp(t)
	cl := newClient(t, app)

	rec := cl.json(http.MethodPost, "/api/auth/sign-in", signInRequest{Email: testEmail, Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	s := decode[auth.Session](t, rec)
	assert.NotEmpty(t, s.AccessToken)

	for i := 0; i < 5; i++ {
		rec = cl.json(http.MethodPost, "/api/auth/sign-in", signInRequest{Email: testEmail, Password: "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec = cl.json(http.MethodPost, "/api/auth/sign-in", signInRequest{Email: testEmail, Password: testPassword})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAPISignUp(t *testing.T) {
	app := newTestApp(t)
	cl := newClient(t, app)

	rec := cl.json(http.MethodPost, "/api/auth/sign-up", auth.Registration{
		FirstName: "G", LastName: "Hopper", Email: "grace@example.com",
		Password: "Secret123", ConfirmPassword: "Secret124", Terms: true,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decode[map[string]map[string]string](t, rec)["errors"]
	assert.Equal(t, "Too Short!", errs["firstName"])
	assert.Equal(t, "Passwords must match", errs["confirmPassword"])

	rec = cl.json(http.MethodPost, "/api/auth/sign-up", auth.Registration{
		FirstName: "Ada", LastName: "Lovelace", Email: testEmail,
		Password: testPassword, ConfirmPassword: testPassword, Terms: true,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPortfolioCreateStoresSelectedBranchOnly(t *testing.T) {
	app := newTestApp(t)
	cl := signedIn(t, app)

	rec := cl.json(http.MethodPost, "/admin/api/portfolios", validDraft())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decode[content.Portfolio](t, rec)
	require.NotZero(t, saved.ID)
	assert.Equal(t, content.ImageGalleryKind, saved.Key())

	raw, err := app.Docs.SelectOne(context.Background(), content.PortfolioCollection, saved.ID)
	require.NoError(t, err)
	var doc struct {
		Key     string                     `json:"key"`
		Content map[string]json.RawMessage `json:"content"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "imageGallery", doc.Key)
	assert.Len(t, doc.Content, 2)
	assert.Contains(t, doc.Content, "card")
	assert.Contains(t, doc.Content, "imageGallery")

	rec = cl.do(http.MethodGet, "/admin/api/portfolios/"+strconv.FormatInt(saved.ID, 10)+"/form", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	draft := decode[content.PortfolioDraft](t, rec)
	assert.Equal(t, content.ImageGalleryKind, draft.Key)
	assert.Equal(t, []content.ImageItem{{Image: "https://example.com/a.jpg", Alt: "A"}}, draft.Content.ImageGallery)
	assert.NotEmpty(t, draft.Content.VideoGallery)
}

func TestPortfolioValidationDoesNotWrite(t *testing.T) {
	app := newTestApp(t)
	cl := signedIn(t, app)

	d := validDraft()
	d.Content.ImageGallery = []content.ImageItem{{Image: "https://example.com/a.jpg"}}
	rec := cl.json(http.MethodPost, "/admin/api/portfolios", d)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decode[map[string]map[string]string](t, rec)["errors"]
	assert.Equal(t, "Alt text is required when image is provided", errs["content.imageGallery.0.alt"])

	all, err := app.Docs.SelectAll(context.Background(), content.PortfolioCollection, store.Newest)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBlogUpdateAndNotFound(t *testing.T) {
	app := newTestApp(t)
	cl := signedIn(t, app)

	rec := cl.do(http.MethodGet, "/admin/api/blogs/new", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	post := decode[content.BlogPost](t, rec)
	post.SEO = validSEO()
	post.Banner = validBanner()
	post.Content.Title = "Hello"
	post.Content.CTA = content.CTA{Slug: "hello", Text: "Read"}
	post.Content.Description[0].Text = "First paragraph"
	post.Content.Tags.List[0].Text = "go"

	rec = cl.json(http.MethodPost, "/admin/api/blogs", post)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decode[content.BlogPost](t, rec)

	saved.Content.Title = "Hello again"
	rec = cl.json(http.MethodPut, "/admin/api/blogs/"+strconv.FormatInt(saved.ID, 10), saved)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Hello again", decode[content.BlogPost](t, rec).Content.Title)

	rec = cl.json(http.MethodPut, "/admin/api/blogs/999", saved)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, store.ErrNotFound.Error(), decode[map[string]string](t, rec)["error"])

	rec = cl.do(http.MethodDelete, "/admin/api/blogs/999", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = cl.do(http.MethodGet, "/admin/api/blogs/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func seedContacts(t *testing.T, app *App, n int) []int64 {
	t.Helper()
	ids := make([]int64, n)
	for i := range ids {
		saved, err := store.Create(context.Background(), app.Docs, content.ContactsCollection, content.ContactSubmission{
			FirstName: "Visitor",
			LastName:  strconv.Itoa(i),
			Email:     "v" + strconv.Itoa(i) + "@example.com",
			Message:   "hello",
		})
		require.NoError(t, err)
		ids[i] = saved.ID
	}
	return ids
}

type contactPage = ListResponse[content.ContactSubmission]

func TestListPaginationAndState(t *testing.T) {
	app := newTestApp(t)
	seedContacts(t, app, 23)
	cl := signedIn(t, app)

	rec := cl.do(http.MethodGet, "/admin/api/contacts?pageSize=10&page=2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[contactPage](t, rec)
	assert.Equal(t, 23, page.Total)
	assert.Equal(t, 23, page.Filtered)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Rows, 3)

	rec = cl.do(http.MethodGet, "/admin/api/contacts?pageSize=5&page=1", nil, "")
	page = decode[contactPage](t, rec)
	assert.Equal(t, 0, page.Page, "a page-size change resets the page")
	assert.Equal(t, 5, page.PageSize)
	assert.Len(t, page.Rows, 5)

	rec = cl.do(http.MethodGet, "/admin/api/contacts?page=4", nil, "")
	page = decode[contactPage](t, rec)
	assert.Equal(t, 4, page.Page)
	assert.Len(t, page.Rows, 3)

	// The state lives in the cookie session and survives requests.
	rec = cl.do(http.MethodGet, "/admin/api/contacts", nil, "")
	page = decode[contactPage](t, rec)
	assert.Equal(t, 4, page.Page)
	assert.Equal(t, 5, page.PageSize)

	rec = cl.do(http.MethodGet, "/admin/api/contacts?q=V1", nil, "")
	page = decode[contactPage](t, rec)
	assert.Equal(t, 23, page.Total)
	assert.Equal(t, 11, page.Filtered, "v1@ and v10@ to v19@")
	assert.Equal(t, 4, page.Page, "the page is kept when the query narrows the list")
	assert.Empty(t, page.Rows)
	assert.Equal(t, 3, page.Pages)

	rec = cl.do(http.MethodGet, "/admin/api/contacts?page=2", nil, "")
	page = decode[contactPage](t, rec)
	assert.Equal(t, 11, page.Filtered)
	assert.Len(t, page.Rows, 1)

	rec = cl.do(http.MethodGet, "/admin/api/contacts?page=9", nil, "")
	page = decode[contactPage](t, rec)
	assert.Equal(t, 9, page.Page)
	assert.Empty(t, page.Rows)
}

func TestListSearchKeepsWhitespace(t *testing.T) {
	app := newTestApp(t)
	for _, msg := range []string{"xb", "a b"} {
		_, err := store.Create(context.Background(), app.Docs, content.ContactsCollection, content.ContactSubmission{
			FirstName: "Visitor", LastName: "One", Email: "v@example.com", Message: msg,
		})
		require.NoError(t, err)
	}
	cl := signedIn(t, app)

	rec := cl.do(http.MethodGet, "/admin/api/contacts?q=%20b", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[contactPage](t, rec)
	assert.Equal(t, 1, page.Filtered)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "a b", page.Rows[0].Document.Message)

	rec = cl.do(http.MethodGet, "/admin/api/contacts?q=%20%20", nil, "")
	assert.Equal(t, 0, decode[contactPage](t, rec).Filtered)
}

func TestDeleteReturnsRefreshedPage(t *testing.T) {
	app := newTestApp(t)
	ids := seedContacts(t, app, 7)
	cl := signedIn(t, app)

	rec := cl.do(http.MethodDelete, "/admin/api/contacts/"+strconv.FormatInt(ids[0], 10), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[contactPage](t, rec)
	assert.Equal(t, 6, page.Total)
	for _, row := range page.Rows {
		assert.NotEqual(t, ids[0], row.Document.ID)
	}
	assert.Equal(t, ids[6], page.Rows[0].Document.ID, "newest first")
}

func TestContactSubmit(t *testing.T) {
	app := newTestApp(t)
	cl := newClient(t, app)

	rec := cl.json(http.MethodPost, "/api/contact", content.ContactSubmission{FirstName: "Ada", Email: "not-an-email"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decode[map[string]map[string]string](t, rec)["errors"]
	assert.Equal(t, "Invalid email address", errs["email"])
	assert.Equal(t, "Required", errs["lastName"])

	rec = cl.json(http.MethodPost, "/api/contact", content.ContactSubmission{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Message: "Hi",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[map[string]int64](t, rec)["id"]

	rec = signedIn(t, app).do(http.MethodGet, "/admin/api/contacts/"+strconv.FormatInt(id, 10), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hi", decode[content.ContactSubmission](t, rec).Message)
}

func TestUploadPerField(t *testing.T) {
	app := newTestApp(t)
	cl := signedIn(t, app)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("folder", "blogs"))
	fw, err := mw.CreateFormFile("content.thumbImage", "photo.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("not really a jpeg"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := cl.do(http.MethodPost, "/admin/api/uploads", &body, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[struct {
		URLs   map[string]string `json:"urls"`
		Errors map[string]string `json:"errors"`
	}](t, rec)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "http://localhost:3000/uploads/blogs/photo.jpg", res.URLs["content.thumbImage"])

	rec = cl.do(http.MethodGet, "/uploads/blogs/photo.jpg", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "not really a jpeg", rec.Body.String())

	rec = cl.do(http.MethodGet, "/admin/api/uploads/pending", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[map[string][]string](t, rec)["pending"])
}

func TestUploadRejectsUnknownFolder(t *testing.T) {
	app := newTestApp(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("folder", "../etc"))
	require.NoError(t, mw.Close())

	rec := signedIn(t, app).do(http.MethodPost, "/admin/api/uploads", &body, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSitemapAndStats(t *testing.T) {
	app := newTestApp(t)
	cl := signedIn(t, app)
	require.Equal(t, http.StatusCreated, cl.json(http.MethodPost, "/admin/api/portfolios", validDraft()).Code)

	rec := cl.do(http.MethodGet, "/admin/sitemap.xml", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<loc>https://example.com/work</loc>")
	assert.Contains(t, rec.Body.String(), "<lastmod>"+time.Now().UTC().Format(time.DateOnly)+"</lastmod>")

	rec = cl.do(http.MethodGet, "/admin/api/stats", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var s struct {
		Portfolios struct {
			Total  int `json:"totalPortfolios"`
			Images int `json:"totalImages"`
		} `json:"portfolios"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 1, s.Portfolios.Total)
	assert.Equal(t, 1, s.Portfolios.Images)
}

func TestSessionEventsSignedOut(t *testing.T) {
	app := newTestApp(t)
	s, err := app.Auth.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	srv := httptest.NewServer(app.Echo)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/admin/api/session/events", nil)
	require.NoError(t, err)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.AccessToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := bufio.NewScanner(resp.Body)
	waitFor := func(event string) {
		t.Helper()
		for lines.Scan() {
			if lines.Text() == "event: "+event {
				return
			}
		}
		t.Fatalf("stream ended before %q: %v", event, lines.Err())
	}

	waitFor("ready")
	require.NoError(t, app.Auth.SignOut(context.Background(), s.AccessToken))
	waitFor("signed_out")
}

func TestErrorPages(t *testing.T) {
	app := newTestApp(t)
	cl := signedIn(t, app)

	rec := cl.do(http.MethodGet, "/admin/nope/", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "does not exist")

	rec = cl.do(http.MethodGet, "/admin/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)

	rec = cl.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
