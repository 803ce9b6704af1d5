package stats

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"

	"github.com/eringen/contentdesk/logger"
	"github.com/eringen/contentdesk/store"
	"github.com/eringen/contentdesk/views"
)

// Handler serves the overview as JSON and as an htmx fragment.
type Handler struct {
	docs store.DocumentStore
	log  logger.Logger
	now  func() time.Time
}

func NewHandler(docs store.DocumentStore, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{docs: docs, log: log, now: time.Now}
}

func (h *Handler) compute(ctx context.Context) (Stats, error) {
	c, err := Load(ctx, h.docs)
	if err != nil {
		return Stats{}, err
	}
	return Compute(c, h.now()), nil
}

// GetStats returns the overview as JSON.
func (h *Handler) GetStats(c echo.Context) error {
	s, err := h.compute(c.Request().Context())
	if err != nil {
		h.log.Error("Failed to compute stats", logger.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, s)
}

// GetStatsFragment returns the overview cards as an HTML fragment.
func (h *Handler) GetStatsFragment(c echo.Context) error {
	s, err := h.compute(c.Request().Context())
	if err != nil {
		h.log.Error("Failed to compute stats fragment", logger.Error(err))
		return c.HTML(http.StatusInternalServerError, "<div class='loading'>Error loading data</div>")
	}
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	return Fragment(s).Render(c.Request().Context(), c.Response())
}

type card struct {
	title string
	rows  [][2]string
}

func (s Stats) cards() []card {
	n := strconv.Itoa
	return []card{
		{"Blogs", [][2]string{{"Total", n(s.Blogs.Total)}, {"Tags", n(s.Blogs.Tags)}, {"URLs", n(s.Blogs.URLs)}, {"Paragraphs", n(s.Blogs.Paragraphs)}, {"Last 7 days", n(s.Blogs.Recent)}}},
		{"SEO Banners", [][2]string{{"Total", n(s.Banners.Total)}, {"OG images", n(s.Banners.OGImages)}, {"Videos", n(s.Banners.Videos)}, {"Posters", n(s.Banners.Posters)}, {"Last 7 days", n(s.Banners.Recent)}}},
		{"Portfolios", [][2]string{{"Total", n(s.Portfolios.Total)}, {"Images", n(s.Portfolios.Images)}, {"Videos", n(s.Portfolios.Videos)}, {"Tabs", n(s.Portfolios.Tabs)}, {"Cards", n(s.Portfolios.Cards)}, {"Last 7 days", n(s.Portfolios.Recent)}}},
		{"Contacts", [][2]string{{"Total", n(s.Contacts.Total)}, {"Last 7 days", n(s.Contacts.Recent)}}},
		{"Media", [][2]string{{"Images", n(s.Media.Images)}, {"Videos", n(s.Media.Videos)}, {"Total", n(s.Media.Total)}}},
	}
}

// Fragment renders the overview cards.
func Fragment(s Stats) templ.Component {
	cards := make([]g.Node, 0, 5)
	for _, c := range s.cards() {
		rows := make([]g.Node, 0, 2*len(c.rows))
		for _, r := range c.rows {
			rows = append(rows, Dt(g.Text(r[0])), Dd(g.Text(r[1])))
		}
		cards = append(cards, Section(Class("stats-card"), H3(g.Text(c.title)), Dl(rows...)))
	}
	return views.Component(Div(Class("stats-grid"), g.Group(cards)))
}
