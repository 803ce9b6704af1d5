package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/contentdesk/content"
	"github.com/eringen/contentdesk/store"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func meta(age time.Duration) content.Meta {
	return content.Meta{CreatedAt: now.Add(-age)}
}

func TestCompute(t *testing.T) {
	c := Collections{
		Blogs: []content.BlogPost{
			{Meta: meta(time.Hour), Content: content.BlogContent{
				Description: []content.Paragraph{{}, {}},
				Tags:        content.TagList{List: []content.Tag{{Text: "go"}}},
				URLs:        content.LinkList{List: []content.Link{{}, {}, {}}},
			}},
			{Meta: meta(30 * 24 * time.Hour)},
		},
		Banners: []content.SEOBanner{
			{Meta: meta(time.Hour), SEO: content.SEO{OpenGraph: content.OpenGraph{Image: "og"}}, Banner: content.Banner{VideoURL: "v", Poster: "p"}},
			{Meta: meta(8 * 24 * time.Hour), Banner: content.Banner{Poster: "p"}},
		},
		Portfolios: []content.Portfolio{
			{Meta: meta(time.Minute), Card: content.Card{CardBackgroundImage: "bg"}, Gallery: content.ImageGallery{{}, {}}},
			{Meta: meta(time.Minute), Gallery: content.VideoGallery{{}}},
			{Meta: meta(10 * 24 * time.Hour), Card: content.Card{CardBackgroundImage: "bg"}, Gallery: content.TabsGallery{
				{Kind: content.ImageMedia, Images: []content.ImageItem{{}, {}, {}}},
				{Kind: content.VideoMedia, Videos: []content.VideoItem{{}, {}}},
			}},
		},
		Contacts: []content.ContactSubmission{{Meta: meta(time.Hour)}, {Meta: meta(9 * 24 * time.Hour)}},
	}

	s := Compute(c, now)
	assert.Equal(t, BlogStats{Total: 2, Tags: 1, URLs: 3, Paragraphs: 2, Recent: 1}, s.Blogs)
	assert.Equal(t, BannerStats{Total: 2, OGImages: 1, Videos: 1, Posters: 2, Recent: 1}, s.Banners)
	assert.Equal(t, PortfolioStats{Total: 3, Images: 5, Videos: 3, Tabs: 2, Cards: 2, Recent: 2}, s.Portfolios)
	assert.Equal(t, ContactStats{Total: 2, Recent: 1}, s.Contacts)
	assert.Equal(t, MediaStats{Images: 8, Videos: 4, Total: 12}, s.Media)
}

func TestComputeEmpty(t *testing.T) {
	assert.Equal(t, Stats{}, Compute(Collections{}, now))
}

func TestHandler(t *testing.T) {
	docs, err := store.OpenSQLite(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	defer docs.Close()
	ctx := context.Background()

	_, err = store.Create(ctx, docs, content.BlogsCollection, content.NewBlogPost(time.Now()))
	require.NoError(t, err)
	_, err = store.Create(ctx, docs, content.PortfolioCollection, content.Portfolio{Gallery: content.ImageGallery{{Image: "a"}}})
	require.NoError(t, err)

	h := NewHandler(docs, nil)
	e := echo.New()

	rec := httptest.NewRecorder()
	require.NoError(t, h.GetStats(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	var s Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 1, s.Blogs.Total)
	assert.Equal(t, 1, s.Blogs.Recent)
	assert.Equal(t, 1, s.Portfolios.Images)

	rec = httptest.NewRecorder()
	require.NoError(t, h.GetStatsFragment(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
	assert.True(t, strings.HasPrefix(rec.Body.String(), `<div class="stats-grid">`))
	assert.Contains(t, rec.Body.String(), "<h3>Portfolios</h3>")
}
