package contentdesk

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/contentdesk/content"
	"github.com/eringen/contentdesk/stats"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// sitemapEntries collects the canonical URL of every page-like document.
// A URL shared by several documents is listed once, with the newest lastmod.
func sitemapEntries(c stats.Collections) []sitemapURL {
	var (
		urls []sitemapURL
		seen = map[string]int{}
	)
	add := func(seo content.SEO, m content.Meta) {
		if seo.CanonicalURL == "" {
			return
		}
		mod := m.UpdatedAt
		if mod.IsZero() {
			mod = m.CreatedAt
		}
		lastmod := ""
		if !mod.IsZero() {
			lastmod = mod.UTC().Format(time.DateOnly)
		}
		if i, ok := seen[seo.CanonicalURL]; ok {
			if lastmod > urls[i].LastMod {
				urls[i].LastMod = lastmod
			}
			return
		}
		seen[seo.CanonicalURL] = len(urls)
		urls = append(urls, sitemapURL{Loc: seo.CanonicalURL, LastMod: lastmod})
	}
	for _, b := range c.Blogs {
		add(b.SEO, b.Meta)
	}
	for _, b := range c.Banners {
		add(b.SEO, b.Meta)
	}
	for _, p := range c.Portfolios {
		add(p.SEO, p.Meta)
	}
	return urls
}

func (a *App) handleSitemap(c echo.Context) error {
	docs, err := stats.Load(c.Request().Context(), a.Docs)
	if err != nil {
		return err
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  sitemapEntries(docs),
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
