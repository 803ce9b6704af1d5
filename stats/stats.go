// Package stats computes the dashboard overview from the full collections.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/eringen/contentdesk/content"
	"github.com/eringen/contentdesk/store"
)

// RecentWindow is how far back a document counts as recent.
const RecentWindow = 7 * 24 * time.Hour

type BlogStats struct {
	Total      int `json:"totalBlogs"`
	Tags       int `json:"totalTags"`
	URLs       int `json:"totalUrls"`
	Paragraphs int `json:"totalParagraphs"`
	Recent     int `json:"recentBlogs"`
}

type BannerStats struct {
	Total    int `json:"totalBanners"`
	OGImages int `json:"totalOGImages"`
	Videos   int `json:"totalVideos"`
	Posters  int `json:"totalPosters"`
	Recent   int `json:"recentBanners"`
}

type PortfolioStats struct {
	Total  int `json:"totalPortfolios"`
	Images int `json:"totalImages"`
	Videos int `json:"totalVideos"`
	Tabs   int `json:"totalTabs"`
	Cards  int `json:"totalCards"`
	Recent int `json:"recentPortfolios"`
}

type ContactStats struct {
	Total  int `json:"totalContacts"`
	Recent int `json:"recentContacts"`
}

type MediaStats struct {
	Images int `json:"totalImages"`
	Videos int `json:"totalVideos"`
	Total  int `json:"totalMedia"`
}

// Stats is the dashboard overview.
type Stats struct {
	Blogs      BlogStats      `json:"blogs"`
	Banners    BannerStats    `json:"banners"`
	Portfolios PortfolioStats `json:"portfolios"`
	Contacts   ContactStats   `json:"contacts"`
	Media      MediaStats     `json:"media"`
}

// Collections is the input of Compute.
type Collections struct {
	Blogs      []content.BlogPost
	Banners    []content.SEOBanner
	Portfolios []content.Portfolio
	Contacts   []content.ContactSubmission
}

// Load fetches every collection the overview needs.
func Load(ctx context.Context, docs store.DocumentStore) (Collections, error) {
	var (
		c   Collections
		err error
	)
	if c.Blogs, err = store.All[content.BlogPost](ctx, docs, content.BlogsCollection); err != nil {
		return c, fmt.Errorf("stats: %w", err)
	}
	if c.Banners, err = store.All[content.SEOBanner](ctx, docs, content.BannersCollection); err != nil {
		return c, fmt.Errorf("stats: %w", err)
	}
	if c.Portfolios, err = store.All[content.Portfolio](ctx, docs, content.PortfolioCollection); err != nil {
		return c, fmt.Errorf("stats: %w", err)
	}
	if c.Contacts, err = store.All[content.ContactSubmission](ctx, docs, content.ContactsCollection); err != nil {
		return c, fmt.Errorf("stats: %w", err)
	}
	return c, nil
}

// Compute derives the overview. A document is recent when it was created
// after now minus RecentWindow.
func Compute(c Collections, now time.Time) Stats {
	cutoff := now.Add(-RecentWindow)
	recent := func(m content.Meta) bool { return m.CreatedAt.After(cutoff) }
	var s Stats

	s.Blogs.Total = len(c.Blogs)
	for _, b := range c.Blogs {
		s.Blogs.Tags += len(b.Content.Tags.List)
		s.Blogs.URLs += len(b.Content.URLs.List)
		s.Blogs.Paragraphs += len(b.Content.Description)
		if recent(b.Meta) {
			s.Blogs.Recent++
		}
	}

	s.Banners.Total = len(c.Banners)
	for _, b := range c.Banners {
		if b.SEO.OpenGraph.Image != "" {
			s.Banners.OGImages++
		}
		if b.Banner.VideoURL != "" {
			s.Banners.Videos++
		}
		if b.Banner.Poster != "" {
			s.Banners.Posters++
		}
		if recent(b.Meta) {
			s.Banners.Recent++
		}
	}

	s.Portfolios.Total = len(c.Portfolios)
	for _, p := range c.Portfolios {
		if p.Card.CardBackgroundImage != "" {
			s.Portfolios.Cards++
		}
		switch g := p.Gallery.(type) {
		case content.ImageGallery:
			s.Portfolios.Images += len(g)
		case content.VideoGallery:
			s.Portfolios.Videos += len(g)
		case content.TabsGallery:
			s.Portfolios.Tabs += len(g)
			for _, tab := range g {
				switch tab.Kind {
				case content.ImageMedia:
					s.Portfolios.Images += len(tab.Images)
				case content.VideoMedia:
					s.Portfolios.Videos += len(tab.Videos)
				}
			}
		}
		if recent(p.Meta) {
			s.Portfolios.Recent++
		}
	}

	s.Contacts.Total = len(c.Contacts)
	for _, m := range c.Contacts {
		if recent(m.Meta) {
			s.Contacts.Recent++
		}
	}

	s.Media.Images = s.Banners.OGImages + s.Banners.Posters + s.Portfolios.Images
	s.Media.Videos = s.Banners.Videos + s.Portfolios.Videos
	s.Media.Total = s.Media.Images + s.Media.Videos
	return s
}
