package content

import "time"

const (
	DefaultMetaRobots   = "index, follow"
	DefaultMetaViewport = "width=device-width, initial-scale=1"
	DefaultOGType       = "website"
	DefaultTagsHeading  = "Tags"
	DefaultURLsHeading  = "Urls"

	dateLayout = "2006-01-02"
)

// NewSEO returns an empty SEO block with the default robots, viewport and
// og:type values.
func NewSEO() SEO {
	return SEO{}.withDefaults()
}

func (s SEO) withDefaults() SEO {
	if s.MetaRobots == "" {
		s.MetaRobots = DefaultMetaRobots
	}
	if s.MetaViewport == "" {
		s.MetaViewport = DefaultMetaViewport
	}
	if s.OpenGraph.Type == "" {
		s.OpenGraph.Type = DefaultOGType
	}
	return s
}

// NewBlogPost returns the empty form state for a new blog post: one empty
// paragraph, tag and link, dated today.
func NewBlogPost(now time.Time) BlogPost {
	return BlogPost{
		SEO: NewSEO(),
		Content: BlogContent{
			CreatedDate: now.Format(dateLayout),
			Description: []Paragraph{{}},
			Tags:        TagList{Text: DefaultTagsHeading, List: []Tag{{}}},
			URLs:        LinkList{Text: DefaultURLsHeading, List: []Link{{}}},
		},
	}
}

// NormalizeBlogPost maps a fetched post onto the form shape, filling every
// missing value with the same default NewBlogPost uses.
func NormalizeBlogPost(p BlogPost, now time.Time) BlogPost {
	p.SEO = p.SEO.withDefaults()
	c := &p.Content
	if c.CreatedDate == "" {
		c.CreatedDate = now.Format(dateLayout)
	}
	if len(c.Description) == 0 {
		c.Description = []Paragraph{{}}
	}
	if c.Tags.Text == "" {
		c.Tags.Text = DefaultTagsHeading
	}
	if len(c.Tags.List) == 0 {
		c.Tags.List = []Tag{{}}
	}
	if c.URLs.Text == "" {
		c.URLs.Text = DefaultURLsHeading
	}
	if len(c.URLs.List) == 0 {
		c.URLs.List = []Link{{}}
	}
	return p
}

func NewSEOBanner() SEOBanner {
	return SEOBanner{SEO: NewSEO()}
}

func NormalizeSEOBanner(b SEOBanner) SEOBanner {
	b.SEO = b.SEO.withDefaults()
	return b
}

// NewPortfolioDraft returns the empty form state for a new portfolio with
// one scratch item in every gallery branch and no gallery selected.
func NewPortfolioDraft() PortfolioDraft {
	return PortfolioDraft{
		SEO: NewSEO(),
		Content: DraftContent{
			ImageGallery:          []ImageItem{{}},
			VideoGallery:          []VideoItem{{}},
			ImageVideoTabsGallery: []GalleryTab{newTab()},
		},
	}
}

// DraftFromPortfolio seeds an edit form from a stored portfolio. The stored
// gallery fills its own branch; the other branches get scratch defaults.
func DraftFromPortfolio(p Portfolio) PortfolioDraft {
	d := NewPortfolioDraft()
	d.SEO = p.SEO.withDefaults()
	d.Banner = p.Banner
	d.Key = p.Key()
	d.Content.Card = p.Card
	switch g := p.Gallery.(type) {
	case ImageGallery:
		if len(g) > 0 {
			d.Content.ImageGallery = append([]ImageItem(nil), g...)
		}
	case VideoGallery:
		if len(g) > 0 {
			d.Content.VideoGallery = append([]VideoItem(nil), g...)
		}
	case TabsGallery:
		if len(g) > 0 {
			d.Content.ImageVideoTabsGallery = make([]GalleryTab, len(g))
			for i, tab := range g {
				d.Content.ImageVideoTabsGallery[i] = normalizeTab(tab)
			}
		}
	}
	return d
}

func newTab() GalleryTab {
	return GalleryTab{Kind: ImageMedia, Images: []ImageItem{{}}}
}

func normalizeTab(t GalleryTab) GalleryTab {
	if t.Kind == "" {
		t.Kind = ImageMedia
	}
	switch t.Kind {
	case ImageMedia:
		if len(t.Images) == 0 {
			t.Images = []ImageItem{{}}
		}
		t.Videos = nil
	case VideoMedia:
		if len(t.Videos) == 0 {
			t.Videos = []VideoItem{{}}
		}
		t.Images = nil
	}
	return t
}
