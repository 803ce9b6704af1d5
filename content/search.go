package content

import (
	"strconv"
	"strings"
)

// Flags are values derived from a document on read for list rows.
type Flags struct {
	HasThumbnail bool `json:"hasThumbnail"`
	HasVideo     bool `json:"hasVideo"`
	HasPoster    bool `json:"hasPoster"`
	Items        int  `json:"items,omitempty"`
}

func present(s string) bool { return strings.TrimSpace(s) != "" }

// SearchFields returns the values the list search matches against.
func (p BlogPost) SearchFields() []string {
	f := []string{
		p.SEO.Title,
		p.Content.Title,
		p.Banner.Title,
		p.SEO.Keywords,
		strconv.FormatInt(p.ID, 10),
	}
	for _, t := range p.Content.Tags.List {
		f = append(f, t.Text)
	}
	return append(f, p.SEO.Description)
}

func (p BlogPost) Flags() Flags {
	return Flags{
		HasThumbnail: present(p.Content.ThumbImage),
		HasVideo:     present(p.Banner.VideoURL),
		HasPoster:    present(p.Banner.Poster),
		Items:        len(p.Content.Description),
	}
}

func (b SEOBanner) SearchFields() []string {
	return []string{
		b.SEO.Title,
		b.Banner.Title,
		b.SEO.Keywords,
		strconv.FormatInt(b.ID, 10),
		b.SEO.Description,
	}
}

func (b SEOBanner) Flags() Flags {
	return Flags{
		HasThumbnail: present(b.SEO.OpenGraph.Image),
		HasVideo:     present(b.Banner.VideoURL),
		HasPoster:    present(b.Banner.Poster),
	}
}

func (p Portfolio) SearchFields() []string {
	return []string{
		p.SEO.Title,
		p.Banner.Title,
		p.SEO.Keywords,
		strconv.FormatInt(p.ID, 10),
		p.Card.CTAText,
		p.SEO.Description,
		string(p.Key()),
	}
}

func (p Portfolio) Flags() Flags {
	return Flags{
		HasThumbnail: present(p.Card.CardBackgroundImage),
		HasVideo:     present(p.Banner.VideoURL),
		HasPoster:    present(p.Banner.Poster),
		Items:        p.ItemCount(),
	}
}

// ItemCount returns the number of gallery items, summed across tabs.
func (p Portfolio) ItemCount() int {
	switch g := p.Gallery.(type) {
	case ImageGallery:
		return len(g)
	case VideoGallery:
		return len(g)
	case TabsGallery:
		n := 0
		for _, t := range g {
			n += t.Len()
		}
		return n
	}
	return 0
}

func (c ContactSubmission) SearchFields() []string {
	return []string{c.FirstName, c.LastName, c.Email, c.Message, strconv.FormatInt(c.ID, 10)}
}

func (c ContactSubmission) Flags() Flags { return Flags{} }
