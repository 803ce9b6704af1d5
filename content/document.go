// Package content defines the marketing documents managed by the dashboard:
// blog posts, SEO banners, portfolios and contact submissions, together with
// their form defaults, edit operations and validation rules.
//
// The edit operations (AddParagraph, RemoveTab, GalleryTab.SetKind and the
// rest in edit.go) are a library API for form clients that build a draft
// step by step. The HTTP API takes whole documents and does not call them.
package content

import (
	"encoding/json"
	"fmt"
	"time"
)

// Collection names in the document store.
const (
	BlogsCollection     = "blogs"
	BannersCollection   = "seo_banners"
	PortfolioCollection = "portfolio"
	ContactsCollection  = "contact_us"
)

// Meta holds the fields the document store assigns.
type Meta struct {
	ID        int64     `json:"id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// DocumentID returns the store id.
func (m Meta) DocumentID() int64 { return m.ID }

// OpenGraph is the og:* block of an SEO record.
type OpenGraph struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	URL         string `json:"url" validate:"required,url"`
	Type        string `json:"type"`
	Image       string `json:"image" validate:"required,url"`
}

// SEO is the search metadata shared by every page-like document.
type SEO struct {
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description" validate:"required"`
	Keywords     string    `json:"keywords" validate:"required"`
	MetaRobots   string    `json:"metaRobots"`
	MetaViewport string    `json:"metaViewport"`
	CanonicalURL string    `json:"canonicalURL" validate:"required,url"`
	OpenGraph    OpenGraph `json:"openGraph"`
}

// Banner is the hero block at the top of a page.
type Banner struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	VideoURL    string `json:"videoUrl" validate:"required,url"`
	Poster      string `json:"poster" validate:"required,url"`
}

// BlogPost is a document of the blogs collection.
type BlogPost struct {
	Meta
	SEO     SEO         `json:"seo"`
	Banner  Banner      `json:"banner"`
	Content BlogContent `json:"content"`
}

type BlogContent struct {
	Title       string      `json:"title" validate:"required"`
	ThumbImage  string      `json:"thumbImage" validate:"omitempty,url"`
	CreatedDate string      `json:"createdDate" validate:"required"`
	CTA         CTA         `json:"cta"`
	Description []Paragraph `json:"description" validate:"min=1,dive"`
	Tags        TagList     `json:"tags"`
	URLs        LinkList    `json:"urls"`
}

type CTA struct {
	Slug string `json:"slug" validate:"required"`
	Text string `json:"text" validate:"required"`
}

type Paragraph struct {
	Text string `json:"text" validate:"required"`
}

type Tag struct {
	Text string `json:"text" validate:"required"`
}

type TagList struct {
	Text string `json:"text"`
	List []Tag  `json:"list" validate:"min=1,dive"`
}

type Link struct {
	Text string `json:"text"`
	Href string `json:"href" validate:"omitempty,url"`
}

type LinkList struct {
	Text string `json:"text"`
	List []Link `json:"list" validate:"min=1,dive"`
}

// SEOBanner is a document of the seo_banners collection.
type SEOBanner struct {
	Meta
	SEO    SEO    `json:"seo"`
	Banner Banner `json:"banner"`
}

// ContactSubmission is an entry posted by the public contact form.
type ContactSubmission struct {
	Meta
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Message   string `json:"message" validate:"required"`
	Phone     string `json:"phone,omitempty"`
}

// GalleryKind selects which gallery shape a portfolio carries.
type GalleryKind string

const (
	ImageGalleryKind GalleryKind = "imageGallery"
	VideoGalleryKind GalleryKind = "videoGallery"
	TabsGalleryKind  GalleryKind = "imageVideoTabsGallery"
)

// Valid reports whether k names one of the three gallery shapes.
func (k GalleryKind) Valid() bool {
	switch k {
	case ImageGalleryKind, VideoGalleryKind, TabsGalleryKind:
		return true
	}
	return false
}

// MediaKind is the item type of a gallery tab.
type MediaKind string

const (
	ImageMedia MediaKind = "image"
	VideoMedia MediaKind = "video"
)

type Card struct {
	CardTitle           string `json:"cardTitle" validate:"required"`
	CTAText             string `json:"ctaText" validate:"required"`
	PageURL             string `json:"pageUrl" validate:"required"`
	CardBackgroundImage string `json:"cardBackgroundImage" validate:"required"`
}

type ImageItem struct {
	Image string `json:"image"`
	Alt   string `json:"alt"`
}

type VideoItem struct {
	Video  string `json:"video"`
	Poster string `json:"poster"`
}

// GalleryTab is one tab of a mixed gallery. Kind decides whether the tab's
// list holds Images or Videos; the other slice is ignored.
type GalleryTab struct {
	Title  string
	Kind   MediaKind
	Images []ImageItem
	Videos []VideoItem
}

type galleryTabJSON struct {
	TabTitle string          `json:"tabTitle"`
	Key      MediaKind       `json:"key"`
	List     json.RawMessage `json:"list"`
}

func (t GalleryTab) MarshalJSON() ([]byte, error) {
	var list any
	if t.Kind == VideoMedia {
		list = nonNil(t.Videos)
	} else {
		list = nonNil(t.Images)
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	return json.Marshal(galleryTabJSON{TabTitle: t.Title, Key: t.Kind, List: raw})
}

func (t *GalleryTab) UnmarshalJSON(b []byte) error {
	var aux galleryTabJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*t = GalleryTab{Title: aux.TabTitle, Kind: aux.Key}
	if len(aux.List) == 0 || string(aux.List) == "null" {
		return nil
	}
	if aux.Key == VideoMedia {
		return json.Unmarshal(aux.List, &t.Videos)
	}
	return json.Unmarshal(aux.List, &t.Images)
}

// Gallery is the persisted gallery variant of a portfolio.
type Gallery interface {
	Kind() GalleryKind
}

type ImageGallery []ImageItem
type VideoGallery []VideoItem
type TabsGallery []GalleryTab

func (ImageGallery) Kind() GalleryKind { return ImageGalleryKind }
func (VideoGallery) Kind() GalleryKind { return VideoGalleryKind }
func (TabsGallery) Kind() GalleryKind  { return TabsGalleryKind }

// Portfolio is a document of the portfolio collection. It carries exactly
// one gallery variant, so only the selected branch is ever serialized.
type Portfolio struct {
	Meta
	SEO     SEO
	Banner  Banner
	Card    Card
	Gallery Gallery
}

// Key returns the selected gallery kind, or "" when none is set.
func (p Portfolio) Key() GalleryKind {
	if p.Gallery == nil {
		return ""
	}
	return p.Gallery.Kind()
}

type portfolioJSON struct {
	Meta
	SEO     SEO             `json:"seo"`
	Banner  Banner          `json:"banner"`
	Key     GalleryKind     `json:"key"`
	Content json.RawMessage `json:"content"`
}

func (p Portfolio) MarshalJSON() ([]byte, error) {
	body := map[string]any{"card": p.Card}
	switch g := p.Gallery.(type) {
	case ImageGallery:
		body[string(ImageGalleryKind)] = nonNil(g)
	case VideoGallery:
		body[string(VideoGalleryKind)] = nonNil(g)
	case TabsGallery:
		body[string(TabsGalleryKind)] = nonNil(g)
	case nil:
	default:
		return nil, fmt.Errorf("content: unknown gallery variant %T", g)
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(portfolioJSON{
		Meta:    p.Meta,
		SEO:     p.SEO,
		Banner:  p.Banner,
		Key:     p.Key(),
		Content: raw,
	})
}

func (p *Portfolio) UnmarshalJSON(b []byte) error {
	var aux portfolioJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	var body DraftContent
	if len(aux.Content) > 0 && string(aux.Content) != "null" {
		if err := json.Unmarshal(aux.Content, &body); err != nil {
			return err
		}
	}
	*p = Portfolio{Meta: aux.Meta, SEO: aux.SEO, Banner: aux.Banner, Card: body.Card}
	p.Gallery = body.variant(aux.Key)
	return nil
}

// PortfolioDraft is the editable form state of a portfolio. Unlike
// Portfolio it holds all three gallery branches at once.
type PortfolioDraft struct {
	SEO     SEO          `json:"seo"`
	Banner  Banner       `json:"banner"`
	Key     GalleryKind  `json:"key"`
	Content DraftContent `json:"content"`
}

type DraftContent struct {
	Card                  Card         `json:"card"`
	ImageGallery          []ImageItem  `json:"imageGallery" validate:"-"`
	VideoGallery          []VideoItem  `json:"videoGallery" validate:"-"`
	ImageVideoTabsGallery []GalleryTab `json:"imageVideoTabsGallery" validate:"-"`
}

func (c DraftContent) variant(k GalleryKind) Gallery {
	switch k {
	case ImageGalleryKind:
		return ImageGallery(c.ImageGallery)
	case VideoGalleryKind:
		return VideoGallery(c.VideoGallery)
	case TabsGalleryKind:
		return TabsGallery(c.ImageVideoTabsGallery)
	}
	return nil
}

// Portfolio converts the draft into a persistable portfolio, dropping every
// gallery branch except the one selected by Key.
func (d PortfolioDraft) Portfolio() Portfolio {
	return Portfolio{
		SEO:     d.SEO,
		Banner:  d.Banner,
		Card:    d.Content.Card,
		Gallery: d.Content.variant(d.Key),
	}
}

func nonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return s
}
