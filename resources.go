package contentdesk

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/contentdesk/content"
	"github.com/eringen/contentdesk/events"
	"github.com/eringen/contentdesk/listing"
	"github.com/eringen/contentdesk/logger"
	"github.com/eringen/contentdesk/store"
)

// Row is one list entry: the stored document and its derived flags.
type Row[T any] struct {
	Document T             `json:"document"`
	Flags    content.Flags `json:"flags"`
}

// ListResponse is a page of a collection list view.
type ListResponse[T any] struct {
	Rows     []Row[T] `json:"rows"`
	Query    string   `json:"q"`
	Total    int      `json:"total"`
	Filtered int      `json:"filtered"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
	Pages    int      `json:"pages"`
}

// resource serves the list and CRUD routes of one collection. T is the
// stored document type.
type resource[T any] struct {
	app        *App
	route      string
	collection string
	fields     func(T) []string
	flags      func(T) content.Flags

	// blank is the empty form of /new. form maps a stored document to its
	// editable form state. decode binds, validates and converts a request
	// body. A nil decode makes the resource read-only.
	blank  func() any
	form   func(T) any
	decode func(echo.Context) (T, error)
}

func (r *resource[T]) register(g *echo.Group) {
	base := "/" + r.route
	g.GET(base, r.list)
	g.GET(base+"/:id", r.get)
	g.DELETE(base+"/:id", r.delete)
	if r.decode == nil {
		return
	}
	g.GET(base+"/new", r.newForm)
	g.GET(base+"/:id/form", r.editForm)
	g.POST(base, r.create)
	g.PUT(base+"/:id", r.update)
}

func (r *resource[T]) list(c echo.Context) error {
	st := listState(c, r.route)
	st.Apply(queryParam(c, "q"), queryParam(c, "page"), queryParam(c, "pageSize"))
	return r.respondPage(c, st)
}

// respondPage fetches the whole collection, cuts the page the state points
// at and remembers the state.
func (r *resource[T]) respondPage(c echo.Context, st listing.State) error {
	items, err := store.All[T](c.Request().Context(), r.app.Docs, r.collection)
	if err != nil {
		return writeError(c, err)
	}
	page := listing.Build(items, &st, r.fields)
	if err := saveListState(c, r.route, st); err != nil {
		r.app.Log.Warn("Failed to save list state", logger.String("collection", r.collection), logger.Error(err))
	}
	rows := make([]Row[T], len(page.Items))
	for i, it := range page.Items {
		rows[i] = Row[T]{Document: it, Flags: r.flags(it)}
	}
	return c.JSON(http.StatusOK, ListResponse[T]{
		Rows:     rows,
		Query:    st.Query,
		Total:    page.Total,
		Filtered: page.Filtered,
		Page:     page.Page,
		PageSize: page.PageSize,
		Pages:    page.Pages,
	})
}

func (r *resource[T]) get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	doc, err := store.One[T](c.Request().Context(), r.app.Docs, r.collection, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (r *resource[T]) newForm(c echo.Context) error {
	return c.JSON(http.StatusOK, r.blank())
}

func (r *resource[T]) editForm(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	doc, err := store.One[T](c.Request().Context(), r.app.Docs, r.collection, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, r.form(doc))
}

func (r *resource[T]) create(c echo.Context) error {
	doc, err := r.decode(c)
	if err != nil {
		return writeError(c, err)
	}
	saved, err := store.Create(c.Request().Context(), r.app.Docs, r.collection, doc)
	if err != nil {
		return writeError(c, err)
	}
	r.written("insert", events.DocumentCreated, saved)
	return c.JSON(http.StatusCreated, saved)
}

func (r *resource[T]) update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	doc, err := r.decode(c)
	if err != nil {
		return writeError(c, err)
	}
	saved, err := store.Replace(c.Request().Context(), r.app.Docs, r.collection, id, doc)
	if err != nil {
		return writeError(c, err)
	}
	r.written("update", events.DocumentUpdated, saved)
	return c.JSON(http.StatusOK, saved)
}

// delete removes the document and answers with the refreshed list page.
func (r *resource[T]) delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := r.app.Docs.Delete(c.Request().Context(), r.collection, id); err != nil {
		return writeError(c, err)
	}
	r.app.documentWritten(r.collection, "delete", events.DocumentDeleted, id)
	return r.respondPage(c, listState(c, r.route))
}

func (r *resource[T]) written(op string, typ events.EventType, doc T) {
	var id int64
	if m, ok := any(doc).(interface{ DocumentID() int64 }); ok {
		id = m.DocumentID()
	}
	r.app.documentWritten(r.collection, op, typ, id)
}

// documentWritten counts a store write and announces it on the event stream.
func (a *App) documentWritten(collection, op string, typ events.EventType, id int64) {
	a.metrics.documentsWritten.WithLabelValues(collection, op).Inc()
	a.Log.Info("Document written",
		logger.String("collection", collection),
		logger.String("op", op),
		logger.Int64("id", id),
	)
	a.Events.PublishAsync(events.DocumentEvent{Type: typ, Collection: collection, DocumentID: id})
}

// bindValid binds the request body into T and runs validate on it.
func bindValid[T any](c echo.Context, validate func(T) error) (T, error) {
	var v T
	if err := (&echo.DefaultBinder{}).BindBody(c, &v); err != nil {
		return v, err
	}
	return v, validate(v)
}

func (a *App) registerResources(g *echo.Group) {
	now := time.Now

	(&resource[content.BlogPost]{
		app:        a,
		route:      "blogs",
		collection: content.BlogsCollection,
		fields:     content.BlogPost.SearchFields,
		flags:      content.BlogPost.Flags,
		blank:      func() any { return content.NewBlogPost(now()) },
		form:       func(p content.BlogPost) any { return content.NormalizeBlogPost(p, now()) },
		decode: func(c echo.Context) (content.BlogPost, error) {
			p, err := bindValid(c, content.ValidateBlogPost)
			p.Meta = content.Meta{}
			return p, err
		},
	}).register(g)

	(&resource[content.SEOBanner]{
		app:        a,
		route:      "seo-banners",
		collection: content.BannersCollection,
		fields:     content.SEOBanner.SearchFields,
		flags:      content.SEOBanner.Flags,
		blank:      func() any { return content.NewSEOBanner() },
		form:       func(b content.SEOBanner) any { return content.NormalizeSEOBanner(b) },
		decode: func(c echo.Context) (content.SEOBanner, error) {
			b, err := bindValid(c, content.ValidateSEOBanner)
			b.Meta = content.Meta{}
			return b, err
		},
	}).register(g)

	(&resource[content.Portfolio]{
		app:        a,
		route:      "portfolios",
		collection: content.PortfolioCollection,
		fields:     content.Portfolio.SearchFields,
		flags:      content.Portfolio.Flags,
		blank:      func() any { return content.NewPortfolioDraft() },
		form:       func(p content.Portfolio) any { return content.DraftFromPortfolio(p) },
		decode: func(c echo.Context) (content.Portfolio, error) {
			d, err := bindValid(c, content.ValidatePortfolioDraft)
			if err != nil {
				return content.Portfolio{}, err
			}
			return d.Portfolio(), nil
		},
	}).register(g)

	(&resource[content.ContactSubmission]{
		app:        a,
		route:      "contacts",
		collection: content.ContactsCollection,
		fields:     content.ContactSubmission.SearchFields,
		flags:      content.ContactSubmission.Flags,
	}).register(g)
}
