// Package contentdesk is the staff dashboard for marketing content: blog
// posts, SEO banners, portfolios and contact-form submissions. It wires a
// document store, an auth session provider and an object store behind an
// Echo server with session-guarded admin routes.
//
// Every collaborator can be supplied through an Option; anything left unset
// is built from SiteConfig when the App is initialised.
package contentdesk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/eringen/contentdesk/auth"
	"github.com/eringen/contentdesk/events"
	"github.com/eringen/contentdesk/logger"
	"github.com/eringen/contentdesk/media"
	"github.com/eringen/contentdesk/stats"
	"github.com/eringen/contentdesk/store"
	"github.com/eringen/contentdesk/views"
)

// ViewFuncs holds the page components the handlers render. DefaultViews
// returns the built-in set; WithViews replaces it.
type ViewFuncs struct {
	Login       func(views.LoginPage) templ.Component
	Register    func(views.RegisterPage) templ.Component
	Dashboard   func(views.DashboardPage) templ.Component
	NotFound    func(views.SiteConfig) templ.Component
	ServerError func(views.SiteConfig) templ.Component
}

func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Login:       views.Login,
		Register:    views.Register,
		Dashboard:   views.Dashboard,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

// App is the central contentdesk application.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Docs    store.DocumentStore
	Auth    auth.Provider
	Media   media.Store
	Uploads *media.Uploader
	Events  *events.Publisher
	Log     logger.Logger
	Views   ViewFuncs

	loginLimiter   *RateLimiter
	contactLimiter *RateLimiter
	metrics        *metrics
	customRoutes   []func(*App)
	closers        []func() error
	heartbeat      time.Duration
	initialized    bool
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

func WithDocumentStore(s store.DocumentStore) Option {
	return func(a *App) { a.Docs = s }
}

func WithAuthProvider(p auth.Provider) Option {
	return func(a *App) { a.Auth = p }
}

func WithMediaStore(s media.Store) Option {
	return func(a *App) { a.Media = s }
}

func WithEventPublisher(p *events.Publisher) Option {
	return func(a *App) { a.Events = p }
}

func WithLogger(l logger.Logger) Option {
	return func(a *App) { a.Log = l }
}

func WithViews(v ViewFuncs) Option {
	return func(a *App) { a.Views = v }
}

// New creates an App. Nothing is opened until Init or Start.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     DefaultViews(),
		heartbeat: 25 * time.Second,
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init opens every collaborator that was not supplied as an option and
// registers middleware and routes. It is called by Start; tests call it
// directly and drive a.Echo with httptest.
func (a *App) Init(ctx context.Context) error {
	if a.initialized {
		return nil
	}
	if err := a.Config.validate(); err != nil {
		return err
	}

	if a.Log == nil {
		l, err := logger.New(a.Config.LogLevel, a.Config.Debug)
		if err != nil {
			return fmt.Errorf("contentdesk: init logger: %w", err)
		}
		a.Log = l
	}

	if a.Docs == nil {
		docs, err := a.openDocumentStore(ctx)
		if err != nil {
			return err
		}
		a.Docs = docs
		a.closers = append(a.closers, docs.Close)
	}

	if a.Auth == nil {
		provider, err := a.openAuthProvider()
		if err != nil {
			return err
		}
		a.Auth = provider
	}

	if a.Media == nil {
		a.Media = a.openMediaStore()
	}
	a.Uploads = &media.Uploader{
		Store:       a.Media,
		Tracker:     media.NewTracker(),
		MaxWidth:    a.Config.MaxImageWidth,
		Concurrency: a.Config.UploadConcurrency,
	}

	if a.Events == nil && a.Config.RedisEventsEnabled {
		client := redis.NewClient(&redis.Options{
			Addr:     a.Config.RedisAddress,
			Password: a.Config.RedisPassword,
			DB:       a.Config.RedisDB,
		})
		a.Events = events.NewPublisher(client, a.Log)
		a.closers = append(a.closers, a.Events.Close)
	}

	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.contactLimiter = NewRateLimiter(5, 10*time.Minute)
	a.metrics = newMetrics()

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

func (a *App) openDocumentStore(ctx context.Context) (store.DocumentStore, error) {
	switch a.Config.DocumentStore {
	case "mongo":
		m, err := store.OpenMongo(ctx, a.Config.MongoURI, a.Config.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("contentdesk: init store: %w", err)
		}
		return m, nil
	default:
		if err := os.MkdirAll(filepath.Dir(a.Config.DatabasePath), 0o755); err != nil {
			return nil, fmt.Errorf("contentdesk: init store: %w", err)
		}
		s, err := store.OpenSQLite(a.Config.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("contentdesk: init store: %w", err)
		}
		return s, nil
	}
}

// openAuthProvider builds the local provider. Accounts share the SQLite
// database of the document store, or get their own when documents live in
// MongoDB.
func (a *App) openAuthProvider() (*auth.Local, error) {
	sqlite, ok := a.Docs.(*store.SQLite)
	if !ok {
		if err := os.MkdirAll(filepath.Dir(a.Config.DatabasePath), 0o755); err != nil {
			return nil, fmt.Errorf("contentdesk: init auth: %w", err)
		}
		s, err := store.OpenSQLite(a.Config.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("contentdesk: init auth: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		sqlite = s
	}
	tokens := auth.NewTokenManager(a.Config.JWTSecret, "contentdesk")
	provider, err := auth.NewLocal(sqlite.DB(), tokens, a.Config.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("contentdesk: init auth: %w", err)
	}
	return provider, nil
}

func (a *App) openMediaStore() media.Store {
	if a.Config.MediaBackend == "disk" {
		return media.NewDisk(a.Config.UploadDir, a.Config.URL+"/uploads")
	}
	return media.NewCloudinary(a.Config.CloudinaryCloudName, a.Config.CloudinaryUploadPreset, a.Config.CloudinaryBaseURL)
}

// Start initialises the app and serves until the server is shut down.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	if local, ok := a.Auth.(*auth.Local); ok {
		stop := a.startSessionCleanup(local, time.Hour)
		defer stop()
	}

	a.Log.Info("Starting server",
		logger.String("addr", a.Config.Addr),
		logger.String("document_store", a.Config.DocumentStore),
		logger.String("media_backend", a.Config.MediaBackend),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- a.Echo.Start(a.Config.Addr) }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.Echo.Shutdown(shutdownCtx)
	}
}

// startSessionCleanup purges expired sessions periodically. Returns a stop
// function.
func (a *App) startSessionCleanup(local *auth.Local, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				n, err := local.PurgeExpired(context.Background())
				if err != nil {
					a.Log.Error("Session cleanup failed", logger.Error(err))
					continue
				}
				if n > 0 {
					a.Log.Debug("Purged expired sessions", logger.Int64("count", n))
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}

// Close releases everything Init opened. Call this when the app is shutting
// down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Close()
	}
	if a.contactLimiter != nil {
		a.contactLimiter.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	return errors.Join(errs...)
}

func (a *App) site() views.SiteConfig {
	return views.SiteConfig{Name: a.Config.Name, URL: a.Config.URL}
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.StaticFS("/public", echo.MustSubFS(EmbeddedAssets, "assets"))
	e.Static("/uploads", a.Config.UploadDir)
	e.GET("/healthz", handleHealth)
	e.GET("/metrics", a.metrics.handler())

	// Public auth and contact routes
	e.GET("/", func(c echo.Context) error { return c.Redirect(http.StatusSeeOther, "/admin/") })
	e.GET("/login/", a.handleLoginPage)
	e.POST("/login/", a.handleLogin)
	e.GET("/register/", a.handleRegisterPage)
	e.POST("/register/", a.handleRegister)
	e.POST("/logout/", a.handleLogout)
	e.POST("/api/auth/sign-in", a.handleAPISignIn)
	e.POST("/api/auth/sign-up", a.handleAPISignUp)
	e.POST("/api/auth/sign-out", a.handleAPISignOut)
	e.POST("/api/contact", a.handleContactSubmit)

	// Guarded routes
	admin := e.Group("/admin", a.requireSession)
	admin.GET("/", a.handleDashboard)
	admin.GET("/sitemap.xml", a.handleSitemap)

	api := admin.Group("/api")
	api.GET("/session", handleSession)
	api.GET("/session/events", a.handleSessionEvents)

	statsHandler := stats.NewHandler(a.Docs, a.Log)
	api.GET("/stats", statsHandler.GetStats)
	api.GET("/stats/fragment", statsHandler.GetStatsFragment)

	a.registerResources(api)

	api.POST("/uploads", a.handleUpload)
	api.GET("/uploads/pending", a.handlePendingUploads)
}
