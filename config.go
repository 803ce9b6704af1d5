package contentdesk

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// SiteConfig holds all configuration for a contentdesk instance.
type SiteConfig struct {
	Name string // Dashboard name (default "Content Desk")
	URL  string // Public URL (default "http://localhost:3000")

	Addr          string // Listen address (default ":3000")
	DatabasePath  string // SQLite path for documents and accounts (default "data/contentdesk.db")
	DocumentStore string // "sqlite" (default) or "mongo"
	MongoURI      string
	MongoDatabase string // default "contentdesk"

	SessionSecret string        // Required: cookie session secret
	JWTSecret     string        // Required: access token signing key
	SessionTTL    time.Duration // Access token lifetime (default 12h)
	CookieSecure  bool          // Set true for HTTPS
	AllowSignup   bool          // Expose the registration form

	MediaBackend           string // "cloudinary" (default) or "disk"
	CloudinaryCloudName    string
	CloudinaryUploadPreset string
	CloudinaryBaseURL      string // default "https://api.cloudinary.com"
	UploadDir              string // Disk backend root (default "data/uploads")
	MaxImageWidth          int    // Images wider than this are downscaled (default 1600)
	UploadConcurrency      int    // Parallel uploads per request (default 4)

	RedisAddress       string
	RedisPassword      string
	RedisDB            int
	RedisEventsEnabled bool

	LogLevel string // debug, info, warn, error (default "info")
	Debug    bool
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Content Desk"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/contentdesk.db"
	}
	if c.DocumentStore == "" {
		c.DocumentStore = "sqlite"
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = "contentdesk"
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 12 * time.Hour
	}
	if c.MediaBackend == "" {
		c.MediaBackend = "cloudinary"
	}
	if c.CloudinaryBaseURL == "" {
		c.CloudinaryBaseURL = "https://api.cloudinary.com"
	}
	if c.UploadDir == "" {
		c.UploadDir = "data/uploads"
	}
	if c.MaxImageWidth == 0 {
		c.MaxImageWidth = 1600
	}
	if c.UploadConcurrency == 0 {
		c.UploadConcurrency = 4
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c SiteConfig) validate() error {
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("contentdesk: SESSION_SECRET is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("contentdesk: JWT_SECRET is required"))
	}
	switch c.DocumentStore {
	case "sqlite":
	case "mongo":
		if c.MongoURI == "" {
			errs = append(errs, errors.New("contentdesk: MONGO_URI is required when DOCUMENT_STORE=mongo"))
		}
	default:
		errs = append(errs, fmt.Errorf("contentdesk: unknown DOCUMENT_STORE %q", c.DocumentStore))
	}
	switch c.MediaBackend {
	case "cloudinary", "disk":
	default:
		errs = append(errs, fmt.Errorf("contentdesk: unknown MEDIA_BACKEND %q", c.MediaBackend))
	}
	return errors.Join(errs...)
}

// LoadConfig reads an optional .env file, an optional config file at path
// (YAML, TOML or JSON) and the environment, in increasing precedence.
func LoadConfig(path string) (SiteConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return SiteConfig{}, fmt.Errorf("contentdesk: read config %s: %w", path, err)
		}
	}

	cfg := SiteConfig{
		Name:                   v.GetString("SITE_NAME"),
		URL:                    v.GetString("SITE_URL"),
		Addr:                   v.GetString("ADDR"),
		DatabasePath:           v.GetString("DATABASE_PATH"),
		DocumentStore:          v.GetString("DOCUMENT_STORE"),
		MongoURI:               v.GetString("MONGO_URI"),
		MongoDatabase:          v.GetString("MONGO_DATABASE"),
		SessionSecret:          v.GetString("SESSION_SECRET"),
		JWTSecret:              v.GetString("JWT_SECRET"),
		SessionTTL:             v.GetDuration("SESSION_TTL"),
		CookieSecure:           v.GetBool("COOKIE_SECURE"),
		AllowSignup:            v.GetBool("ALLOW_SIGNUP"),
		MediaBackend:           v.GetString("MEDIA_BACKEND"),
		CloudinaryCloudName:    v.GetString("CLOUDINARY_CLOUD_NAME"),
		CloudinaryUploadPreset: v.GetString("CLOUDINARY_UPLOAD_PRESET"),
		CloudinaryBaseURL:      v.GetString("CLOUDINARY_BASE_URL"),
		UploadDir:              v.GetString("UPLOAD_DIR"),
		MaxImageWidth:          v.GetInt("MAX_IMAGE_WIDTH"),
		UploadConcurrency:      v.GetInt("UPLOAD_CONCURRENCY"),
		RedisAddress:           v.GetString("REDIS_ADDRESS"),
		RedisPassword:          v.GetString("REDIS_PASSWORD"),
		RedisDB:                v.GetInt("REDIS_DB"),
		RedisEventsEnabled:     v.GetBool("REDIS_EVENTS_ENABLED"),
		LogLevel:               v.GetString("LOG_LEVEL"),
		Debug:                  v.GetBool("DEBUG"),
	}
	cfg.setDefaults()
	return cfg, cfg.validate()
}

var configKeys = []string{
	"SITE_NAME", "SITE_URL", "ADDR", "DATABASE_PATH", "DOCUMENT_STORE",
	"MONGO_URI", "MONGO_DATABASE", "SESSION_SECRET", "JWT_SECRET",
	"SESSION_TTL", "COOKIE_SECURE", "ALLOW_SIGNUP", "MEDIA_BACKEND",
	"CLOUDINARY_CLOUD_NAME", "CLOUDINARY_UPLOAD_PRESET", "CLOUDINARY_BASE_URL",
	"UPLOAD_DIR", "MAX_IMAGE_WIDTH", "UPLOAD_CONCURRENCY", "REDIS_ADDRESS",
	"REDIS_PASSWORD", "REDIS_DB", "REDIS_EVENTS_ENABLED", "LOG_LEVEL", "DEBUG",
}
