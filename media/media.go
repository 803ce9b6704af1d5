// Package media uploads images and videos for the dashboard forms and
// returns their public URLs.
package media

import (
	"context"
	"errors"
	"mime"
	"path/filepath"
	"strings"
)

// ErrMissingConfig is returned before any network call when the upload
// backend lacks its credentials.
var ErrMissingConfig = errors.New("media: upload service is not configured")

// Kind is the resource type of an upload.
type Kind string

const (
	Image Kind = "image"
	Video Kind = "video"
)

// Upload folders per collection.
const (
	BlogsFolder     = "blogs"
	BannersFolder   = "seo_banners"
	PortfolioFolder = "portfolio"
)

// File is an uploaded file held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Store is the object store behind the upload fields.
type Store interface {
	Upload(ctx context.Context, f File, kind Kind, folder string) (string, error)
}

var videoExts = map[string]bool{".mp4": true, ".m4v": true, ".mov": true, ".webm": true, ".ogv": true}

// KindOf guesses the resource type from the content type, falling back to
// the file extension.
func KindOf(f File) Kind {
	ct := f.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ext := strings.ToLower(filepath.Ext(f.Name))
		if videoExts[ext] {
			return Video
		}
		ct = mime.TypeByExtension(ext)
	}
	if strings.HasPrefix(ct, "video/") {
		return Video
	}
	return Image
}

// Slugify converts a name to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// slugifyFilename slugifies the base name and keeps a lower-cased extension.
func slugifyFilename(name string) (base, ext string) {
	ext = strings.ToLower(filepath.Ext(name))
	base = Slugify(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	if base == "" {
		base = "upload"
	}
	return base, ext
}
