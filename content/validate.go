package content

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors maps a dot-separated field path, such as
// "content.imageGallery.0.alt", to a human-readable message.
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	paths := make([]string, 0, len(e))
	for p := range e {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = p + ": " + e[p]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e ValidationErrors) add(path, msg string) {
	if _, ok := e[path]; !ok {
		e[path] = msg
	}
}

func (e ValidationErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
	indexRe      = regexp.MustCompile(`\[(\d+)\]`)
	digitsRe     = regexp.MustCompile(`\.\d+(\.|$)`)
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

var tagMessages = map[string]string{
	"required": "Required",
	"url":      "Must be a valid URL",
	"email":    "Invalid email address",
	"oneof":    "Invalid selection",
	"min":      "Required",
}

// messageOverrides is keyed by the field path with list indices replaced
// by "*", followed by "|" and the failing tag.
var messageOverrides = map[string]string{
	"content.description|min":                   "At least one description paragraph is required",
	"content.tags.list|min":                     "At least one tag is required",
	"content.tags.list.*.text|required":         "Tag is required",
	"content.urls.list|min":                     "At least one URL is required",
	"content.card.cardTitle|required":           "Card Title is required",
	"content.card.ctaText|required":             "CTA Text is required",
	"content.card.pageUrl|required":             "Page slug is required",
	"content.card.cardBackgroundImage|required": "Background Image is required",
}

// fieldPath turns a validator namespace like "BlogPost.content.tags.list[2].text"
// into "content.tags.list.2.text".
func fieldPath(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return indexRe.ReplaceAllString(rest, ".$1")
}

func pattern(path string) string {
	for {
		next := digitsRe.ReplaceAllString(path, ".*$1")
		if next == path {
			return path
		}
		path = next
	}
}

func message(path, tag string) string {
	if msg, ok := messageOverrides[pattern(path)+"|"+tag]; ok {
		return msg
	}
	if msg, ok := tagMessages[tag]; ok {
		return msg
	}
	return "Invalid value"
}

func structErrors(v any) ValidationErrors {
	errs := ValidationErrors{}
	err := validatorInstance().Struct(v)
	if err == nil {
		return errs
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.add("", err.Error())
		return errs
	}
	for _, fe := range fieldErrs {
		path := fieldPath(fe.Namespace())
		errs.add(path, message(path, fe.Tag()))
	}
	return errs
}

// ValidateBlogPost checks every required field of a blog post form. It
// returns nil or a ValidationErrors.
func ValidateBlogPost(p BlogPost) error {
	return structErrors(p).orNil()
}

func ValidateSEOBanner(b SEOBanner) error {
	return structErrors(b).orNil()
}

func ValidateContactSubmission(c ContactSubmission) error {
	return structErrors(c).orNil()
}

// ValidatePortfolioDraft checks the shared blocks, the key and only the
// selected gallery branch. Scratch data in the other branches is ignored.
func ValidatePortfolioDraft(d PortfolioDraft) error {
	errs := structErrors(d)
	switch {
	case d.Key == "":
		errs.add("key", tagMessages["required"])
		return errs.orNil()
	case !d.Key.Valid():
		errs.add("key", tagMessages["oneof"])
		return errs.orNil()
	}
	base := "content." + string(d.Key)
	switch d.Key {
	case ImageGalleryKind:
		validateImages(errs, base, d.Content.ImageGallery)
	case VideoGalleryKind:
		validateVideos(errs, base, d.Content.VideoGallery)
	case TabsGalleryKind:
		for i, tab := range d.Content.ImageVideoTabsGallery {
			validateTab(errs, base+"."+strconv.Itoa(i), tab)
		}
	}
	return errs.orNil()
}

const (
	altRequired    = "Alt text is required when image is provided"
	posterRequired = "Poster is required when video is provided"
)

// A caption is required once its media field holds anything but whitespace;
// any non-empty caption satisfies it.
func validateImages(errs ValidationErrors, base string, items []ImageItem) {
	for i, it := range items {
		if strings.TrimSpace(it.Image) != "" && it.Alt == "" {
			errs.add(base+"."+strconv.Itoa(i)+".alt", altRequired)
		}
	}
}

func validateVideos(errs ValidationErrors, base string, items []VideoItem) {
	for i, it := range items {
		if strings.TrimSpace(it.Video) != "" && it.Poster == "" {
			errs.add(base+"."+strconv.Itoa(i)+".poster", posterRequired)
		}
	}
}

func validateTab(errs ValidationErrors, base string, tab GalleryTab) {
	if tab.Title == "" {
		errs.add(base+".tabTitle", "Tab title is required")
	}
	switch tab.Kind {
	case "":
		errs.add(base+".key", "Tab type is required")
	case ImageMedia:
		validateImages(errs, base+".list", tab.Images)
	case VideoMedia:
		validateVideos(errs, base+".list", tab.Videos)
	default:
		errs.add(base+".key", tagMessages["oneof"])
	}
}
