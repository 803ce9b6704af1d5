package contentdesk

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/eringen/contentdesk/media"
)

const maxUploadSize = 50 << 20 // 50MB per file

var uploadFolders = map[string]bool{
	media.BlogsFolder:     true,
	media.BannersFolder:   true,
	media.PortfolioFolder: true,
}

// handleUpload accepts a multipart form whose file fields are named by the
// form path they fill, e.g. "content.imageGallery.0.image", plus a "folder"
// value. Every file uploads concurrently; the response reports a URL or an
// error per field.
func (a *App) handleUpload(c echo.Context) error {
	folder := c.FormValue("folder")
	if !uploadFolders[folder] {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown upload folder")
	}
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No files provided")
	}

	paths := make([]string, 0, len(form.File))
	for p := range form.File {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	res := media.Result{URLs: map[string]string{}, Errors: map[string]string{}}
	items := make([]media.Item, 0, len(paths))
	for _, p := range paths {
		fh := form.File[p][0]
		if fh.Size > maxUploadSize {
			res.Errors[p] = "File too large (max 50MB)"
			continue
		}
		data, err := readFormFile(fh)
		if err != nil {
			res.Errors[p] = err.Error()
			continue
		}
		f := media.File{Name: fh.Filename, ContentType: fh.Header.Get(echo.HeaderContentType), Data: data}
		items = append(items, media.Item{Path: p, Kind: media.KindOf(f), File: f})
	}
	if len(items) == 0 && len(res.Errors) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No files provided")
	}

	out := a.Uploads.UploadAll(c.Request().Context(), CurrentSession(c).ID, folder, items)
	for _, it := range items {
		result := "ok"
		if _, failed := out.Errors[it.Path]; failed {
			result = "error"
		}
		a.metrics.uploads.WithLabelValues(string(it.Kind), result).Inc()
	}
	for p, msg := range res.Errors {
		out.Errors[p] = msg
	}
	return c.JSON(http.StatusOK, out)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

// handlePendingUploads lists the fields of this session still uploading.
func (a *App) handlePendingUploads(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{
		"pending": a.Uploads.Tracker.Pending(CurrentSession(c).ID),
	})
}
