package media

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrAlreadyUploading is reported for a field whose previous upload has
// not finished.
var ErrAlreadyUploading = errors.New("upload already in progress")

// Item is one file bound to a form field path such as
// "content.imageGallery.0.image".
type Item struct {
	Path string
	Kind Kind
	File File
}

// Result reports per-field outcomes. A field appears in exactly one map.
type Result struct {
	URLs   map[string]string `json:"urls"`
	Errors map[string]string `json:"errors"`
}

// Uploader runs the uploads of one form submission concurrently.
type Uploader struct {
	Store       Store
	Tracker     *Tracker
	MaxWidth    int
	Concurrency int
}

// UploadAll uploads every item into folder. Items run in parallel, at most
// Concurrency at a time; a failing item does not cancel the others.
func (u *Uploader) UploadAll(ctx context.Context, session, folder string, items []Item) Result {
	res := Result{URLs: map[string]string{}, Errors: map[string]string{}}
	var mu sync.Mutex
	record := func(path, url string, err error) {
		mu.Lock()
		defer mu.Unlock()
		_, done := res.URLs[path]
		if _, failed := res.Errors[path]; done || failed {
			return
		}
		if err != nil {
			res.Errors[path] = err.Error()
			return
		}
		res.URLs[path] = url
	}

	var g errgroup.Group
	if u.Concurrency > 0 {
		g.SetLimit(u.Concurrency)
	}
	for _, it := range items {
		if !u.Tracker.Start(session, it.Path) {
			record(it.Path, "", ErrAlreadyUploading)
			continue
		}
		g.Go(func() error {
			defer u.Tracker.Done(session, it.Path)
			f := it.File
			if it.Kind == Image {
				f = Optimize(f, u.MaxWidth)
			}
			url, err := u.Store.Upload(ctx, f, it.Kind, folder)
			record(it.Path, url, err)
			return nil
		})
	}
	_ = g.Wait()
	return res
}
