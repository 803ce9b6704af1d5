package media

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// Disk writes uploads under Dir. Prefix is the public URL they are served
// from, either a path such as "/uploads" or an absolute URL.
type Disk struct {
	Dir    string
	Prefix string

	// mu serialises name reservation so two uploads of the same name
	// cannot pick the same file.
	mu sync.Mutex
}

func NewDisk(dir, prefix string) *Disk {
	return &Disk{Dir: dir, Prefix: prefix}
}

func (d *Disk) Upload(ctx context.Context, f File, kind Kind, folder string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	folder = strings.Trim(path.Clean("/"+folder), "/")
	dir := filepath.Join(d.Dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("media: create upload dir: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	name := uniqueFilename(dir, f.Name)
	if err := os.WriteFile(filepath.Join(dir, name), f.Data, 0o644); err != nil {
		return "", fmt.Errorf("media: write %s: %w", kind, err)
	}
	return strings.TrimRight(d.Prefix, "/") + "/" + path.Join(folder, name), nil
}

// uniqueFilename slugifies name and appends a counter while the file
// already exists in dir.
func uniqueFilename(dir, name string) string {
	base, ext := slugifyFilename(name)
	candidate := base + ext
	for counter := 2; ; counter++ {
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d%s", base, counter, ext)
	}
}
