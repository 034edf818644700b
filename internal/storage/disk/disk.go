// Package disk stores uploaded assets on the local filesystem and serves
// them back under /static/. Object names are <field>-<xid>.<ext> — xid keeps
// them unique and roughly time-ordered, the extension comes from the
// declared media type.
package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/bazaar/internal/storage"
)

var _ storage.ObjectStore = (*Store)(nil)

// Store writes objects into a single directory.
type Store struct {
	dir     string
	baseURL string // public origin prefixed onto /static/ locations
}

// New creates the upload directory if needed and returns a Store.
func New(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("disk: creating upload dir %s: %w", dir, err)
	}
	return &Store{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir returns the directory objects are written to, for the /static/ file
// server to mount.
func (s *Store) Dir() string {
	return s.dir
}

// Save streams the reader into a new object file.
// A partially written file is removed on failure so the directory never
// accumulates torsos.
func (s *Store) Save(ctx context.Context, field, mimeType string, r io.Reader) (*storage.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s-%s.%s", field, xid.New().String(), extensionFor(mimeType))
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("disk: creating object %s: %w", name, err)
	}

	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("disk: writing object %s: %w", name, err)
	}

	location := "/static/" + name
	return &storage.Object{
		Name:     name,
		MimeType: mimeType,
		Size:     size,
		Location: location,
		URL:      s.baseURL + location,
	}, nil
}

// extensionFor derives a file extension from a media type, e.g.
// "image/png" → "png". Unknown shapes fall back to "bin".
func extensionFor(mimeType string) string {
	if i := strings.LastIndex(mimeType, "/"); i >= 0 && i < len(mimeType)-1 {
		ext := mimeType[i+1:]
		// strip any parameters, e.g. "svg+xml; charset=utf-8"
		if j := strings.IndexAny(ext, "+;"); j > 0 {
			ext = ext[:j]
		}
		if ext != "" {
			return ext
		}
	}
	return "bin"
}
