// Package storage abstracts the external asset host. Handlers and services
// upload through the ObjectStore interface and persist only the returned
// URLs; they never know whether the bytes landed on local disk or a CDN.
package storage

import (
	"context"
	"io"
)

// Object describes a stored asset.
type Object struct {
	Name     string `json:"filename"`
	MimeType string `json:"mimetype"`
	Size     int64  `json:"size"`
	Location string `json:"location"` // serving path, e.g. /static/<name>
	URL      string `json:"-"`        // absolute URL persisted on domain documents
}

// ObjectStore saves uploaded files and hands back where they live.
//
// field names the upload slot (image, images, offer) and prefixes the
// generated object name; mimeType is the client-declared media type.
type ObjectStore interface {
	Save(ctx context.Context, field, mimeType string, r io.Reader) (*Object, error)
}
