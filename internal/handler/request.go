package handler

// Request helpers: path-parameter parsing and multipart extraction shared
// by the image-bearing endpoints.

import (
	"net/http"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sakif/bazaar/internal/apperror"
	"github.com/sakif/bazaar/internal/repository"
	"github.com/sakif/bazaar/internal/service"
)

// maxUploadMemory bounds how much of a multipart body is held in memory
// before spilling to temp files.
const maxUploadMemory = 32 << 20

// maxImagesPerUpload caps the images accepted on post and product creation.
const maxImagesPerUpload = 5

// pathID parses a chi URL parameter as a document id. Malformed hex maps to
// a validation error (400) rather than a failed store lookup.
func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(r.PathValue(name))
	if err != nil {
		return primitive.NilObjectID, apperror.ValidationFailed(name, "Invalid "+name)
	}
	return id, nil
}

// listOptions reads limit/page/sort from the query string. Defaults are
// limit 10, page 1, ascending.
func listOptions(r *http.Request) repository.ListOptions {
	opts := repository.ListOptions{Limit: 10, Page: 1}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		opts.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		opts.Page = v
	}
	opts.Desc = r.URL.Query().Get("sort") == "desc"
	return opts
}

// formUploads opens every file under the given multipart field, up to max.
// The returned cleanup closes all opened files and must be called once the
// uploads have been consumed.
func formUploads(r *http.Request, field string, max int) ([]service.Upload, func(), error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, func() {}, apperror.ValidationFailed(field, "Invalid multipart form")
	}

	headers := r.MultipartForm.File[field]
	if len(headers) > max {
		headers = headers[:max]
	}

	uploads := make([]service.Upload, 0, len(headers))
	closers := make([]func() error, 0, len(headers))
	cleanup := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			cleanup()
			return nil, func() {}, apperror.ValidationFailed(field, "Invalid multipart form")
		}
		closers = append(closers, f.Close)
		uploads = append(uploads, service.Upload{
			MimeType: fh.Header.Get("Content-Type"),
			Content:  f,
		})
	}
	return uploads, cleanup, nil
}

// formUpload opens a single optional file under the given field. A missing
// file returns (nil, noop, nil); callers decide whether absence is an error.
func formUpload(r *http.Request, field string) (*service.Upload, func(), error) {
	uploads, cleanup, err := formUploads(r, field, 1)
	if err != nil {
		return nil, func() {}, err
	}
	if len(uploads) == 0 {
		cleanup()
		return nil, func() {}, nil
	}
	return &uploads[0], cleanup, nil
}

// splitIDs parses a comma-separated list of document ids, as used by the
// category-filtered product listing.
func splitIDs(raw string) ([]primitive.ObjectID, error) {
	parts := strings.Split(raw, ",")
	ids := make([]primitive.ObjectID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(p)
		if err != nil {
			return nil, apperror.ValidationFailed("categories", "Invalid category id "+p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
