package service

import (
	"context"
	"io"
	"sync"

	"github.com/sakif/bazaar/internal/storage"
)

// Upload is one file received at the HTTP boundary, ready to stream to the
// asset host.
type Upload struct {
	MimeType string
	Content  io.Reader
}

// uploadAll pushes every file to the asset host concurrently and returns
// the resulting URLs in input order.
//
// All-or-nothing: any failure fails the whole batch, so no post or product
// is ever persisted referencing half its images. Files already stored by
// the time a sibling fails are orphaned, not rolled back — an accepted gap.
func uploadAll(ctx context.Context, store storage.ObjectStore, field string, uploads []Upload) ([]string, error) {
	urls := make([]string, len(uploads))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, up := range uploads {
		wg.Add(1)
		go func(i int, up Upload) {
			defer wg.Done()

			obj, err := store.Save(ctx, field, up.MimeType, up.Content)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			urls[i] = obj.URL
		}(i, up)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return urls, nil
}
