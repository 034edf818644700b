package service

// Shared test fixtures: a discard logger and a fake asset store. Service
// tests run against the in-memory repositories, which return the same
// apperror values as the MongoDB ones.

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/sakif/bazaar/internal/model"
	"github.com/sakif/bazaar/internal/repository/memory"
	"github.com/sakif/bazaar/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeObjectStore records saves and derives each object URL from the
// uploaded bytes, so tests can assert URL ordering deterministically even
// though uploads run concurrently.
type fakeObjectStore struct {
	mu    sync.Mutex
	saved int
	fail  bool
}

func (f *fakeObjectStore) Save(_ context.Context, field, mimeType string, r io.Reader) (*storage.Object, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	if f.fail {
		f.mu.Unlock()
		return nil, errors.New("asset host unavailable")
	}
	f.saved++
	f.mu.Unlock()

	name := field + "-" + string(content)
	return &storage.Object{
		Name:     name,
		MimeType: mimeType,
		Size:     int64(len(content)),
		Location: "/static/" + name,
		URL:      "http://assets.local/static/" + name,
	}, nil
}

// mustRegister creates a profile directly through the user repository.
func mustRegister(t *testing.T, store *memory.Store, uid, name string) *model.User {
	t.Helper()
	user := &model.User{
		UID:   uid,
		Email: uid + "@example.com",
		Name:  name,
	}
	if err := store.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("creating user %s: %v", uid, err)
	}
	return user
}
