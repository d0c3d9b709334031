package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
)

type object struct {
	contentType string
	data        []byte
}

// ObjectStore keeps uploads in memory and serves them through the /media
// route under baseURL.
type ObjectStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]object
}

func NewObjectStore(baseURL string) *ObjectStore {
	return &ObjectStore{baseURL: strings.TrimRight(baseURL, "/"), objects: make(map[string]object)}
}

func (s *ObjectStore) Upload(ctx context.Context, key, contentType string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{contentType: contentType, data: data}
	return nil
}

func (s *ObjectStore) DownloadURL(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	_, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("download url %s: %w", key, backend.ErrNotFound)
	}
	return s.baseURL + "/" + escapeKey(key), nil
}

func (s *ObjectStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, "", fmt.Errorf("open %s: %w", key, backend.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.contentType, nil
}

// escapeKey escapes each path segment of an object key.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
