package firebase

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// downloadTokenKey is the object metadata key Firebase Storage reads
// download tokens from. Several tokens may be stored comma separated.
const downloadTokenKey = "firebaseStorageDownloadTokens"

// ObjectStore writes to the project's Firebase Storage bucket through the
// Cloud Storage API and hands out token URLs the browser can load without
// credentials.
type ObjectStore struct {
	client *storage.Client
	bucket string
}

func NewObjectStore(client *storage.Client, bucket string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket}
}

func (s *ObjectStore) Upload(ctx context.Context, key, contentType string, r io.Reader) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokenKey: uuid.NewString()}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return objectError("upload "+key, err)
	}
	if err := w.Close(); err != nil {
		return objectError("finalize upload "+key, err)
	}
	return nil
}

// DownloadURL returns a token URL for key, minting a token when the object
// was written without one.
func (s *ObjectStore) DownloadURL(ctx context.Context, key string) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(key)
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return "", objectError("stat "+key, err)
	}
	token := firstToken(attrs.Metadata[downloadTokenKey])
	if token == "" {
		token = uuid.NewString()
		if _, err := obj.Update(ctx, storage.ObjectAttrsToUpdate{
			Metadata: map[string]string{downloadTokenKey: token},
		}); err != nil {
			return "", objectError("set download token "+key, err)
		}
	}
	return downloadURL(s.bucket, key, token), nil
}

func firstToken(tokens string) string {
	first, _, _ := strings.Cut(tokens, ",")
	return strings.TrimSpace(first)
}

// downloadURL escapes the whole key, slashes included, as Firebase
// Storage expects.
func downloadURL(bucket, key, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(key), url.QueryEscape(token))
}
