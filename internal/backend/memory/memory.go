package memory

import "github.com/iliyamo/justloook-provider-portal/internal/backend"

// New returns a complete in-memory backend. Uploaded objects are served
// under mediaBaseURL.
func New(mediaBaseURL string) backend.Backend {
	return backend.Backend{
		Auth:    NewAuth(),
		Docs:    NewDocStore(),
		Objects: NewObjectStore(mediaBaseURL),
		Close:   func() error { return nil },
	}
}
