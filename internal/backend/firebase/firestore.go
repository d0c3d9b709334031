package firebase

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
)

// maxInValues is Firestore's limit on the disjunction size of an "in"
// filter. Larger sets are split into several queries.
const maxInValues = 30

type DocStore struct {
	client *firestore.Client
}

func NewDocStore(client *firestore.Client) *DocStore { return &DocStore{client: client} }

func (s *DocStore) Get(ctx context.Context, collection, id string) (backend.Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return backend.Document{}, docError("get "+collection+"/"+id, err)
	}
	return backend.Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s *DocStore) Set(ctx context.Context, collection, id string, data map[string]any, mode backend.WriteMode) error {
	var opts []firestore.SetOption
	if mode == backend.Merge {
		opts = append(opts, firestore.MergeAll)
	}
	_, err := s.client.Collection(collection).Doc(id).Set(ctx, data, opts...)
	return docError("set "+collection+"/"+id, err)
}

func (s *DocStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", docError("add "+collection, err)
	}
	return ref.ID, nil
}

// Query supports any number of equality filters and at most one "in"
// filter. An "in" filter over more than maxInValues values fans out into
// concurrent queries whose results are merged in chunk order.
func (s *DocStore) Query(ctx context.Context, collection string, filters ...backend.Filter) ([]backend.Document, error) {
	if err := backend.ValidateFilters(filters); err != nil {
		return nil, err
	}
	base := s.client.Collection(collection).Query
	var in *backend.Filter
	for i := range filters {
		f := filters[i]
		if f.Op == backend.OpIn {
			if in != nil {
				return nil, errors.New("firestore: only one in filter per query")
			}
			in = &filters[i]
			continue
		}
		base = base.Where(f.Field, "==", f.Value)
	}
	if in == nil {
		docs, err := run(ctx, base)
		if err != nil {
			return nil, docError("query "+collection, err)
		}
		return docs, nil
	}

	chunks := chunk(in.Values, maxInValues)
	results := make([][]backend.Document, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for i, values := range chunks {
		g.Go(func() error {
			docs, err := run(gctx, base.Where(in.Field, "in", toAny(values)))
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, docError("query "+collection, err)
	}
	return mergeUnique(results), nil
}

func run(ctx context.Context, q firestore.Query) ([]backend.Document, error) {
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	docs := make([]backend.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, backend.Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

func chunk(values []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(values); start += size {
		end := min(start+size, len(values))
		out = append(out, values[start:end])
	}
	return out
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// mergeUnique flattens chunk results keeping the first occurrence of each
// document id.
func mergeUnique(results [][]backend.Document) []backend.Document {
	seen := make(map[string]bool)
	var out []backend.Document
	for _, docs := range results {
		for _, d := range docs {
			if seen[d.ID] {
				continue
			}
			seen[d.ID] = true
			out = append(out, d)
		}
	}
	return out
}
