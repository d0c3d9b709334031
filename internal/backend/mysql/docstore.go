package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
)

// DocStore keeps documents as JSON in the documents table, keyed by
// (collection, id). Merge writes use JSON_MERGE_PATCH so nested maps merge
// the same way they do in the hosted document database.
type DocStore struct{ db *sql.DB }

func NewDocStore(db *sql.DB) *DocStore { return &DocStore{db: db} }

func (s *DocStore) Get(ctx context.Context, collection, id string) (backend.Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection=? AND id=? LIMIT 1",
		collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return backend.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, backend.ErrNotFound)
		}
		return backend.Document{}, wrap("get "+collection+"/"+id, err)
	}
	data, err := decode(raw)
	if err != nil {
		return backend.Document{}, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return backend.Document{ID: id, Data: data}, nil
}

func (s *DocStore) Set(ctx context.Context, collection, id string, data map[string]any, mode backend.WriteMode) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	q := "INSERT INTO documents (collection, id, data) VALUES (?,?,?) ON DUPLICATE KEY UPDATE data = VALUES(data)"
	if mode == backend.Merge {
		q = "INSERT INTO documents (collection, id, data) VALUES (?,?,?) ON DUPLICATE KEY UPDATE data = JSON_MERGE_PATCH(data, VALUES(data))"
	}
	_, err = s.db.ExecContext(ctx, q, collection, id, raw)
	return wrap("set "+collection+"/"+id, err)
}

func (s *DocStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", collection, err)
	}
	id := backend.NewDocumentID()
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, data) VALUES (?,?,?)",
		collection, id, raw); err != nil {
		return "", wrap("add "+collection, err)
	}
	return id, nil
}

func (s *DocStore) Query(ctx context.Context, collection string, filters ...backend.Filter) ([]backend.Document, error) {
	if err := backend.ValidateFilters(filters); err != nil {
		return nil, err
	}
	q, args := buildQuery(collection, filters)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap("query "+collection, err)
	}
	defer rows.Close()

	var docs []backend.Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		data, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		docs = append(docs, backend.Document{ID: id, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("query "+collection, err)
	}
	return docs, nil
}

// buildQuery turns filters into a parameterised SELECT. Field paths are
// bound as parameters too, quoted so any field name is a valid JSON path.
// Values compare as unquoted JSON text.
func buildQuery(collection string, filters []backend.Filter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT id, data FROM documents WHERE collection = ?")
	args := []any{collection}
	for _, f := range filters {
		b.WriteString(" AND JSON_UNQUOTE(JSON_EXTRACT(data, ?))")
		args = append(args, jsonPath(f.Field))
		switch f.Op {
		case backend.OpEqual:
			b.WriteString(" = ?")
			args = append(args, scalarText(f.Value))
		case backend.OpIn:
			b.WriteString(" IN (")
			for i, v := range f.Values {
				if i > 0 {
					b.WriteString(",")
				}
				b.WriteString("?")
				args = append(args, v)
			}
			b.WriteString(")")
		}
	}
	b.WriteString(" ORDER BY created_at, id")
	return b.String(), args
}

func jsonPath(field string) string {
	return `$."` + strings.ReplaceAll(field, `"`, `\"`) + `"`
}

func scalarText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "null"
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}

func decode(raw []byte) (map[string]any, error) {
	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}
