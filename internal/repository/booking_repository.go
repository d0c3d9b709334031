package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
	"github.com/iliyamo/justloook-provider-portal/internal/model"
)

type BookingRepo struct{ docs backend.DocumentStore }

func NewBookingRepo(docs backend.DocumentStore) *BookingRepo { return &BookingRepo{docs: docs} }

// ListForScreens returns the bookings made against screenIDs, most recent
// date first. An empty id set returns no bookings without querying.
func (r *BookingRepo) ListForScreens(ctx context.Context, screenIDs []string) ([]model.Booking, error) {
	ids := uniqueNonEmpty(screenIDs)
	if len(ids) == 0 {
		return nil, nil
	}
	docs, err := r.docs.Query(ctx, model.BookingsCollection, backend.In("screenId", ids))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	bookings := make([]model.Booking, 0, len(docs))
	for _, d := range docs {
		bookings = append(bookings, model.BookingFromDocument(d.ID, d.Data))
	}
	sort.SliceStable(bookings, func(i, j int) bool { return bookings[i].Date > bookings[j].Date })
	return bookings, nil
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
