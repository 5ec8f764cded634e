package repository

import (
	"context"
	"math"
	"strings"

	"github.com/iliyamo/tripadvisor-api/internal/model"
)

// ListingSearchQuery filters hotels or restaurants by case-insensitive
// substring.  Empty fields match everything.
type ListingSearchQuery struct {
	Title    string
	City     string
	Country  string
	Page     int
	PageSize int
}

const (
	maxPageSize = 100
	// maxPage keeps (page-1)*pageSize inside int.
	maxPage = math.MaxInt / maxPageSize
)

// Normalize clamps paging to 1 <= page <= maxPage and 1 <= size <= 100
// (default 20).
func (q ListingSearchQuery) Normalize() ListingSearchQuery {
	switch {
	case q.Page < 1:
		q.Page = 1
	case q.Page > maxPage:
		q.Page = maxPage
	}
	switch {
	case q.PageSize < 1:
		q.PageSize = 20
	case q.PageSize > maxPageSize:
		q.PageSize = maxPageSize
	}
	return q
}

// Offset is the row offset of a normalized query's page.
func (q ListingSearchQuery) Offset() int { return (q.Page - 1) * q.PageSize }

// Search returns one page of matches and the total number of matches.
func (r *ListingRepo) Search(ctx context.Context, q ListingSearchQuery) ([]model.Listing, int64, error) {
	q = q.Normalize()
	where := []string{}
	args := []any{}
	for _, f := range []struct{ col, val string }{
		{"title", q.Title},
		{"city", q.City},
		{"country", q.Country},
	} {
		if v := strings.TrimSpace(f.val); v != "" {
			where = append(where, "LOWER("+f.col+") LIKE ?")
			args = append(args, "%"+escapeLike(strings.ToLower(v))+"%")
		}
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM "+r.table+" WHERE "+cond, args...); err != nil {
		return nil, 0, classify(r.entity, err)
	}
	if total == 0 {
		return []model.Listing{}, 0, nil
	}

	page := append(append([]any{}, args...), q.PageSize, q.Offset())
	out, err := selectAll[model.Listing](ctx, r.db, r.entity,
		"SELECT "+listingColumns+" FROM "+r.table+" WHERE "+cond+" ORDER BY title, id LIMIT ? OFFSET ?", page...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// escapeLike quotes LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
