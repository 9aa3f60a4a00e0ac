package catalog

import (
	"context"
	"fmt"

	"github.com/mcoot/gamerhub/internal/backend"
	"github.com/mcoot/gamerhub/internal/model"
)

const (
	// KidsFetchPageSize is the remote page size used while accumulating a
	// kids superset
	KidsFetchPageSize = 50

	// KidsRecordCap bounds the raw records accumulated for a kids superset.
	// A kids profile may see an incomplete catalog when more records match.
	KidsRecordCap = 200
)

// Source is a remote paged listing of games
type Source interface {
	ListPublicGames(ctx context.Context, q backend.ListQuery) (*model.GameListing, error)
}

// Engine produces catalog pages from a remote Source
type Engine struct {
	source Source
}

// NewEngine creates an engine over source
func NewEngine(source Source) *Engine {
	return &Engine{source: source}
}

// Superset is the locally materialized, filtered catalog of a kids profile
type Superset struct {
	// Games are the appropriate, de-duplicated games in encounter order
	Games []model.Game
	// Raw is the number of records fetched before filtering
	Raw int
	// Truncated is set when the record cap stopped accumulation early
	Truncated bool
}

// AdultPage fetches exactly the requested page and trusts the server total
func (e *Engine) AdultPage(ctx context.Context, filter model.GameFilter, page, size int) (Page, error) {
	if page < 1 {
		page = 1
	}
	listing, err := e.source.ListPublicGames(ctx, backend.ListQuery{Page: page, PageSize: size, Filter: filter})
	if err != nil {
		return Page{}, fmt.Errorf("failed to fetch catalog page %d: %w", page, err)
	}
	remotePagesFetched.WithLabelValues("adults").Inc()

	return Page{
		Games:      listing.Games,
		Number:     page,
		Size:       size,
		TotalItems: listing.Total,
		TotalPages: TotalPages(listing.Total, size),
	}, nil
}

// Materialize accumulates remote pages sequentially until the server has no
// more, a page comes back empty, or KidsRecordCap raw records are held. The
// records are then filtered for kids and de-duplicated. Any fetch failure
// aborts the whole accumulation.
func (e *Engine) Materialize(ctx context.Context, filter model.GameFilter) (*Superset, error) {
	var raw []model.Game
	truncated := false

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		listing, err := e.source.ListPublicGames(ctx, backend.ListQuery{Page: page, PageSize: KidsFetchPageSize, Filter: filter})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch catalog page %d: %w", page, err)
		}
		remotePagesFetched.WithLabelValues("kids").Inc()

		if len(listing.Games) == 0 {
			break
		}
		raw = append(raw, listing.Games...)

		if len(raw) >= KidsRecordCap {
			truncated = len(raw) > KidsRecordCap || page*KidsFetchPageSize < listing.Total
			raw = raw[:KidsRecordCap]
			break
		}
		if isLastPage(listing, page) {
			break
		}
	}

	kidsSupersetSize.Observe(float64(len(raw)))

	return &Superset{
		Games:     Dedupe(FilterVisible(model.RestrictionKids, raw)),
		Raw:       len(raw),
		Truncated: truncated,
	}, nil
}

func isLastPage(listing *model.GameListing, page int) bool {
	if len(listing.Games) < KidsFetchPageSize {
		return true
	}
	return listing.Total > 0 && page*KidsFetchPageSize >= listing.Total
}
