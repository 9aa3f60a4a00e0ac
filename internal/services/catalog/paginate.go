package catalog

import "github.com/mcoot/gamerhub/internal/model"

// Page sizes used by the different catalog screens
const (
	PageSizeMain    = 20
	PageSizeCompact = 8
	PageSizeAdmin   = 10
)

// Page is one page of games ready to render
type Page struct {
	Games      []model.Game
	Number     int
	Size       int
	TotalItems int
	TotalPages int
}

// HasPrev reports whether a previous page exists
func (p Page) HasPrev() bool {
	return p.Number > 1
}

// HasNext reports whether a next page exists
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

// Empty reports whether there is nothing to show at all
func (p Page) Empty() bool {
	return p.TotalItems == 0
}

// Dedupe keeps the first game per canonical identity, in encounter order.
// Games with no identity are dropped.
func Dedupe(games []model.Game) []model.Game {
	seen := make(map[model.CanonicalID]struct{}, len(games))
	out := make([]model.Game, 0, len(games))
	for _, g := range games {
		id, ok := model.ResolveGameIdentity(g)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, g)
	}
	return out
}

// TotalPages returns ceil(total/size)
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Paginate slices games into the requested page. The total is recomputed from
// games, and a page outside [1, total pages] resets to 1.
func Paginate(games []model.Game, page, size int) Page {
	if size <= 0 {
		size = PageSizeMain
	}
	total := len(games)
	pages := TotalPages(total, size)

	if page < 1 || page > pages {
		page = 1
	}

	start := min((page-1)*size, total)
	end := min(start+size, total)

	return Page{
		Games:      games[start:end:end],
		Number:     page,
		Size:       size,
		TotalItems: total,
		TotalPages: pages,
	}
}
