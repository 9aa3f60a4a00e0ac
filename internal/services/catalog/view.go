package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mcoot/gamerhub/internal/dependencies/clock"
	"github.com/mcoot/gamerhub/internal/model"
)

// ErrStale is returned when the filters or profile changed while a load was
// in flight; the response was discarded
var ErrStale = errors.New("catalog response superseded by newer filters")

// View is the catalog view-model of one client. It remembers the profile,
// filters and page, and caches the kids superset for the current filters.
type View struct {
	engine    *Engine
	pageSize  int
	debouncer *Debouncer
	logger    *slog.Logger

	mu          sync.Mutex
	profileID   model.FlexID
	restriction model.Restriction
	filter      model.GameFilter
	page        int
	generation  uint64
	superset    *Superset
	current     *Page
}

// NewView creates a view with the given page size
func NewView(engine *Engine, pageSize int, clk clock.Clock, logger *slog.Logger) *View {
	return &View{
		engine:    engine,
		pageSize:  pageSize,
		debouncer: NewDebouncer(clk, SearchDebounce),
		logger:    logger,
		page:      1,
	}
}

// SetProfile switches the profile the catalog is shown to. A different
// profile or restriction level discards the cached superset.
func (v *View) SetProfile(p *model.Profile) {
	var id model.FlexID
	var restriction model.Restriction
	if p != nil {
		id = p.ID
		restriction = p.Restriction
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if id == v.profileID && restriction == v.restriction {
		return
	}
	v.profileID = id
	v.restriction = restriction
	v.invalidateLocked()
	// Never fall back to a page chosen for another profile
	v.current = nil
}

// SetFilter changes the server-side filters. A different filter discards the
// cached superset and returns to page 1.
func (v *View) SetFilter(f model.GameFilter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if f.Key() == v.filter.Key() {
		return
	}
	v.filter = f
	v.invalidateLocked()
}

// SetPage moves to page n without invalidating anything
func (v *View) SetPage(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if n < 1 {
		n = 1
	}
	v.page = n
}

// TypeSearch debounces a search keystroke. The channel receives true once the
// search text has been committed as the filter, false if a later keystroke
// superseded it.
func (v *View) TypeSearch(text string) <-chan bool {
	return v.debouncer.Trigger(func() {
		v.mu.Lock()
		f := v.filter
		v.mu.Unlock()

		f.Search = text
		v.SetFilter(f)
	})
}

// Invalidate discards the cached superset
func (v *View) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.invalidateLocked()
}

func (v *View) invalidateLocked() {
	v.generation++
	v.superset = nil
	v.page = 1
}

// Reset forgets the profile and filters, as after logout
func (v *View) Reset() {
	v.debouncer.Stop()
	v.mu.Lock()
	defer v.mu.Unlock()
	v.profileID = ""
	v.restriction = ""
	v.filter = model.GameFilter{}
	v.invalidateLocked()
	v.current = nil
}

// Filter returns the current filters
func (v *View) Filter() model.GameFilter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// Kids reports whether the view is filtering for a kids profile
func (v *View) Kids() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.restriction == model.RestrictionKids
}

// PageSize returns the number of games per page
func (v *View) PageSize() int {
	return v.pageSize
}

// Current returns the last successfully loaded page
func (v *View) Current() (Page, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == nil {
		return Page{}, false
	}
	return *v.current, true
}

// Superset returns the cached kids superset, if one is held
func (v *View) Superset() (*Superset, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.superset, v.superset != nil
}

// Load returns the page to render for the current profile, filters and page.
// On failure the previously loaded page is returned with the error. A response
// that arrives after the filters or profile changed is dropped with ErrStale.
func (v *View) Load(ctx context.Context) (Page, error) {
	v.mu.Lock()
	gen := v.generation
	kids := v.restriction == model.RestrictionKids
	filter := v.filter
	page := v.page
	superset := v.superset
	v.mu.Unlock()

	if !kids {
		p, err := v.engine.AdultPage(ctx, filter, page, v.pageSize)
		return v.commit(gen, p, nil, err)
	}

	if superset == nil {
		s, err := v.engine.Materialize(ctx, filter)
		if err != nil {
			return v.commit(gen, Page{}, nil, err)
		}
		superset = s
		if s.Truncated {
			v.logger.Info("kids catalog truncated at record cap",
				slog.Int("cap", KidsRecordCap),
				slog.String("search", filter.Search))
		}
	}

	return v.commit(gen, Paginate(superset.Games, page, v.pageSize), superset, nil)
}

func (v *View) commit(gen uint64, p Page, superset *Superset, err error) (Page, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.generation {
		staleResponsesTotal.Inc()
		return Page{}, ErrStale
	}

	if err != nil {
		v.logger.Warn("failed to load catalog", slog.String("error", err.Error()))
		if v.current != nil {
			return *v.current, err
		}
		return Page{}, err
	}

	if superset != nil {
		v.superset = superset
	}
	v.page = p.Number
	v.current = &p
	return p, nil
}
