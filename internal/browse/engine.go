package browse

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/zjrosen/rdapgw/internal/cachemanager"
	"github.com/zjrosen/rdapgw/internal/log"
	"github.com/zjrosen/rdapgw/internal/registrar"
)

const viewTTL = 5 * time.Minute

type viewKey string

// Engine serves queries over one dataset, memoizing filtered and sorted views
// so paging does not refilter.
type Engine struct {
	mu      sync.RWMutex
	records []registrar.Record
	facets  Facets
	version int
	views   *cachemanager.ReadThroughCache[viewKey, []registrar.Record, Query]
}

// NewEngine creates an engine over records. The slice is not copied and must
// not be modified afterwards.
func NewEngine(records []registrar.Record) *Engine {
	e := &Engine{}
	cache := cachemanager.NewInMemoryCacheManager[viewKey, []registrar.Record]("browse", viewTTL, cachemanager.DefaultCleanupInterval)
	e.views = cachemanager.NewReadThroughCache[viewKey, []registrar.Record, Query](cache, e.apply, false)
	e.set(records)
	return e
}

func (e *Engine) set(records []registrar.Record) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.records = records
	e.facets = BuildFacets(records)
	e.version++
}

func (e *Engine) apply(_ context.Context, q Query) ([]registrar.Record, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Apply(e.records, q), nil
}

// Replace swaps in a new dataset and drops every memoized view.
func (e *Engine) Replace(ctx context.Context, records []registrar.Record) error {
	e.set(records)
	log.Info(log.CatCache, "browse dataset replaced", "records", len(records))
	return e.views.Invalidate(ctx)
}

// View returns the full filtered and sorted result for q.
func (e *Engine) View(ctx context.Context, q Query) ([]registrar.Record, error) {
	e.mu.RLock()
	key := viewKey(strconv.Itoa(e.version) + "#" + q.Key())
	e.mu.RUnlock()
	return e.views.Get(ctx, key, q, viewTTL)
}

// Query returns the requested page of q's view.
func (e *Engine) Query(ctx context.Context, q Query) (Page, error) {
	view, err := e.View(ctx, q)
	if err != nil {
		return Page{}, err
	}
	return Paginate(view, q.Page, q.PageSize), nil
}

// Facets returns the distinct filter values of the current dataset.
func (e *Engine) Facets() Facets {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.facets
}

// Len is the number of records in the dataset.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.records)
}
