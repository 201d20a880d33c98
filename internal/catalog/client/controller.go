package client

import (
	"context"
	"sync"
	"time"

	"github.com/croptivize/catalog/internal/catalog/domain"
)

// Controller defaults. DefaultClientLimit matches the shop grid, which shows
// six cards per page.
const (
	DefaultDebounce    = 500 * time.Millisecond
	DefaultClientLimit = 6
)

// Fetcher fetches one page of products. *Client satisfies it.
type Fetcher interface {
	ListProducts(ctx context.Context, f domain.Filter) (*domain.PageEnvelope, error)
}

// Snapshot is an immutable view of the controller state handed to OnChange
// and returned by State.
type Snapshot struct {
	Filter  domain.Filter
	Page    *domain.PageEnvelope
	Loading bool
	Err     error
}

// Config configures a FilterController. Zero values select the defaults.
type Config struct {
	Debounce time.Duration
	Limit    int
	OnChange func(Snapshot)
}

// FilterController owns the catalog filter state for one view: it debounces
// search input, resets the page on filter changes, clamps page navigation,
// and discards stale fetch results.
//
// Every fetch is tagged with a generation number. A result is applied only if
// its generation is newer than the last resolved one, so a slow early
// response can never overwrite a later one.
type FilterController struct {
	fetcher Fetcher
	cfg     Config

	mu          sync.Mutex
	filter      domain.Filter
	page        *domain.PageEnvelope
	err         error
	issuedGen   uint64
	resolvedGen uint64

	// searchEpoch invalidates pending debounce commits. A commit fires only
	// if the epoch it captured is still current, so a Reset that lost the
	// timer.Stop race still wins over the late commit.
	searchEpoch uint64
	searchTimer *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewFilterController creates a controller and issues the initial fetch.
func NewFilterController(fetcher Fetcher, cfg Config) *FilterController {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultClientLimit
	}

	ctx, cancel := context.WithCancel(context.Background())
	f := domain.DefaultFilter()
	f.Limit = cfg.Limit

	c := &FilterController{
		fetcher: fetcher,
		cfg:     cfg,
		filter:  f,
		ctx:     ctx,
		cancel:  cancel,
	}

	c.mu.Lock()
	snap := c.dispatchLocked()
	c.mu.Unlock()
	c.notify(snap)
	return c
}

// State returns the current snapshot.
func (c *FilterController) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SetSearch records the search text and schedules a fetch after the debounce
// window. Successive calls within the window restart it, so a burst of
// keystrokes produces exactly one query.
func (c *FilterController) SetSearch(search string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	if c.searchTimer != nil {
		c.searchTimer.Stop()
	}
	c.searchEpoch++
	epoch := c.searchEpoch
	c.searchTimer = time.AfterFunc(c.cfg.Debounce, func() {
		c.commitSearch(epoch, search)
	})
}

func (c *FilterController) commitSearch(epoch uint64, search string) {
	c.mu.Lock()
	if c.closed || epoch != c.searchEpoch {
		// Superseded by a later keystroke or a reset.
		c.mu.Unlock()
		return
	}
	if c.filter.Search == search {
		// Typing that lands back on the committed text is not a change.
		c.mu.Unlock()
		return
	}
	c.filter.Search = search
	c.filter.Page = 1
	snap := c.dispatchLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// SetCategory applies a category filter and returns to the first page.
func (c *FilterController) SetCategory(category string) {
	c.applyChange(func(f *domain.Filter) { f.Category = category })
}

// SetSort changes the sort order and returns to the first page.
func (c *FilterController) SetSort(sort string) {
	c.applyChange(func(f *domain.Filter) { f.Sort = sort })
}

// SetPriceRange applies a price window and returns to the first page. Nil
// bounds mean unbounded.
func (c *FilterController) SetPriceRange(min, max *float64) {
	c.applyChange(func(f *domain.Filter) {
		f.MinPrice = min
		f.MaxPrice = max
	})
}

// SetMinRating applies a rating floor and returns to the first page.
func (c *FilterController) SetMinRating(rating float64) {
	c.applyChange(func(f *domain.Filter) { f.MinRating = rating })
}

// SetFeatured toggles the featured-only filter and returns to the first page.
func (c *FilterController) SetFeatured(featured bool) {
	c.applyChange(func(f *domain.Filter) { f.Featured = featured })
}

// applyChange mutates the filter, resets to page one and fetches immediately.
func (c *FilterController) applyChange(mutate func(*domain.Filter)) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	mutate(&c.filter)
	c.filter.Page = 1
	c.filter = c.filter.Normalize()
	snap := c.dispatchLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// NextPage advances one page if the current metadata says one exists.
func (c *FilterController) NextPage() {
	c.mu.Lock()
	if c.closed || c.page == nil || !c.page.Pagination.HasNextPage {
		c.mu.Unlock()
		return
	}
	c.filter.Page++
	snap := c.dispatchLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// PrevPage steps back one page if there is one.
func (c *FilterController) PrevPage() {
	c.mu.Lock()
	if c.closed || c.page == nil || !c.page.Pagination.HasPrevPage {
		c.mu.Unlock()
		return
	}
	c.filter.Page--
	snap := c.dispatchLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// GoToPage jumps to a page, clamped to the known page range.
func (c *FilterController) GoToPage(page int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if page < 1 {
		page = 1
	}
	if c.page != nil && page > c.page.Pagination.TotalPages {
		page = c.page.Pagination.TotalPages
	}
	if page == c.filter.Page {
		c.mu.Unlock()
		return
	}
	c.filter.Page = page
	snap := c.dispatchLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Reset restores every filter field to its default in one step: any pending
// search commit is cancelled and observers see a single change.
func (c *FilterController) Reset() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.searchTimer != nil {
		c.searchTimer.Stop()
		c.searchTimer = nil
	}
	// Stop can lose to a commit already fired and waiting on the lock;
	// moving the epoch makes that commit a no-op.
	c.searchEpoch++
	f := domain.DefaultFilter()
	f.Limit = c.cfg.Limit
	c.filter = f
	snap := c.dispatchLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Close stops the controller. In-flight fetches are cancelled and later
// mutations become no-ops.
func (c *FilterController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.searchTimer != nil {
		c.searchTimer.Stop()
		c.searchTimer = nil
	}
	c.cancel()
}

// dispatchLocked issues a generation-tagged fetch for the current filter and
// returns the loading snapshot for the caller to publish after unlocking.
// Callers must hold c.mu.
func (c *FilterController) dispatchLocked() Snapshot {
	c.issuedGen++
	gen := c.issuedGen
	f := c.filter

	go c.fetch(gen, f)
	return c.snapshotLocked()
}

func (c *FilterController) fetch(gen uint64, f domain.Filter) {
	page, err := c.fetcher.ListProducts(c.ctx, f)

	c.mu.Lock()
	if c.closed || gen <= c.resolvedGen {
		// A newer fetch already resolved; this result is stale.
		c.mu.Unlock()
		return
	}
	c.resolvedGen = gen
	if err != nil {
		// Keep the last good page so the view can still render.
		c.err = err
	} else {
		c.page = page
		c.err = nil
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

func (c *FilterController) snapshotLocked() Snapshot {
	return Snapshot{
		Filter:  c.filter,
		Page:    c.page,
		Loading: c.issuedGen > c.resolvedGen,
		Err:     c.err,
	}
}

// notify runs the observer callback outside the lock.
func (c *FilterController) notify(snap Snapshot) {
	if c.cfg.OnChange != nil {
		c.cfg.OnChange(snap)
	}
}
