package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/croptivize/catalog/internal/catalog/domain"
)

// stubFetcher hands every ListProducts call to the test, which decides when
// and with what to resolve it. That makes response ordering deterministic.
type fetchResult struct {
	page *domain.PageEnvelope
	err  error
}

type fetchCall struct {
	filter  domain.Filter
	release chan fetchResult
}

type stubFetcher struct {
	calls chan *fetchCall
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{calls: make(chan *fetchCall, 16)}
}

func (s *stubFetcher) ListProducts(ctx context.Context, f domain.Filter) (*domain.PageEnvelope, error) {
	call := &fetchCall{filter: f, release: make(chan fetchResult, 1)}
	s.calls <- call
	select {
	case r := <-call.release:
		return r.page, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func awaitCall(t *testing.T, s *stubFetcher) *fetchCall {
	t.Helper()
	select {
	case call := <-s.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch")
		return nil
	}
}

func assertNoCall(t *testing.T, s *stubFetcher, wait time.Duration) {
	t.Helper()
	select {
	case call := <-s.calls:
		t.Fatalf("unexpected fetch: %+v", call.filter)
	case <-time.After(wait):
	}
}

func pageFor(totalDocs int64, f domain.Filter) *domain.PageEnvelope {
	n := int(totalDocs) - f.Offset()
	if n < 0 {
		n = 0
	}
	if n > f.Limit {
		n = f.Limit
	}
	return &domain.PageEnvelope{
		Products:   make([]domain.Product, n),
		Pagination: domain.NewPagination(totalDocs, f),
	}
}

// awaitState polls until the predicate holds. Resolved fetches apply on a
// goroutine, so state changes shortly after a release, not instantly.
func awaitState(t *testing.T, c *FilterController, ok func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := c.State()
		if ok(snap) {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("state never converged: %+v", snap)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func newTestController(t *testing.T, cfg Config) (*FilterController, *stubFetcher) {
	t.Helper()
	s := newStubFetcher()
	c := NewFilterController(s, cfg)
	t.Cleanup(c.Close)

	// Resolve the initial fetch so every test starts settled.
	initial := awaitCall(t, s)
	initial.release <- fetchResult{page: pageFor(12, initial.filter)}
	awaitState(t, c, func(snap Snapshot) bool { return !snap.Loading })
	return c, s
}

func TestInitialFetchUsesDefaults(t *testing.T) {
	s := newStubFetcher()
	c := NewFilterController(s, Config{})
	t.Cleanup(c.Close)

	call := awaitCall(t, s)
	if call.filter.Page != 1 || call.filter.Limit != DefaultClientLimit {
		t.Fatalf("initial filter = %+v", call.filter)
	}
	if call.filter.Category != domain.CategoryAll || call.filter.Sort != domain.SortNewest {
		t.Fatalf("initial filter = %+v", call.filter)
	}
	if !c.State().Loading {
		t.Fatal("controller should be loading until the first fetch resolves")
	}
}

func TestStaleResponseSuppressed(t *testing.T) {
	c, s := newTestController(t, Config{})

	c.SetCategory(domain.CategoryTools)
	slow := awaitCall(t, s)

	c.SetSort(domain.SortPriceAsc)
	fast := awaitCall(t, s)

	// The later request resolves first.
	fast.release <- fetchResult{page: pageFor(30, fast.filter)}
	snap := awaitState(t, c, func(snap Snapshot) bool {
		return snap.Page != nil && snap.Page.Pagination.TotalDocs == 30
	})
	if snap.Loading {
		t.Fatal("newest fetch resolved, loading must be false")
	}

	// The earlier request resolves late and must be discarded.
	slow.release <- fetchResult{page: pageFor(999, slow.filter)}
	time.Sleep(50 * time.Millisecond)
	if got := c.State().Page.Pagination.TotalDocs; got != 30 {
		t.Fatalf("stale response overwrote state: totalDocs = %d", got)
	}
}

func TestSearchDebounceCoalescesKeystrokes(t *testing.T) {
	c, s := newTestController(t, Config{Debounce: 30 * time.Millisecond})

	c.SetSearch("s")
	c.SetSearch("se")
	c.SetSearch("seed")

	call := awaitCall(t, s)
	if call.filter.Search != "seed" {
		t.Fatalf("search = %q, want the final keystroke only", call.filter.Search)
	}
	if call.filter.Page != 1 {
		t.Fatalf("page = %d, search must reset to page 1", call.filter.Page)
	}
	call.release <- fetchResult{page: pageFor(3, call.filter)}

	// No second query for the earlier keystrokes.
	assertNoCall(t, s, 150*time.Millisecond)
}

func TestSearchUnchangedTextDoesNotRefetch(t *testing.T) {
	c, s := newTestController(t, Config{Debounce: 10 * time.Millisecond})

	c.SetSearch("")
	assertNoCall(t, s, 100*time.Millisecond)
}

func TestFilterChangeResetsPage(t *testing.T) {
	c, s := newTestController(t, Config{})

	// 12 docs at limit 6 gives two pages.
	c.NextPage()
	call := awaitCall(t, s)
	if call.filter.Page != 2 {
		t.Fatalf("page = %d, want 2", call.filter.Page)
	}
	call.release <- fetchResult{page: pageFor(12, call.filter)}
	awaitState(t, c, func(snap Snapshot) bool { return !snap.Loading })

	c.SetCategory(domain.CategoryTools)
	call = awaitCall(t, s)
	if call.filter.Page != 1 || call.filter.Category != domain.CategoryTools {
		t.Fatalf("filter = %+v, want category change back on page 1", call.filter)
	}
}

func TestNavigationClamped(t *testing.T) {
	c, s := newTestController(t, Config{})

	// Page 1 of 2: PrevPage has nowhere to go.
	c.PrevPage()
	assertNoCall(t, s, 50*time.Millisecond)

	// GoToPage clamps above the known range.
	c.GoToPage(99)
	call := awaitCall(t, s)
	if call.filter.Page != 2 {
		t.Fatalf("page = %d, want clamp to 2", call.filter.Page)
	}
	call.release <- fetchResult{page: pageFor(12, call.filter)}
	awaitState(t, c, func(snap Snapshot) bool { return !snap.Loading })

	// Last page: NextPage has nowhere to go.
	c.NextPage()
	assertNoCall(t, s, 50*time.Millisecond)

	// Jumping to the current page is a no-op.
	c.GoToPage(2)
	assertNoCall(t, s, 50*time.Millisecond)
}

func TestResetIsAtomic(t *testing.T) {
	c, s := newTestController(t, Config{Debounce: 40 * time.Millisecond})

	c.SetCategory(domain.CategorySeeds)
	call := awaitCall(t, s)
	call.release <- fetchResult{page: pageFor(12, call.filter)}
	awaitState(t, c, func(snap Snapshot) bool { return !snap.Loading })

	// A pending search commit must die with the reset.
	c.SetSearch("tomato")
	c.Reset()

	call = awaitCall(t, s)
	if call.filter.Search != "" || call.filter.Category != domain.CategoryAll || call.filter.Page != 1 {
		t.Fatalf("reset filter = %+v, want defaults", call.filter)
	}
	call.release <- fetchResult{page: pageFor(12, call.filter)}

	// The debounced search must not fire after reset.
	assertNoCall(t, s, 150*time.Millisecond)
}

func TestLateSearchCommitDiscardedAfterReset(t *testing.T) {
	// A fired timer can lose the lock race to Reset: Stop returns false and
	// the commit runs after the defaults are back. Replay that interleaving
	// directly with the epoch the timer captured.
	c, s := newTestController(t, Config{Debounce: time.Hour})

	c.SetSearch("tomato")
	c.mu.Lock()
	epoch := c.searchEpoch
	c.mu.Unlock()

	c.Reset()
	call := awaitCall(t, s)
	if call.filter.Search != "" {
		t.Fatalf("reset fetch carries search %q", call.filter.Search)
	}
	call.release <- fetchResult{page: pageFor(12, call.filter)}
	awaitState(t, c, func(snap Snapshot) bool { return !snap.Loading })

	c.commitSearch(epoch, "tomato")

	if got := c.State().Filter.Search; got != "" {
		t.Fatalf("search %q survived reset", got)
	}
	assertNoCall(t, s, 100*time.Millisecond)
}

func TestResetWinsRaceWithDebounceExpiry(t *testing.T) {
	c, _ := newTestController(t, Config{Debounce: 20 * time.Millisecond})

	// Let the debounce expire before resetting, so the commit lands on
	// whichever side of Reset the scheduler picks. Either way the cleared
	// text must not come back.
	c.SetSearch("tomato")
	time.Sleep(40 * time.Millisecond)
	c.Reset()
	time.Sleep(40 * time.Millisecond)

	if got := c.State().Filter.Search; got != "" {
		t.Fatalf("search %q survived reset", got)
	}
}

func TestErrorKeepsLastGoodPage(t *testing.T) {
	c, s := newTestController(t, Config{})

	good := c.State().Page
	if good == nil {
		t.Fatal("missing initial page")
	}

	c.SetCategory(domain.CategoryTools)
	call := awaitCall(t, s)
	call.release <- fetchResult{err: errors.New("catalog unavailable")}

	snap := awaitState(t, c, func(snap Snapshot) bool { return snap.Err != nil })
	if snap.Page != good {
		t.Fatal("failed fetch must not drop the last good page")
	}
	if snap.Loading {
		t.Fatal("error resolves the fetch, loading must be false")
	}

	// The next successful fetch clears the error.
	c.SetCategory(domain.CategorySeeds)
	call = awaitCall(t, s)
	call.release <- fetchResult{page: pageFor(5, call.filter)}
	snap = awaitState(t, c, func(snap Snapshot) bool { return snap.Err == nil })
	if snap.Page.Pagination.TotalDocs != 5 {
		t.Fatalf("page = %+v", snap.Page.Pagination)
	}
}

func TestOnChangeObservesLifecycle(t *testing.T) {
	s := newStubFetcher()
	events := make(chan Snapshot, 32)
	c := NewFilterController(s, Config{OnChange: func(snap Snapshot) { events <- snap }})
	t.Cleanup(c.Close)

	// Dispatch notification: loading with no page yet.
	first := <-events
	if !first.Loading || first.Page != nil {
		t.Fatalf("first event = %+v", first)
	}

	call := awaitCall(t, s)
	call.release <- fetchResult{page: pageFor(6, call.filter)}

	select {
	case resolved := <-events:
		if resolved.Loading || resolved.Page == nil {
			t.Fatalf("resolved event = %+v", resolved)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no resolution event")
	}
}
