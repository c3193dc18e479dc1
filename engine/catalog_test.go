package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"apexpos/api"
	"apexpos/model"
)

// fakeLister serves a fixed product slice, optionally blocking until
// released so tests can order responses explicitly.
type fakeLister struct {
	products []model.Product
	err      error
	gate     chan struct{}
}

func (f *fakeLister) ListProducts(ctx context.Context, q api.ProductQuery) ([]model.Product, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.products, f.err
}

func TestRefreshCatalogReplacesSnapshot(t *testing.T) {
	e := newTestEngine(nil)
	e.ReplaceProducts([]model.Product{product("old", 1, 1)})

	lister := &fakeLister{products: []model.Product{product("a", 2, 2), product("b", 3, 3)}}
	if err := e.RefreshCatalog(context.Background(), lister, api.ProductQuery{}); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	ps := e.Products()
	if len(ps) != 2 || ps[0].ID != "a" {
		t.Fatalf("snapshot not replaced: %+v", ps)
	}
}

func TestRefreshCatalogCopiesListerSlice(t *testing.T) {
	e := newTestEngine(nil)

	lister := &fakeLister{products: []model.Product{product("a", 2, 10)}}
	if err := e.RefreshCatalog(context.Background(), lister, api.ProductQuery{}); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	// mutating the lister's slice must not reach into the snapshot
	lister.products[0].Quantity = 0
	if got := e.Products()[0].Quantity; got != 10 {
		t.Fatalf("snapshot aliases lister slice, quantity = %d", got)
	}
}

func TestRefreshCatalogErrorKeepsSnapshot(t *testing.T) {
	e := newTestEngine(nil)
	e.ReplaceProducts([]model.Product{product("old", 1, 1)})

	lister := &fakeLister{err: errors.New("boom")}
	if err := e.RefreshCatalog(context.Background(), lister, api.ProductQuery{}); err == nil {
		t.Fatalf("expected fetch error")
	}
	if ps := e.Products(); len(ps) != 1 || ps[0].ID != "old" {
		t.Fatalf("snapshot changed on error: %+v", ps)
	}
}

func TestRefreshCatalogLastIssuedWins(t *testing.T) {
	e := newTestEngine(nil)

	slow := &fakeLister{
		products: []model.Product{product("stale", 1, 1)},
		gate:     make(chan struct{}),
	}
	fast := &fakeLister{products: []model.Product{product("fresh", 2, 2)}}

	done := make(chan error, 1)
	go func() {
		done <- e.RefreshCatalog(context.Background(), slow, api.ProductQuery{Search: "old term"})
	}()

	// wait until the slow fetch has claimed its generation
	for {
		e.mu.Lock()
		claimed := e.catalogGen > 0
		e.mu.Unlock()
		if claimed {
			break
		}
		time.Sleep(time.Millisecond)
	}

	// a newer fetch supersedes it and lands first
	if err := e.RefreshCatalog(context.Background(), fast, api.ProductQuery{Search: "new term"}); err != nil {
		t.Fatalf("newer refresh failed: %v", err)
	}

	// now let the stale response arrive
	close(slow.gate)
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded for stale fetch, got %v", err)
	}

	if ps := e.Products(); len(ps) != 1 || ps[0].ID != "fresh" {
		t.Fatalf("stale response overwrote newer snapshot: %+v", ps)
	}
}
