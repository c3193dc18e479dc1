package engine

import (
	"context"
	"errors"

	"apexpos/api"
	"apexpos/model"
)

// ErrSuperseded reports that a newer catalog fetch was issued while this
// one was in flight; its response was discarded.
var ErrSuperseded = errors.New("catalog fetch superseded")

// ProductLister is the slice of the remote API the engine needs for a
// catalog refresh.
type ProductLister interface {
	ListProducts(ctx context.Context, q api.ProductQuery) ([]model.Product, error)
}

// RefreshCatalog fetches the catalog and replaces the local snapshot.
// Last-issued-request-wins: if another refresh starts before this one's
// response lands, the stale response is dropped and ErrSuperseded
// returned instead of overwriting newer state. Fetch errors propagate
// unchanged; an error never empties the snapshot.
func (e *Engine) RefreshCatalog(ctx context.Context, lister ProductLister, q api.ProductQuery) error {
	e.mu.Lock()
	e.catalogGen++
	gen := e.catalogGen
	e.mu.Unlock()

	products, err := lister.ListProducts(ctx, q)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.catalogGen {
		return ErrSuperseded
	}
	e.products = append([]model.Product(nil), products...)
	return nil
}
