// Package directory holds the in-memory view of the asset library: the last
// known-good list plus a staleness mark that forces the next read to
// reconcile with the provider.
package directory

import (
	"context"
	"sync"

	"mediabox/internal/domain"
	"mediabox/internal/infra"
)

// Lister is the slice of the persistence gateway the directory reads through.
type Lister interface {
	ListAssets(ctx context.Context, tag string) ([]domain.Asset, error)
}

// Directory caches the library-tag-scoped asset list. Add is the only
// mutation path; everything else reconciles through the gateway.
type Directory struct {
	lister Lister
	tag    string
	logger infra.Logger

	mu     sync.Mutex
	assets []domain.Asset
	seeded bool
	fresh  bool
}

// New builds a directory scoped to the fixed library tag. A non-nil seed
// (e.g. a server-rendered initial list) primes the cache so the first read
// skips the fetch.
func New(lister Lister, tag string, logger infra.Logger, seed []domain.Asset) *Directory {
	d := &Directory{lister: lister, tag: tag, logger: logger}
	if seed != nil {
		d.assets = append([]domain.Asset(nil), seed...)
		d.seeded = true
		d.fresh = true
	}
	return d
}

// List returns the cached asset list, refreshing through the gateway when the
// cache is missing or stale. A failed refresh over an existing cache returns
// the previous list unchanged; the error is only surfaced when there is no
// cache to fall back on.
func (d *Directory) List(ctx context.Context) ([]domain.Asset, error) {
	d.mu.Lock()
	if d.seeded && d.fresh {
		out := snapshot(d.assets)
		d.mu.Unlock()
		return out, nil
	}
	d.mu.Unlock()

	fetched, err := d.lister.ListAssets(ctx, d.tag)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		if d.seeded {
			d.logger.Warn().Err(err).Msg("directory refresh failed, serving cached list")
			return snapshot(d.assets), nil
		}
		return nil, err
	}

	d.assets = fetched
	d.seeded = true
	d.fresh = true
	return snapshot(d.assets), nil
}

// Add prepends newly created assets (newest first) and marks the cache stale
// so the next read reconciles with the provider. The mutation itself makes
// no network call.
func (d *Directory) Add(assets []domain.Asset) {
	if len(assets) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.assets = append(append([]domain.Asset(nil), assets...), d.assets...)
	d.seeded = true
	d.fresh = false
}

// Invalidate marks the cache stale without touching its contents, e.g. after
// a deletion or an in-place overwrite.
func (d *Directory) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fresh = false
}

func snapshot(assets []domain.Asset) []domain.Asset {
	return append([]domain.Asset(nil), assets...)
}
