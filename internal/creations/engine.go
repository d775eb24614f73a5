// Package creations orchestrates multi-step derived-asset workflows: collage
// and animation (synchronous URL composition) and color-pop (asynchronous
// background removal with a bounded readiness poll), plus the save step that
// materializes a creation as a brand-new stored asset.
package creations

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mediabox/internal/domain"
	"mediabox/internal/infra"
	"mediabox/internal/providers/cloudinary"
)

// Provider is the slice of the media provider the engine needs: readiness
// probing, fetch-upload, and delivery-URL composition.
type Provider interface {
	Probe(ctx context.Context, renderURL string) (bool, error)
	Upload(ctx context.Context, params cloudinary.UploadParams) (*domain.Asset, error)
	ImageURL(publicID string, opts cloudinary.URLOptions) string
}

// Directory receives newly persisted creations.
type Directory interface {
	Add(assets []domain.Asset)
}

// Options wires the engine. Now and Sleep are injectable for tests; the
// defaults use the wall clock and a context-aware timer.
type Options struct {
	Provider        Provider
	Directory       Directory
	Logger          infra.Logger
	LibraryTag      string
	PollInterval    time.Duration
	PollMaxAttempts int
	Now             func() time.Time
	Sleep           func(ctx context.Context, d time.Duration) error
}

// Engine owns the single per-session creation slot. At most one creation is
// in flight: starting another while the slot is occupied is rejected rather
// than queued.
type Engine struct {
	provider     Provider
	directory    Directory
	logger       infra.Logger
	libraryTag   string
	pollInterval time.Duration
	pollMax      int
	now          func() time.Time
	sleep        func(ctx context.Context, d time.Duration) error

	// gen identifies the current slot occupant. Completion paths carry the
	// generation they started under and leave the slot alone once it no longer
	// matches, so a cancelled workflow cannot touch its replacement.
	mu       sync.Mutex
	gen      uint64
	creation *domain.Creation
	selected *domain.Selection
}

func NewEngine(opts Options) *Engine {
	e := &Engine{
		provider:     opts.Provider,
		directory:    opts.Directory,
		logger:       opts.Logger,
		libraryTag:   opts.LibraryTag,
		pollInterval: opts.PollInterval,
		pollMax:      opts.PollMaxAttempts,
		now:          opts.Now,
		sleep:        opts.Sleep,
	}
	if e.pollInterval <= 0 {
		e.pollInterval = 500 * time.Millisecond
	}
	if e.pollMax <= 0 {
		e.pollMax = 120
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.sleep == nil {
		e.sleep = sleepCtx
	}
	return e
}

// Snapshot returns a copy of the current creation, or nil when the slot is
// empty.
func (e *Engine) Snapshot() *domain.Creation {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.creation == nil {
		return nil
	}
	c := *e.creation
	return &c
}

// Cancel clears the slot from any state; closing the creation dialog aborts
// whatever was in progress. Bumping the generation orphans any workflow still
// running against the old occupancy.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.creation = nil
	e.selected = nil
}

// Collage synchronously composes a grid of at least two selected assets.
func (e *Engine) Collage(sel *domain.Selection) (string, error) {
	if sel.Len() < 2 {
		return "", fmt.Errorf("collage needs at least 2 assets: %w", domain.ErrSelectionTooSmall)
	}
	gen, err := e.begin(domain.CreationCollage, domain.CreationCreated, sel)
	if err != nil {
		return "", err
	}
	url := e.collageURL(sel.IDs())
	e.finish(gen, url)
	return url, nil
}

// Animation synchronously composes an animated sequence from a single
// selected asset; it is only reachable when fewer than two are selected.
func (e *Engine) Animation(sel *domain.Selection) (string, error) {
	if sel.Len() < 1 {
		return "", fmt.Errorf("animation needs a selected asset: %w", domain.ErrSelectionTooSmall)
	}
	if sel.Len() >= 2 {
		return "", fmt.Errorf("animation takes a single asset: %w", domain.ErrSelectionTooLarge)
	}
	gen, err := e.begin(domain.CreationAnimation, domain.CreationCreated, sel)
	if err != nil {
		return "", err
	}
	url := e.animationURL(sel.IDs())
	e.finish(gen, url)
	return url, nil
}

// Save confirms the current creation: the rendering URL is fetched to force
// the provider to materialize it, then committed as a new library-tagged
// asset. On success the slot and the originating selection are cleared; on
// failure the slot rolls back to created so the user can retry.
func (e *Engine) Save(ctx context.Context) (*domain.Asset, error) {
	e.mu.Lock()
	if e.creation == nil || e.creation.State != domain.CreationCreated || e.creation.URL == "" {
		e.mu.Unlock()
		return nil, domain.ErrNoCreation
	}
	gen := e.gen
	e.creation.State = domain.CreationSaving
	e.creation.Err = ""
	url := e.creation.URL
	e.mu.Unlock()

	asset, err := e.commit(ctx, url)
	if err != nil {
		e.logger.Error().Err(err).Msg("creation save failed")
		e.mu.Lock()
		if e.gen == gen && e.creation != nil {
			e.creation.State = domain.CreationCreated
			e.creation.Err = err.Error()
		}
		e.mu.Unlock()
		return nil, err
	}

	e.directory.Add([]domain.Asset{*asset})

	e.mu.Lock()
	if e.gen == gen {
		if e.selected != nil {
			e.selected.Clear()
		}
		e.creation = nil
		e.selected = nil
	}
	e.mu.Unlock()

	return asset, nil
}

func (e *Engine) commit(ctx context.Context, url string) (*domain.Asset, error) {
	ok, err := e.provider.Probe(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("materialize render: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("materialize render: %w", domain.ErrProviderFailure)
	}
	asset, err := e.provider.Upload(ctx, cloudinary.UploadParams{
		URL:  url,
		Tags: []string{e.libraryTag},
	})
	if err != nil {
		return nil, fmt.Errorf("commit creation: %w", err)
	}
	return asset, nil
}

// begin claims the slot, rejecting a second in-flight creation. The returned
// generation must be presented back by finish/fail so that handlers outliving
// a Cancel cannot mutate whatever occupies the slot afterwards.
func (e *Engine) begin(t domain.CreationType, state domain.CreationState, sel *domain.Selection) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.creation != nil && e.creation.State != domain.CreationIdle {
		return 0, domain.ErrCreationInFlight
	}
	e.gen++
	e.creation = &domain.Creation{State: state, Type: t}
	e.selected = sel
	return e.gen, nil
}

func (e *Engine) finish(gen uint64, url string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen || e.creation == nil {
		return
	}
	e.creation.State = domain.CreationCreated
	e.creation.URL = url
}

func (e *Engine) fail(gen uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen || e.creation == nil {
		return
	}
	e.creation.State = domain.CreationError
	e.creation.Err = err.Error()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var errSlotLost = errors.New("creation slot cleared")
