// Package editor holds the per-asset edit session behind the viewer surface:
// local-only transformation choices, live preview URLs, and the three exit
// paths (save in place, save as copy, delete).
package editor

import (
	"context"
	"fmt"
	"time"

	"mediabox/internal/domain"
	"mediabox/internal/providers/cloudinary"
	"mediabox/internal/transform"
)

// Provider is the slice of the media provider the editor needs.
type Provider interface {
	transform.URLBuilder
	Probe(ctx context.Context, renderURL string) (bool, error)
	Upload(ctx context.Context, params cloudinary.UploadParams) (*domain.Asset, error)
	Delete(ctx context.Context, publicID string) (*cloudinary.DeleteResult, error)
}

// Invalidator marks the resource directory stale after a mutation.
type Invalidator interface {
	Invalidate()
}

// Session is the edit state for a single asset. Choices live only here; they
// become durable by re-uploading the rendered result, never by mutating the
// asset record.
type Session struct {
	provider   Provider
	directory  Invalidator
	libraryTag string
	now        func() time.Time

	asset       domain.Asset
	enhancement transform.Enhancement
	crop        transform.Crop
	filterIndex int
	version     int64
}

// NewSession opens an edit session on an asset. Copies saved from the session
// join the library under libraryTag.
func NewSession(provider Provider, directory Invalidator, libraryTag string, asset domain.Asset) *Session {
	return &Session{
		provider:   provider,
		directory:  directory,
		libraryTag: libraryTag,
		now:        time.Now,
		asset:      asset,
		crop:       transform.CropOriginal,
		version:    1,
	}
}

func (s *Session) SetEnhancement(e transform.Enhancement) { s.enhancement = e }

func (s *Session) SetCrop(c transform.Crop) { s.crop = c }

// SetFilter selects a filter by index into the fixed filter list; indexes out
// of range fall back to no filter.
func (s *Session) SetFilter(index int) {
	if index < 0 || index >= len(transform.Filters) {
		index = 0
	}
	s.filterIndex = index
}

// Reset clears all edit choices back to the untransformed view.
func (s *Session) Reset() {
	s.enhancement = transform.EnhancementNone
	s.crop = transform.CropOriginal
	s.filterIndex = 0
}

// Params derives the current transformation parameter set.
func (s *Session) Params() transform.Params {
	return transform.Build(s.asset, s.enhancement, s.crop, s.filterIndex)
}

// Transformed reports whether any edit choice is active.
func (s *Session) Transformed() bool {
	return s.Params().Transformed()
}

// PreviewURL is the live-preview rendering URL for the current choices,
// cache-busted by the session version counter.
func (s *Session) PreviewURL() string {
	return transform.RenderURL(s.provider, s.asset, s.Params(), s.version)
}

// Save overwrites the asset in place: same public ID, delivery caches
// invalidated, identity preserved. The edit choices reset and the version
// counter advances so the viewer refetches the new render.
func (s *Session) Save(ctx context.Context) error {
	url := s.PreviewURL()
	if err := s.materialize(ctx, url); err != nil {
		return err
	}
	if _, err := s.provider.Upload(ctx, cloudinary.UploadParams{
		URL:        url,
		PublicID:   s.asset.PublicID,
		Invalidate: true,
	}); err != nil {
		return fmt.Errorf("save in place: %w", err)
	}
	s.directory.Invalidate()
	s.Reset()
	s.bumpVersion()
	return nil
}

// SaveAsCopy commits the rendered edit as a brand-new asset and returns it so
// the caller can navigate to the copy's page.
func (s *Session) SaveAsCopy(ctx context.Context) (*domain.Asset, error) {
	url := s.PreviewURL()
	if err := s.materialize(ctx, url); err != nil {
		return nil, err
	}
	asset, err := s.provider.Upload(ctx, cloudinary.UploadParams{
		URL:  url,
		Tags: []string{s.libraryTag},
	})
	if err != nil {
		return nil, fmt.Errorf("save as copy: %w", err)
	}
	s.directory.Invalidate()
	return asset, nil
}

// Delete removes the asset and invalidates the directory so the gallery
// reconciles on its next read.
func (s *Session) Delete(ctx context.Context) (*cloudinary.DeleteResult, error) {
	result, err := s.provider.Delete(ctx, s.asset.PublicID)
	if err != nil {
		return nil, err
	}
	s.directory.Invalidate()
	return result, nil
}

// Version exposes the cache-busting counter for the viewer.
func (s *Session) Version() int64 {
	return s.version
}

func (s *Session) materialize(ctx context.Context, url string) error {
	ok, err := s.provider.Probe(ctx, url)
	if err != nil {
		return fmt.Errorf("materialize render: %w", err)
	}
	if !ok {
		return fmt.Errorf("materialize render: %w", domain.ErrProviderFailure)
	}
	return nil
}

func (s *Session) bumpVersion() {
	if v := s.now().UnixMilli(); v > s.version {
		s.version = v
	} else {
		s.version++
	}
}
