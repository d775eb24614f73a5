package creations

import (
	"context"
	"fmt"

	"mediabox/internal/domain"
	"mediabox/internal/providers/cloudinary"
)

// ColorPop runs the asynchronous color-pop workflow on the first selected
// asset: request a background-removed rendering, poll until the provider has
// computed it, commit that rendering as a provenance-tagged asset, then
// compose the final URL — a grayscale 1200x1200 center-fill of the original
// with the cutout overlaid in color.
//
// The poll loop is bounded: pollMax attempts spaced pollInterval apart, and
// the context aborts it between probes. Exhaustion or any phase failure moves
// the slot to the error state instead of leaving it stuck in creating.
func (e *Engine) ColorPop(ctx context.Context, sel *domain.Selection) (string, error) {
	subject := sel.First()
	if subject == "" {
		return "", fmt.Errorf("color-pop needs a selected asset: %w", domain.ErrSelectionTooSmall)
	}
	gen, err := e.begin(domain.CreationColorPop, domain.CreationCreating, sel)
	if err != nil {
		return "", err
	}

	url, err := e.colorPop(ctx, subject)
	if err != nil {
		e.fail(gen, err)
		return "", err
	}

	e.mu.Lock()
	if e.gen != gen || e.creation == nil {
		// Cancelled, possibly replaced, while we were polling; drop the result.
		e.mu.Unlock()
		return "", errSlotLost
	}
	e.creation.State = domain.CreationCreated
	e.creation.URL = url
	e.mu.Unlock()

	return url, nil
}

func (e *Engine) colorPop(ctx context.Context, subject string) (string, error) {
	// Lossless raster format, cache-busted so a previous failed render is
	// never served from a delivery cache.
	cutoutURL := e.provider.ImageURL(subject, cloudinary.URLOptions{
		Effects: []string{"background_removal"},
		Format:  "png",
		Version: e.now().UnixMilli(),
	})

	if err := e.waitForRender(ctx, cutoutURL); err != nil {
		return "", err
	}

	cutout, err := e.provider.Upload(ctx, cloudinary.UploadParams{
		URL:  cutoutURL,
		Tags: []string{"background-removed", "original-" + subject},
	})
	if err != nil {
		return "", fmt.Errorf("store background-removed asset: %w", err)
	}

	return e.provider.ImageURL(subject, cloudinary.URLOptions{
		Width:    1200,
		Height:   1200,
		Crop:     "fill",
		Gravity:  "center",
		Source:   true,
		Effects:  []string{"grayscale"},
		Overlays: []cloudinary.Overlay{{PublicID: cutout.PublicID}},
		Version:  e.now().UnixMilli(),
	}), nil
}

// waitForRender probes the rendering URL until the provider reports it ready.
func (e *Engine) waitForRender(ctx context.Context, renderURL string) error {
	for attempt := 1; ; attempt++ {
		ready, err := e.provider.Probe(ctx, renderURL)
		if err != nil {
			return fmt.Errorf("probe render: %w", err)
		}
		if ready {
			return nil
		}
		if attempt >= e.pollMax {
			return fmt.Errorf("render not ready after %d attempts: %w", attempt, domain.ErrPollTimeout)
		}
		if err := e.sleep(ctx, e.pollInterval); err != nil {
			return err
		}
	}
}
