// Package transform derives transformation parameter sets from an asset and
// the user's edit choices. Building is pure: the same asset and choices
// always produce the same parameters, and parameters are an ephemeral recipe,
// never persisted.
package transform

import (
	"mediabox/internal/domain"
	"mediabox/internal/providers/cloudinary"
)

// Enhancement is the single optional enhancement flag.
type Enhancement string

const (
	EnhancementNone             Enhancement = "none"
	EnhancementImprove          Enhancement = "improve"
	EnhancementRestore          Enhancement = "restore"
	EnhancementRemoveBackground Enhancement = "remove-background"
)

// Crop is the target aspect choice.
type Crop string

const (
	CropOriginal  Crop = "original"
	CropSquare    Crop = "square"
	CropLandscape Crop = "landscape"
	CropPortrait  Crop = "portrait"
)

// Filter pairs a display name with the provider effect it contributes.
type Filter struct {
	Name   string
	Effect string
}

// Filters is the fixed, ordered filter list. Index 0 contributes nothing.
var Filters = []Filter{
	{Name: "no-filter"},
	{Name: "sepia", Effect: "sepia"},
	{Name: "stylized-art", Effect: "art:sizzle"},
	{Name: "grayscale", Effect: "grayscale"},
}

// Params is the derived transformation parameter set. The zero value means
// "no transformation".
type Params struct {
	Effects []string
	Width   int
	Height  int
	Crop    string
	Gravity string
}

// Transformed reports whether any choice contributed a parameter.
func (p Params) Transformed() bool {
	return len(p.Effects) > 0 || p.Width > 0 || p.Height > 0 || p.Crop != ""
}

// Build derives the parameter set for an asset. Precedence: filter, then
// enhancement, then crop; later rules only add, never remove.
func Build(asset domain.Asset, enhancement Enhancement, crop Crop, filterIndex int) Params {
	var p Params

	if filterIndex > 0 && filterIndex < len(Filters) {
		if effect := Filters[filterIndex].Effect; effect != "" {
			p.Effects = append(p.Effects, effect)
		}
	}

	switch enhancement {
	case EnhancementImprove:
		p.Effects = append(p.Effects, "improve")
	case EnhancementRestore:
		p.Effects = append(p.Effects, "gen_restore")
	case EnhancementRemoveBackground:
		p.Effects = append(p.Effects, "background_removal")
	}

	switch crop {
	case CropSquare:
		// The larger source dimension controls; the other target dimension is
		// raised to match it, so the fill never shrinks below the source.
		if asset.Width > asset.Height {
			p.Height = asset.Width
		} else {
			p.Width = asset.Height
		}
	case CropLandscape:
		p.Height = asset.Width * 9 / 16
	case CropPortrait:
		p.Width = asset.Height * 9 / 16
	}

	if crop != CropOriginal && crop != "" {
		p.Crop = "fill"
		p.Gravity = "center"
	}

	return p
}

// URLBuilder is the provider's delivery-URL composition surface.
type URLBuilder interface {
	ImageURL(publicID string, opts cloudinary.URLOptions) string
}

// RenderURL composes the delivery URL for an asset under the given parameter
// set. Unset target dimensions fall back to the source dimensions, so a
// square crop that only raised one dimension still renders square. Aspect
// crops are source-relative: the fill applies to the source image before any
// effect does.
func RenderURL(c URLBuilder, asset domain.Asset, p Params, version int64) string {
	width := p.Width
	if width == 0 {
		width = asset.Width
	}
	height := p.Height
	if height == 0 {
		height = asset.Height
	}
	return c.ImageURL(asset.PublicID, cloudinary.URLOptions{
		Width:   width,
		Height:  height,
		Crop:    p.Crop,
		Gravity: p.Gravity,
		Source:  p.Crop != "",
		Effects: p.Effects,
		Quality: "auto",
		Version: version,
	})
}
