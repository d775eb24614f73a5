package creations

import "mediabox/internal/providers/cloudinary"

const (
	collageCell    = 600
	collageColumns = 2
	frameDelayMS   = 200
)

// collageURL derives a single composite URL for the selected assets: the
// first asset anchors the canvas and the rest are placed on a fixed grid.
// Layout rendering is the provider's job; only the parameter set is ours.
func (e *Engine) collageURL(ids []string) string {
	rows := (len(ids) + collageColumns - 1) / collageColumns

	opts := cloudinary.URLOptions{
		Width:   collageCell * collageColumns,
		Height:  collageCell * rows,
		Crop:    "fill",
		Gravity: "center",
		Source:  true,
		Version: e.now().UnixMilli(),
	}
	for i, id := range ids[1:] {
		cell := i + 1
		opts.Overlays = append(opts.Overlays, cloudinary.Overlay{
			PublicID: id,
			Width:    collageCell,
			Height:   collageCell,
			Crop:     "fill",
			Gravity:  "north_west",
			X:        (cell % collageColumns) * collageCell,
			Y:        (cell / collageColumns) * collageCell,
		})
	}
	return e.provider.ImageURL(ids[0], opts)
}

// animationURL derives an animated-sequence URL from the selected assets,
// delivered as a looping GIF with a fixed inter-frame delay.
func (e *Engine) animationURL(ids []string) string {
	opts := cloudinary.URLOptions{
		Effects: []string{"loop"},
		Format:  "gif",
		Delay:   frameDelayMS,
		Version: e.now().UnixMilli(),
	}
	for _, id := range ids[1:] {
		opts.Overlays = append(opts.Overlays, cloudinary.Overlay{PublicID: id})
	}
	return e.provider.ImageURL(ids[0], opts)
}
