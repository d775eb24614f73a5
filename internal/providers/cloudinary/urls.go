package cloudinary

import (
	"net/url"
	"strconv"
	"strings"
)

// URLOptions is a transformation recipe for a delivery URL. Zero values are
// omitted from the generated URL, so an empty URLOptions yields the plain
// asset URL. The provider computes the render when the URL is fetched; this
// builder only encodes the parameter set deterministically.
type URLOptions struct {
	Width   int
	Height  int
	Crop    string // e.g. "fill"
	Gravity string // e.g. "center"

	// Source applies the crop to the source image, ahead of effects and
	// overlays. Without it the resize applies to the composed result, as the
	// trailing transformation component.
	Source bool

	// Effects are named effect flags ("grayscale", "sepia", "art:sizzle",
	// "improve", "gen_restore", "background_removal"), one URL segment each.
	Effects []string

	Overlays []Overlay

	Format  string // delivered format, e.g. "png", "gif"
	Quality string // e.g. "auto"
	Delay   int    // inter-frame delay in ms for animated delivery

	// Version is a cache-busting token; renders with a fresh version bypass
	// stale delivery caches.
	Version int64
}

// Overlay composites another stored asset on top of the base rendering.
type Overlay struct {
	PublicID string
	Width    int
	Height   int
	Crop     string
	Gravity  string // placement gravity on apply, e.g. "north_west"
	X        int
	Y        int
}

// ImageURL composes the delivery URL for a public ID plus a transformation
// recipe: <base>/<cloud>/image/upload/<transformations>/v<version>/<publicID>.
func (c *Client) ImageURL(publicID string, opts URLOptions) string {
	segments := []string{c.deliveryBase, c.cloudName, "image", "upload"}

	base := joinParts(
		cropPart("c", opts.Crop),
		cropPart("g", opts.Gravity),
		dimPart("w", opts.Width),
		dimPart("h", opts.Height),
	)
	if base != "" && opts.Source {
		segments = append(segments, base)
		base = ""
	}

	for _, effect := range opts.Effects {
		if effect != "" {
			segments = append(segments, "e_"+effect)
		}
	}

	if delivery := joinParts(
		cropPart("f", opts.Format),
		cropPart("q", opts.Quality),
		dimPart("dl", opts.Delay),
	); delivery != "" {
		segments = append(segments, delivery)
	}

	for _, o := range opts.Overlays {
		open := joinParts(
			"l_"+layerRef(o.PublicID),
			dimPart("w", o.Width),
			dimPart("h", o.Height),
			cropPart("c", o.Crop),
		)
		apply := joinParts(
			"fl_layer_apply",
			cropPart("g", o.Gravity),
			offsetPart("x", o.X, o.Gravity),
			offsetPart("y", o.Y, o.Gravity),
		)
		segments = append(segments, open, apply)
	}

	if base != "" {
		segments = append(segments, base)
	}

	if opts.Version > 0 {
		segments = append(segments, "v"+strconv.FormatInt(opts.Version, 10))
	}

	segments = append(segments, encodePublicID(publicID))
	return strings.Join(segments, "/")
}

func joinParts(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ",")
}

func cropPart(prefix, value string) string {
	if value == "" {
		return ""
	}
	return prefix + "_" + value
}

func dimPart(prefix string, value int) string {
	if value <= 0 {
		return ""
	}
	return prefix + "_" + strconv.Itoa(value)
}

// offsetPart keeps zero offsets when a placement gravity is set, so grid
// cells at the origin stay explicitly positioned.
func offsetPart(prefix string, value int, gravity string) string {
	if value == 0 && gravity == "" {
		return ""
	}
	return prefix + "_" + strconv.Itoa(value)
}

// layerRef encodes a public ID for use inside a layer parameter, where path
// separators become colons.
func layerRef(publicID string) string {
	return strings.ReplaceAll(publicID, "/", ":")
}

func encodePublicID(publicID string) string {
	parts := strings.Split(publicID, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
