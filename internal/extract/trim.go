package extract

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/ktkarchive/paper-parse/internal/profile"
)

// AutoTrimmer crops a resolved region's raster to its content bounds. Three
// ordered passes: dark banner-bar removal at the top, whitespace bounding-box
// crop with padding, and — for two-column profiles — a right-boundary clamp
// at the inter-column gap so neighboring-column body text sharing the
// figure's vertical band never bleeds into the crop. All thresholds operate
// in 8-bit grayscale intensity; geometry is the raster's own pixel space.
type AutoTrimmer struct {
	profile *profile.Profile
	bands   *HeaderBandFilter
}

// NewAutoTrimmer creates a trimmer for one profile.
func NewAutoTrimmer(p *profile.Profile) *AutoTrimmer {
	return &AutoTrimmer{profile: p, bands: NewHeaderBandFilter(p)}
}

// Trim returns the minimal tight crop containing the region's content. A
// region that is entirely background after thresholding is returned
// unchanged together with ErrDegenerateRegion; callers keep the image and
// log the condition.
func (t *AutoTrimmer) Trim(src image.Image) (image.Image, error) {
	rgba := normalize(src)
	gray := toGray(rgba)
	w := gray.Bounds().Dx()
	h := gray.Bounds().Dy()
	if w == 0 || h == 0 {
		return src, ErrDegenerateRegion
	}

	// Pass 1: strip a dark banner bar from the top of the region itself.
	top := t.bands.TopDarkRows(gray)
	if top >= h {
		return src, ErrDegenerateRegion
	}

	// Pass 2: bounding box of non-background pixels below the bar.
	white := uint8(t.profile.WhiteThreshold)
	x0, y0, x1, y1 := w, h, -1, -1
	for y := top; y < h; y++ {
		for x := 0; x < w; x++ {
			if gray.GrayAt(x, y).Y < white {
				if x < x0 {
					x0 = x
				}
				if x > x1 {
					x1 = x
				}
				if y < y0 {
					y0 = y
				}
				y1 = y
			}
		}
	}
	if x1 < 0 {
		return src, ErrDegenerateRegion
	}

	pad := t.profile.PaddingPx
	cx0 := maxInt(0, x0-pad)
	cy0 := maxInt(top, y0-pad)
	cx1 := minInt(w, x1+pad+1)
	cy1 := minInt(h, y1+pad+1)

	// Pass 3: column-gap right clamp, two-column layouts only.
	if t.profile.ColumnCount >= 2 {
		if gapStart, gapWidth, ok := t.columnGap(gray, top, w, h); ok && gapStart > x0 {
			inset := pad
			if inset >= gapWidth {
				inset = gapWidth - 1
			}
			if inset < 1 {
				inset = 1
			}
			if edge := gapStart + inset; edge < cx1 {
				cx1 = edge
			}
		}
	}

	cropped := rgba.SubImage(image.Rect(cx0, cy0, cx1, cy1))
	return t.rescale(cropped), nil
}

// columnGap finds the widest contiguous run of all-background pixel columns
// inside the middle third of the region's width. A run at least
// MinColumnGapPx wide marks the white strip between print columns.
func (t *AutoTrimmer) columnGap(gray *image.Gray, top, w, h int) (start, width int, ok bool) {
	white := uint8(t.profile.WhiteThreshold)
	lo := w / 3
	hi := 2 * w / 3

	bestStart, bestWidth := 0, 0
	runStart := -1
	for x := lo; x <= hi; x++ {
		background := x < hi
		if background {
			for y := top; y < h; y++ {
				if gray.GrayAt(x, y).Y < white {
					background = false
					break
				}
			}
		}
		if background {
			if runStart < 0 {
				runStart = x
			}
			continue
		}
		if runStart >= 0 {
			if run := x - runStart; run > bestWidth {
				bestStart, bestWidth = runStart, run
			}
			runStart = -1
		}
	}
	if bestWidth >= t.profile.MinColumnGapPx {
		return bestStart, bestWidth, true
	}
	return 0, 0, false
}

// rescale shrinks crops wider than the profile's output limit, preserving
// the aspect ratio. A zero limit disables scaling.
func (t *AutoTrimmer) rescale(img image.Image) image.Image {
	limit := t.profile.MaxOutputWidth
	b := img.Bounds()
	if limit <= 0 || b.Dx() <= limit {
		return img
	}
	scale := float64(limit) / float64(b.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, limit, int(float64(b.Dy())*scale+0.5)))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// normalize copies the source into an origin-aligned RGBA so pixel
// coordinates and SubImage crops are uniform regardless of where the region
// sat on its page raster.
func normalize(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func toGray(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
