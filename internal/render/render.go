// Package render adapts the PDF renderer into the normalized per-page view
// the extraction engine works on: a zoomed page raster plus ordered text,
// image, and drawing blocks with bounding boxes in page points.
package render

import (
	"fmt"
	"image"

	"github.com/ktkarchive/paper-parse/internal/geom"
)

// TextBlock is a contiguous run of text on a page.
type TextBlock struct {
	Rect     geom.Rect
	Text     string
	FontSize float64
}

// ImageBlock is a raster or vector region reported by the renderer, a
// candidate source for a cropped figure. Consumed marks blocks already
// assigned to a resolved figure; a consumed block is never matched again.
type ImageBlock struct {
	Rect      geom.Rect
	PageIndex int
	Consumed  bool
}

// Drawing is a vector element on the page. Dashed marks strokes with a
// non-empty dash pattern; journals render figure separators as dashed
// horizontal rules, which the resolver uses as top-boundary clamps.
type Drawing struct {
	Rect   geom.Rect
	Dashed bool
}

// Page is the normalized model of one rendered page. Geometry is in page
// points with Y increasing downward; Raster holds the page rendered at
// Zoom*72 dpi, so raster pixel = point * Zoom.
type Page struct {
	Index       int
	Width       float64
	Height      float64
	Zoom        int
	Raster      image.Image
	TextBlocks  []TextBlock
	ImageBlocks []ImageBlock
	Drawings    []Drawing
}

// subImager is satisfied by the concrete raster types the renderer produces.
type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// CropRaster returns the portion of the page raster covered by the given
// page-space rectangle, clamped to the raster bounds.
func (p *Page) CropRaster(r geom.Rect) (image.Image, error) {
	if p.Raster == nil {
		return nil, fmt.Errorf("page %d: no raster", p.Index)
	}
	px := r.Pixels(float64(p.Zoom)).Intersect(p.Raster.Bounds())
	if px.Empty() {
		return nil, fmt.Errorf("page %d: crop %v is outside the raster", p.Index, r)
	}
	si, ok := p.Raster.(subImager)
	if !ok {
		return nil, fmt.Errorf("page %d: raster type %T does not support cropping", p.Index, p.Raster)
	}
	return si.SubImage(px), nil
}

// Document yields pages in order. Implementations are not safe for
// concurrent use; the engine walks pages strictly sequentially.
type Document interface {
	NumPages() int
	Page(index int) (*Page, error)
	Close() error
}
